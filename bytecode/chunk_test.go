package bytecode

import (
	"errors"
	"math"
	"testing"

	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/op"
	"github.com/stretchr/testify/require"
)

func TestWriteKeepsLinesParallel(t *testing.T) {
	c := NewChunk()
	require.NoError(t, c.WriteConstant(1.2, 123))
	c.WriteOp(op.Negate, 123)
	c.WriteOp(op.Return, 124)

	require.Equal(t, 4, c.Len())
	require.Equal(t, []byte{byte(op.Constant), 0, byte(op.Negate), byte(op.Return)}, c.Code())
	require.Equal(t, []int{123, 123, 123, 124}, c.Lines())
	require.Equal(t, 124, c.LineAt(3))
	require.Equal(t, 0, c.LineAt(4))
	require.Equal(t, 0, c.LineAt(-1))
}

func TestAddConstantIndexes(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 3; i++ {
		idx, err := c.AddConstant(Value(i))
		require.NoError(t, err)
		require.Equal(t, i, idx)
	}
	// No deduplication
	idx, err := c.AddConstant(0)
	require.NoError(t, err)
	require.Equal(t, 3, idx)
	require.Equal(t, 4, c.ConstantCount())
}

func TestAddConstantLimit(t *testing.T) {
	c := NewChunk()
	for i := 0; i < MaxConstants; i++ {
		_, err := c.AddConstant(Value(i))
		require.NoError(t, err)
	}
	_, err := c.AddConstant(1)
	require.Error(t, err)
	require.True(t, errors.Is(err, errz.ErrTooManyConstants))
	require.Equal(t, MaxConstants, c.ConstantCount())

	err = c.WriteConstant(1, 9)
	require.True(t, errors.Is(err, errz.ErrTooManyConstants))
	kind, ok := errz.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errz.ErrCompile, kind)
	require.Equal(t, 0, c.Len())
}

func TestConstantLookup(t *testing.T) {
	c := NewChunk()
	_, err := c.AddConstant(2.5)
	require.NoError(t, err)

	v, ok := c.Constant(0)
	require.True(t, ok)
	require.Equal(t, Value(2.5), v)
	require.Equal(t, Value(2.5), c.ConstantAt(0))

	_, ok = c.Constant(1)
	require.False(t, ok)
	_, ok = c.Constant(-1)
	require.False(t, ok)
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := NewChunk()
	require.NoError(t, c.WriteConstant(7, 1))
	code := c.Code()
	code[0] = 99
	consts := c.Constants()
	consts[0] = 0
	require.Equal(t, byte(op.Constant), c.ByteAt(0))
	require.Equal(t, Value(7), c.ConstantAt(0))
}

func TestValidate(t *testing.T) {
	c := NewChunk()
	require.NoError(t, c.WriteConstant(1, 1))
	c.WriteOp(op.Return, 1)
	require.NoError(t, c.Validate())

	bad := NewChunk()
	bad.Write(0xFE, 1)
	err := bad.Validate()
	require.True(t, errors.Is(err, errz.ErrInvalidOpcode))

	truncated := NewChunk()
	_, _ = truncated.AddConstant(1)
	truncated.WriteOp(op.Constant, 1)
	err = truncated.Validate()
	require.True(t, errors.Is(err, errz.ErrUnexpectedEnd))

	dangling := NewChunk()
	dangling.WriteOp(op.Constant, 1)
	dangling.Write(3, 1)
	err = dangling.Validate()
	require.True(t, errors.Is(err, errz.ErrConstantIndex))

	mismatched := newChunk([]byte{byte(op.Return)}, nil, nil)
	require.Error(t, mismatched.Validate())
}

func TestStats(t *testing.T) {
	c := NewChunk()
	require.NoError(t, c.WriteConstant(1, 1))
	require.NoError(t, c.WriteConstant(2, 1))
	c.WriteOp(op.Add, 2)
	c.WriteOp(op.Return, 3)
	require.Equal(t, Stats{
		ByteCount:        6,
		InstructionCount: 4,
		ConstantCount:    2,
		LineCount:        3,
	}, c.Stats())
}

func TestValueString(t *testing.T) {
	tests := []struct {
		value    Value
		expected string
	}{
		{1.2, "1.200000"},
		{-1.2, "-1.200000"},
		{3, "3.000000"},
		{0, "0.000000"},
		{1.0 / 3.0, "0.333333"},
		{Value(math.Inf(1)), "inf"},
		{Value(math.Inf(-1)), "-inf"},
		{Value(math.NaN()), "NaN"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.value.String())
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue("1.25")
	require.NoError(t, err)
	require.Equal(t, Value(1.25), v)

	v, err = ParseValue("inf")
	require.NoError(t, err)
	require.True(t, math.IsInf(float64(v), 1))

	_, err = ParseValue("one")
	require.Error(t, err)
}
