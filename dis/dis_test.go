package dis

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/op"
)

func testChunk(t *testing.T) *bytecode.Chunk {
	t.Helper()
	c := bytecode.NewChunk()
	require.NoError(t, c.WriteConstant(1.2, 123))
	c.WriteOp(op.Negate, 123)
	require.NoError(t, c.WriteConstant(3.4, 124))
	c.WriteOp(op.Multiply, 124)
	c.WriteOp(op.Return, 125)
	return c
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, testChunk(t), "test chunk"))
	expected := strings.TrimLeft(`
== test chunk ==
0000  123 OP_CONSTANT         0 '1.200000'
0002    | OP_NEGATE
0003  124 OP_CONSTANT         1 '3.400000'
0005    | OP_MULTIPLY
0006  125 OP_RETURN
`, "\n")
	require.Equal(t, expected, buf.String())
}

func TestPrintEmptyChunk(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, bytecode.NewChunk(), "empty"))
	require.Equal(t, "== empty ==\n", buf.String())
}

func TestPrintInstructionReturnsNextOffset(t *testing.T) {
	c := testChunk(t)
	var buf bytes.Buffer
	next, err := PrintInstruction(&buf, c, 0)
	require.NoError(t, err)
	require.Equal(t, 2, next)
	require.Equal(t, "0000  123 OP_CONSTANT         0 '1.200000'\n", buf.String())

	buf.Reset()
	next, err = PrintInstruction(&buf, c, 2)
	require.NoError(t, err)
	require.Equal(t, 3, next)
	require.Equal(t, "0002    | OP_NEGATE\n", buf.String())
}

func TestPrintFailsOnUnknownOpcode(t *testing.T) {
	c := bytecode.NewChunk()
	c.WriteOp(op.Negate, 1)
	c.Write(42, 1)
	var buf bytes.Buffer
	err := Print(&buf, c, "bad")
	require.True(t, errors.Is(err, errz.ErrInvalidOpcode))
	require.Equal(t, "== bad ==\n0000    1 OP_NEGATE\n", buf.String())
}

func TestPrintWithColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, testChunk(t), "c", WithColor(true)))
	require.Contains(t, buf.String(), "\x1b[")
	require.Contains(t, buf.String(), "OP_NEGATE")

	buf.Reset()
	require.NoError(t, Print(&buf, testChunk(t), "c", WithColor(false)))
	require.NotContains(t, buf.String(), "\x1b[")
}

func TestDisassemble(t *testing.T) {
	instructions, err := Disassemble(testChunk(t))
	require.NoError(t, err)
	require.Len(t, instructions, 5)

	first := instructions[0]
	require.Equal(t, 0, first.Offset)
	require.Equal(t, 123, first.Line)
	require.Equal(t, "OP_CONSTANT", first.Name)
	require.Equal(t, []int{0}, first.Operands)
	require.NotNil(t, first.Constant)
	require.Equal(t, "1.200000", *first.Constant)

	last := instructions[4]
	require.Equal(t, 6, last.Offset)
	require.Equal(t, op.Return, last.Opcode)
	require.Nil(t, last.Operands)
	require.Nil(t, last.Constant)
}

func TestDisassembleDanglingConstant(t *testing.T) {
	c := bytecode.NewChunk()
	c.WriteOp(op.Constant, 7)
	c.Write(0, 7)
	_, err := Disassemble(c)
	require.True(t, errors.Is(err, errz.ErrConstantIndex))
}
