package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/op"
)

// MaxConstants is the number of constants addressable by a one-byte operand.
const MaxConstants = 256

// Chunk is a growable container of bytecode, per-byte source lines and a
// constant pool.
type Chunk struct {
	code      []byte
	lines     []int
	constants []Value
}

// NewChunk creates a new empty chunk.
func NewChunk() *Chunk {
	return &Chunk{
		code:  make([]byte, 0, 64),
		lines: make([]int, 0, 64),
	}
}

// Write appends one byte and the source line that produced it.
func (c *Chunk) Write(b byte, line int) {
	c.code = append(c.code, b)
	c.lines = append(c.lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(code op.Code, line int) {
	c.Write(byte(code), line)
}

// AddConstant appends a value to the constant pool and returns its index.
// Values are not deduplicated. Once the pool holds MaxConstants values an
// error wrapping errz.ErrTooManyConstants is returned.
func (c *Chunk) AddConstant(value Value) (int, error) {
	if len(c.constants) >= MaxConstants {
		return 0, fmt.Errorf("%w (limit %d)", errz.ErrTooManyConstants, MaxConstants)
	}
	c.constants = append(c.constants, value)
	return len(c.constants) - 1, nil
}

// WriteConstant adds value to the pool and emits OP_CONSTANT with its index.
func (c *Chunk) WriteConstant(value Value, line int) error {
	idx, err := c.AddConstant(value)
	if err != nil {
		return errz.Wrap(errz.ErrCompile, line, err)
	}
	c.WriteOp(op.Constant, line)
	c.Write(byte(idx), line)
	return nil
}

// Len returns the number of bytes in the code section.
func (c *Chunk) Len() int {
	return len(c.code)
}

// ByteAt returns the code byte at the given offset.
func (c *Chunk) ByteAt(offset int) byte {
	return c.code[offset]
}

// LineAt returns the source line of the byte at the given offset, or 0
// when the offset is out of range.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.lines) {
		return 0
	}
	return c.lines[offset]
}

// ConstantCount returns the number of constants.
func (c *Chunk) ConstantCount() int {
	return len(c.constants)
}

// ConstantAt returns the constant at the given index.
func (c *Chunk) ConstantAt(index int) Value {
	return c.constants[index]
}

// Constant returns the constant at the given index, reporting whether the
// index is inside the pool.
func (c *Chunk) Constant(index int) (Value, bool) {
	if index < 0 || index >= len(c.constants) {
		return 0, false
	}
	return c.constants[index], true
}

// Code returns a copy of the code section.
func (c *Chunk) Code() []byte {
	return copyBytes(c.code)
}

// Lines returns a copy of the line table.
func (c *Chunk) Lines() []int {
	return copyInts(c.lines)
}

// Constants returns a copy of the constant pool.
func (c *Chunk) Constants() []Value {
	return copyValues(c.constants)
}

// Validate checks the chunk invariants: the line table matches the code,
// the constant pool fits the operand width, and every instruction decodes
// with its operands present and in range.
func (c *Chunk) Validate() error {
	if len(c.code) != len(c.lines) {
		return errz.Compilef(0, "chunk has %d code bytes but %d line entries", len(c.code), len(c.lines))
	}
	if len(c.constants) > MaxConstants {
		return errz.Wrap(errz.ErrCompile, 0, fmt.Errorf("%w: %d constants", errz.ErrTooManyConstants, len(c.constants)))
	}
	iter := NewInstructionIter(c)
	for {
		if _, ok := iter.Next(); !ok {
			break
		}
	}
	return iter.Err()
}

// Stats returns statistics about this chunk.
func (c *Chunk) Stats() Stats {
	stats := Stats{
		ByteCount:     len(c.code),
		ConstantCount: len(c.constants),
	}
	seen := map[int]bool{}
	for _, line := range c.lines {
		seen[line] = true
	}
	stats.LineCount = len(seen)
	iter := NewInstructionIter(c)
	for {
		if _, ok := iter.Next(); !ok {
			break
		}
		stats.InstructionCount++
	}
	return stats
}

// newChunk builds a chunk from already validated parts, copying them.
func newChunk(code []byte, lines []int, constants []Value) *Chunk {
	return &Chunk{
		code:      copyBytes(code),
		lines:     copyInts(lines),
		constants: copyValues(constants),
	}
}
