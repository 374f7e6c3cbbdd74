package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/op"
)

// Instruction is one decoded instruction: its offset in the code section,
// its opcode and its raw operand bytes.
type Instruction struct {
	Offset   int
	Op       op.Code
	Operands []byte
}

// Size returns the encoded size of the instruction in bytes.
func (i Instruction) Size() int {
	return 1 + len(i.Operands)
}

// InstructionIter iterates over the instructions in a Chunk. Iteration stops
// at the end of the code or at the first byte that cannot be decoded, in
// which case Err reports why.
type InstructionIter struct {
	chunk *Chunk
	pos   int
	err   error
}

// NewInstructionIter creates a new instruction iterator for the given chunk.
func NewInstructionIter(chunk *Chunk) *InstructionIter {
	return &InstructionIter{chunk: chunk}
}

// Next returns the next instruction. Returns false when there are no more
// instructions or an error occurred.
func (i *InstructionIter) Next() (Instruction, bool) {
	if i.err != nil || i.pos >= i.chunk.Len() {
		return Instruction{}, false
	}
	instr, err := DecodeAt(i.chunk, i.pos)
	if err != nil {
		i.err = err
		return Instruction{}, false
	}
	i.pos += instr.Size()
	return instr, true
}

// Err returns the error that stopped iteration, if any.
func (i *InstructionIter) Err() error {
	return i.err
}

// All returns all instructions as a newly allocated slice.
func (i *InstructionIter) All() ([]Instruction, error) {
	var results []Instruction
	for {
		instr, ok := i.Next()
		if !ok {
			break
		}
		results = append(results, instr)
	}
	return results, i.Err()
}

// DecodeAt decodes the instruction starting at offset. It fails if the
// opcode byte is unknown, an operand is missing, or a constant operand does
// not index into the constant pool.
func DecodeAt(chunk *Chunk, offset int) (Instruction, error) {
	if offset < 0 || offset >= chunk.Len() {
		return Instruction{}, errz.Wrap(errz.ErrRuntime, 0,
			fmt.Errorf("%w: offset %d", errz.ErrUnexpectedEnd, offset))
	}
	line := chunk.LineAt(offset)
	code, err := op.Decode(chunk.ByteAt(offset))
	if err != nil {
		return Instruction{}, errz.Wrap(errz.ErrRuntime, line,
			fmt.Errorf("%w: byte %d at offset %04d", errz.ErrInvalidOpcode, chunk.ByteAt(offset), offset))
	}
	count := op.GetInfo(code).OperandCount
	if offset+count >= chunk.Len() && count > 0 {
		return Instruction{}, errz.Wrap(errz.ErrRuntime, line,
			fmt.Errorf("%w: %s at offset %04d is missing its operand", errz.ErrUnexpectedEnd, code, offset))
	}
	instr := Instruction{Offset: offset, Op: code}
	if count > 0 {
		instr.Operands = make([]byte, count)
		for j := 0; j < count; j++ {
			instr.Operands[j] = chunk.ByteAt(offset + 1 + j)
		}
	}
	if code == op.Constant {
		idx := int(instr.Operands[0])
		if idx >= chunk.ConstantCount() {
			return Instruction{}, errz.Wrap(errz.ErrRuntime, line,
				fmt.Errorf("%w: %d (pool has %d)", errz.ErrConstantIndex, idx, chunk.ConstantCount()))
		}
	}
	return instr, nil
}
