// Package dis supports analysis of lox bytecode by disassembling it.
// This works with the opcodes defined in the `op` package and uses the
// InstructionIter type from the `bytecode` package.
package dis

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/op"
)

// Instruction represents a single bytecode instruction and its operands.
type Instruction struct {
	Offset   int     `json:"offset"`
	Line     int     `json:"line"`
	Name     string  `json:"name"`
	Opcode   op.Code `json:"opcode"`
	Operands []int   `json:"operands,omitempty"`
	Constant *string `json:"constant,omitempty"`
}

// Disassemble returns a parsed representation of the given chunk. It fails
// on the first instruction that cannot be decoded.
func Disassemble(chunk *bytecode.Chunk) ([]Instruction, error) {
	var instructions []Instruction
	iter := bytecode.NewInstructionIter(chunk)
	for {
		instr, ok := iter.Next()
		if !ok {
			break
		}
		instructions = append(instructions, newInstruction(chunk, instr))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return instructions, nil
}

func newInstruction(chunk *bytecode.Chunk, instr bytecode.Instruction) Instruction {
	result := Instruction{
		Offset: instr.Offset,
		Line:   chunk.LineAt(instr.Offset),
		Name:   op.GetInfo(instr.Op).Name,
		Opcode: instr.Op,
	}
	for _, b := range instr.Operands {
		result.Operands = append(result.Operands, int(b))
	}
	if instr.Op == op.Constant {
		value := chunk.ConstantAt(int(instr.Operands[0])).String()
		result.Constant = &value
	}
	return result
}

// Option configures text output.
type Option func(*printer)

// WithColor enables or disables ANSI highlighting of offsets, mnemonics
// and constant values.
func WithColor(enabled bool) Option {
	return func(p *printer) {
		p.color = enabled
	}
}

type printer struct {
	color    bool
	offset   *color.Color
	mnemonic *color.Color
	value    *color.Color
}

func newPrinter(opts []Option) *printer {
	p := &printer{}
	for _, opt := range opts {
		opt(p)
	}
	p.offset = color.New(color.FgHiBlack)
	p.mnemonic = color.New(color.Bold)
	p.value = color.New(color.FgYellow)
	if p.color {
		p.offset.EnableColor()
		p.mnemonic.EnableColor()
		p.value.EnableColor()
	} else {
		p.offset.DisableColor()
		p.mnemonic.DisableColor()
		p.value.DisableColor()
	}
	return p
}

// Print writes a labeled dump of every instruction in the chunk:
//
//	== name ==
//	0000  123 OP_CONSTANT         0 '1.200000'
//	0002    | OP_NEGATE
//
// Printing stops with an error at the first byte that is not a valid
// instruction.
func Print(w io.Writer, chunk *bytecode.Chunk, name string, opts ...Option) error {
	p := newPrinter(opts)
	if _, err := fmt.Fprintf(w, "== %s ==\n", name); err != nil {
		return err
	}
	for offset := 0; offset < chunk.Len(); {
		next, err := p.instruction(w, chunk, offset)
		if err != nil {
			return err
		}
		offset = next
	}
	return nil
}

// PrintInstruction writes the single instruction at offset and returns the
// offset of the instruction that follows it.
func PrintInstruction(w io.Writer, chunk *bytecode.Chunk, offset int, opts ...Option) (int, error) {
	return newPrinter(opts).instruction(w, chunk, offset)
}

func (p *printer) instruction(w io.Writer, chunk *bytecode.Chunk, offset int) (int, error) {
	instr, err := bytecode.DecodeAt(chunk, offset)
	if err != nil {
		return offset, err
	}
	line := "   | "
	if offset == 0 || chunk.LineAt(offset) != chunk.LineAt(offset-1) {
		line = fmt.Sprintf("%4d ", chunk.LineAt(offset))
	}
	name := op.GetInfo(instr.Op).Name
	if instr.Op == op.Constant {
		idx := int(instr.Operands[0])
		_, err = fmt.Fprintf(w, "%s%s%s %4d '%s'\n",
			p.offset.Sprintf("%04d ", offset),
			line,
			p.mnemonic.Sprintf("%-16s", name),
			idx,
			p.value.Sprint(chunk.ConstantAt(idx).String()))
	} else {
		_, err = fmt.Fprintf(w, "%s%s%s\n",
			p.offset.Sprintf("%04d ", offset),
			line,
			p.mnemonic.Sprint(name))
	}
	if err != nil {
		return offset, err
	}
	return offset + instr.Size(), nil
}
