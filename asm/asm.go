// Package asm builds chunks from a line-oriented text form, so bytecode
// can be written and run without a compiler.
//
// Each line holds at most one instruction:
//
//	; comment
//	123: OP_CONSTANT 1.2   ; adds 1.2 to the pool and emits its index
//	     negate            ; short names work too
//	124: constant #0       ; reuse pool index 0
//	     .const 7          ; add a constant without emitting code
//	     .byte 200         ; emit a raw byte
//	125: return
//
// A "N:" prefix sets the source line recorded for that instruction and
// every instruction after it. Before the first prefix the line is 1.
package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/op"
)

// ErrSyntax is wrapped by every error about malformed assembly text.
var ErrSyntax = errors.New("syntax error")

type parser struct {
	l     int    // assembly line number
	s     string // assembly line, comment stripped
	line  int    // source line recorded in the chunk
	chunk *bytecode.Chunk
}

// Assemble reads assembly text from r and returns the chunk it describes.
// Errors carry the assembly line number.
func Assemble(r io.Reader) (*bytecode.Chunk, error) {
	p := &parser{line: 1, chunk: bytecode.NewChunk()}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.l++
		p.s = scanner.Text()
		if i := strings.IndexByte(p.s, ';'); i >= 0 {
			p.s = p.s[:i]
		}
		if err := p.doLine(); err != nil {
			return nil, errz.Wrap(errz.ErrCompile, p.l, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.chunk, nil
}

// AssembleString is Assemble for in-memory text.
func AssembleString(text string) (*bytecode.Chunk, error) {
	return Assemble(strings.NewReader(text))
}

func (p *parser) doLine() error {
	f := strings.Fields(p.s)
	if len(f) == 0 {
		return nil
	}
	if label, ok := strings.CutSuffix(f[0], ":"); ok {
		n, err := strconv.Atoi(label)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: bad line number %q", ErrSyntax, label)
		}
		p.line = n
		f = f[1:]
		if len(f) == 0 {
			return nil
		}
	}
	switch f[0] {
	case ".byte":
		if len(f) != 2 {
			return fmt.Errorf("%w: .byte takes one operand", ErrSyntax)
		}
		b, err := strconv.ParseUint(f[1], 0, 8)
		if err != nil {
			return fmt.Errorf("%w: bad byte %q", ErrSyntax, f[1])
		}
		p.chunk.Write(byte(b), p.line)
		return nil
	case ".const":
		if len(f) != 2 {
			return fmt.Errorf("%w: .const takes one operand", ErrSyntax)
		}
		v, err := bytecode.ParseValue(f[1])
		if err != nil {
			return fmt.Errorf("%w: bad number %q", ErrSyntax, f[1])
		}
		_, err = p.chunk.AddConstant(v)
		return err
	}
	code, ok := op.Lookup(f[0])
	if !ok {
		return fmt.Errorf("%w: unknown instruction %q", ErrSyntax, f[0])
	}
	if code == op.Constant {
		if len(f) != 2 {
			return fmt.Errorf("%w: %s takes one operand", ErrSyntax, code)
		}
		return p.constant(f[1])
	}
	if len(f) != 1 {
		return fmt.Errorf("%w: %s takes no operands", ErrSyntax, code)
	}
	p.chunk.WriteOp(code, p.line)
	return nil
}

func (p *parser) constant(operand string) error {
	if index, ok := strings.CutPrefix(operand, "#"); ok {
		n, err := strconv.Atoi(index)
		if err != nil || n < 0 || n >= p.chunk.ConstantCount() {
			return fmt.Errorf("%w: %q is not a constant index", ErrSyntax, operand)
		}
		p.chunk.WriteOp(op.Constant, p.line)
		p.chunk.Write(byte(n), p.line)
		return nil
	}
	v, err := bytecode.ParseValue(operand)
	if err != nil {
		return fmt.Errorf("%w: bad number %q", ErrSyntax, operand)
	}
	n, err := p.chunk.AddConstant(v)
	if err != nil {
		return err
	}
	p.chunk.WriteOp(op.Constant, p.line)
	p.chunk.Write(byte(n), p.line)
	return nil
}

// Format renders a chunk as assembly text that Assemble reads back into an
// identical chunk. Constants are emitted with .const so pool order and
// indexes survive the round trip.
func Format(chunk *bytecode.Chunk) (string, error) {
	var sb strings.Builder
	for _, v := range chunk.Constants() {
		fmt.Fprintf(&sb, ".const %s\n", strconv.FormatFloat(float64(v), 'g', -1, 64))
	}
	line := -1
	iter := bytecode.NewInstructionIter(chunk)
	for {
		instr, ok := iter.Next()
		if !ok {
			break
		}
		prefix := "     "
		if l := chunk.LineAt(instr.Offset); l != line {
			line = l
			prefix = fmt.Sprintf("%d: ", l)
		}
		sb.WriteString(prefix)
		sb.WriteString(op.GetInfo(instr.Op).Name)
		if instr.Op == op.Constant {
			fmt.Fprintf(&sb, " #%d", instr.Operands[0])
		}
		sb.WriteByte('\n')
	}
	if err := iter.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
