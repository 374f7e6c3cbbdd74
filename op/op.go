// Package op defines opcodes used by the lox virtual machine.
package op

import (
	"errors"
	"fmt"
)

// Code is a single-byte opcode that indicates an operation to execute.
type Code byte

const (
	Constant Code = 0
	Add      Code = 1
	Subtract Code = 2
	Multiply Code = 3
	Divide   Code = 4
	Negate   Code = 5
	Return   Code = 6
)

// ErrInvalid is returned by Decode for bytes that are not opcodes.
var ErrInvalid = errors.New("invalid opcode")

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	ShortName    string
	OperandCount int
}

var (
	infos  = make([]Info, 256)
	byName = map[string]Code{}
)

func init() {
	type opInfo struct {
		op    Code
		name  string
		short string
		count int
	}
	ops := []opInfo{
		{Constant, "OP_CONSTANT", "constant", 1},
		{Add, "OP_ADD", "add", 0},
		{Subtract, "OP_SUBTRACT", "subtract", 0},
		{Multiply, "OP_MULTIPLY", "multiply", 0},
		{Divide, "OP_DIVIDE", "divide", 0},
		{Negate, "OP_NEGATE", "negate", 0},
		{Return, "OP_RETURN", "return", 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:         o.op,
			Name:         o.name,
			ShortName:    o.short,
			OperandCount: o.count,
		}
		byName[o.name] = o.op
		byName[o.short] = o.op
	}
}

// GetInfo returns information about the given opcode. The zero Info is
// returned for bytes that do not name an opcode.
func GetInfo(op Code) Info {
	return infos[op]
}

// Decode converts a raw byte from an instruction stream into an opcode.
// Every byte value is handled: unknown bytes produce an error wrapping
// ErrInvalid rather than an unchecked conversion.
func Decode(b byte) (Code, error) {
	if infos[b].Name == "" {
		return 0, fmt.Errorf("%w: %d", ErrInvalid, b)
	}
	return Code(b), nil
}

// Lookup finds an opcode by its mnemonic ("OP_ADD") or short name ("add").
func Lookup(name string) (Code, bool) {
	code, ok := byName[name]
	return code, ok
}

// String returns the mnemonic of the opcode, e.g. "OP_CONSTANT".
func (c Code) String() string {
	if name := infos[c].Name; name != "" {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(c))
}

// Size returns the encoded size of the instruction in bytes, including
// its operands.
func (c Code) Size() int {
	return 1 + infos[c].OperandCount
}
