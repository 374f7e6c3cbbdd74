// Package errz defines the error types reported by the lox scanner, chunk
// builder and virtual machine.
package errz

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrCompile indicates an error raised before execution: a scanner
	// error token, unreadable input, or a chunk that cannot be built.
	ErrCompile ErrorKind = iota
	// ErrRuntime indicates an error raised while the VM executes a chunk.
	ErrRuntime
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrCompile:
		return "compile error"
	case ErrRuntime:
		return "runtime error"
	default:
		return "error"
	}
}

var (
	ErrStackOverflow    = errors.New("stack overflow")
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrInvalidOpcode    = errors.New("invalid opcode")
	ErrConstantIndex    = errors.New("constant index out of range")
	ErrTooManyConstants = errors.New("too many constants in one chunk")
	ErrUnexpectedEnd    = errors.New("unexpected end of bytecode")
)

// StructuredError is the error type returned by every stage of the
// pipeline. Line is the 1-based source line, or 0 when unknown.
type StructuredError struct {
	Message string
	Kind    ErrorKind
	Line    int
	Cause   error
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
	}
	return fmt.Sprintf("%s: %s (line %d)", e.Kind.String(), e.Message, e.Line)
}

// Unwrap returns the underlying cause of the error.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// FriendlyErrorMessage returns the message without the kind prefix,
// preceded by "[line N] " when the line is known.
func (e *StructuredError) FriendlyErrorMessage() string {
	var msg bytes.Buffer
	if e.Line > 0 {
		msg.WriteString(fmt.Sprintf("[line %d] ", e.Line))
	}
	msg.WriteString(e.Message)
	return msg.String()
}

// WithCause wraps the error with a cause.
func (e *StructuredError) WithCause(cause error) *StructuredError {
	e.Cause = cause
	return e
}

// NewStructuredError creates a new StructuredError with the given parameters.
func NewStructuredError(kind ErrorKind, message string, line int) *StructuredError {
	return &StructuredError{
		Message: message,
		Kind:    kind,
		Line:    line,
	}
}

// Compilef creates a compile error with a formatted message.
func Compilef(line int, format string, args ...any) *StructuredError {
	return NewStructuredError(ErrCompile, fmt.Sprintf(format, args...), line)
}

// Runtimef creates a runtime error with a formatted message.
func Runtimef(line int, format string, args ...any) *StructuredError {
	return NewStructuredError(ErrRuntime, fmt.Sprintf(format, args...), line)
}

// Wrap creates an error of the given kind whose message and cause come from
// err. If err is already a StructuredError it is returned unchanged.
func Wrap(kind ErrorKind, line int, err error) *StructuredError {
	if err == nil {
		return nil
	}
	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}
	return NewStructuredError(kind, err.Error(), line).WithCause(err)
}

// KindOf reports the kind of err and whether err is a StructuredError.
func KindOf(err error) (ErrorKind, bool) {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
