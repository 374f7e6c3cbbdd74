// Package lox is the high-level entry point to the lox scanner and virtual
// machine.
//
// Interpret runs the front end over source text. Until a compiler exists
// it echoes the token stream and reports the first scanner error:
//
//	err := lox.Interpret(ctx, "1 + 2")
//
// Execute runs an already built chunk, for example one produced by the asm
// package:
//
//	value, err := lox.Execute(ctx, chunk, lox.WithOutput(&buf))
package lox

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/lexer"
	"github.com/deepnoodle-ai/lox/token"
	"github.com/deepnoodle-ai/lox/vm"
)

// Interpret scans source and writes one line per token to the configured
// output: the line number (or "   | " when unchanged) followed by the
// token kind and lexeme. It stops after the EOF token, or returns a
// compile error at the first Error token.
func Interpret(ctx context.Context, source string, opts ...Option) error {
	o := collectOptions(opts...)
	l := lexer.New(source)
	line := 0
	for tok := range l.Tokens() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := echoToken(o.output, tok, &line); err != nil {
			return err
		}
		if tok.Kind == token.Error {
			return errz.NewStructuredError(errz.ErrCompile, tok.Lexeme, tok.Line)
		}
	}
	return nil
}

func echoToken(w io.Writer, tok token.Token, line *int) error {
	prefix := "   | "
	if tok.Line != *line {
		prefix = fmt.Sprintf("%4d ", tok.Line)
		*line = tok.Line
	}
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, tok)
	return err
}

// InterpretFile reads the file at path and interprets its contents.
func InterpretFile(ctx context.Context, path string, opts ...Option) error {
	source, err := ReadFile(path)
	if err != nil {
		return err
	}
	return Interpret(ctx, source, opts...)
}

// ReadFile returns the contents of the file at path. A file that cannot be
// read is reported as a compile error.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errz.NewStructuredError(errz.ErrCompile, "Could not read file.", 0).WithCause(err)
	}
	return string(data), nil
}

// Tokenize scans the whole source. The returned tokens end with EOF and
// include any Error tokens in place; the error describes the first of
// them.
func Tokenize(source string) ([]token.Token, error) {
	tokens := lexer.Tokenize(source)
	for _, tok := range tokens {
		if tok.Kind == token.Error {
			return tokens, errz.NewStructuredError(errz.ErrCompile, tok.Lexeme, tok.Line)
		}
	}
	return tokens, nil
}

// Check scans the whole source and reports every scanner error.
func Check(source string) error {
	return lexer.Check(source)
}

// Execute runs chunk on a new virtual machine. OP_RETURN prints the result
// to the configured output, and the same value is returned.
func Execute(ctx context.Context, chunk *bytecode.Chunk, opts ...Option) (bytecode.Value, error) {
	o := collectOptions(opts...)
	return vm.Run(ctx, chunk, o.vmOpts()...)
}
