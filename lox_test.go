package lox

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/lox/asm"
	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/token"
	"github.com/deepnoodle-ai/lox/vm"
)

func TestInterpretEchoesTokens(t *testing.T) {
	var out bytes.Buffer
	err := Interpret(context.Background(), "var x = 1.5;\nprint x;", WithOutput(&out))
	require.NoError(t, err)
	expected := strings.Join([]string{
		"   1 Var 'var'",
		"   | Identifier 'x'",
		"   | Equal '='",
		"   | Number '1.5'",
		"   | Semicolon ';'",
		"   2 Print 'print'",
		"   | Identifier 'x'",
		"   | Semicolon ';'",
		"   | Eof ''",
		"",
	}, "\n")
	require.Equal(t, expected, out.String())
}

func TestInterpretEmptySource(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Interpret(context.Background(), "", WithOutput(&out)))
	require.Equal(t, "   1 Eof ''\n", out.String())
}

func TestInterpretStopsAtFirstError(t *testing.T) {
	var out bytes.Buffer
	err := Interpret(context.Background(), "1 @ 2 #", WithOutput(&out))
	require.Error(t, err)

	var se *errz.StructuredError
	require.True(t, errors.As(err, &se))
	require.Equal(t, errz.ErrCompile, se.Kind)
	require.Equal(t, "Unexpected character: '@'", se.Message)
	require.Equal(t, 1, se.Line)
	require.Equal(t, "   1 Number '1'\n   | Error 'Unexpected character: '@''\n", out.String())
}

func TestInterpretUnterminatedString(t *testing.T) {
	var out bytes.Buffer
	err := Interpret(context.Background(), `"abc`, WithOutput(&out))
	var se *errz.StructuredError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "Unterminated string.", se.Message)
}

func TestInterpretCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := Interpret(ctx, "1 + 2", WithOutput(&out))
	require.True(t, errors.Is(err, context.Canceled))
	require.Empty(t, out.String())
}

func TestInterpretFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.lox")
	require.NoError(t, os.WriteFile(path, []byte("nil"), 0o644))
	var out bytes.Buffer
	require.NoError(t, InterpretFile(context.Background(), path, WithOutput(&out)))
	require.Equal(t, "   1 Nil 'nil'\n   | Eof ''\n", out.String())
}

func TestInterpretMissingFile(t *testing.T) {
	err := InterpretFile(context.Background(), filepath.Join(t.TempDir(), "nope.lox"))
	var se *errz.StructuredError
	require.True(t, errors.As(err, &se))
	require.Equal(t, errz.ErrCompile, se.Kind)
	require.Equal(t, "Could not read file.", se.Message)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize("a >= 2")
	require.NoError(t, err)
	require.Equal(t, []token.Token{
		{Kind: token.Identifier, Lexeme: "a", Line: 1},
		{Kind: token.GreaterEqual, Lexeme: ">=", Line: 1},
		{Kind: token.Number, Lexeme: "2", Line: 1},
		{Kind: token.EOF, Lexeme: "", Line: 1},
	}, tokens)

	tokens, err = Tokenize("a\n@")
	require.Error(t, err)
	require.Len(t, tokens, 3)
	require.Equal(t, token.Error, tokens[1].Kind)
}

func TestCheck(t *testing.T) {
	require.NoError(t, Check("print 1;"))
	err := Check("@ $")
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 2)
}

func TestExecute(t *testing.T) {
	chunk, err := asm.AssembleString(`
1: constant 5
   constant 2
   subtract
   return
`)
	require.NoError(t, err)

	var out bytes.Buffer
	value, err := Execute(context.Background(), chunk, WithOutput(&out))
	require.NoError(t, err)
	require.Equal(t, bytecode.Value(3), value)
	require.Equal(t, "3.000000\n", out.String())
}

func TestExecuteOptions(t *testing.T) {
	chunk, err := asm.AssembleString("constant 1\nconstant 2\nadd\nreturn\n")
	require.NoError(t, err)

	var out, trace bytes.Buffer
	observer := &countingObserver{}
	_, err = Execute(context.Background(), chunk,
		WithOutput(&out),
		WithTrace(&trace),
		WithObserver(observer),
		WithContextCheckInterval(1))
	require.NoError(t, err)
	require.Equal(t, 4, observer.steps)
	require.Contains(t, trace.String(), "OP_ADD")

	_, err = Execute(context.Background(), chunk, WithOutput(&out), WithStackSize(1))
	require.True(t, errors.Is(err, errz.ErrStackOverflow))
}

type countingObserver struct {
	vm.NoOpObserver
	steps int
}

func (o *countingObserver) OnStep(vm.StepEvent) bool {
	o.steps++
	return true
}

func TestExampleChunks(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("examples", "chunks", "*.asm"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			first, _, _ := strings.Cut(string(data), "\n")
			expected, ok := strings.CutPrefix(first, "; expect: ")
			require.True(t, ok, "first line must hold the expected output")

			chunk, err := asm.Assemble(bytes.NewReader(data))
			require.NoError(t, err)
			var out bytes.Buffer
			_, err = Execute(context.Background(), chunk, WithOutput(&out))
			require.NoError(t, err)
			require.Equal(t, expected+"\n", out.String())
		})
	}
}
