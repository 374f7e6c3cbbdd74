package lexer

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/token"
)

type expectedToken struct {
	kind   token.Kind
	lexeme string
	line   int
}

func requireTokens(t *testing.T, input string, expected []expectedToken) {
	t.Helper()
	l := New(input)
	for i, tt := range expected {
		tok := l.Next()
		require.Equal(t, tt.kind, tok.Kind, "tests[%d] kind", i)
		require.Equal(t, tt.lexeme, tok.Lexeme, "tests[%d] lexeme", i)
		if tt.line != 0 {
			require.Equal(t, tt.line, tok.Line, "tests[%d] line", i)
		}
	}
}

func TestPunctuation(t *testing.T) {
	requireTokens(t, "(){};,.-+/*", []expectedToken{
		{token.LeftParen, "(", 1},
		{token.RightParen, ")", 1},
		{token.LeftBrace, "{", 1},
		{token.RightBrace, "}", 1},
		{token.Semicolon, ";", 1},
		{token.Comma, ",", 1},
		{token.Dot, ".", 1},
		{token.Minus, "-", 1},
		{token.Plus, "+", 1},
		{token.Slash, "/", 1},
		{token.Star, "*", 1},
		{token.EOF, "", 1},
	})
}

func TestOneOrTwoCharacterOperators(t *testing.T) {
	requireTokens(t, "! != = == < <= > >=", []expectedToken{
		{token.Bang, "!", 1},
		{token.BangEqual, "!=", 1},
		{token.Equal, "=", 1},
		{token.EqualEqual, "==", 1},
		{token.Less, "<", 1},
		{token.LessEqual, "<=", 1},
		{token.Greater, ">", 1},
		{token.GreaterEqual, ">=", 1},
		{token.EOF, "", 1},
	})
}

func TestKeywords(t *testing.T) {
	for word, kind := range token.Keywords {
		tokens := Tokenize(word)
		require.Len(t, tokens, 2, word)
		require.Equal(t, kind, tokens[0].Kind, word)
		require.Equal(t, word, tokens[0].Lexeme)
		require.Equal(t, token.EOF, tokens[1].Kind)
	}
}

func TestKeywordPrefixesAreIdentifiers(t *testing.T) {
	words := []string{
		"android", "forest", "f", "t", "fo", "th", "tr", "iff", "classy",
		"an", "nill", "orb", "printer", "returned", "superb", "thisx",
		"truest", "variable", "whiles", "elsewhere", "fund", "falsey", "x",
		"AND", "For",
	}
	for _, word := range words {
		tokens := Tokenize(word)
		require.Equal(t, token.Identifier, tokens[0].Kind, word)
		require.Equal(t, word, tokens[0].Lexeme)
	}
}

func TestIdentifiers(t *testing.T) {
	requireTokens(t, "abc x1 Y2z", []expectedToken{
		{token.Identifier, "abc", 1},
		{token.Identifier, "x1", 1},
		{token.Identifier, "Y2z", 1},
		{token.EOF, "", 1},
	})
}

func TestNumbers(t *testing.T) {
	requireTokens(t, "123.45", []expectedToken{
		{token.Number, "123.45", 1},
		{token.EOF, "", 1},
	})
	requireTokens(t, "123.", []expectedToken{
		{token.Number, "123", 1},
		{token.Dot, ".", 1},
		{token.EOF, "", 1},
	})
	requireTokens(t, "1.2.3", []expectedToken{
		{token.Number, "1.2", 1},
		{token.Dot, ".", 1},
		{token.Number, "3", 1},
	})
	requireTokens(t, ".5", []expectedToken{
		{token.Dot, ".", 1},
		{token.Number, "5", 1},
	})
}

func TestStrings(t *testing.T) {
	requireTokens(t, `"hello" "a b"`, []expectedToken{
		{token.String, `"hello"`, 1},
		{token.String, `"a b"`, 1},
		{token.EOF, "", 1},
	})
}

func TestMultiLineString(t *testing.T) {
	requireTokens(t, "\"one\ntwo\" x", []expectedToken{
		{token.String, "\"one\ntwo\"", 1},
		{token.Identifier, "x", 2},
		{token.EOF, "", 2},
	})
}

func TestUnterminatedString(t *testing.T) {
	tokens := Tokenize(`"abc`)
	require.Len(t, tokens, 2)
	require.Equal(t, token.Error, tokens[0].Kind)
	require.Equal(t, "Unterminated string.", tokens[0].Lexeme)
	require.Equal(t, token.EOF, tokens[1].Kind)

	// Reported on the line of the opening quote
	requireTokens(t, "1\n\"abc\ndef\n", []expectedToken{
		{token.Number, "1", 1},
		{token.Error, "Unterminated string.", 2},
		{token.EOF, "", 4},
	})
}

func TestUnexpectedCharacter(t *testing.T) {
	requireTokens(t, "1 @ 2", []expectedToken{
		{token.Number, "1", 1},
		{token.Error, "Unexpected character: '@'", 1},
		{token.Number, "2", 1},
		{token.EOF, "", 1},
	})
}

func TestCommentsAndLines(t *testing.T) {
	input := `// leading comment
var a = 1; // trailing
	// indented

print a;`
	requireTokens(t, input, []expectedToken{
		{token.Var, "var", 2},
		{token.Identifier, "a", 2},
		{token.Equal, "=", 2},
		{token.Number, "1", 2},
		{token.Semicolon, ";", 2},
		{token.Print, "print", 5},
		{token.Identifier, "a", 5},
		{token.Semicolon, ";", 5},
		{token.EOF, "", 5},
	})
}

func TestCommentAtEndOfInput(t *testing.T) {
	requireTokens(t, "1 // no newline", []expectedToken{
		{token.Number, "1", 1},
		{token.EOF, "", 1},
	})
}

func TestNonASCIIDropped(t *testing.T) {
	l := New("café \"naïve\"")
	require.Equal(t, "caf \"nave\"", l.Source())
	requireTokens(t, "café", []expectedToken{
		{token.Identifier, "caf", 1},
		{token.EOF, "", 1},
	})
}

func TestEOFRepeats(t *testing.T) {
	l := New("x")
	require.Equal(t, token.Identifier, l.Next().Kind)
	for i := 0; i < 3; i++ {
		tok := l.Next()
		require.Equal(t, token.EOF, tok.Kind)
		require.Equal(t, "", tok.Lexeme)
	}
}

func TestEmptyInput(t *testing.T) {
	tokens := Tokenize("")
	require.Equal(t, []token.Token{{Kind: token.EOF, Line: 1}}, tokens)
}

func TestTokensStopsEarly(t *testing.T) {
	count := 0
	for range New("a b c d").Tokens() {
		count++
		if count == 2 {
			break
		}
	}
	require.Equal(t, 2, count)
}

func TestCheck(t *testing.T) {
	require.NoError(t, Check("var x = 1 + 2;"))

	err := Check("@\n#\n\"open")
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 3)

	var se *errz.StructuredError
	require.True(t, errors.As(merr.Errors[0], &se))
	require.Equal(t, errz.ErrCompile, se.Kind)
	require.Equal(t, "Unexpected character: '@'", se.Message)
	require.Equal(t, 1, se.Line)

	require.True(t, errors.As(merr.Errors[1], &se))
	require.Equal(t, 2, se.Line)

	require.True(t, errors.As(merr.Errors[2], &se))
	require.Equal(t, "Unterminated string.", se.Message)
	require.Equal(t, 3, se.Line)
}
