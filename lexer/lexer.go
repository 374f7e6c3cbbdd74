// Package lexer converts source text into a stream of tokens.
package lexer

import (
	"fmt"
	"iter"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/token"
)

// Lexer scans one source buffer. Non-ASCII bytes are dropped before
// scanning begins.
type Lexer struct {
	source  string
	start   int // offset of the first byte of the token being scanned
	current int // offset of the next unread byte
	line    int // current line (1-based)
}

// New returns a lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{
		source: filterASCII(input),
		line:   1,
	}
}

func filterASCII(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r < 0x80 {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// Source returns the filtered text being scanned.
func (l *Lexer) Source() string {
	return l.source
}

// Next scans and returns the next token. Once the input is exhausted every
// call returns an EOF token.
func (l *Lexer) Next() token.Token {
	l.skipWhitespace()
	l.start = l.current

	if l.atEnd() {
		return l.makeToken(token.EOF)
	}

	c := l.advance()
	if isAlpha(c) {
		return l.identifier()
	}
	if isDigit(c) {
		return l.number()
	}

	switch c {
	case '(':
		return l.makeToken(token.LeftParen)
	case ')':
		return l.makeToken(token.RightParen)
	case '{':
		return l.makeToken(token.LeftBrace)
	case '}':
		return l.makeToken(token.RightBrace)
	case ';':
		return l.makeToken(token.Semicolon)
	case ',':
		return l.makeToken(token.Comma)
	case '.':
		return l.makeToken(token.Dot)
	case '-':
		return l.makeToken(token.Minus)
	case '+':
		return l.makeToken(token.Plus)
	case '/':
		return l.makeToken(token.Slash)
	case '*':
		return l.makeToken(token.Star)
	case '!':
		return l.makeToken(l.either('=', token.BangEqual, token.Bang))
	case '=':
		return l.makeToken(l.either('=', token.EqualEqual, token.Equal))
	case '<':
		return l.makeToken(l.either('=', token.LessEqual, token.Less))
	case '>':
		return l.makeToken(l.either('=', token.GreaterEqual, token.Greater))
	case '"':
		return l.string()
	}
	return l.errorToken(fmt.Sprintf("Unexpected character: '%c'", c))
}

// Tokens yields tokens up to and including the first EOF token.
func (l *Lexer) Tokens() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := l.Next()
			if !yield(tok) || tok.Kind == token.EOF {
				return
			}
		}
	}
}

// Tokenize scans the whole input and returns every token, ending with EOF.
// Error tokens are included in place.
func Tokenize(input string) []token.Token {
	var tokens []token.Token
	for tok := range New(input).Tokens() {
		tokens = append(tokens, tok)
	}
	return tokens
}

// Check scans the whole input and returns one compile error per Error
// token, combined into a *multierror.Error. It returns nil when the input
// scans cleanly.
func Check(input string) error {
	var result *multierror.Error
	for tok := range New(input).Tokens() {
		if tok.Kind == token.Error {
			result = multierror.Append(result, errz.NewStructuredError(errz.ErrCompile, tok.Lexeme, tok.Line))
		}
	}
	return result.ErrorOrNil()
}

func (l *Lexer) atEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) advance() byte {
	l.current++
	return l.source[l.current-1]
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

// either consumes expected if it is next and returns matched, otherwise it
// returns single.
func (l *Lexer) either(expected byte, matched, single token.Kind) token.Kind {
	if l.atEnd() || l.source[l.current] != expected {
		return single
	}
	l.current++
	return matched
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.peek() {
		case ' ', '\r', '\t':
			l.advance()
		case '\n':
			l.line++
			l.advance()
		case '/':
			if l.peekNext() != '/' {
				return
			}
			for l.peek() != '\n' && !l.atEnd() {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) string() token.Token {
	line := l.line
	for l.peek() != '"' && !l.atEnd() {
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}
	if l.atEnd() {
		tok := l.errorToken("Unterminated string.")
		tok.Line = line
		return tok
	}
	// Closing quote
	l.advance()
	return token.Token{
		Kind:   token.String,
		Lexeme: l.source[l.start:l.current],
		Line:   line,
	}
}

func (l *Lexer) number() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	// A trailing dot without a digit after it is not part of the number
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.makeToken(token.Number)
}

func (l *Lexer) identifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	return l.makeToken(l.identifierKind())
}

// identifierKind walks the keyword trie by hand, falling back to
// Identifier on any mismatch.
func (l *Lexer) identifierKind() token.Kind {
	switch l.source[l.start] {
	case 'a':
		return l.checkKeyword(1, "nd", token.And)
	case 'c':
		return l.checkKeyword(1, "lass", token.Class)
	case 'e':
		return l.checkKeyword(1, "lse", token.Else)
	case 'f':
		if l.current-l.start > 1 {
			switch l.source[l.start+1] {
			case 'a':
				return l.checkKeyword(2, "lse", token.False)
			case 'o':
				return l.checkKeyword(2, "r", token.For)
			case 'u':
				return l.checkKeyword(2, "n", token.Fun)
			}
		}
	case 'i':
		return l.checkKeyword(1, "f", token.If)
	case 'n':
		return l.checkKeyword(1, "il", token.Nil)
	case 'o':
		return l.checkKeyword(1, "r", token.Or)
	case 'p':
		return l.checkKeyword(1, "rint", token.Print)
	case 'r':
		return l.checkKeyword(1, "eturn", token.Return)
	case 's':
		return l.checkKeyword(1, "uper", token.Super)
	case 't':
		if l.current-l.start > 1 {
			switch l.source[l.start+1] {
			case 'h':
				return l.checkKeyword(2, "is", token.This)
			case 'r':
				return l.checkKeyword(2, "ue", token.True)
			}
		}
	case 'v':
		return l.checkKeyword(1, "ar", token.Var)
	case 'w':
		return l.checkKeyword(1, "hile", token.While)
	}
	return token.Identifier
}

func (l *Lexer) checkKeyword(offset int, rest string, kind token.Kind) token.Kind {
	if l.source[l.start+offset:l.current] == rest {
		return kind
	}
	return token.Identifier
}

func (l *Lexer) makeToken(kind token.Kind) token.Token {
	return token.Token{
		Kind:   kind,
		Lexeme: l.source[l.start:l.current],
		Line:   l.line,
	}
}

func (l *Lexer) errorToken(message string) token.Token {
	return token.Token{
		Kind:   token.Error,
		Lexeme: message,
		Line:   l.line,
	}
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
