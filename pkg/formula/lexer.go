// Package formula parses and type-checks formula-mode expressions: a literal
// or data-pill base followed by a chain of allowlisted method calls.
package formula

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// TokenType represents the kind of token in a formula expression.
type TokenType int

const (
	tokenEOF TokenType = iota
	tokenIdent
	tokenString
	tokenNumber
	tokenDot
	tokenLParen
	tokenRParen
	tokenComma
)

func (t TokenType) String() string {
	switch t {
	case tokenEOF:
		return "end of formula"
	case tokenIdent:
		return "identifier"
	case tokenString:
		return "string"
	case tokenNumber:
		return "number"
	case tokenDot:
		return "'.'"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenComma:
		return "','"
	default:
		return "invalid token"
	}
}

// token is a lexical token with its raw text and position.
type token struct {
	Type   TokenType
	Lexeme string
	Pos    int
}

// Static error variables for linter compliance.
var (
	ErrSyntax = errors.New("formula syntax error")
)

// lexer scans a formula expression into tokens. String arguments accept both
// single and double quotes; quotes inside a string are escaped with a
// backslash.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && l.input[l.pos] == ' ' {
		l.pos++
	}

	if l.pos >= len(l.input) {
		return token{Type: tokenEOF, Pos: l.pos}, nil
	}

	start := l.pos
	ch := l.input[l.pos]

	switch {
	case ch == '.':
		l.pos++

		return token{Type: tokenDot, Lexeme: ".", Pos: start}, nil
	case ch == '(':
		l.pos++

		return token{Type: tokenLParen, Lexeme: "(", Pos: start}, nil
	case ch == ')':
		l.pos++

		return token{Type: tokenRParen, Lexeme: ")", Pos: start}, nil
	case ch == ',':
		l.pos++

		return token{Type: tokenComma, Lexeme: ",", Pos: start}, nil
	case ch == '\'' || ch == '"':
		return l.scanString(ch)
	case ch >= '0' && ch <= '9', ch == '-' && l.pos+1 < len(l.input) && l.input[l.pos+1] >= '0' && l.input[l.pos+1] <= '9':
		return l.scanNumber()
	case isIdentStart(rune(ch)):
		return l.scanIdent()
	default:
		return token{}, fmt.Errorf("%w: unexpected character %q at position %d", ErrSyntax, ch, start)
	}
}

func (l *lexer) scanString(quote byte) (token, error) {
	start := l.pos
	l.pos++ // opening quote

	var sb strings.Builder

	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if ch == '\\' && l.pos+1 < len(l.input) {
			sb.WriteByte(l.input[l.pos+1])
			l.pos += 2

			continue
		}

		if ch == quote {
			l.pos++

			return token{Type: tokenString, Lexeme: sb.String(), Pos: start}, nil
		}

		sb.WriteByte(ch)
		l.pos++
	}

	return token{}, fmt.Errorf("%w: unterminated string starting at position %d", ErrSyntax, start)
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos

	if l.input[l.pos] == '-' {
		l.pos++
	}

	for l.pos < len(l.input) && (l.input[l.pos] >= '0' && l.input[l.pos] <= '9' || l.input[l.pos] == '.') {
		// A dot is part of the number only when followed by a digit;
		// otherwise it starts a method call on the literal.
		if l.input[l.pos] == '.' {
			if l.pos+1 >= len(l.input) || l.input[l.pos+1] < '0' || l.input[l.pos+1] > '9' {
				break
			}

			if strings.Contains(l.input[start:l.pos], ".") {
				break
			}
		}

		l.pos++
	}

	return token{Type: tokenNumber, Lexeme: l.input[start:l.pos], Pos: start}, nil
}

func (l *lexer) scanIdent() (token, error) {
	start := l.pos

	for l.pos < len(l.input) && isIdentPart(rune(l.input[l.pos])) {
		l.pos++
	}

	return token{Type: tokenIdent, Lexeme: l.input[start:l.pos], Pos: start}, nil
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	// Ruby-flavored method names may end in '?' (present?, blank?).
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '?'
}
