package formula

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/edvalho/recipelint/pkg/models"
	"github.com/edvalho/recipelint/pkg/reference"
)

// Marker is the leading character distinguishing a formula-mode leaf from a
// literal or text-mode leaf.
const Marker = "="

// pillFunc is the function wrapping a data-pill reference inside a formula.
const pillFunc = "_dp"

// textOpen and textClose delimit an embedded reference in a text-mode leaf.
const (
	textOpen  = "#{"
	textClose = "}"
)

// BaseKind distinguishes the two base forms of a call chain.
type BaseKind int

const (
	BaseLiteral BaseKind = iota
	BasePill
)

// Base is the value a formula's method chain starts from.
type Base struct {
	Kind BaseKind

	// BaseLiteral: the literal value and its static type.
	Literal     any
	LiteralType models.FieldType

	// BasePill: the normalized data-pill reference.
	Ref *models.DataReference
}

// MethodCall is one step of a call chain. Only the name and the argument
// count take part in type checking.
type MethodCall struct {
	Name string
	Args []any
}

// Chain is the parsed form of a formula-mode expression.
type Chain struct {
	Base  Base
	Calls []MethodCall
}

// ClassifyLeaf maps a raw string leaf onto its input kind: formula mode
// (leading marker), text mode (embedded pill interpolations), bare dotted
// reference, or plain literal text.
func ClassifyLeaf(s string) models.InputKind {
	switch {
	case strings.HasPrefix(s, Marker):
		return models.InputFormula
	case strings.Contains(s, textOpen):
		return models.InputText
	case reference.IsDotted(s):
		return models.InputReference
	default:
		return models.InputLiteral
	}
}

// ExtractTextReferences pulls the embedded reference strings out of a
// text-mode leaf. Each #{...} interpolation holds either a dotted reference
// or a _dp('...') call. An unterminated interpolation is reported as a
// formula syntax issue.
func ExtractTextReferences(s string, loc models.Location) ([]string, []models.ValidationIssue) {
	var (
		refs   []string
		issues []models.ValidationIssue
	)

	rest := s
	for {
		start := strings.Index(rest, textOpen)
		if start < 0 {
			break
		}

		rest = rest[start+len(textOpen):]

		end := strings.Index(rest, textClose)
		if end < 0 {
			issues = append(issues, models.NewIssue(models.CodeFormulaSyntaxError, loc,
				"unterminated %s interpolation in %q", textOpen, s))

			break
		}

		inner := strings.TrimSpace(rest[:end])
		if wrapped, ok := unwrapPill(inner); ok {
			inner = wrapped
		}

		refs = append(refs, inner)
		rest = rest[end+len(textClose):]
	}

	return refs, issues
}

// unwrapPill extracts the dotted reference from a _dp('...') call.
func unwrapPill(s string) (string, bool) {
	if !strings.HasPrefix(s, pillFunc+"(") || !strings.HasSuffix(s, ")") {
		return "", false
	}

	inner := strings.TrimSpace(s[len(pillFunc)+1 : len(s)-1])
	if len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0] {
		return inner[1 : len(inner)-1], true
	}

	return "", false
}

// Parse parses a formula-mode leaf (including its leading marker) into a call
// chain. Parsing failures are returned as a single FormulaSyntaxError or
// MalformedReference issue; a non-nil chain always parsed cleanly.
func Parse(raw string, loc models.Location) (*Chain, *models.ValidationIssue) {
	expr := strings.TrimPrefix(raw, Marker)

	p := &parser{lex: newLexer(expr)}
	if err := p.advance(); err != nil {
		return nil, syntaxIssue(loc, err)
	}

	chain := &Chain{}

	if err := p.parseBase(chain, loc); err != nil {
		var ie *issueError
		if errors.As(err, &ie) {
			return nil, &ie.issue
		}

		return nil, syntaxIssue(loc, err)
	}

	for p.tok.Type == tokenDot {
		if err := p.advance(); err != nil {
			return nil, syntaxIssue(loc, err)
		}

		call, err := p.parseCall()
		if err != nil {
			return nil, syntaxIssue(loc, err)
		}

		chain.Calls = append(chain.Calls, call)
	}

	if p.tok.Type != tokenEOF {
		return nil, syntaxIssue(loc, fmt.Errorf("%w: unexpected %s at position %d", ErrSyntax, p.tok.Type, p.tok.Pos))
	}

	return chain, nil
}

type parser struct {
	lex *lexer
	tok token
}

// issueError smuggles an already-built issue (a malformed pill reference)
// out of the recursive descent.
type issueError struct {
	issue models.ValidationIssue
}

func (e *issueError) Error() string { return e.issue.Message }

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}

	p.tok = tok

	return nil
}

func (p *parser) parseBase(chain *Chain, loc models.Location) error {
	switch p.tok.Type {
	case tokenString:
		chain.Base = Base{Kind: BaseLiteral, Literal: p.tok.Lexeme, LiteralType: models.FieldTypeString}

		return p.advance()
	case tokenNumber:
		lexeme := p.tok.Lexeme
		if strings.Contains(lexeme, ".") {
			f, _ := strconv.ParseFloat(lexeme, 64)
			chain.Base = Base{Kind: BaseLiteral, Literal: f, LiteralType: models.FieldTypeNumber}
		} else {
			n, _ := strconv.Atoi(lexeme)
			chain.Base = Base{Kind: BaseLiteral, Literal: n, LiteralType: models.FieldTypeInteger}
		}

		return p.advance()
	case tokenIdent:
		switch p.tok.Lexeme {
		case "true", "false":
			chain.Base = Base{Kind: BaseLiteral, Literal: p.tok.Lexeme == "true", LiteralType: models.FieldTypeBoolean}

			return p.advance()
		case "null", "nil":
			chain.Base = Base{Kind: BaseLiteral, LiteralType: models.FieldTypeNull}

			return p.advance()
		case pillFunc:
			return p.parsePill(chain, loc)
		default:
			return fmt.Errorf("%w: unknown base %q at position %d", ErrSyntax, p.tok.Lexeme, p.tok.Pos)
		}
	default:
		return fmt.Errorf("%w: formula must start with a literal or %s(...), found %s", ErrSyntax, pillFunc, p.tok.Type)
	}
}

func (p *parser) parsePill(chain *Chain, loc models.Location) error {
	if err := p.advance(); err != nil {
		return err
	}

	if p.tok.Type != tokenLParen {
		return fmt.Errorf("%w: %s must be called with a reference argument", ErrSyntax, pillFunc)
	}

	if err := p.advance(); err != nil {
		return err
	}

	if p.tok.Type != tokenString {
		return fmt.Errorf("%w: %s takes a single quoted reference", ErrSyntax, pillFunc)
	}

	ref, err := reference.ParseDotted(p.tok.Lexeme)
	if err != nil {
		return &issueError{issue: models.NewIssue(models.CodeMalformedReference, loc, "%s", err.Error())}
	}

	if err := p.advance(); err != nil {
		return err
	}

	if p.tok.Type != tokenRParen {
		return fmt.Errorf("%w: unbalanced parentheses in %s call", ErrSyntax, pillFunc)
	}

	chain.Base = Base{Kind: BasePill, Ref: ref}

	return p.advance()
}

func (p *parser) parseCall() (MethodCall, error) {
	if p.tok.Type != tokenIdent {
		return MethodCall{}, fmt.Errorf("%w: expected a method name after '.', found %s", ErrSyntax, p.tok.Type)
	}

	call := MethodCall{Name: p.tok.Lexeme}

	if err := p.advance(); err != nil {
		return MethodCall{}, err
	}

	if p.tok.Type != tokenLParen {
		// Bare call without parentheses.
		return call, nil
	}

	if err := p.advance(); err != nil {
		return MethodCall{}, err
	}

	for p.tok.Type != tokenRParen {
		arg, err := p.parseArg()
		if err != nil {
			return MethodCall{}, err
		}

		call.Args = append(call.Args, arg)

		if p.tok.Type == tokenComma {
			if err := p.advance(); err != nil {
				return MethodCall{}, err
			}

			continue
		}

		if p.tok.Type != tokenRParen {
			return MethodCall{}, fmt.Errorf("%w: unbalanced parentheses in %q call", ErrSyntax, call.Name)
		}
	}

	if err := p.advance(); err != nil {
		return MethodCall{}, err
	}

	return call, nil
}

func (p *parser) parseArg() (any, error) {
	switch p.tok.Type {
	case tokenString:
		arg := p.tok.Lexeme

		return arg, p.advance()
	case tokenNumber:
		lexeme := p.tok.Lexeme
		if strings.Contains(lexeme, ".") {
			f, _ := strconv.ParseFloat(lexeme, 64)

			return f, p.advance()
		}

		n, _ := strconv.Atoi(lexeme)

		return n, p.advance()
	case tokenIdent:
		switch p.tok.Lexeme {
		case "true", "false":
			arg := p.tok.Lexeme == "true"

			return arg, p.advance()
		case "null", "nil":
			return nil, p.advance()
		default:
			return nil, fmt.Errorf("%w: unsupported argument %q at position %d", ErrSyntax, p.tok.Lexeme, p.tok.Pos)
		}
	case tokenEOF:
		return nil, fmt.Errorf("%w: unterminated argument list", ErrSyntax)
	default:
		return nil, fmt.Errorf("%w: unsupported argument %s at position %d", ErrSyntax, p.tok.Type, p.tok.Pos)
	}
}

func syntaxIssue(loc models.Location, err error) *models.ValidationIssue {
	issue := models.NewIssue(models.CodeFormulaSyntaxError, loc, "%s", err.Error())

	return &issue
}
