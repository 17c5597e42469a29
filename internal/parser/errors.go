package parser

import (
	"fmt"

	"github.com/basicc-lang/basicc/internal/lexer"
	"github.com/basicc-lang/basicc/internal/position"
)

// SyntaxError reports a token that does not fit the grammar at the point
// it was read.
type SyntaxError struct {
	Expected string      // what the production required
	Got      lexer.Token // what was actually read
	Context  string      // production being parsed
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s", e.Got.Pos().String(), e.Detail())
}

// Detail describes the error without its location.
func (e *SyntaxError) Detail() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, e.Expected, e.Got.String())
}

// Pos returns the position of the offending token.
func (e *SyntaxError) Pos() position.Position {
	return e.Got.Pos()
}

// SemanticKind classifies semantic errors
type SemanticKind int

const (
	KindUndeclaredVariable SemanticKind = iota // variable read before LET/INPUT
	KindDuplicateLabel                         // LABEL declared twice
	KindUndeclaredLabel                        // GOTO to a label never declared
)

func (k SemanticKind) String() string {
	switch k {
	case KindUndeclaredVariable:
		return "undeclared-variable"
	case KindDuplicateLabel:
		return "duplicate-label"
	case KindUndeclaredLabel:
		return "undeclared-label"
	default:
		return "unknown"
	}
}

// SemanticError reports a well-formed program that refers to names
// inconsistently.
type SemanticError struct {
	Kind SemanticKind
	Name string
	Span position.Span

	// Previous locates the earlier declaration for KindDuplicateLabel.
	Previous position.Span
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error at %s: %s", e.Span.Start.String(), e.Detail())
}

// Detail describes the error without its location.
func (e *SemanticError) Detail() string {
	switch e.Kind {
	case KindUndeclaredVariable:
		return fmt.Sprintf("variable %q referenced before assignment", e.Name)
	case KindDuplicateLabel:
		return fmt.Sprintf("label %q already declared at %s", e.Name, e.Previous.Start.String())
	case KindUndeclaredLabel:
		return fmt.Sprintf("GOTO to undeclared label %q", e.Name)
	default:
		return e.Name
	}
}

// Pos returns the position of the offending name.
func (e *SemanticError) Pos() position.Position {
	return e.Span.Start
}

func (p *Parser) syntaxError(expected, context string) *SyntaxError {
	return &SyntaxError{
		Expected: expected,
		Got:      p.current,
		Context:  context,
	}
}
