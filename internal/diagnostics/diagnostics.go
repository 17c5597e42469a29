// Package diagnostics turns pipeline errors into diagnostics with stable
// codes and renders them with the offending source line.
package diagnostics

import (
	"errors"

	"github.com/basicc-lang/basicc/internal/lexer"
	"github.com/basicc-lang/basicc/internal/parser"
	"github.com/basicc-lang/basicc/internal/position"
)

// DiagnosticLevel represents the severity level of a diagnostic
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticInfo
	DiagnosticHint
)

func (dl DiagnosticLevel) String() string {
	switch dl {
	case DiagnosticError:
		return "error"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticInfo:
		return "info"
	case DiagnosticHint:
		return "hint"
	default:
		return "unknown"
	}
}

// MarshalText encodes the level by name.
func (dl DiagnosticLevel) MarshalText() ([]byte, error) {
	return []byte(dl.String()), nil
}

// DiagnosticCategory represents the category of diagnostic
type DiagnosticCategory int

const (
	CategoryInternal DiagnosticCategory = iota // not produced by the pipeline

	// Scanner
	CategoryLexical

	// Parser
	CategorySyntax

	// Semantic checks
	CategoryUndefinedVariable
	CategoryRedefinition
	CategoryUndefinedLabel
)

func (dc DiagnosticCategory) String() string {
	switch dc {
	case CategoryInternal:
		return "internal"
	case CategoryLexical:
		return "lexical"
	case CategorySyntax:
		return "syntax"
	case CategoryUndefinedVariable:
		return "undefined-variable"
	case CategoryRedefinition:
		return "redefinition"
	case CategoryUndefinedLabel:
		return "undefined-label"
	default:
		return "unknown"
	}
}

// MarshalText encodes the category by name.
func (dc DiagnosticCategory) MarshalText() ([]byte, error) {
	return []byte(dc.String()), nil
}

// Diagnostic codes. They are stable and appear in rendered output.
const (
	CodeInvalidCharacter   = "L0001"
	CodeMalformedNumber    = "L0002"
	CodeUnterminatedString = "L0003"
	CodeSyntax             = "P0001"
	CodeUndeclaredVariable = "S0001"
	CodeDuplicateLabel     = "S0002"
	CodeUndeclaredLabel    = "S0003"
)

// RelatedInformation provides additional context for a diagnostic
type RelatedInformation struct {
	Message  string        `json:"message"`
	Location position.Span `json:"location"`
}

// Diagnostic is a single compiler message
type Diagnostic struct {
	Level    DiagnosticLevel    `json:"level"`
	Category DiagnosticCategory `json:"category"`
	Code     string             `json:"code,omitempty"`
	Message  string             `json:"message"`
	Span     position.Span      `json:"span"`

	RelatedInfo []RelatedInformation `json:"related,omitempty"`
	Suggestions []string             `json:"suggestions,omitempty"`
}

// HasLocation reports whether the diagnostic points into source text.
func (d Diagnostic) HasLocation() bool {
	return d.Span.Start.IsValid()
}

// From converts an error returned by the pipeline. Errors of any other
// type become an internal diagnostic carrying only the message.
func From(err error) Diagnostic {
	var (
		lexErr *lexer.LexicalError
		synErr *parser.SyntaxError
		semErr *parser.SemanticError
	)

	switch {
	case errors.As(err, &lexErr):
		d := Diagnostic{
			Level:       DiagnosticError,
			Category:    CategoryLexical,
			Message:     lexErr.Message,
			Span:        lexErr.Span,
			Suggestions: lexErr.Suggestions,
		}
		switch lexErr.Category {
		case lexer.CategoryInvalidCharacter:
			d.Code = CodeInvalidCharacter
		case lexer.CategoryMalformedNumber:
			d.Code = CodeMalformedNumber
		case lexer.CategoryUnterminatedString:
			d.Code = CodeUnterminatedString
		}
		return d

	case errors.As(err, &synErr):
		return Diagnostic{
			Level:    DiagnosticError,
			Category: CategorySyntax,
			Code:     CodeSyntax,
			Message:  synErr.Detail(),
			Span:     synErr.Got.Span,
		}

	case errors.As(err, &semErr):
		d := Diagnostic{
			Level:   DiagnosticError,
			Message: semErr.Detail(),
			Span:    semErr.Span,
		}
		switch semErr.Kind {
		case parser.KindUndeclaredVariable:
			d.Category = CategoryUndefinedVariable
			d.Code = CodeUndeclaredVariable
			d.Suggestions = []string{"assign the variable with LET or INPUT before reading it"}
		case parser.KindDuplicateLabel:
			d.Category = CategoryRedefinition
			d.Code = CodeDuplicateLabel
			d.RelatedInfo = []RelatedInformation{{
				Message:  "label first declared here",
				Location: semErr.Previous,
			}}
		case parser.KindUndeclaredLabel:
			d.Category = CategoryUndefinedLabel
			d.Code = CodeUndeclaredLabel
			d.Suggestions = []string{"declare the target with LABEL " + semErr.Name}
		}
		return d
	}

	return Diagnostic{
		Level:    DiagnosticError,
		Category: CategoryInternal,
		Message:  err.Error(),
	}
}
