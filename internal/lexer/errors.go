package lexer

import (
	"fmt"

	"github.com/basicc-lang/basicc/internal/position"
)

// ErrorCategory categorizes types of lexical errors
type ErrorCategory int

const (
	CategoryInvalidCharacter   ErrorCategory = iota // Characters that start no token
	CategoryMalformedNumber                         // Numeric literals that fail to parse
	CategoryUnterminatedString                      // Unclosed string literals
)

func (ec ErrorCategory) String() string {
	switch ec {
	case CategoryInvalidCharacter:
		return "invalid-character"
	case CategoryMalformedNumber:
		return "malformed-number"
	case CategoryUnterminatedString:
		return "unterminated-string"
	default:
		return "unknown"
	}
}

// LexicalError describes the first character sequence the scanner could not
// turn into a token. Scanning stops at the first LexicalError.
type LexicalError struct {
	Category ErrorCategory
	Span     position.Span
	Literal  string // offending source text
	Message  string

	// Suggestions are short human-readable hints for fixing the input.
	Suggestions []string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("lexical error at %s: %s", e.Span.Start.String(), e.Message)
}

// Pos returns the position of the offending text.
func (e *LexicalError) Pos() position.Position {
	return e.Span.Start
}

func (l *Lexer) invalidCharacterError(start position.Position, ch rune) *LexicalError {
	err := &LexicalError{
		Category: CategoryInvalidCharacter,
		Span:     position.Span{Start: start, End: l.pos()},
		Literal:  string(ch),
		Message:  fmt.Sprintf("invalid character %q (U+%04X)", ch, ch),
	}

	switch ch {
	case '!':
		err.Suggestions = append(err.Suggestions, "use \"!=\" for inequality; '!' is not an operator on its own")
	case '“', '”':
		err.Suggestions = append(err.Suggestions, "replace with straight double quote (\")")
	case '—', '–':
		err.Suggestions = append(err.Suggestions, "replace with hyphen-minus (-)")
	default:
		err.Suggestions = append(err.Suggestions, "remove the invalid character")
	}

	return err
}

func (l *Lexer) malformedNumberError(start position.Position, literal string, cause error) *LexicalError {
	err := &LexicalError{
		Category: CategoryMalformedNumber,
		Span:     position.Span{Start: start, End: l.pos()},
		Literal:  literal,
		Message:  fmt.Sprintf("malformed number literal %q", literal),
	}
	if cause != nil {
		err.Message = fmt.Sprintf("%s: %v", err.Message, cause)
	}
	err.Suggestions = append(err.Suggestions,
		"use only one decimal point in floating-point numbers",
		"separate numbers from names with whitespace")
	return err
}

func (l *Lexer) unterminatedStringError(start position.Position, text string) *LexicalError {
	return &LexicalError{
		Category:    CategoryUnterminatedString,
		Span:        position.Span{Start: start, End: l.pos()},
		Literal:     text,
		Message:     "unterminated string literal, expected closing quote (\") before end of line",
		Suggestions: []string{"add a closing quote (\") at the end of the string"},
	}
}
