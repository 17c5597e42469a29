package lexer

import (
	"fmt"

	"github.com/basicc-lang/basicc/internal/position"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

// IsKeyword reports whether tt is one of the reserved words.
func (tt TokenType) IsKeyword() bool {
	return tt >= TokenPrint && tt <= TokenEndwhile
}

// IsOperator reports whether tt is an operator token.
func (tt TokenType) IsOperator() bool {
	return tt >= TokenAssign && tt <= TokenGe
}

// IsComparison reports whether tt is one of the relational operators.
func (tt TokenType) IsComparison() bool {
	return tt >= TokenEq && tt <= TokenGe
}

// Token types
const (
	// 特殊トークン
	TokenEOF TokenType = iota
	TokenNewline

	// リテラル
	TokenIdentifier
	TokenString
	TokenInteger
	TokenFloat

	// キーワード
	TokenPrint
	TokenLabel
	TokenGoto
	TokenInput
	TokenLet
	TokenIf
	TokenThen
	TokenEndif
	TokenWhile
	TokenRepeat
	TokenEndwhile

	// 演算子
	TokenAssign
	TokenPlus
	TokenMinus
	TokenMul
	TokenDiv
	TokenEq
	TokenNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe
)

// Token represents a lexical token with position information.
// Int and Float carry the decoded value of numeric literals.
type Token struct {
	Type    TokenType
	Literal string
	Int     int64
	Float   float64
	Span    position.Span
}

// Pos returns the start position of the token.
func (t Token) Pos() position.Position {
	return t.Span.Start
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenIdentifier:
		return fmt.Sprintf("IDENTIFIER(%s)", t.Literal)
	case TokenString:
		return fmt.Sprintf("STRING(%q)", t.Literal)
	case TokenInteger:
		return fmt.Sprintf("INTEGER(%d)", t.Int)
	case TokenFloat:
		return fmt.Sprintf("FLOAT(%s)", t.Literal)
	default:
		return t.Type.String()
	}
}

// tokenNames provides string representations for token types
var tokenNames = map[TokenType]string{
	TokenEOF:     "EOF",
	TokenNewline: "NEWLINE",

	TokenIdentifier: "IDENTIFIER",
	TokenString:     "STRING",
	TokenInteger:    "INTEGER",
	TokenFloat:      "FLOAT",

	TokenPrint:    "PRINT",
	TokenLabel:    "LABEL",
	TokenGoto:     "GOTO",
	TokenInput:    "INPUT",
	TokenLet:      "LET",
	TokenIf:       "IF",
	TokenThen:     "THEN",
	TokenEndif:    "ENDIF",
	TokenWhile:    "WHILE",
	TokenRepeat:   "REPEAT",
	TokenEndwhile: "ENDWHILE",

	TokenAssign: "ASSIGN",
	TokenPlus:   "PLUS",
	TokenMinus:  "MINUS",
	TokenMul:    "MUL",
	TokenDiv:    "DIV",
	TokenEq:     "EQ",
	TokenNe:     "NE",
	TokenLt:     "LT",
	TokenLe:     "LE",
	TokenGt:     "GT",
	TokenGe:     "GE",
}

// keywords maps reserved words to their token types. Matching is case-sensitive.
var keywords = map[string]TokenType{
	"PRINT":    TokenPrint,
	"LABEL":    TokenLabel,
	"GOTO":     TokenGoto,
	"INPUT":    TokenInput,
	"LET":      TokenLet,
	"IF":       TokenIf,
	"THEN":     TokenThen,
	"ENDIF":    TokenEndif,
	"WHILE":    TokenWhile,
	"REPEAT":   TokenRepeat,
	"ENDWHILE": TokenEndwhile,
}

// twoCharOperators must be consulted before oneCharOperators since '=' is a
// prefix of "==".
var twoCharOperators = map[string]TokenType{
	"==": TokenEq,
	"!=": TokenNe,
	"<=": TokenLe,
	">=": TokenGe,
}

var oneCharOperators = map[byte]TokenType{
	'=': TokenAssign,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenMul,
	'/': TokenDiv,
	'<': TokenLt,
	'>': TokenGt,
}

// LookupIdent returns the keyword token type for word, or TokenIdentifier.
func LookupIdent(word string) TokenType {
	if tok, ok := keywords[word]; ok {
		return tok
	}
	return TokenIdentifier
}
