// Package lexer implements the scanner that turns BASIC source text into a
// flat token sequence.
package lexer

import (
	"strconv"
	"unicode/utf8"

	"github.com/basicc-lang/basicc/internal/position"
)

// Lexer scans a single source buffer. It holds no state beyond its cursor,
// so scanning the same input twice yields the same tokens.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // line of ch
	column       int  // column of ch

	filename string // source filename for error reporting
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer instance with filename for error reporting
func NewWithFilename(input, filename string) *Lexer {
	l := &Lexer{
		input:    input,
		line:     1,
		column:   0,
		filename: filename,
	}
	l.readChar()
	return l
}

// Tokenize scans the whole input and returns its tokens, terminated by
// exactly one TokenEOF.
func Tokenize(input string) ([]Token, error) {
	return New(input).All()
}

// TokenizeFile is Tokenize with filename attribution in positions.
func TokenizeFile(input, filename string) ([]Token, error) {
	return NewWithFilename(input, filename).All()
}

// All scans the remaining input. It stops at the first lexical error.
func (l *Lexer) All() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.position >= len(l.input) && l.readPosition > 0 {
		return // stay parked at EOF
	}
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) pos() position.Position {
	return position.Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.column,
		Offset:   l.position,
	}
}

// skipWhitespace skips blanks and comments. Newlines are significant and
// are left for NextToken.
func (l *Lexer) skipWhitespace() {
	for !l.atEOF() {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '#':
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

// NextToken scans the input and returns the next token with full position information
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	startPos := l.pos()

	switch {
	case l.atEOF():
		return l.newToken(TokenEOF, "", startPos), nil
	case l.ch == '\n':
		l.readChar()
		return l.newToken(TokenNewline, "\n", startPos), nil
	case l.ch == '"':
		return l.readString(startPos)
	case isDigit(l.ch):
		return l.readNumber(startPos)
	case isLetter(l.ch):
		word := l.readWord()
		return l.newToken(LookupIdent(word), word, startPos), nil
	}

	// 2文字演算子を優先
	if l.readPosition < len(l.input) {
		if tt, ok := twoCharOperators[l.input[l.position:l.readPosition+1]]; ok {
			literal := l.input[l.position : l.readPosition+1]
			l.readChar()
			l.readChar()
			return l.newToken(tt, literal, startPos), nil
		}
	}
	if tt, ok := oneCharOperators[l.ch]; ok {
		literal := string(l.ch)
		l.readChar()
		return l.newToken(tt, literal, startPos), nil
	}

	r, size := utf8.DecodeRuneInString(l.input[l.position:])
	for i := 0; i < size; i++ {
		l.readChar()
	}
	return Token{}, l.invalidCharacterError(startPos, r)
}

// readWord reads a letter followed by letters and digits
func (l *Lexer) readWord() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber consumes digits and decimal points greedily; any '.' makes
// the literal a float. The text must then parse cleanly.
func (l *Lexer) readNumber(startPos position.Position) (Token, error) {
	start := l.position
	isFloat := false

	for isDigit(l.ch) || l.ch == '.' {
		if l.ch == '.' {
			isFloat = true
		}
		l.readChar()
	}

	// Letters glued to a number (e.g. "5abc") are malformed
	if isLetter(l.ch) {
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return Token{}, l.malformedNumberError(startPos, l.input[start:l.position], nil)
	}

	literal := l.input[start:l.position]
	tok := l.newToken(TokenInteger, literal, startPos)

	if isFloat {
		v, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return Token{}, l.malformedNumberError(startPos, literal, unwrapNumError(err))
		}
		tok.Type = TokenFloat
		tok.Float = v
		return tok, nil
	}

	v, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		return Token{}, l.malformedNumberError(startPos, literal, unwrapNumError(err))
	}
	tok.Int = v
	return tok, nil
}

// readString reads a double-quoted literal verbatim; there are no escapes.
// The literal must close on the line it opened.
func (l *Lexer) readString(startPos position.Position) (Token, error) {
	l.readChar() // 開始の引用符をスキップ
	start := l.position

	for !l.atEOF() && l.ch != '"' && l.ch != '\n' {
		l.readChar()
	}

	text := l.input[start:l.position]
	if l.atEOF() || l.ch == '\n' {
		return Token{}, l.unterminatedStringError(startPos, text)
	}

	l.readChar() // 終了の引用符
	return l.newToken(TokenString, text, startPos), nil
}

func (l *Lexer) newToken(tokenType TokenType, literal string, startPos position.Position) Token {
	return Token{
		Type:    tokenType,
		Literal: literal,
		Span:    position.Span{Start: startPos, End: l.pos()},
	}
}

func unwrapNumError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}

// isLetter checks if character is ASCII letter
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

// isDigit checks if character is ASCII digit
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
