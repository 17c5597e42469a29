// Package parser implements the recursive descent parser. Semantic checks
// (use before declaration, duplicate and missing labels) run inline while
// the tree is built.
//
//	program    ::= {statement}
//	statement  ::= PRINT (expression | string) nl
//	             | IF comparison THEN nl {statement} ENDIF nl
//	             | WHILE comparison REPEAT nl {statement} ENDWHILE nl
//	             | LABEL ident nl
//	             | GOTO ident nl
//	             | LET ident "=" expression nl
//	             | INPUT ident nl
//	comparison ::= expression (("==" | "!=" | ">" | ">=" | "<" | "<=") expression)*
//	expression ::= term {("+" | "-") term}
//	term       ::= unary {("*" | "/") unary}
//	unary      ::= ["+" | "-"] primary
//	primary    ::= INTEGER | FLOAT | ident
package parser

import (
	"sort"
	"strings"

	"github.com/basicc-lang/basicc/internal/ast"
	"github.com/basicc-lang/basicc/internal/lexer"
	"github.com/basicc-lang/basicc/internal/position"
)

// Tracer receives debug output for every grammar production.
// *cli.Logger satisfies it.
type Tracer interface {
	Debug(format string, args ...interface{})
}

// Option configures a Parser
type Option func(*Parser)

// WithTracer logs the current token on entry to every production.
func WithTracer(t Tracer) Option {
	return func(p *Parser) { p.tracer = t }
}

// Parser holds the parse state for one program. All semantic state lives
// here rather than in globals, so productions can be driven in isolation.
type Parser struct {
	tokens  []lexer.Token
	index   int
	current lexer.Token

	variables      map[string]struct{}
	labelsDeclared map[string]position.Span
	gotos          []*ast.Goto // in reference order

	tracer Tracer
	depth  int
}

// New creates a parser over tokens. A missing trailing TokenEOF is implied.
func New(tokens []lexer.Token, opts ...Option) *Parser {
	p := &Parser{
		tokens:         tokens,
		index:          -1,
		variables:      make(map[string]struct{}),
		labelsDeclared: make(map[string]position.Span),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.advance()
	return p
}

// Parse parses a complete program.
func Parse(tokens []lexer.Token, opts ...Option) (*ast.Program, error) {
	return New(tokens, opts...).ParseProgram()
}

// advance moves to the next token
func (p *Parser) advance() {
	if p.index < len(p.tokens) {
		p.index++
	}
	if p.index < len(p.tokens) {
		p.current = p.tokens[p.index]
		return
	}
	eof := lexer.Token{Type: lexer.TokenEOF}
	if n := len(p.tokens); n > 0 {
		eof.Span = position.Span{Start: p.tokens[n-1].Span.End, End: p.tokens[n-1].Span.End}
	}
	p.current = eof
}

// currentTokenIs checks if the current token is of the given type
func (p *Parser) currentTokenIs(tokenType lexer.TokenType) bool {
	return p.current.Type == tokenType
}

func (p *Parser) skipNewlines() {
	for p.currentTokenIs(lexer.TokenNewline) {
		p.advance()
	}
}

func (p *Parser) trace(production string) func() {
	if p.tracer == nil {
		return func() {}
	}
	p.tracer.Debug("%s%s: current token %s at %s",
		strings.Repeat("  ", p.depth), production, p.current, p.current.Pos())
	p.depth++
	return func() { p.depth-- }
}

// DeclareVariable adds name to the declared-variable set.
func (p *Parser) DeclareVariable(name string) {
	p.variables[name] = struct{}{}
}

// Variables returns the declared-variable set in sorted order.
func (p *Parser) Variables() []string {
	names := make([]string, 0, len(p.variables))
	for name := range p.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ====== Grammar Rules ======

// ParseProgram parses {statement} up to EOF, then checks that every GOTO
// target was declared somewhere in the program.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	defer p.trace("program")()

	start := p.current.Span
	var stmts []ast.Statement

	for {
		p.skipNewlines()
		if p.currentTokenIs(lexer.TokenEOF) {
			break
		}
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	if err := p.checkLabels(); err != nil {
		return nil, err
	}

	prog := &ast.Program{
		Span:      start,
		Body:      chain(stmts, p.current.Span),
		Variables: p.Variables(),
	}
	if p.tracer != nil {
		p.tracer.Debug("%s", ast.Sprint(prog))
	}
	return prog, nil
}

// checkLabels reports the first GOTO, in reference order, whose label was
// never declared. It must run after the whole program since labels may be
// declared after the jump.
func (p *Parser) checkLabels() error {
	for _, g := range p.gotos {
		if _, ok := p.labelsDeclared[g.Name]; !ok {
			return &SemanticError{Kind: KindUndeclaredLabel, Name: g.Name, Span: g.Span}
		}
	}
	return nil
}

// chain folds statements into a Sequence chain ending with End.
func chain(stmts []ast.Statement, endSpan position.Span) ast.Statement {
	var rest ast.Statement = &ast.End{Span: endSpan}
	for i := len(stmts) - 1; i >= 0; i-- {
		rest = &ast.Sequence{First: stmts[i], Rest: rest}
	}
	return rest
}
