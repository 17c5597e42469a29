package parser

import (
	"github.com/basicc-lang/basicc/internal/ast"
	"github.com/basicc-lang/basicc/internal/lexer"
)

var comparisonOps = map[lexer.TokenType]ast.Operator{
	lexer.TokenEq: ast.OpEq,
	lexer.TokenNe: ast.OpNe,
	lexer.TokenLt: ast.OpLt,
	lexer.TokenLe: ast.OpLe,
	lexer.TokenGt: ast.OpGt,
	lexer.TokenGe: ast.OpGe,
}

// ParseComparison parses expression (op expression)*. Chains nest to the
// right: a == b == c becomes a == (b == (c)).
func (p *Parser) ParseComparison() (*ast.Comparison, error) {
	defer p.trace("comparison")()

	start := p.current.Span
	left, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	cmp := &ast.Comparison{Span: start, Left: left}
	if op, ok := comparisonOps[p.current.Type]; ok {
		p.advance()
		rest, err := p.ParseComparison()
		if err != nil {
			return nil, err
		}
		cmp.Op = op
		cmp.Rest = rest
	}
	return cmp, nil
}

// ParseExpression parses term {("+" | "-") term}
func (p *Parser) ParseExpression() (*ast.Expression, error) {
	defer p.trace("expression")()

	start := p.current.Span
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	expr := &ast.Expression{Span: start, Left: left}
	switch p.current.Type {
	case lexer.TokenPlus:
		expr.Op = ast.OpAdd
	case lexer.TokenMinus:
		expr.Op = ast.OpSub
	default:
		return expr, nil
	}

	p.advance()
	rest, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	expr.Rest = rest
	return expr, nil
}

// term ::= unary {("*" | "/") unary}
func (p *Parser) parseTerm() (*ast.Term, error) {
	defer p.trace("term")()

	start := p.current.Span
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	term := &ast.Term{Span: start, Left: left}
	switch p.current.Type {
	case lexer.TokenMul:
		term.Op = ast.OpMul
	case lexer.TokenDiv:
		term.Op = ast.OpDiv
	default:
		return term, nil
	}

	p.advance()
	rest, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	term.Rest = rest
	return term, nil
}

// unary ::= ["+" | "-"] primary
func (p *Parser) parseUnary() (*ast.Unary, error) {
	defer p.trace("unary")()

	unary := &ast.Unary{Span: p.current.Span}
	switch p.current.Type {
	case lexer.TokenPlus:
		unary.Op = ast.OpPos
		p.advance()
	case lexer.TokenMinus:
		unary.Op = ast.OpNeg
		p.advance()
	}

	operand, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	unary.Operand = operand
	return unary, nil
}

// primary ::= INTEGER | FLOAT | ident
func (p *Parser) parsePrimary() (ast.Primary, error) {
	defer p.trace("primary")()

	tok := p.current
	switch tok.Type {
	case lexer.TokenInteger:
		p.advance()
		return &ast.IntegerLit{Span: tok.Span, Value: tok.Int}, nil
	case lexer.TokenFloat:
		p.advance()
		return &ast.FloatLit{Span: tok.Span, Value: tok.Float}, nil
	case lexer.TokenIdentifier:
		if _, ok := p.variables[tok.Literal]; !ok {
			return nil, &SemanticError{Kind: KindUndeclaredVariable, Name: tok.Literal, Span: tok.Span}
		}
		p.advance()
		return &ast.Variable{Span: tok.Span, Name: tok.Literal}, nil
	default:
		return nil, p.syntaxError("number or variable", "expression")
	}
}
