package parser

import (
	"github.com/basicc-lang/basicc/internal/ast"
	"github.com/basicc-lang/basicc/internal/lexer"
)

// ParseStatement parses one statement including its trailing newline.
// A bare newline is an empty statement and is skipped.
func (p *Parser) ParseStatement() (ast.Statement, error) {
	defer p.trace("statement")()

	switch p.current.Type {
	case lexer.TokenNewline:
		p.advance()
		return p.ParseStatement()
	case lexer.TokenPrint:
		return p.parsePrintStatement()
	case lexer.TokenIf:
		return p.parseIfStatement()
	case lexer.TokenWhile:
		return p.parseWhileStatement()
	case lexer.TokenLabel:
		return p.parseLabelStatement()
	case lexer.TokenGoto:
		return p.parseGotoStatement()
	case lexer.TokenLet:
		return p.parseLetStatement()
	case lexer.TokenInput:
		return p.parseInputStatement()
	default:
		return nil, p.syntaxError("statement", "statement")
	}
}

// expectNewline consumes the mandatory statement terminator
func (p *Parser) expectNewline(context string) error {
	if !p.currentTokenIs(lexer.TokenNewline) {
		return p.syntaxError("NEWLINE", context)
	}
	p.advance()
	return nil
}

// expect consumes a token of the given type
func (p *Parser) expect(tokenType lexer.TokenType, context string) (lexer.Token, error) {
	tok := p.current
	if tok.Type != tokenType {
		return tok, p.syntaxError(tokenType.String(), context)
	}
	p.advance()
	return tok, nil
}

// parseIdent consumes an identifier and returns its name
func (p *Parser) parseIdent(context string) (lexer.Token, error) {
	defer p.trace("ident")()
	return p.expect(lexer.TokenIdentifier, context)
}

// PRINT (expression | string) nl
func (p *Parser) parsePrintStatement() (ast.Statement, error) {
	defer p.trace("print")()

	kw := p.current
	p.advance()

	var stmt ast.Statement
	if p.currentTokenIs(lexer.TokenString) {
		stmt = &ast.PrintString{Span: kw.Span, Text: p.current.Literal}
		p.advance()
	} else {
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		stmt = &ast.Print{Span: kw.Span, Expr: expr}
	}

	if err := p.expectNewline("PRINT statement"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// IF comparison THEN nl {statement} ENDIF nl
func (p *Parser) parseIfStatement() (ast.Statement, error) {
	defer p.trace("if")()

	kw := p.current
	p.advance()

	cond, err := p.ParseComparison()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenThen, "IF statement"); err != nil {
		return nil, err
	}
	if err := p.expectNewline("IF statement"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock(lexer.TokenEndif, "IF")
	if err != nil {
		return nil, err
	}
	return &ast.If{Span: kw.Span, Cond: cond, Body: body}, nil
}

// WHILE comparison REPEAT nl {statement} ENDWHILE nl
func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	defer p.trace("while")()

	kw := p.current
	p.advance()

	cond, err := p.ParseComparison()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenRepeat, "WHILE statement"); err != nil {
		return nil, err
	}
	if err := p.expectNewline("WHILE statement"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock(lexer.TokenEndwhile, "WHILE")
	if err != nil {
		return nil, err
	}
	return &ast.While{Span: kw.Span, Cond: cond, Body: body}, nil
}

// parseBlock parses statements until the closing keyword, which is consumed
// together with its newline. The loop ends on lookahead; a statement that
// fails to parse is always an error.
func (p *Parser) parseBlock(closing lexer.TokenType, owner string) (ast.Statement, error) {
	defer p.trace("block")()

	var stmts []ast.Statement
	for {
		p.skipNewlines()

		switch p.current.Type {
		case closing:
			end := p.current.Span
			p.advance()
			if err := p.expectNewline(closing.String()); err != nil {
				return nil, err
			}
			return chain(stmts, end), nil
		case lexer.TokenEOF, lexer.TokenEndif, lexer.TokenEndwhile:
			return nil, p.syntaxError(closing.String(), owner+" block")
		}

		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

// LABEL ident nl
func (p *Parser) parseLabelStatement() (ast.Statement, error) {
	defer p.trace("label")()

	kw := p.current
	p.advance()

	name, err := p.parseIdent("LABEL statement")
	if err != nil {
		return nil, err
	}
	if prev, ok := p.labelsDeclared[name.Literal]; ok {
		return nil, &SemanticError{
			Kind:     KindDuplicateLabel,
			Name:     name.Literal,
			Span:     name.Span,
			Previous: prev,
		}
	}
	p.labelsDeclared[name.Literal] = name.Span

	if err := p.expectNewline("LABEL statement"); err != nil {
		return nil, err
	}
	return &ast.Label{Span: kw.Span, Name: name.Literal}, nil
}

// GOTO ident nl
func (p *Parser) parseGotoStatement() (ast.Statement, error) {
	defer p.trace("goto")()

	p.advance()

	name, err := p.parseIdent("GOTO statement")
	if err != nil {
		return nil, err
	}
	stmt := &ast.Goto{Span: name.Span, Name: name.Literal}
	p.gotos = append(p.gotos, stmt)

	if err := p.expectNewline("GOTO statement"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// LET ident "=" expression nl
func (p *Parser) parseLetStatement() (ast.Statement, error) {
	defer p.trace("let")()

	kw := p.current
	p.advance()

	name, err := p.parseIdent("LET statement")
	if err != nil {
		return nil, err
	}
	// declared before the expression is read, so LET a = a + 1 is legal
	p.DeclareVariable(name.Literal)

	if _, err := p.expect(lexer.TokenAssign, "LET statement"); err != nil {
		return nil, err
	}
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.expectNewline("LET statement"); err != nil {
		return nil, err
	}
	return &ast.Let{Span: kw.Span, Name: name.Literal, Expr: expr}, nil
}

// INPUT ident nl
func (p *Parser) parseInputStatement() (ast.Statement, error) {
	defer p.trace("input")()

	kw := p.current
	p.advance()

	name, err := p.parseIdent("INPUT statement")
	if err != nil {
		return nil, err
	}
	p.DeclareVariable(name.Literal)

	if err := p.expectNewline("INPUT statement"); err != nil {
		return nil, err
	}
	return &ast.Input{Span: kw.Span, Name: name.Literal}, nil
}
