package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/basicc-lang/basicc/internal/ast"
	"github.com/basicc-lang/basicc/internal/lexer"
)

// ----------------------------------------------------------------------------
// Test helpers

func tokenize(t *testing.T, src string) []lexer.Token {
	t.Helper()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) error = %v", src, err)
	}
	return tokens
}

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(tokenize(t, src))
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	return prog
}

func parseError(t *testing.T, src string) error {
	t.Helper()
	prog, err := Parse(tokenize(t, src))
	if err == nil {
		t.Fatalf("Parse(%q) succeeded, want error; tree:\n%s", src, ast.Sprint(prog))
	}
	return err
}

func semanticError(t *testing.T, src string) *SemanticError {
	t.Helper()
	var semErr *SemanticError
	if err := parseError(t, src); !errors.As(err, &semErr) {
		t.Fatalf("Parse(%q) error = %v (%T), want *SemanticError", src, err, err)
	}
	return semErr
}

func syntaxError(t *testing.T, src string) *SyntaxError {
	t.Helper()
	var synErr *SyntaxError
	if err := parseError(t, src); !errors.As(err, &synErr) {
		t.Fatalf("Parse(%q) error = %v (%T), want *SyntaxError", src, err, err)
	}
	return synErr
}

// ----------------------------------------------------------------------------
// Statements

func TestParseStatements(t *testing.T) {
	prog := parseSource(t, strings.Join([]string{
		`PRINT "hello"`,
		`INPUT n`,
		`LET a = n * 2`,
		`PRINT a + 1`,
		`LABEL top`,
		`GOTO top`,
		``,
	}, "\n"))

	stmts := ast.Flatten(prog.Body)
	wantTypes := []string{"*ast.PrintString", "*ast.Input", "*ast.Let", "*ast.Print", "*ast.Label", "*ast.Goto"}
	if len(stmts) != len(wantTypes) {
		t.Fatalf("got %d statements, want %d", len(stmts), len(wantTypes))
	}
	for i, want := range wantTypes {
		if got := fmt.Sprintf("%T", stmts[i]); got != want {
			t.Errorf("stmts[%d] = %s, want %s", i, got, want)
		}
	}

	if got := stmts[0].(*ast.PrintString).Text; got != "hello" {
		t.Errorf("PrintString text = %q", got)
	}
	if got := stmts[2].(*ast.Let).String(); got != "LET a = n * 2" {
		t.Errorf("Let = %q", got)
	}
	if got := strings.Join(prog.Variables, ","); got != "a,n" {
		t.Errorf("Variables = %s, want a,n", got)
	}
}

func TestSequenceShape(t *testing.T) {
	prog := parseSource(t, "LET a = 1\nPRINT a\n")

	seq, ok := prog.Body.(*ast.Sequence)
	if !ok {
		t.Fatalf("Body = %T, want *ast.Sequence", prog.Body)
	}
	if _, ok := seq.First.(*ast.Let); !ok {
		t.Errorf("First = %T, want *ast.Let", seq.First)
	}
	rest, ok := seq.Rest.(*ast.Sequence)
	if !ok {
		t.Fatalf("Rest = %T, want *ast.Sequence", seq.Rest)
	}
	if _, ok := rest.First.(*ast.Print); !ok {
		t.Errorf("Rest.First = %T, want *ast.Print", rest.First)
	}
	if _, ok := rest.Rest.(*ast.End); !ok {
		t.Errorf("Rest.Rest = %T, want *ast.End", rest.Rest)
	}
}

func TestEmptyProgram(t *testing.T) {
	for _, src := range []string{"", "\n\n", "# only a comment\n"} {
		prog := parseSource(t, src)
		if _, ok := prog.Body.(*ast.End); !ok {
			t.Errorf("Parse(%q).Body = %T, want *ast.End", src, prog.Body)
		}
		if len(prog.Variables) != 0 {
			t.Errorf("Parse(%q).Variables = %v, want empty", src, prog.Variables)
		}
	}
}

func TestBlankLinesAreEmptyStatements(t *testing.T) {
	prog := parseSource(t, "\n\nLET a = 1\n\n\nIF a THEN\n\nPRINT a\n\nENDIF\n\n")

	stmts := ast.Flatten(prog.Body)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	body := ast.Flatten(stmts[1].(*ast.If).Body)
	if len(body) != 1 {
		t.Fatalf("IF body has %d statements, want 1", len(body))
	}

	// directly driven production skips the leading newline too
	p := New(tokenize(t, "\n\nINPUT x\n"))
	stmt, err := p.ParseStatement()
	if err != nil {
		t.Fatalf("ParseStatement() error = %v", err)
	}
	if _, ok := stmt.(*ast.Input); !ok {
		t.Errorf("ParseStatement() = %T, want *ast.Input", stmt)
	}
}

func TestNestedBlocks(t *testing.T) {
	src := strings.Join([]string{
		"LET i = 0",
		"WHILE i < 3 REPEAT",
		"    IF i == 1 THEN",
		"        PRINT \"one\"",
		"    ENDIF",
		"    LET i = i + 1",
		"ENDWHILE",
		"",
	}, "\n")
	prog := parseSource(t, src)

	stmts := ast.Flatten(prog.Body)
	loop, ok := stmts[1].(*ast.While)
	if !ok {
		t.Fatalf("stmts[1] = %T, want *ast.While", stmts[1])
	}
	if got := loop.Cond.String(); got != "i < 3" {
		t.Errorf("WHILE condition = %q", got)
	}
	body := ast.Flatten(loop.Body)
	if len(body) != 2 {
		t.Fatalf("WHILE body has %d statements, want 2", len(body))
	}
	inner, ok := body[0].(*ast.If)
	if !ok {
		t.Fatalf("body[0] = %T, want *ast.If", body[0])
	}
	if _, ok := ast.Flatten(inner.Body)[0].(*ast.PrintString); !ok {
		t.Error("IF body should hold the PRINT statement")
	}
}

func TestEmptyBlocks(t *testing.T) {
	prog := parseSource(t, "LET a = 1\nIF a THEN\nENDIF\nWHILE a REPEAT\nENDWHILE\n")
	stmts := ast.Flatten(prog.Body)
	if len(ast.Flatten(stmts[1].(*ast.If).Body)) != 0 {
		t.Error("IF body should be empty")
	}
	if len(ast.Flatten(stmts[2].(*ast.While).Body)) != 0 {
		t.Error("WHILE body should be empty")
	}
}

// ----------------------------------------------------------------------------
// Expressions

func TestExpressionPrecedence(t *testing.T) {
	p := New(tokenize(t, "a + b * c - -d / 2.5\n"))
	for _, name := range []string{"a", "b", "c", "d"} {
		p.DeclareVariable(name)
	}

	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("ParseExpression() error = %v", err)
	}
	if got := expr.String(); got != "a + b * c - -d / 2.5" {
		t.Errorf("String() = %q", got)
	}

	// a + (b * c - (-d / 2.5)) as right-nested chains
	if expr.Op != ast.OpAdd || expr.Left.Rest != nil {
		t.Fatalf("top level should be a + ..., got op %q", expr.Op)
	}
	second := expr.Rest
	if second.Op != ast.OpSub {
		t.Fatalf("second level op = %q, want -", second.Op)
	}
	if second.Left.Op != ast.OpMul {
		t.Errorf("b * c should be a term, got op %q", second.Left.Op)
	}
	last := second.Rest.Left
	if last.Op != ast.OpDiv || last.Left.Op != ast.OpNeg {
		t.Errorf("-d / 2.5 parsed as %q with unary %q", last.Op, last.Left.Op)
	}
	if f, ok := last.Rest.Left.Operand.(*ast.FloatLit); !ok || f.Value != 2.5 {
		t.Errorf("divisor = %v, want float 2.5", last.Rest.Left.Operand)
	}
}

func TestComparisonChainNesting(t *testing.T) {
	prog := parseSource(t, "LET a = 1\nLET b = 1\nLET c = 1\nIF a == b == c THEN\nENDIF\n")

	stmt := ast.Flatten(prog.Body)[3].(*ast.If)
	cond := stmt.Cond

	if cond.Op != ast.OpEq || cond.Rest == nil {
		t.Fatal("first comparison should carry == and a continuation")
	}
	if cond.Rest.Op != ast.OpEq || cond.Rest.Rest == nil {
		t.Fatal("second comparison should carry == and a continuation")
	}
	if cond.Rest.Rest.Rest != nil || cond.Rest.Rest.Op != ast.OpNone {
		t.Fatal("third comparison should be a bare expression")
	}
	names := []string{cond.Left.String(), cond.Rest.Left.String(), cond.Rest.Rest.Left.String()}
	if got := strings.Join(names, ","); got != "a,b,c" {
		t.Errorf("operands = %s, want a,b,c", got)
	}
}

func TestComparisonOperators(t *testing.T) {
	tests := []struct {
		src string
		op  ast.Operator
	}{
		{"x == 1", ast.OpEq},
		{"x != 1", ast.OpNe},
		{"x < 1", ast.OpLt},
		{"x <= 1", ast.OpLe},
		{"x > 1", ast.OpGt},
		{"x >= 1", ast.OpGe},
		{"x", ast.OpNone},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p := New(tokenize(t, tt.src))
			p.DeclareVariable("x")
			cmp, err := p.ParseComparison()
			if err != nil {
				t.Fatalf("ParseComparison() error = %v", err)
			}
			if cmp.Op != tt.op {
				t.Errorf("op = %q, want %q", cmp.Op, tt.op)
			}
			if got := cmp.String(); got != tt.src {
				t.Errorf("String() = %q, want %q", got, tt.src)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Semantic checks

func TestUndeclaredVariable(t *testing.T) {
	err := semanticError(t, "PRINT a\n")
	if err.Kind != KindUndeclaredVariable || err.Name != "a" {
		t.Errorf("got %s %q, want undeclared-variable \"a\"", err.Kind, err.Name)
	}
	if err.Pos().Line != 1 || err.Pos().Column != 7 {
		t.Errorf("position = %s, want 1:7", err.Pos())
	}

	// declaration inside a later statement does not help an earlier read
	err = semanticError(t, "LET a = 1\nLET b = a + c\nLET c = 2\n")
	if err.Name != "c" || err.Pos().Line != 2 {
		t.Errorf("got %q at %s, want \"c\" on line 2", err.Name, err.Pos())
	}
}

func TestSelfReferentialLet(t *testing.T) {
	prog := parseSource(t, "LET a = a + 1\n")
	if got := strings.Join(prog.Variables, ","); got != "a" {
		t.Errorf("Variables = %s, want a", got)
	}
}

func TestInputDeclares(t *testing.T) {
	parseSource(t, "INPUT x\nPRINT x * x\n")
}

func TestDuplicateLabel(t *testing.T) {
	err := semanticError(t, "LABEL a\nLABEL a\n")
	if err.Kind != KindDuplicateLabel || err.Name != "a" {
		t.Errorf("got %s %q, want duplicate-label \"a\"", err.Kind, err.Name)
	}
	if err.Pos().Line != 2 || err.Previous.Start.Line != 1 {
		t.Errorf("positions = %s (previous %s), want line 2 (previous line 1)", err.Pos(), err.Previous.Start)
	}
	if !strings.Contains(err.Error(), "already declared") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestUndeclaredLabel(t *testing.T) {
	err := semanticError(t, "GOTO x\n")
	if err.Kind != KindUndeclaredLabel || err.Name != "x" {
		t.Errorf("got %s %q, want undeclared-label \"x\"", err.Kind, err.Name)
	}
	if !strings.Contains(err.Error(), `"x"`) {
		t.Errorf("Error() = %q should name the label", err.Error())
	}

	// first missing label in reference order wins
	err = semanticError(t, "GOTO b\nGOTO a\nLABEL c\n")
	if err.Name != "b" {
		t.Errorf("first missing label = %q, want \"b\"", err.Name)
	}
}

func TestForwardGoto(t *testing.T) {
	prog := parseSource(t, "GOTO done\nPRINT \"skipped\"\nLABEL done\n")
	if n := len(ast.Flatten(prog.Body)); n != 3 {
		t.Errorf("got %d statements, want 3", n)
	}
}

// ----------------------------------------------------------------------------
// Syntax errors

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
		got      lexer.TokenType
	}{
		{"if without then", "LET a = 1\nIF a == 1\nENDIF\n", "THEN", lexer.TokenNewline},
		{"while without repeat", "LET a = 1\nWHILE a THEN\nENDWHILE\n", "REPEAT", lexer.TokenThen},
		{"missing endif", "LET a = 1\nIF a THEN\nPRINT a\n", "ENDIF", lexer.TokenEOF},
		{"mismatched end", "LET a = 1\nWHILE a REPEAT\nENDIF\n", "ENDWHILE", lexer.TokenEndif},
		{"stray endif", "ENDIF\n", "statement", lexer.TokenEndif},
		{"let without assign", "LET a 1\n", "ASSIGN", lexer.TokenInteger},
		{"let without name", "LET = 1\n", "IDENTIFIER", lexer.TokenAssign},
		{"goto keyword", "GOTO PRINT\n", "IDENTIFIER", lexer.TokenPrint},
		{"missing newline", "PRINT 1", "NEWLINE", lexer.TokenEOF},
		{"two statements one line", "PRINT 1 PRINT 2\n", "NEWLINE", lexer.TokenPrint},
		{"double sign", "PRINT - -1\n", "number or variable", lexer.TokenMinus},
		{"dangling operator", "PRINT 1 +\n", "number or variable", lexer.TokenNewline},
		{"endif needs newline", "LET a = 1\nIF a THEN\nENDIF PRINT a\n", "NEWLINE", lexer.TokenPrint},
		{"expression statement", "1 + 2\n", "statement", lexer.TokenInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := syntaxError(t, tt.src)
			if err.Expected != tt.expected {
				t.Errorf("Expected = %q, want %q", err.Expected, tt.expected)
			}
			if err.Got.Type != tt.got {
				t.Errorf("Got = %s, want %s", err.Got.Type, tt.got)
			}
			if !strings.Contains(err.Error(), "expected "+tt.expected) {
				t.Errorf("Error() = %q", err.Error())
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Tracing

type recordingTracer struct {
	lines []string
}

func (r *recordingTracer) Debug(format string, args ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func TestTracer(t *testing.T) {
	tr := &recordingTracer{}
	if _, err := Parse(tokenize(t, "LET a = 1\n"), WithTracer(tr)); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(tr.lines) == 0 {
		t.Fatal("tracer received no output")
	}
	if !strings.HasPrefix(tr.lines[0], "program: current token LET") {
		t.Errorf("first trace line = %q", tr.lines[0])
	}
	var sawPrimary bool
	for _, line := range tr.lines {
		if strings.Contains(line, "primary: current token INTEGER(1)") {
			sawPrimary = true
		}
	}
	if !sawPrimary {
		t.Errorf("primary production not traced: %v", tr.lines)
	}
}

func TestTracerDumpsTree(t *testing.T) {
	tr := &recordingTracer{}
	if _, err := Parse(tokenize(t, "LET a = 1\nPRINT a\n"), WithTracer(tr)); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	dump := tr.lines[len(tr.lines)-1]
	for _, want := range []string{"Program [a]", "  Let a", "  Print"} {
		if !strings.Contains(dump, want) {
			t.Errorf("tree dump %q does not contain %q", dump, want)
		}
	}
}

func TestParseWithoutEOFToken(t *testing.T) {
	tokens := tokenize(t, "LET a = 1\n")
	prog, err := Parse(tokens[:len(tokens)-1])
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ast.Flatten(prog.Body)) != 1 {
		t.Error("expected one statement")
	}
}
