// Package codegen renders a parsed program as a C translation unit and
// wires the scanner, parser and emitter into a single pipeline.
package codegen

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/basicc-lang/basicc/internal/ast"
)

const indentUnit = "    "

// Emitter walks a Program and writes C. The preamble goes to the header
// buffer, statements to the code buffer; String joins them.
//
// Every variable is a float declared exactly once, at its first rendering
// in program order.
type Emitter struct {
	header strings.Builder
	code   strings.Builder

	indent  int
	pending map[string]struct{} // variables not yet declared
	reads   []string            // first reads collected while rendering the current statement
	err     error               // first emission error
}

var _ ast.Visitor = (*Emitter)(nil)

// NewEmitter creates an emitter with empty buffers.
func NewEmitter() *Emitter {
	return &Emitter{pending: make(map[string]struct{})}
}

// Emit renders prog as a complete C program.
func Emit(prog *ast.Program) (string, error) {
	e := NewEmitter()
	if err := e.EmitProgram(prog); err != nil {
		return "", err
	}
	return e.String(), nil
}

// EmitProgram renders prog into the emitter buffers.
func (e *Emitter) EmitProgram(prog *ast.Program) error {
	if prog == nil {
		return errors.New("codegen: nil program")
	}
	prog.Accept(e)
	return e.err
}

// String returns the header followed by the code.
func (e *Emitter) String() string {
	return e.header.String() + e.code.String()
}

// WriteTo writes the rendered program to w.
func (e *Emitter) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, e.String())
	return int64(n), err
}

func (e *Emitter) emitHeader(line string) {
	e.header.WriteString(line)
	e.header.WriteByte('\n')
}

// emitLine writes one indented line of code.
func (e *Emitter) emitLine(format string, args ...interface{}) {
	for i := 0; i < e.indent; i++ {
		e.code.WriteString(indentUnit)
	}
	fmt.Fprintf(&e.code, format, args...)
	e.code.WriteByte('\n')
}

func (e *Emitter) fail(format string, args ...interface{}) {
	if e.err == nil {
		e.err = fmt.Errorf("codegen: "+format, args...)
	}
}

// declare removes name from the pending set and reports whether this was
// its first rendering.
func (e *Emitter) declare(name string) bool {
	if _, ok := e.pending[name]; !ok {
		return false
	}
	delete(e.pending, name)
	return true
}

// flushReads emits a bare declaration for every variable first read by the
// statement about to be written.
func (e *Emitter) flushReads() {
	for _, name := range e.reads {
		e.emitLine("float %s;", name)
	}
	e.reads = e.reads[:0]
}

// render emits the declarations an expression needs and returns its text.
func (e *Emitter) render(node ast.Node) string {
	if node == nil {
		e.fail("missing expression")
		return ""
	}
	s, _ := node.Accept(e).(string)
	return s
}

func (e *Emitter) block(body ast.Statement) {
	e.indent++
	if body != nil {
		body.Accept(e)
	}
	e.indent--
}

// ====== Statements ======

func (e *Emitter) VisitProgram(node *ast.Program) interface{} {
	for _, name := range node.Variables {
		e.pending[name] = struct{}{}
	}

	e.emitHeader("#include <stdio.h>")
	e.emitHeader("")
	e.emitHeader("int main(void) {")

	e.block(node.Body)

	e.indent++
	e.emitLine("return 0;")
	e.indent--
	e.emitLine("}")
	return nil
}

func (e *Emitter) VisitSequence(node *ast.Sequence) interface{} {
	for s := ast.Statement(node); s != nil; {
		seq, ok := s.(*ast.Sequence)
		if !ok {
			s.Accept(e)
			break
		}
		if seq.First != nil {
			seq.First.Accept(e)
		}
		s = seq.Rest
	}
	return nil
}

func (e *Emitter) VisitEnd(node *ast.End) interface{} { return nil }

func (e *Emitter) VisitPrint(node *ast.Print) interface{} {
	if node.Expr == nil {
		e.fail("PRINT without expression at %s", node.Span.Start)
		return nil
	}
	expr := e.render(node.Expr)
	e.flushReads()
	e.emitLine(`printf("%%.2f\n", (float)(%s));`, expr)
	return nil
}

func (e *Emitter) VisitPrintString(node *ast.PrintString) interface{} {
	e.emitLine(`printf("%%s\n", "%s");`, node.Text)
	return nil
}

func (e *Emitter) VisitLet(node *ast.Let) interface{} {
	if node.Expr == nil {
		e.fail("LET %s without expression at %s", node.Name, node.Span.Start)
		return nil
	}
	expr := e.render(node.Expr)
	e.flushReads()
	if e.declare(node.Name) {
		e.emitLine("float %s = %s;", node.Name, expr)
	} else {
		e.emitLine("%s = %s;", node.Name, expr)
	}
	return nil
}

func (e *Emitter) VisitInput(node *ast.Input) interface{} {
	if e.declare(node.Name) {
		e.emitLine("float %s;", node.Name)
	}
	e.emitLine(`if (0 == scanf("%%f", &%s)) {`, node.Name)
	e.indent++
	e.emitLine("%s = 0;", node.Name)
	e.emitLine(`scanf("%%*s");`)
	e.indent--
	e.emitLine("}")
	return nil
}

func (e *Emitter) VisitIf(node *ast.If) interface{} {
	if node.Cond == nil {
		e.fail("IF without condition at %s", node.Span.Start)
		return nil
	}
	cond := e.render(node.Cond)
	e.flushReads()
	e.emitLine("if (%s) {", cond)
	e.block(node.Body)
	e.emitLine("}")
	return nil
}

func (e *Emitter) VisitWhile(node *ast.While) interface{} {
	if node.Cond == nil {
		e.fail("WHILE without condition at %s", node.Span.Start)
		return nil
	}
	cond := e.render(node.Cond)
	e.flushReads()
	e.emitLine("while (%s) {", cond)
	e.block(node.Body)
	e.emitLine("}")
	return nil
}

func (e *Emitter) VisitLabel(node *ast.Label) interface{} {
	e.emitLine("%s: ;", node.Name)
	return nil
}

func (e *Emitter) VisitGoto(node *ast.Goto) interface{} {
	e.emitLine("goto %s;", node.Name)
	return nil
}

// ====== Expressions ======

// binary renders left, and when op is set, " op " followed by rest.
func (e *Emitter) binary(left ast.Node, op ast.Operator, rest ast.Node) string {
	l := e.render(left)
	if op == ast.OpNone {
		return l
	}
	return l + " " + op.String() + " " + e.render(rest)
}

func (e *Emitter) VisitComparison(node *ast.Comparison) interface{} {
	if node.Rest == nil {
		return e.render(node.Left)
	}
	return e.binary(node.Left, node.Op, node.Rest)
}

func (e *Emitter) VisitExpression(node *ast.Expression) interface{} {
	if node.Rest == nil {
		return e.render(node.Left)
	}
	return e.binary(node.Left, node.Op, node.Rest)
}

func (e *Emitter) VisitTerm(node *ast.Term) interface{} {
	if node.Rest == nil {
		return e.render(node.Left)
	}
	return e.binary(node.Left, node.Op, node.Rest)
}

func (e *Emitter) VisitUnary(node *ast.Unary) interface{} {
	if node.Operand == nil {
		e.fail("missing operand at %s", node.Span.Start)
		return ""
	}
	return node.Op.String() + e.render(node.Operand)
}

func (e *Emitter) VisitIntegerLit(node *ast.IntegerLit) interface{} { return node.String() }
func (e *Emitter) VisitFloatLit(node *ast.FloatLit) interface{}     { return node.String() }

func (e *Emitter) VisitVariable(node *ast.Variable) interface{} {
	if e.declare(node.Name) {
		e.reads = append(e.reads, node.Name)
	}
	return node.Name
}
