// Package ast defines the grammar tree produced by the parser and consumed
// by the code generator.
//
// The expression levels (Comparison, Expression, Term, Unary) form a strict
// precedence chain. Each binary level is right-recursive: a node holds its
// left operand and, when an operator follows, the remainder of the chain.
// A nil Rest means the node is a pass-through to the level below. Trees are
// built once by the parser and never mutated afterwards.
package ast

import (
	"strconv"
	"strings"

	"github.com/basicc-lang/basicc/internal/position"
)

// Node is the base interface for all grammar tree nodes
type Node interface {
	// GetSpan returns the source span of the node's first token
	GetSpan() position.Span
	// String returns a source-like rendering of the node
	String() string
	// Accept implements the visitor pattern for tree traversal
	Accept(visitor Visitor) interface{}
}

// Statement represents all statement nodes
type Statement interface {
	Node
	statementNode()
}

// Primary represents the leaves of the expression chain
type Primary interface {
	Node
	primaryNode()
}

// Operator identifies the operator carried by an expression chain node.
type Operator int

const (
	OpNone Operator = iota // pass-through, no operator present
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPos
	OpNeg
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var operatorSymbols = map[Operator]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpPos: "+",
	OpNeg: "-",
	OpEq:  "==",
	OpNe:  "!=",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
}

// String returns the operator's source symbol
func (op Operator) String() string {
	return operatorSymbols[op]
}

// ===== Program Structure =====

// Program is the root of the tree. Body is a Sequence chain; Variables is
// the declared-variable set in sorted order.
type Program struct {
	Span      position.Span
	Body      Statement
	Variables []string
}

func (p *Program) GetSpan() position.Span             { return p.Span }
func (p *Program) String() string                     { return joinStatements(Flatten(p.Body)) }
func (p *Program) Accept(visitor Visitor) interface{} { return visitor.VisitProgram(p) }

// ===== Statements =====

// Print prints the numeric value of an expression
type Print struct {
	Span position.Span
	Expr *Expression
}

func (s *Print) GetSpan() position.Span             { return s.Span }
func (s *Print) statementNode()                     {}
func (s *Print) String() string                     { return "PRINT " + s.Expr.String() }
func (s *Print) Accept(visitor Visitor) interface{} { return visitor.VisitPrint(s) }

// PrintString prints a string literal verbatim
type PrintString struct {
	Span position.Span
	Text string
}

func (s *PrintString) GetSpan() position.Span             { return s.Span }
func (s *PrintString) statementNode()                     {}
func (s *PrintString) String() string                     { return `PRINT "` + s.Text + `"` }
func (s *PrintString) Accept(visitor Visitor) interface{} { return visitor.VisitPrintString(s) }

// Let assigns an expression to a variable, declaring it on first use
type Let struct {
	Span position.Span
	Name string
	Expr *Expression
}

func (s *Let) GetSpan() position.Span             { return s.Span }
func (s *Let) statementNode()                     {}
func (s *Let) String() string                     { return "LET " + s.Name + " = " + s.Expr.String() }
func (s *Let) Accept(visitor Visitor) interface{} { return visitor.VisitLet(s) }

// If runs Body when Cond holds
type If struct {
	Span position.Span
	Cond *Comparison
	Body Statement
}

func (s *If) GetSpan() position.Span { return s.Span }
func (s *If) statementNode()         {}
func (s *If) String() string {
	return "IF " + s.Cond.String() + " THEN\n" + indentBlock(s.Body) + "ENDIF"
}
func (s *If) Accept(visitor Visitor) interface{} { return visitor.VisitIf(s) }

// While repeats Body while Cond holds
type While struct {
	Span position.Span
	Cond *Comparison
	Body Statement
}

func (s *While) GetSpan() position.Span { return s.Span }
func (s *While) statementNode()         {}
func (s *While) String() string {
	return "WHILE " + s.Cond.String() + " REPEAT\n" + indentBlock(s.Body) + "ENDWHILE"
}
func (s *While) Accept(visitor Visitor) interface{} { return visitor.VisitWhile(s) }

// Label declares a jump target
type Label struct {
	Span position.Span
	Name string
}

func (s *Label) GetSpan() position.Span             { return s.Span }
func (s *Label) statementNode()                     {}
func (s *Label) String() string                     { return "LABEL " + s.Name }
func (s *Label) Accept(visitor Visitor) interface{} { return visitor.VisitLabel(s) }

// Goto jumps to a label declared anywhere in the program
type Goto struct {
	Span position.Span
	Name string
}

func (s *Goto) GetSpan() position.Span             { return s.Span }
func (s *Goto) statementNode()                     {}
func (s *Goto) String() string                     { return "GOTO " + s.Name }
func (s *Goto) Accept(visitor Visitor) interface{} { return visitor.VisitGoto(s) }

// Input reads a number into a variable, declaring it on first use
type Input struct {
	Span position.Span
	Name string
}

func (s *Input) GetSpan() position.Span             { return s.Span }
func (s *Input) statementNode()                     {}
func (s *Input) String() string                     { return "INPUT " + s.Name }
func (s *Input) Accept(visitor Visitor) interface{} { return visitor.VisitInput(s) }

// Sequence chains First before the remaining statements in Rest
type Sequence struct {
	First Statement
	Rest  Statement
}

func (s *Sequence) GetSpan() position.Span             { return s.First.GetSpan() }
func (s *Sequence) statementNode()                     {}
func (s *Sequence) String() string                     { return joinStatements(Flatten(s)) }
func (s *Sequence) Accept(visitor Visitor) interface{} { return visitor.VisitSequence(s) }

// End terminates a Sequence chain
type End struct {
	Span position.Span
}

func (s *End) GetSpan() position.Span             { return s.Span }
func (s *End) statementNode()                     {}
func (s *End) String() string                     { return "" }
func (s *End) Accept(visitor Visitor) interface{} { return visitor.VisitEnd(s) }

// ===== Expressions =====

// Comparison is an expression optionally followed by a relational operator
// and the rest of the chain. "a == b == c" nests as a == (b == (c)).
type Comparison struct {
	Span position.Span
	Left *Expression
	Op   Operator
	Rest *Comparison
}

func (c *Comparison) GetSpan() position.Span { return c.Span }
func (c *Comparison) String() string {
	if c.Rest == nil {
		return c.Left.String()
	}
	return c.Left.String() + " " + c.Op.String() + " " + c.Rest.String()
}
func (c *Comparison) Accept(visitor Visitor) interface{} { return visitor.VisitComparison(c) }

// Expression is a term optionally followed by '+' or '-' and the rest of the chain
type Expression struct {
	Span position.Span
	Left *Term
	Op   Operator
	Rest *Expression
}

func (e *Expression) GetSpan() position.Span { return e.Span }
func (e *Expression) String() string {
	if e.Rest == nil {
		return e.Left.String()
	}
	return e.Left.String() + " " + e.Op.String() + " " + e.Rest.String()
}
func (e *Expression) Accept(visitor Visitor) interface{} { return visitor.VisitExpression(e) }

// Term is a unary optionally followed by '*' or '/' and the rest of the chain
type Term struct {
	Span position.Span
	Left *Unary
	Op   Operator
	Rest *Term
}

func (t *Term) GetSpan() position.Span { return t.Span }
func (t *Term) String() string {
	if t.Rest == nil {
		return t.Left.String()
	}
	return t.Left.String() + " " + t.Op.String() + " " + t.Rest.String()
}
func (t *Term) Accept(visitor Visitor) interface{} { return visitor.VisitTerm(t) }

// Unary is a primary with an optional sign
type Unary struct {
	Span    position.Span
	Op      Operator // OpNone, OpPos or OpNeg
	Operand Primary
}

func (u *Unary) GetSpan() position.Span { return u.Span }
func (u *Unary) String() string {
	return u.Op.String() + u.Operand.String()
}
func (u *Unary) Accept(visitor Visitor) interface{} { return visitor.VisitUnary(u) }

// IntegerLit is a 64-bit signed integer literal
type IntegerLit struct {
	Span  position.Span
	Value int64
}

func (l *IntegerLit) GetSpan() position.Span             { return l.Span }
func (l *IntegerLit) primaryNode()                       {}
func (l *IntegerLit) String() string                     { return strconv.FormatInt(l.Value, 10) }
func (l *IntegerLit) Accept(visitor Visitor) interface{} { return visitor.VisitIntegerLit(l) }

// FloatLit is a double-precision literal
type FloatLit struct {
	Span  position.Span
	Value float64
}

func (l *FloatLit) GetSpan() position.Span { return l.Span }
func (l *FloatLit) primaryNode()           {}

// String always includes a decimal point so the literal stays a float.
func (l *FloatLit) String() string {
	s := strconv.FormatFloat(l.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
func (l *FloatLit) Accept(visitor Visitor) interface{} { return visitor.VisitFloatLit(l) }

// Variable references a declared variable by name
type Variable struct {
	Span position.Span
	Name string
}

func (v *Variable) GetSpan() position.Span             { return v.Span }
func (v *Variable) primaryNode()                       {}
func (v *Variable) String() string                     { return v.Name }
func (v *Variable) Accept(visitor Visitor) interface{} { return visitor.VisitVariable(v) }

// ===== Helpers =====

// Flatten returns the statements of a Sequence chain in order, without
// the terminating End. A non-sequence statement yields itself.
func Flatten(s Statement) []Statement {
	var out []Statement
	for s != nil {
		switch n := s.(type) {
		case *Sequence:
			out = append(out, Flatten(n.First)...)
			s = n.Rest
		case *End:
			return out
		default:
			return append(out, n)
		}
	}
	return out
}

func joinStatements(stmts []Statement) string {
	var sb strings.Builder
	for _, s := range stmts {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func indentBlock(body Statement) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(joinStatements(Flatten(body)), "\n"), "\n") {
		if line == "" {
			continue
		}
		sb.WriteString("    ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
