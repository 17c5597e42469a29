package ast

// Visitor is implemented by passes over the grammar tree. Each node's
// Accept dispatches to the matching method.
type Visitor interface {
	VisitProgram(node *Program) interface{}

	// Statement visitors.
	VisitPrint(node *Print) interface{}
	VisitPrintString(node *PrintString) interface{}
	VisitLet(node *Let) interface{}
	VisitIf(node *If) interface{}
	VisitWhile(node *While) interface{}
	VisitLabel(node *Label) interface{}
	VisitGoto(node *Goto) interface{}
	VisitInput(node *Input) interface{}
	VisitSequence(node *Sequence) interface{}
	VisitEnd(node *End) interface{}

	// Expression visitors.
	VisitComparison(node *Comparison) interface{}
	VisitExpression(node *Expression) interface{}
	VisitTerm(node *Term) interface{}
	VisitUnary(node *Unary) interface{}
	VisitIntegerLit(node *IntegerLit) interface{}
	VisitFloatLit(node *FloatLit) interface{}
	VisitVariable(node *Variable) interface{}
}

// BaseVisitor provides a default implementation of the Visitor interface
// that returns nil for all visits. Concrete visitors embed it and override
// only the methods they need.
type BaseVisitor struct{}

func (v *BaseVisitor) VisitProgram(node *Program) interface{}         { return nil }
func (v *BaseVisitor) VisitPrint(node *Print) interface{}             { return nil }
func (v *BaseVisitor) VisitPrintString(node *PrintString) interface{} { return nil }
func (v *BaseVisitor) VisitLet(node *Let) interface{}                 { return nil }
func (v *BaseVisitor) VisitIf(node *If) interface{}                   { return nil }
func (v *BaseVisitor) VisitWhile(node *While) interface{}             { return nil }
func (v *BaseVisitor) VisitLabel(node *Label) interface{}             { return nil }
func (v *BaseVisitor) VisitGoto(node *Goto) interface{}               { return nil }
func (v *BaseVisitor) VisitInput(node *Input) interface{}             { return nil }
func (v *BaseVisitor) VisitSequence(node *Sequence) interface{}       { return nil }
func (v *BaseVisitor) VisitEnd(node *End) interface{}                 { return nil }
func (v *BaseVisitor) VisitComparison(node *Comparison) interface{}   { return nil }
func (v *BaseVisitor) VisitExpression(node *Expression) interface{}   { return nil }
func (v *BaseVisitor) VisitTerm(node *Term) interface{}               { return nil }
func (v *BaseVisitor) VisitUnary(node *Unary) interface{}             { return nil }
func (v *BaseVisitor) VisitIntegerLit(node *IntegerLit) interface{}   { return nil }
func (v *BaseVisitor) VisitFloatLit(node *FloatLit) interface{}       { return nil }
func (v *BaseVisitor) VisitVariable(node *Variable) interface{}       { return nil }

// Children returns the direct children of node in source order.
func Children(node Node) []Node {
	var out []Node
	add := func(n Node) {
		out = append(out, n)
	}

	switch n := node.(type) {
	case *Program:
		if n.Body != nil {
			add(n.Body)
		}
	case *Print:
		add(n.Expr)
	case *Let:
		add(n.Expr)
	case *If:
		add(n.Cond)
		add(n.Body)
	case *While:
		add(n.Cond)
		add(n.Body)
	case *Sequence:
		add(n.First)
		add(n.Rest)
	case *Comparison:
		add(n.Left)
		if n.Rest != nil {
			add(n.Rest)
		}
	case *Expression:
		add(n.Left)
		if n.Rest != nil {
			add(n.Rest)
		}
	case *Term:
		add(n.Left)
		if n.Rest != nil {
			add(n.Rest)
		}
	case *Unary:
		add(n.Operand)
	}
	return out
}

// Walk traverses the tree depth-first in source order, calling fn for each
// node. Children of a node are skipped when fn returns false.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Walk(child, fn)
	}
}
