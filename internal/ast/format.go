package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented dump of the tree rooted at node to w.
// Sequence chains are shown as sibling statements and pass-through levels
// of the expression chain are collapsed.
func Fprint(w io.Writer, node Node) error {
	p := &treePrinter{w: w}
	p.print(node, 0)
	return p.err
}

// Sprint returns the dump Fprint would write.
func Sprint(node Node) string {
	var sb strings.Builder
	_ = Fprint(&sb, node)
	return sb.String()
}

type treePrinter struct {
	w   io.Writer
	err error
}

func (p *treePrinter) line(depth int, format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, strings.Repeat("  ", depth)+format+"\n", args...)
}

func (p *treePrinter) print(node Node, depth int) {
	switch n := node.(type) {
	case nil:
		p.line(depth, "<nil>")
		return
	case *Sequence:
		for _, s := range Flatten(n) {
			p.print(s, depth)
		}
		return
	case *End:
		return
	case *Comparison:
		if n.Rest == nil {
			p.print(n.Left, depth)
			return
		}
	case *Expression:
		if n.Rest == nil {
			p.print(n.Left, depth)
			return
		}
	case *Term:
		if n.Rest == nil {
			p.print(n.Left, depth)
			return
		}
	case *Unary:
		if n.Op == OpNone {
			p.print(n.Operand, depth)
			return
		}
	}

	p.line(depth, "%s", label(node))
	for _, child := range Children(node) {
		p.print(child, depth+1)
	}
}

func label(node Node) string {
	switch n := node.(type) {
	case *Program:
		return fmt.Sprintf("Program [%s]", strings.Join(n.Variables, " "))
	case *Print:
		return "Print"
	case *PrintString:
		return fmt.Sprintf("PrintString %q", n.Text)
	case *Let:
		return "Let " + n.Name
	case *If:
		return "If"
	case *While:
		return "While"
	case *Label:
		return "Label " + n.Name
	case *Goto:
		return "Goto " + n.Name
	case *Input:
		return "Input " + n.Name
	case *Comparison:
		return "Comparison " + n.Op.String()
	case *Expression:
		return "Expression " + n.Op.String()
	case *Term:
		return "Term " + n.Op.String()
	case *Unary:
		return "Unary " + n.Op.String()
	case *IntegerLit:
		return "Integer " + n.String()
	case *FloatLit:
		return "Float " + n.String()
	case *Variable:
		return "Variable " + n.Name
	default:
		return fmt.Sprintf("%T", node)
	}
}
