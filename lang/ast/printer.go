package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer pretty-prints an AST, one node per indented line, for debugging
// (the `parse` CLI subcommand and tests use this rather than a bespoke
// formatter).
type Printer struct {
	Output io.Writer
}

// Print walks node and writes an indented one-line-per-node rendering to
// p.Output.
func (p *Printer) Print(node Node) error {
	pp := &printer{w: p.Output}
	Walk(pp, node)
	return pp.err
}

type printer struct {
	w     io.Writer
	depth int
	err   error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit {
		p.depth--
		return nil
	}
	if p.err != nil {
		return nil
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat(". ", p.depth), describe(n))
	p.depth++
	return p
}

func describe(n Node) string {
	switch n := n.(type) {
	case *Literal:
		return fmt.Sprintf("literal %v", n.Value)
	case *Identifier:
		return fmt.Sprintf("identifier %s", n.Name)
	case *Binary:
		return fmt.Sprintf("binary %s", n.Op)
	case *Unary:
		return fmt.Sprintf("unary %s", n.Op)
	case *Call:
		return fmt.Sprintf("call %s", n.CalleeName)
	case *Let:
		return fmt.Sprintf("let %s", n.Name)
	case *Assign:
		return fmt.Sprintf("assign %s", n.Name)
	case *ExprStmt:
		return "exprstmt"
	case *If:
		return "if"
	case *Block:
		return fmt.Sprintf("block (%d stmts)", len(n.Stmts))
	case *Return:
		return "return"
	default:
		return fmt.Sprintf("%T", n)
	}
}
