package ast

import "github.com/vex-lang/vex/lang/token"

// LiteralKind identifies the Go type carried by a Literal's Value field.
type LiteralKind int

const (
	LitNil LiteralKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
)

// Literal is a nil, bool, i64, f64 or string constant.
type Literal struct {
	Kind  LiteralKind
	Value any // nil, bool, int64, float64 or string, matching Kind
	Start token.Position
}

func (n *Literal) Pos() token.Position { return n.Start }
func (n *Literal) Walk(Visitor)        {}
func (*Literal) exprNode()             {}

// Identifier is a reference to a local variable.
type Identifier struct {
	Name  string
	Start token.Position
}

func (n *Identifier) Pos() token.Position { return n.Start }
func (n *Identifier) Walk(Visitor)        {}
func (*Identifier) exprNode()             {}

// Binary is a binary operator expression.
type Binary struct {
	Op          token.Kind
	Left, Right Expr
	Start       token.Position
}

func (n *Binary) Pos() token.Position { return n.Start }
func (n *Binary) Walk(v Visitor) {
	if n.Left != nil {
		Walk(v, n.Left)
	}
	if n.Right != nil {
		Walk(v, n.Right)
	}
}
func (*Binary) exprNode() {}

// Unary is a unary operator expression (- or !).
type Unary struct {
	Op    token.Kind
	Expr  Expr
	Start token.Position
}

func (n *Unary) Pos() token.Position { return n.Start }
func (n *Unary) Walk(v Visitor) {
	if n.Expr != nil {
		Walk(v, n.Expr)
	}
}
func (*Unary) exprNode() {}

// Call invokes the function bound to CalleeName with the given argument
// expressions.
type Call struct {
	CalleeName string
	Args       []Expr
	Start      token.Position
}

func (n *Call) Pos() token.Position { return n.Start }
func (n *Call) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (*Call) exprNode() {}
