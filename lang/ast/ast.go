// Package ast defines the abstract syntax tree produced by the parser.
package ast

import "github.com/vex-lang/vex/lang/token"

// Node is implemented by every AST node.
type Node interface {
	// Pos returns the position of the first token that produced this node.
	Pos() token.Position
	Walk(v Visitor)
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}
