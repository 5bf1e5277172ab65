package compiler

import (
	"github.com/vex-lang/vex/lang/ast"
	"github.com/vex-lang/vex/lang/value"
)

func (c *compiler) compileStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Let:
		return c.compileLet(n)
	case *ast.Assign:
		return c.compileAssign(n)
	case *ast.ExprStmt:
		return c.compileExprStmt(n)
	case *ast.If:
		return c.compileIf(n)
	case *ast.Block:
		return c.compileBlockStmt(n)
	case *ast.Return:
		return c.compileReturn(n)
	default:
		return &Error{Kind: Unknown, Pos: s.Pos()}
	}
}

func (c *compiler) compileLet(n *ast.Let) error {
	r := c.localCount
	c.localCount++
	if err := c.compileExpr(n.Value, r); err != nil {
		return err
	}
	c.locals[n.Name] = r
	return nil
}

func (c *compiler) compileAssign(n *ast.Assign) error {
	r, ok := c.locals[n.Name]
	if !ok {
		return &Error{Kind: UnknownLocal, Pos: n.Pos(), Lexeme: n.Name}
	}
	t := c.allocTemp()
	if err := c.compileExpr(n.Value, t); err != nil {
		return err
	}
	c.emit(value.EncodeAB(value.MOVE, uint8(r), uint16(t)))
	c.freeTemps(1)
	return nil
}

func (c *compiler) compileExprStmt(n *ast.ExprStmt) error {
	call, ok := n.X.(*ast.Call)
	if !ok {
		return &Error{Kind: UnusedEvaluation, Pos: n.X.Pos()}
	}
	t := c.allocTemp()
	if err := c.compileCall(call, t); err != nil {
		return err
	}
	c.freeTemps(1)
	return nil
}

func (c *compiler) compileBlockStmt(n *ast.Block) error {
	for _, s := range n.Stmts {
		if err := c.compileStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) compileReturn(n *ast.Return) error {
	t := c.allocTemp()
	if n.Value != nil {
		if err := c.compileExpr(n.Value, t); err != nil {
			return err
		}
	} else {
		k := c.consts.internPrim(value.NewNil())
		c.emit(value.EncodeAB(value.LOAD, uint8(t), uint16(k)))
	}
	c.emit(value.EncodeA(value.RET, int32(t)))
	c.freeTemps(1)
	return nil
}

func (c *compiler) compileIf(n *ast.If) error {
	falseJMP, err := c.emitBranch(n.Cond)
	if err != nil {
		return err
	}

	if err := c.compileBlockStmt(n.Then); err != nil {
		return err
	}

	if n.Else == nil {
		c.patchJMP(falseJMP, len(c.code))
		return nil
	}

	endJMP := c.emit(value.EncodeA(value.JMP, 0))
	c.patchJMP(falseJMP, len(c.code))

	if err := c.compileBlockStmt(n.Else); err != nil {
		return err
	}
	c.patchJMP(endJMP, len(c.code))
	return nil
}
