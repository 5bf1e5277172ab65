package compiler

import (
	"github.com/vex-lang/vex/lang/ast"
	"github.com/vex-lang/vex/lang/token"
	"github.com/vex-lang/vex/lang/value"
)

// compileExpr compiles n so its result ends up in register dst.
func (c *compiler) compileExpr(n ast.Expr, dst uint32) error {
	switch e := n.(type) {
	case *ast.Literal:
		return c.compileLiteral(e, dst)
	case *ast.Identifier:
		return c.compileIdentifier(e, dst)
	case *ast.Unary:
		return c.compileUnary(e, dst)
	case *ast.Binary:
		return c.compileBinary(e, dst)
	case *ast.Call:
		return c.compileCall(e, dst)
	default:
		return &Error{Kind: Unknown, Pos: n.Pos()}
	}
}

func (c *compiler) compileLiteral(n *ast.Literal, dst uint32) error {
	var k int
	switch n.Kind {
	case ast.LitNil:
		k = c.consts.internPrim(value.NewNil())
	case ast.LitBool:
		k = c.consts.internPrim(value.NewBool(n.Value.(bool)))
	case ast.LitInt:
		k = c.consts.internPrim(value.NewI64(n.Value.(int64)))
	case ast.LitFloat:
		k = c.consts.internPrim(value.NewF64(n.Value.(float64)))
	case ast.LitString:
		k = c.consts.internString(n.Value.(string))
	default:
		return &Error{Kind: Unknown, Pos: n.Pos()}
	}
	c.emit(value.EncodeAB(value.LOAD, uint8(dst), uint16(k)))
	return nil
}

func (c *compiler) compileIdentifier(n *ast.Identifier, dst uint32) error {
	r, ok := c.locals[n.Name]
	if !ok {
		return &Error{Kind: UnknownLocal, Pos: n.Pos(), Lexeme: n.Name}
	}
	c.emit(value.EncodeAB(value.MOVE, uint8(dst), uint16(r)))
	return nil
}

func (c *compiler) compileUnary(n *ast.Unary, dst uint32) error {
	if err := c.compileExpr(n.Expr, dst); err != nil {
		return err
	}
	switch n.Op {
	case token.MINUS:
		z := c.allocTemp()
		k := c.consts.internPrim(value.NewI64(0))
		c.emit(value.EncodeAB(value.LOAD, uint8(z), uint16(k)))
		c.emit(value.EncodeABC(value.SUB, uint8(dst), uint8(z), uint8(dst)))
		c.freeTemps(1)
		return nil
	case token.BANG:
		return c.materializeBoolNot(dst)
	default:
		return &Error{Kind: UnknownOperation, Pos: n.Pos(), Lexeme: n.Op.String()}
	}
}

// materializeBoolNot computes the logical negation of reg[dst] (which must
// hold a bool at runtime) back into dst, via the same CMP+skip-JMP
// machinery used for `if`.
func (c *compiler) materializeBoolNot(dst uint32) error {
	falseConst := c.consts.internPrim(value.NewBool(false))
	t := c.allocTemp()
	c.emit(value.EncodeAB(value.LOAD, uint8(t), uint16(falseConst)))
	c.emit(value.EncodeABC(value.EQ, 0, uint8(dst), uint8(t)))
	c.freeTemps(1)

	falseJMP := c.emit(value.EncodeA(value.JMP, 0))
	trueK := c.consts.internPrim(value.NewBool(true))
	c.emit(value.EncodeAB(value.LOAD, uint8(dst), uint16(trueK)))
	endJMP := c.emit(value.EncodeA(value.JMP, 0))
	c.patchJMP(falseJMP, len(c.code))
	falseK := c.consts.internPrim(value.NewBool(false))
	c.emit(value.EncodeAB(value.LOAD, uint8(dst), uint16(falseK)))
	c.patchJMP(endJMP, len(c.code))
	return nil
}

func (c *compiler) compileBinary(n *ast.Binary, dst uint32) error {
	switch n.Op {
	case token.EQEQ, token.BANGEQ, token.LT, token.LE, token.GT, token.GE:
		return c.materializeComparison(n, dst)
	case token.PLUS, token.MINUS, token.STAR, token.SLASH:
		return c.compileArith(n, dst)
	case token.AND:
		return c.compileShortCircuit(n, dst, true)
	case token.OR:
		return c.compileShortCircuit(n, dst, false)
	default:
		return &Error{Kind: UnknownOperation, Pos: n.Pos(), Lexeme: n.Op.String()}
	}
}

func (c *compiler) compileArith(n *ast.Binary, dst uint32) error {
	l := c.allocTemp()
	if err := c.compileExpr(n.Left, l); err != nil {
		return err
	}
	r := c.allocTemp()
	if err := c.compileExpr(n.Right, r); err != nil {
		return err
	}

	var op value.Opcode
	switch n.Op {
	case token.PLUS:
		op = value.ADD
	case token.MINUS:
		op = value.SUB
	case token.STAR:
		op = value.MUL
	case token.SLASH:
		op = value.DIV
	}
	c.emit(value.EncodeABC(op, uint8(dst), uint8(l), uint8(r)))
	c.freeTemps(2)
	return nil
}

// comparisonOpcode maps a comparison token to (opcode, inv, swap). swap
// means the left/right operands must be swapped before comparing (GT/GE
// are implemented as swapped LT/LE).
func comparisonOpcode(op token.Kind) (value.Opcode, uint8, bool) {
	switch op {
	case token.EQEQ:
		return value.EQ, 0, false
	case token.BANGEQ:
		return value.EQ, 1, false
	case token.LT:
		return value.LT, 0, false
	case token.LE:
		return value.LE, 0, false
	case token.GT:
		return value.LT, 0, true
	case token.GE:
		return value.LE, 0, true
	default:
		return value.EQ, 0, false
	}
}

// materializeComparison compiles a comparison used as a value: CMP
// followed by a two-arm LOAD dst,true / LOAD dst,false materialization.
// The result is a bool, the same representation emitBoolBranch and
// materializeBoolNot test against, so a comparison stored in a local (or
// fed to and/or/!) behaves identically to a bool literal.
func (c *compiler) materializeComparison(n *ast.Binary, dst uint32) error {
	l := c.allocTemp()
	if err := c.compileExpr(n.Left, l); err != nil {
		return err
	}
	r := c.allocTemp()
	if err := c.compileExpr(n.Right, r); err != nil {
		return err
	}

	op, inv, swap := comparisonOpcode(n.Op)
	a, b := l, r
	if swap {
		a, b = r, l
	}
	c.emit(value.EncodeABC(op, inv, uint8(a), uint8(b)))
	c.freeTemps(2)

	falseJMP := c.emit(value.EncodeA(value.JMP, 0))
	trueK := c.consts.internPrim(value.NewBool(true))
	c.emit(value.EncodeAB(value.LOAD, uint8(dst), uint16(trueK)))
	endJMP := c.emit(value.EncodeA(value.JMP, 0))
	c.patchJMP(falseJMP, len(c.code))
	falseK := c.consts.internPrim(value.NewBool(false))
	c.emit(value.EncodeAB(value.LOAD, uint8(dst), uint16(falseK)))
	c.patchJMP(endJMP, len(c.code))
	return nil
}

// compileShortCircuit compiles `and`/`or`. isAnd selects which side's
// falsity/truth short-circuits: `and` skips the right operand when the
// left is false; `or` skips it when the left is true.
func (c *compiler) compileShortCircuit(n *ast.Binary, dst uint32, isAnd bool) error {
	if err := c.compileExpr(n.Left, dst); err != nil {
		return err
	}

	skipJMP, err := c.emitBoolBranch(dst, isAnd)
	if err != nil {
		return err
	}

	if err := c.compileExpr(n.Right, dst); err != nil {
		return err
	}
	c.patchJMP(skipJMP, len(c.code))
	return nil
}

// emitBoolBranch compares reg[r] (which must hold a bool) against want and
// emits a JMP that is taken when reg[r] != want (the skip-JMP pattern skips
// the JMP itself, i.e. does not take it, when the comparison holds),
// returning its index for later patching.
func (c *compiler) emitBoolBranch(r uint32, want bool) (int, error) {
	k := c.consts.internPrim(value.NewBool(want))
	t := c.allocTemp()
	c.emit(value.EncodeAB(value.LOAD, uint8(t), uint16(k)))
	c.emit(value.EncodeABC(value.EQ, 0, uint8(r), uint8(t)))
	c.freeTemps(1)
	jmp := c.emit(value.EncodeA(value.JMP, 0))
	return jmp, nil
}

// emitBranch compiles cond for control flow (an `if`'s condition) and
// returns the index of a JMP that is taken when cond is false. When cond
// is itself a direct comparison, this uses the skip-JMP pattern alone
// (no boolean materialization); otherwise cond is compiled into a temp
// (which must hold a bool at runtime) and compared against true.
func (c *compiler) emitBranch(cond ast.Expr) (int, error) {
	if bin, ok := cond.(*ast.Binary); ok {
		if op, inv, swap, isCmp := tryComparison(bin.Op); isCmp {
			l := c.allocTemp()
			if err := c.compileExpr(bin.Left, l); err != nil {
				return 0, err
			}
			r := c.allocTemp()
			if err := c.compileExpr(bin.Right, r); err != nil {
				return 0, err
			}
			a, b := l, r
			if swap {
				a, b = r, l
			}
			c.emit(value.EncodeABC(op, inv, uint8(a), uint8(b)))
			c.freeTemps(2)
			return c.emit(value.EncodeA(value.JMP, 0)), nil
		}
	}

	t := c.allocTemp()
	if err := c.compileExpr(cond, t); err != nil {
		return 0, err
	}
	// want=true: emitBoolBranch's JMP is taken when reg[t] != want, i.e.
	// when the condition is false (or any non-bool value, which is never
	// equal to the bool literal true — the documented "non-bool ⇒ falsy"
	// behavior).
	jmp, err := c.emitBoolBranch(t, true)
	c.freeTemps(1)
	return jmp, err
}

func tryComparison(op token.Kind) (value.Opcode, uint8, bool, bool) {
	switch op {
	case token.EQEQ, token.BANGEQ, token.LT, token.LE, token.GT, token.GE:
		o, inv, swap := comparisonOpcode(op)
		return o, inv, swap, true
	default:
		return 0, 0, false, false
	}
}

// maxPadArgs is the number of extra nil-initialized registers the compiler
// reserves immediately after a call's real argument registers. Because
// CALL's encoding carries no count of its own (the callee's declared arg
// count is what's read at runtime, never the call site's),
// the compiler cannot know in advance how many of those registers the
// call site actually populated, so it can't nil-initialize exactly the
// right number. Padding a fixed window with nil gives the documented
// "nil-pad missing arguments" behavior for any call whose resolved arity
// overshoots the supplied arguments by at most maxPadArgs; "drop extra"
// falls out naturally since the interpreter only ever reads the callee's
// arg count, never the caller's.
//
// A resolved (runtime-global) callee whose declared arity exceeds
// len(args)+maxPadArgs reads past this window into whatever those
// registers hold from earlier in the frame, rather than nil — the
// interpreter's own bounds check (dispatchCall, machine.go) only
// substitutes nil once the read falls outside the caller's frame
// entirely. This bound is deliberately generous for the kind of few-
// argument host/script functions this language's grammar can express;
// widening it trades more per-call-site registers and LOAD instructions
// for a larger safety margin.
const maxPadArgs = 8

func (c *compiler) compileCall(n *ast.Call, dst uint32) error {
	calleeReg, isLocal := c.locals[n.CalleeName]

	result := dst
	args := make([]uint32, len(n.Args))
	for i := range n.Args {
		args[i] = c.allocTemp()
	}
	for i, a := range n.Args {
		if err := c.compileExpr(a, args[i]); err != nil {
			return err
		}
	}

	pad := make([]uint32, maxPadArgs)
	nilK := c.consts.internPrim(value.NewNil())
	for i := range pad {
		pad[i] = c.allocTemp()
		c.emit(value.EncodeAB(value.LOAD, uint8(pad[i]), uint16(nilK)))
	}

	var fnReg uint32
	if isLocal {
		fnReg = calleeReg
	} else {
		fnReg = c.allocTemp()
		k := c.consts.internString(n.CalleeName)
		c.emit(value.EncodeAB(value.GLOBAL, uint8(fnReg), uint16(k)))
	}

	firstArg := uint32(0)
	if len(args) > 0 {
		firstArg = args[0]
	} else {
		firstArg = pad[0]
	}
	c.emit(value.EncodeABC(value.CALL, uint8(result), uint8(fnReg), uint8(firstArg)))

	if !isLocal {
		c.freeTemps(1)
	}
	c.freeTemps(uint32(len(pad)))
	c.freeTemps(uint32(len(args)))
	return nil
}
