// Package compiler walks a parsed AST and emits register-addressed
// bytecode into a value.Prototype.
package compiler

import (
	"github.com/vex-lang/vex/lang/ast"
	"github.com/vex-lang/vex/lang/parser"
	"github.com/vex-lang/vex/lang/scanner"
	"github.com/vex-lang/vex/lang/token"
	"github.com/vex-lang/vex/lang/value"
)

// Compile scans, parses and compiles src into a top-level prototype.
func Compile(src []byte) (*value.Prototype, error) {
	toks, err := scanner.Tokenize(src)
	if err != nil {
		pos := token.Position{}
		if serr, ok := err.(*scanner.Error); ok {
			pos = serr.Pos
		}
		return nil, &Error{Kind: ScanErr, Pos: pos, Inner: err}
	}

	blk, err := parser.ParseTokens(toks)
	if err != nil {
		pos := token.Position{}
		lexeme := ""
		if perr, ok := err.(*parser.Error); ok {
			pos, lexeme = perr.Pos, perr.Lexeme
		}
		return nil, &Error{Kind: ParseErr, Pos: pos, Lexeme: lexeme, Inner: err}
	}

	c := newCompiler()
	if err := c.compileTop(blk); err != nil {
		return nil, err
	}

	regCount := c.localCount + c.maxTemps
	if regCount > maxRegisters {
		return nil, &Error{Kind: TooManyRegisters, Pos: blk.Pos()}
	}

	return &value.Prototype{
		Code:      c.code,
		Constants: c.consts.values,
		RegCount:  regCount,
		ArgCount:  0,
		Entry:     0,
		Name:      "main",
	}, nil
}

// maxRegisters is the ceiling on locals+temps a single prototype can use:
// every register operand is encoded as a uint8 (EncodeAB/EncodeABC in
// lang/value/instruction.go), so an index past this wraps modulo 256 and
// silently aliases an unrelated register instead of failing loudly.
const maxRegisters = 256

type compiler struct {
	code   []value.Instruction
	consts *constPool

	locals     map[string]uint32
	localCount uint32

	temps    uint32
	maxTemps uint32
}

func newCompiler() *compiler {
	return &compiler{
		consts: newConstPool(),
		locals: make(map[string]uint32),
	}
}

func (c *compiler) emit(ins value.Instruction) int {
	c.code = append(c.code, ins)
	return len(c.code) - 1
}

// patchJMP rewrites the A-encoded JMP at idx so it targets target,
// relative to the instruction immediately following it.
func (c *compiler) patchJMP(idx, target int) {
	offset := int32(target - (idx + 1))
	c.code[idx] = value.EncodeA(value.JMP, offset)
}

func (c *compiler) allocTemp() uint32 {
	r := c.localCount + c.temps
	c.temps++
	if c.temps > c.maxTemps {
		c.maxTemps = c.temps
	}
	return r
}

func (c *compiler) freeTemps(n uint32) {
	c.temps -= n
}

// compileTop compiles the program's top-level statements, appending an
// implicit `return nil;` if control can fall off the end.
func (c *compiler) compileTop(blk *ast.Block) error {
	for _, s := range blk.Stmts {
		if err := c.compileStmt(s); err != nil {
			return err
		}
	}
	if len(blk.Stmts) == 0 {
		return c.emitImplicitReturn(blk.Pos())
	}
	if _, ok := blk.Stmts[len(blk.Stmts)-1].(*ast.Return); !ok {
		return c.emitImplicitReturn(blk.Stmts[len(blk.Stmts)-1].Pos())
	}
	return nil
}

func (c *compiler) emitImplicitReturn(pos token.Position) error {
	r := c.allocTemp()
	k := c.consts.internPrim(value.NewNil())
	c.emit(value.EncodeAB(value.LOAD, uint8(r), uint16(k)))
	c.emit(value.EncodeA(value.RET, int32(r)))
	c.freeTemps(1)
	return nil
}
