package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vex-lang/vex/lang/compiler"
	"github.com/vex-lang/vex/lang/value"
)

func TestCompileArithReturn(t *testing.T) {
	proto, err := compiler.Compile([]byte(`let x = 1 + 2; return x;`))
	require.NoError(t, err)
	require.NotEmpty(t, proto.Code)
	assert.Equal(t, value.RET, proto.Code[len(proto.Code)-1].Op())
}

func TestCompileStringConcat(t *testing.T) {
	proto, err := compiler.Compile([]byte(`let s = "hi" + " there"; return s;`))
	require.NoError(t, err)

	var sawAdd bool
	for _, ins := range proto.Code {
		if ins.Op() == value.ADD {
			sawAdd = true
		}
	}
	assert.True(t, sawAdd, "string concatenation compiles through the ADD opcode like arithmetic")
}

func TestCompileIfElse(t *testing.T) {
	proto, err := compiler.Compile([]byte(`
		let x = 5;
		if (x < 10) {
			return 1;
		} else {
			return 0;
		}
	`))
	require.NoError(t, err)

	var sawLT, sawJMP int
	for _, ins := range proto.Code {
		switch ins.Op() {
		case value.LT:
			sawLT++
		case value.JMP:
			sawJMP++
		}
	}
	assert.Equal(t, 1, sawLT)
	assert.GreaterOrEqual(t, sawJMP, 2, "if/else needs at least a false-branch jump and an end jump")
}

func TestCompileIfNoElseFallsThrough(t *testing.T) {
	proto, err := compiler.Compile([]byte(`
		let x = 1;
		if (x == 1) {
			x = 2;
		}
		return x;
	`))
	require.NoError(t, err)
	assert.Equal(t, value.RET, proto.Code[len(proto.Code)-1].Op())
}

func TestCompileCallEmitsGlobalLookup(t *testing.T) {
	proto, err := compiler.Compile([]byte(`print("hi");`))
	require.NoError(t, err)

	var sawGlobal, sawCall bool
	for _, ins := range proto.Code {
		switch ins.Op() {
		case value.GLOBAL:
			sawGlobal = true
		case value.CALL:
			sawCall = true
		}
	}
	assert.True(t, sawGlobal, "calling an undeclared name resolves it from globals")
	assert.True(t, sawCall)
}

func TestCompileImplicitReturn(t *testing.T) {
	proto, err := compiler.Compile([]byte(`let x = 1;`))
	require.NoError(t, err)
	last := proto.Code[len(proto.Code)-1]
	require.Equal(t, value.RET, last.Op())
}

func TestCompileEmptyProgramReturnsNil(t *testing.T) {
	proto, err := compiler.Compile([]byte(``))
	require.NoError(t, err)
	require.Len(t, proto.Code, 2) // LOAD nil, RET
	assert.Equal(t, value.LOAD, proto.Code[0].Op())
	assert.Equal(t, value.RET, proto.Code[1].Op())
}

func TestCompileBareNonCallExprIsUnusedEvaluation(t *testing.T) {
	_, err := compiler.Compile([]byte(`"hi";`))
	require.Error(t, err)
	cerr, ok := err.(*compiler.Error)
	require.True(t, ok)
	assert.Equal(t, compiler.UnusedEvaluation, cerr.Kind)
}

func TestCompileUnknownLocalOnReturn(t *testing.T) {
	_, err := compiler.Compile([]byte(`return z;`))
	require.Error(t, err)
	cerr, ok := err.(*compiler.Error)
	require.True(t, ok)
	assert.Equal(t, compiler.UnknownLocal, cerr.Kind)
}

func TestCompileUnknownLocalOnAssign(t *testing.T) {
	_, err := compiler.Compile([]byte(`z = 1;`))
	require.Error(t, err)
	cerr, ok := err.(*compiler.Error)
	require.True(t, ok)
	assert.Equal(t, compiler.UnknownLocal, cerr.Kind)
}

func TestCompileScanErrorWraps(t *testing.T) {
	_, err := compiler.Compile([]byte("let x = 1 $ 2;"))
	require.Error(t, err)
	cerr, ok := err.(*compiler.Error)
	require.True(t, ok)
	assert.Equal(t, compiler.ScanErr, cerr.Kind)
	assert.Error(t, cerr.Unwrap())
}

func TestCompileParseErrorWraps(t *testing.T) {
	_, err := compiler.Compile([]byte("let x = ;"))
	require.Error(t, err)
	cerr, ok := err.(*compiler.Error)
	require.True(t, ok)
	assert.Equal(t, compiler.ParseErr, cerr.Kind)
	assert.Error(t, cerr.Unwrap())
}

func TestCompileNestedBlockScopesRegistersNotNames(t *testing.T) {
	// This language has no block scoping for `let` (locals live in one
	// flat map for the whole top-level prototype); redeclaring a name in
	// a nested block simply rebinds it for everything that follows.
	proto, err := compiler.Compile([]byte(`
		let x = 1;
		{
			let x = 2;
		}
		return x;
	`))
	require.NoError(t, err)
	assert.Equal(t, value.RET, proto.Code[len(proto.Code)-1].Op())
}

// requireOperandBounds walks every instruction of proto and asserts that
// each register operand is < RegCount and each constant operand is <
// len(Constants), the invariant the interpreter relies on.
func requireOperandBounds(t *testing.T, proto *value.Prototype) {
	t.Helper()
	reg := func(i int, r uint8) {
		assert.Less(t, uint32(r), proto.RegCount, "instruction %d: register %d out of range", i, r)
	}
	konst := func(i int, k uint16) {
		assert.Less(t, int(k), len(proto.Constants), "instruction %d: constant %d out of range", i, k)
	}
	for i, ins := range proto.Code {
		op := ins.Op()
		switch op {
		case value.LOAD, value.GLOBAL:
			a, b := ins.ABOperands()
			reg(i, a)
			konst(i, b)
		case value.MOVE, value.STR_FROM:
			a, b := ins.ABOperands()
			reg(i, a)
			reg(i, uint8(b))
		case value.RET, value.OBJ_NEW, value.STR_ECHO, value.DBG_DUMP:
			reg(i, uint8(ins.A()))
		case value.JMP:
			target := int(i) + 1 + int(ins.A())
			assert.GreaterOrEqual(t, target, 0, "instruction %d: jump before code start", i)
			assert.LessOrEqual(t, target, len(proto.Code), "instruction %d: jump past code end", i)
		case value.CALL, value.ADD, value.SUB, value.MUL, value.DIV,
			value.OBJ_SET, value.OBJ_GET:
			a, b, c := ins.ABCOperands()
			reg(i, a)
			reg(i, b)
			reg(i, c)
		case value.EQ, value.LT, value.LE:
			_, b, c := ins.ABCOperands()
			reg(i, b)
			reg(i, c)
		}
	}
}

func TestCompiledPrototypeOperandBounds(t *testing.T) {
	sources := []string{
		`let x = 1 + 2; return x;`,
		`let s = "hi" + " there"; return s;`,
		`let x = 5; if (x < 10) { return 1; } else { return 0; }`,
		`let a = true; let b = false; return a and b or !a;`,
		`let n = 0; if (n <= 0) { n = n + 1; } return n;`,
		`print("hi", 1, 2.5, nil);`,
		`let x = -(1 + 2) * 3 / 4; return x;`,
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			proto, err := compiler.Compile([]byte(src))
			require.NoError(t, err)
			requireOperandBounds(t, proto)
			if len(proto.Code) > 0 {
				assert.Less(t, int(proto.Entry), len(proto.Code))
			}
		})
	}
}

func TestCompileLogicalAndOr(t *testing.T) {
	proto, err := compiler.Compile([]byte(`
		let a = true;
		let b = false;
		return a and b or a;
	`))
	require.NoError(t, err)
	var sawEQ bool
	for _, ins := range proto.Code {
		if ins.Op() == value.EQ {
			sawEQ = true
		}
	}
	assert.True(t, sawEQ, "and/or short-circuiting is built from the bool-branch EQ pattern")
}

func TestCompileUnaryNegationAndNot(t *testing.T) {
	proto, err := compiler.Compile([]byte(`
		let x = -5;
		let y = !true;
		return x;
	`))
	require.NoError(t, err)
	var sawSub bool
	for _, ins := range proto.Code {
		if ins.Op() == value.SUB {
			sawSub = true
		}
	}
	assert.True(t, sawSub, "unary minus lowers to 0 - x")
}
