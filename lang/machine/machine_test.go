package machine_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vex-lang/vex/lang/compiler"
	"github.com/vex-lang/vex/lang/machine"
	"github.com/vex-lang/vex/lang/value"
)

func compileAndRun(t *testing.T, src string) (value.Value, *machine.State) {
	t.Helper()
	proto, err := compiler.Compile([]byte(src))
	require.NoError(t, err)
	st := machine.NewState()
	result, err := machine.Call(st, proto, nil)
	require.NoError(t, err)
	return result, st
}

func TestArithReturnsInteger(t *testing.T) {
	v, _ := compileAndRun(t, `let x = 1 + 2; return x;`)
	assert.Equal(t, value.I64, v.Tag)
	assert.EqualValues(t, 3, v.I64())
}

func TestStringConcatReturnsString(t *testing.T) {
	v, _ := compileAndRun(t, `let s = "hi" + " there"; return s;`)
	require.True(t, value.IsString(v))
	assert.Equal(t, "hi there", v.Obj().String().Go())
}

func TestIfElseTakesThenBranch(t *testing.T) {
	v, _ := compileAndRun(t, `
		let x = 5;
		if (x < 10) {
			return 1;
		} else {
			return 0;
		}
	`)
	assert.EqualValues(t, 1, v.I64())
}

func TestIfElseTakesElseBranch(t *testing.T) {
	v, _ := compileAndRun(t, `
		let x = 50;
		if (x < 10) {
			return 1;
		} else {
			return 0;
		}
	`)
	assert.EqualValues(t, 0, v.I64())
}

// TestIfOnBoolVariableTakesThenBranch exercises the non-direct-comparison
// path of emitBranch (lang/compiler/expr.go): a bare bool local as an
// `if` condition, with no comparison opcode to fall back on.
func TestIfOnBoolVariableTakesThenBranch(t *testing.T) {
	v, _ := compileAndRun(t, `
		let b = true;
		if (b) {
			return 1;
		}
		return 0;
	`)
	assert.EqualValues(t, 1, v.I64())
}

func TestIfOnFalseBoolVariableTakesElseBranch(t *testing.T) {
	v, _ := compileAndRun(t, `
		let b = false;
		if (b) {
			return 1;
		}
		return 0;
	`)
	assert.EqualValues(t, 0, v.I64())
}

// TestIfOnAndCompoundCondition exercises a compound `and` condition, which
// compiles through compileShortCircuit into the same non-comparison
// emitBranch fallback as a bare bool variable.
func TestIfOnAndCompoundCondition(t *testing.T) {
	v, _ := compileAndRun(t, `
		let x = 5;
		let y = 15;
		if (x < 10 and y < 20) {
			return 1;
		}
		return 0;
	`)
	assert.EqualValues(t, 1, v.I64())

	v, _ = compileAndRun(t, `
		let x = 5;
		let y = 25;
		if (x < 10 and y < 20) {
			return 1;
		}
		return 0;
	`)
	assert.EqualValues(t, 0, v.I64())
}

// TestIfOnComparisonStoredInLocal checks that a comparison materialized
// into a local carries the same truth representation the branch test
// expects: `let b = x < 10; if (b)` must behave exactly like
// `if (x < 10)`.
func TestIfOnComparisonStoredInLocal(t *testing.T) {
	v, _ := compileAndRun(t, `
		let x = 5;
		let b = x < 10;
		if (b) {
			return 1;
		}
		return 0;
	`)
	assert.EqualValues(t, 1, v.I64())

	v, _ = compileAndRun(t, `
		let x = 50;
		let b = x < 10;
		if (b) {
			return 1;
		}
		return 0;
	`)
	assert.EqualValues(t, 0, v.I64())
}

func TestNotOnComparison(t *testing.T) {
	v, _ := compileAndRun(t, `
		let x = 5;
		if (!(x < 10)) {
			return 1;
		}
		return 0;
	`)
	assert.EqualValues(t, 0, v.I64())

	v, _ = compileAndRun(t, `
		let x = 50;
		let b = !(x < 10);
		if (b) {
			return 1;
		}
		return 0;
	`)
	assert.EqualValues(t, 1, v.I64())
}

func TestComparisonValueIsBool(t *testing.T) {
	v, _ := compileAndRun(t, `let x = 5; return x < 10;`)
	assert.Equal(t, value.Bool, v.Tag)
	assert.True(t, v.Bool())

	v, _ = compileAndRun(t, `let x = 50; return x < 10;`)
	assert.Equal(t, value.Bool, v.Tag)
	assert.False(t, v.Bool())
}

func TestSingleShotIfNoLoop(t *testing.T) {
	v, _ := compileAndRun(t, `
		let n = 0;
		let i = 0;
		if (i < 3) {
			n = n + 1;
		}
		return n;
	`)
	assert.EqualValues(t, 1, v.I64())
}

func TestFloatIntCoercionPromotesToFloat(t *testing.T) {
	v, _ := compileAndRun(t, `let x = 1 + 2.5; return x;`)
	assert.Equal(t, value.F64, v.Tag)
	assert.Equal(t, 3.5, v.F64())
}

func TestIntegerDivisionByZeroIsTypeMismatch(t *testing.T) {
	proto, err := compiler.Compile([]byte(`let x = 1; let y = 0; return x / y;`))
	require.NoError(t, err)
	st := machine.NewState()
	_, err = machine.Call(st, proto, nil)
	require.Error(t, err)
	merr, ok := err.(*machine.Error)
	require.True(t, ok)
	assert.Equal(t, machine.TypeMismatch, merr.Kind)
}

func TestFloatDivisionByZeroYieldsInf(t *testing.T) {
	v, _ := compileAndRun(t, `let x = 1.0; let y = 0.0; return x / y;`)
	assert.True(t, math.IsInf(v.F64(), 1))
}

func TestLogicalAndOrShortCircuit(t *testing.T) {
	v, _ := compileAndRun(t, `
		let a = false;
		let b = true;
		return a and b or b;
	`)
	assert.Equal(t, value.Bool, v.Tag)
	assert.True(t, v.Bool())
}

func TestUnaryNegationAndNot(t *testing.T) {
	v, _ := compileAndRun(t, `let x = -5; return x;`)
	assert.EqualValues(t, -5, v.I64())

	v, _ = compileAndRun(t, `let y = !true; return y;`)
	assert.False(t, v.Bool())
}

func TestCallHostFunction(t *testing.T) {
	proto, err := compiler.Compile([]byte(`let r = double(21); return r;`))
	require.NoError(t, err)

	st := machine.NewState()
	st.RegisterHost("double", func(args []value.Value) (value.Value, error) {
		return value.NewI64(args[0].I64() * 2), nil
	}, 1)

	v, err := machine.Call(st, proto, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 42, v.I64())
}

func TestCallHostFunctionNilPadsMissingArgs(t *testing.T) {
	proto, err := compiler.Compile([]byte(`let r = greet(); return r;`))
	require.NoError(t, err)

	st := machine.NewState()
	st.RegisterHost("greet", func(args []value.Value) (value.Value, error) {
		if args[0].IsNil() {
			return value.NewString("hello, stranger"), nil
		}
		return value.NewString("hello, " + args[0].Obj().String().Go()), nil
	}, 1)

	v, err := machine.Call(st, proto, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello, stranger", v.Obj().String().Go())
	assert.EqualValues(t, 1, v.Obj().Refcount(), "a freshly constructed host return must not be double-counted")
	value.Drop(v)
}

// TestCallHostFunctionReturningBorrowedArgIsBalanced exercises HostFunc's
// documented dup-before-returning-a-borrowed-value contract: a host
// function that hands back one of its own (borrowed, un-dup'd) arguments
// must dup it itself, and doing so leaves the result correctly counted.
// The argument is built by concatenation so it is a fresh heap string: a
// constant-pool string's refcount is never lowered by Drop.
func TestCallHostFunctionReturningBorrowedArgIsBalanced(t *testing.T) {
	proto, err := compiler.Compile([]byte(`let r = identity("ec" + "ho"); return r;`))
	require.NoError(t, err)

	st := machine.NewState()
	st.RegisterHost("identity", func(args []value.Value) (value.Value, error) {
		return value.Dup(args[0]), nil
	}, 1)

	v, err := machine.Call(st, proto, nil)
	require.NoError(t, err)
	assert.Equal(t, "echo", v.Obj().String().Go())
	assert.EqualValues(t, 1, v.Obj().Refcount())
	value.Drop(v)
}

// TestCallScriptFunctionValueIsNotLeaked exercises the CALL opcode's
// script-callee path: a global bound to a compiled prototype (the
// embedding surface's new_function_script), called like any other
// function, must not leave its RET-dup'd result over-counted. The callee
// returns a concatenation so its result is a fresh heap string rather than
// a constant-pool one.
func TestCallScriptFunctionValueIsNotLeaked(t *testing.T) {
	calleeProto, err := compiler.Compile([]byte(`return "from " + "callee";`))
	require.NoError(t, err)

	callerProto, err := compiler.Compile([]byte(`let r = callee(); return r;`))
	require.NoError(t, err)

	st := machine.NewState()
	st.Globals().Obj().Table().Set("callee", value.NewFunctionScript(calleeProto))

	v, err := machine.Call(st, callerProto, nil)
	require.NoError(t, err)
	assert.Equal(t, "from callee", v.Obj().String().Go())
	assert.EqualValues(t, 1, v.Obj().Refcount(), "RET's own dup is the only owned reference; CALL must not add another")
	value.Drop(v)
}

func TestCallUndefinedGlobalIsMemberNotFound(t *testing.T) {
	proto, err := compiler.Compile([]byte(`missing();`))
	require.NoError(t, err)
	st := machine.NewState()
	_, err = machine.Call(st, proto, nil)
	require.Error(t, err)
	merr, ok := err.(*machine.Error)
	require.True(t, ok)
	assert.Equal(t, machine.MemberNotFound, merr.Kind)
}

// TestNonBoolConditionIsTreatedAsFalse documents the truthiness rule for
// non-bool conditions: a non-comparison `if` condition
// is tested via EQ against the literal `true`, and EQ's cross-tag equality
// is always false, so a non-bool condition reads as falsy rather than
// raising a runtime error — the instruction set has no dedicated
// type-assertion opcode to do otherwise without inventing one.
func TestNonBoolConditionIsTreatedAsFalse(t *testing.T) {
	v, _ := compileAndRun(t, `
		let x = 1;
		if (x) {
			return 1;
		}
		return 0;
	`)
	assert.EqualValues(t, 0, v.I64())
}

func TestStackDepthRestoredAfterSuccess(t *testing.T) {
	proto, err := compiler.Compile([]byte(`let x = 1 + 2; return x;`))
	require.NoError(t, err)
	st := machine.NewState()

	_, err = machine.Call(st, proto, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Depth(), "call must tear down its own frame on success")
}

func TestStackDepthRestoredAfterError(t *testing.T) {
	proto, err := compiler.Compile([]byte(`let x = 1; let y = 0; return x / y;`))
	require.NoError(t, err)
	st := machine.NewState()

	_, err = machine.Call(st, proto, nil)
	require.Error(t, err)
	assert.Equal(t, 0, st.Depth(), "a runtime error must still restore stack/frame depth")
}

// TestHostReentrantCallRestoresFrameDepth verifies that a host wrapper
// catching a bubbled runtime error from a nested Call sees the frame depth
// restored: Call tears down its own frame on error, so the wrapper's
// State.Depth/TruncateFrames bookkeeping finds nothing left to pop.
func TestHostReentrantCallRestoresFrameDepth(t *testing.T) {
	failing, err := compiler.Compile([]byte(`let x = 1; let y = 0; return x / y;`))
	require.NoError(t, err)

	outer, err := compiler.Compile([]byte(`let ok = attempt(); return ok;`))
	require.NoError(t, err)

	st := machine.NewState()
	st.RegisterHost("attempt", func(args []value.Value) (value.Value, error) {
		depthBefore := st.Depth()
		_, callErr := machine.Call(st, failing, nil)
		if callErr != nil {
			st.TruncateFrames(depthBefore)
			return value.NewBool(false), nil
		}
		return value.NewBool(true), nil
	}, 0)

	v, err := machine.Call(st, outer, nil)
	require.NoError(t, err)
	assert.False(t, v.Bool())
	assert.Equal(t, 0, st.Depth())
}

func TestStrEchoWritesString(t *testing.T) {
	var buf bytes.Buffer
	// STR_ECHO isn't reachable from surface syntax (no echo expression in
	// the grammar), so we exercise it by compiling a prototype by hand,
	// the same way a host embedder assembling bytecode directly would.
	proto := &value.Prototype{
		Constants: []value.Value{value.NewConstString("hi")},
		RegCount:  1,
		Code: []value.Instruction{
			value.EncodeAB(value.LOAD, 0, 0),
			value.EncodeA(value.STR_ECHO, 0),
			value.EncodeA(value.RET, 0),
		},
	}
	st := machine.NewState()
	st.Stdout = &buf
	_, err := machine.Call(st, proto, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", buf.String())
}

func TestObjSetGetRoundTrip(t *testing.T) {
	proto := &value.Prototype{
		Constants: []value.Value{value.NewConstString("key"), value.NewI64(99)},
		RegCount:  3,
		Code: []value.Instruction{
			value.EncodeA(value.OBJ_NEW, 0),
			value.EncodeAB(value.LOAD, 1, 0), // reg1 = "key"
			value.EncodeAB(value.LOAD, 2, 1), // reg2 = 99
			value.EncodeABC(value.OBJ_SET, 0, 1, 2),
			value.EncodeABC(value.OBJ_GET, 2, 0, 1),
			value.EncodeA(value.RET, 2),
		},
	}
	st := machine.NewState()
	v, err := machine.Call(st, proto, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 99, v.I64())
}

// TestRefcountBalanceAcrossCalls is the leak-detector test: every heap
// value created while a prototype runs must end up with a refcount
// matching only its surviving live references once the call returns.
func TestRefcountBalanceAcrossCalls(t *testing.T) {
	proto, err := compiler.Compile([]byte(`
		let a = "alpha";
		let b = "beta";
		let c = a + b;
		return c;
	`))
	require.NoError(t, err)

	st := machine.NewState()
	v, err := machine.Call(st, proto, nil)
	require.NoError(t, err)
	require.True(t, value.IsString(v))
	assert.EqualValues(t, 1, v.Obj().Refcount(), "the only surviving reference is the one returned to the caller")
	value.Drop(v)
	assert.EqualValues(t, 0, v.Obj().Refcount())
}

func TestStepBudgetAbortsRunawayProgram(t *testing.T) {
	// Hand-assembled infinite loop: no surface-syntax `while` exists to
	// write this, and a runaway script prototype is exactly what
	// internal/config's step budget exists to bound.
	proto := &value.Prototype{
		RegCount: 1,
		Code: []value.Instruction{
			value.EncodeA(value.JMP, -1), // jump to self, forever
		},
	}
	st := machine.NewState()
	st.Limits.StepBudget = 1000

	_, err := machine.Call(st, proto, nil)
	require.Error(t, err)
	merr, ok := err.(*machine.Error)
	require.True(t, ok)
	assert.Equal(t, machine.Panic, merr.Kind)
	assert.Equal(t, 0, st.Depth(), "the aborted call must still tear down its frame")
}

func TestMaxCallDepthRejectsDeepReentrancy(t *testing.T) {
	proto, err := compiler.Compile([]byte(`return 1;`))
	require.NoError(t, err)

	st := machine.NewState()
	st.Limits.MaxCallDepth = 1
	st.RegisterHost("recurse", func(args []value.Value) (value.Value, error) {
		_, callErr := machine.Call(st, proto, nil)
		return value.NewNil(), callErr
	}, 0)

	outer, err := compiler.Compile([]byte(`recurse(); return 1;`))
	require.NoError(t, err)

	_, err = machine.Call(st, outer, nil)
	require.Error(t, err)
}

func TestGlobalsTableHoldsHostFunctionAcrossCalls(t *testing.T) {
	st := machine.NewState()
	st.RegisterHost("id", func(args []value.Value) (value.Value, error) {
		return args[0], nil
	}, 1)

	for i := 0; i < 3; i++ {
		proto, err := compiler.Compile([]byte(`let x = id(7); return x;`))
		require.NoError(t, err)
		v, err := machine.Call(st, proto, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 7, v.I64())
	}
}
