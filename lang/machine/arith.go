package machine

import (
	"golang.org/x/exp/constraints"

	"github.com/vex-lang/vex/lang/value"
)

// numeric constrains the two primitive numeric payload types a Value can
// carry.
type numeric interface {
	constraints.Integer | constraints.Float
}

// applyNumeric runs op generically over two same-typed numeric operands and
// wraps the result back into a Value of the matching tag.
func applyNumeric[T numeric](a, b T, toValue func(T) value.Value, op func(a, b T) T) value.Value {
	return toValue(op(a, b))
}

func addOp[T numeric](a, b T) T { return a + b }
func subOp[T numeric](a, b T) T { return a - b }
func mulOp[T numeric](a, b T) T { return a * b }
func divOp[T numeric](a, b T) T { return a / b }

// coerceArith applies the arithmetic coercion rule: if operands
// differ in tag and neither is dyn, promote towards f64 when either side
// is f64; otherwise both sides must be i64. Returns ok=false when the
// combination is not coercible to a shared numeric type (the caller
// raises TypeMismatch).
func coerceArith(a, b value.Value) (af, bf float64, ai, bi int64, isFloat, ok bool) {
	switch {
	case a.Tag == value.F64 && b.Tag == value.F64:
		return a.F64(), b.F64(), 0, 0, true, true
	case a.Tag == value.I64 && b.Tag == value.I64:
		return 0, 0, a.I64(), b.I64(), false, true
	case a.Tag == value.F64 && b.Tag == value.I64:
		return a.F64(), float64(b.I64()), 0, 0, true, true
	case a.Tag == value.I64 && b.Tag == value.F64:
		return float64(a.I64()), b.F64(), 0, 0, true, true
	default:
		return 0, 0, 0, 0, false, false
	}
}

// binaryArith evaluates the named arithmetic opcode over a and b, handling
// numeric coercion, the legal string+string concatenation case for ADD,
// and division by zero (integer division by zero is TypeMismatch; float
// division by zero follows IEEE and never errors).
func binaryArith(op value.Opcode, a, b value.Value, pc uint32) (value.Value, *Error) {
	if op == value.ADD && value.IsString(a) && value.IsString(b) {
		return value.ConcatStrings(a, b), nil
	}

	af, bf, ai, bi, isFloat, ok := coerceArith(a, b)
	if !ok {
		return value.Value{}, newError(TypeMismatch, pc,
			"cannot apply %s to %s and %s", op, value.TypeName(a), value.TypeName(b))
	}

	if isFloat {
		return floatArith(op, af, bf), nil
	}
	return intArith(op, ai, bi, pc)
}

func floatArith(op value.Opcode, a, b float64) value.Value {
	switch op {
	case value.ADD:
		return applyNumeric(a, b, value.NewF64, addOp[float64])
	case value.SUB:
		return applyNumeric(a, b, value.NewF64, subOp[float64])
	case value.MUL:
		return applyNumeric(a, b, value.NewF64, mulOp[float64])
	case value.DIV:
		// IEEE division by zero yields +/-Inf or NaN without error.
		return applyNumeric(a, b, value.NewF64, divOp[float64])
	default:
		return value.NewNil()
	}
}

func intArith(op value.Opcode, a, b int64, pc uint32) (value.Value, *Error) {
	switch op {
	case value.ADD:
		return applyNumeric(a, b, value.NewI64, addOp[int64]), nil
	case value.SUB:
		return applyNumeric(a, b, value.NewI64, subOp[int64]), nil
	case value.MUL:
		return applyNumeric(a, b, value.NewI64, mulOp[int64]), nil
	case value.DIV:
		if b == 0 {
			return value.Value{}, newError(TypeMismatch, pc, "integer division by zero")
		}
		return applyNumeric(a, b, value.NewI64, divOp[int64]), nil
	default:
		return value.Value{}, newError(UnknownOp, pc, "unknown arithmetic opcode %s", op)
	}
}

// compareValues implements the skip-JMP comparison opcodes (EQ/LT/LE).
// LT/LE require numeric operands (coerced per coerceArith); EQ uses
// value.Equal for every tag, with no numeric coercion, so an i64 never
// equals an f64.
func compareValues(op value.Opcode, a, b value.Value, pc uint32) (bool, *Error) {
	if op == value.EQ {
		return value.Equal(a, b), nil
	}

	af, bf, ai, bi, isFloat, ok := coerceArith(a, b)
	if !ok {
		return false, newError(TypeMismatch, pc,
			"cannot compare %s and %s", value.TypeName(a), value.TypeName(b))
	}
	if isFloat {
		if op == value.LT {
			return af < bf, nil
		}
		return af <= bf, nil
	}
	if op == value.LT {
		return ai < bi, nil
	}
	return ai <= bi, nil
}
