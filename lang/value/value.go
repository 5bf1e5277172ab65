// Package value implements the tagged-value runtime: a small value struct
// carrying a type tag plus payload, and a manually reference-counted heap
// for the dynamic subtypes (string, table, function, error, user). Heap
// objects carry a manual reference count on top of Go's own memory
// management — every dyn value entering a register or table slot is
// balanced by an explicit Dup/Drop pair, mirroring a C-style refcounted
// runtime embedded in Go, while the Go garbage collector still reclaims
// the memory itself.
package value

import "fmt"

// Tag identifies which payload field of a Value is meaningful.
type Tag uint8

//nolint:revive
const (
	Nil Tag = iota
	Bool
	F64
	I64
	Dyn
)

func (t Tag) String() string {
	switch t {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case F64:
		return "f64"
	case I64:
		return "i64"
	case Dyn:
		return "dyn"
	default:
		return fmt.Sprintf("tag(%d)", t)
	}
}

// Value is a tagged union: exactly one of the payload fields is
// meaningful, selected by Tag. Dyn values carry a pointer to a refcounted
// Object; the other tags are plain old data copied by value.
type Value struct {
	Tag Tag
	b   bool
	f   float64
	i   int64
	obj *Object
}

// NewNil returns the nil value.
func NewNil() Value { return Value{Tag: Nil} }

// NewBool returns a boolean value.
func NewBool(b bool) Value { return Value{Tag: Bool, b: b} }

// NewF64 returns a float value.
func NewF64(f float64) Value { return Value{Tag: F64, f: f} }

// NewI64 returns an integer value.
func NewI64(i int64) Value { return Value{Tag: I64, i: i} }

// NewDyn wraps a heap object as a dyn value. The object's refcount is not
// modified; callers that store the returned value somewhere persistent
// (a register, a table slot) must call Dup first if they don't already
// own a reference.
func NewDyn(obj *Object) Value { return Value{Tag: Dyn, obj: obj} }

// IsNil reports whether v is the nil value.
func (v Value) IsNil() bool { return v.Tag == Nil }

// Bool returns v's boolean payload. Only meaningful when v.Tag == Bool.
func (v Value) Bool() bool { return v.b }

// F64 returns v's float payload. Only meaningful when v.Tag == F64.
func (v Value) F64() float64 { return v.f }

// I64 returns v's integer payload. Only meaningful when v.Tag == I64.
func (v Value) I64() int64 { return v.i }

// Obj returns v's heap object pointer. Only meaningful when v.Tag == Dyn.
func (v Value) Obj() *Object { return v.obj }

// TypeName returns the runtime type name of v, as exposed to host code.
func TypeName(v Value) string {
	switch v.Tag {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case F64:
		return "float"
	case I64:
		return "int"
	case Dyn:
		return v.obj.TypeName()
	default:
		return "unknown"
	}
}

// Equal reports whether a and b are the same value for EQ/comparison
// purposes. Dyn equality is by identity for table/function/error/user and
// by byte content for string.
func Equal(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case Nil:
		return true
	case Bool:
		return a.b == b.b
	case F64:
		return a.f == b.f
	case I64:
		return a.i == b.i
	case Dyn:
		if a.obj == b.obj {
			return true
		}
		if a.obj.Kind == KindString && b.obj.Kind == KindString {
			return a.obj.String().s == b.obj.String().s
		}
		return false
	default:
		return false
	}
}

// Truthy reports whether v is true for `if` purposes. Only bool-tagged
// values are valid conditions; the second result is false for any other
// tag.
func Truthy(v Value) (bool, bool) {
	if v.Tag != Bool {
		return false, false
	}
	return v.b, true
}

func (v Value) String() string {
	switch v.Tag {
	case Nil:
		return "nil"
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case F64:
		return fmt.Sprintf("%g", v.f)
	case I64:
		return fmt.Sprintf("%d", v.i)
	case Dyn:
		return v.obj.GoString()
	default:
		return "?"
	}
}
