package value

// HostFunc is a native function pointer exposed to the interpreter through
// CALL. args holds the arguments as written into the callee's argument
// registers; it returns the call's result or a runtime error.
//
// Ownership contract: args are borrowed from the caller's own registers,
// not owned copies (the interpreter never dups them on the way in). A
// HostFunc that stores an arg anywhere it outlives the call - a table, a
// captured closure, the returned value itself - must Dup it first, exactly
// as OBJ_SET dups a register's value before writing it into a table. The
// returned Value, if dyn, is taken by the interpreter as an already-owned,
// transferable reference and written into the result register without a
// further dup: a freshly constructed return value (NewString, NewTable,
// ...) needs no extra handling, but returning a borrowed arg or anything
// else still owned elsewhere requires Dup'ing it first or the destination
// register ends up aliasing a reference nothing ever incremented.
type HostFunc func(args []Value) (Value, error)

// Function is the dynamic subtype backing a callable value: either a
// compiled script prototype or a host-provided native function.
type Function struct {
	Script *Prototype
	Host   HostFunc
	// HostArgCount records the declared arity of a host function (script
	// functions get their arity from Script.ArgCount).
	HostArgCount uint32
}

// ArgCount returns the function's declared argument count, used by CALL to
// decide how many argument registers to copy (nil-padding shortfalls,
// dropping any extras).
func (f *Function) ArgCount() uint32 {
	if f.Script != nil {
		return f.Script.ArgCount
	}
	return f.HostArgCount
}

// NewFunctionScript wraps a compiled prototype as a callable value.
func NewFunctionScript(proto *Prototype) Value {
	obj := newHeapObject(KindFunction)
	obj.fn = &Function{Script: proto}
	return NewDyn(obj)
}

// NewFunctionHost wraps a native Go function as a callable value with the
// given declared arity.
func NewFunctionHost(fn HostFunc, argCount uint32) Value {
	obj := newHeapObject(KindFunction)
	obj.fn = &Function{Host: fn, HostArgCount: argCount}
	return NewDyn(obj)
}

// IsFunction reports whether v is a dyn value wrapping a function object.
func IsFunction(v Value) bool { return v.Tag == Dyn && v.obj != nil && v.obj.Kind == KindFunction }
