package value

import "fmt"

// Kind identifies the dynamic subtype of a heap Object.
type Kind uint8

//nolint:revive
const (
	KindString Kind = iota
	KindTable
	KindFunction
	KindError
	KindUser
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindFunction:
		return "function"
	case KindError:
		return "error"
	case KindUser:
		return "user"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Object is the fixed header that precedes every heap-allocated dynamic
// value: a subtype tag, a manual reference count, and a const flag.
// Constant-pool members have IsConst set and are never destroyed by Drop.
type Object struct {
	Kind     Kind
	refcount int32
	IsConst  bool

	str   *StringData
	table *Table
	fn    *Function
	err   *ErrorData
	user  *UserData
}

// Refcount returns the object's current reference count, exposed for
// tests and debug dumps.
func (o *Object) Refcount() int32 { return o.refcount }

// TypeName returns the subtype name, except for user objects, which are
// tagged by their host-supplied type-name string.
func (o *Object) TypeName() string {
	if o.Kind == KindUser && o.user != nil && o.user.TypeName != "" {
		return o.user.TypeName
	}
	return o.Kind.String()
}

// GoString renders a human-readable form of the object for Value.String.
func (o *Object) GoString() string {
	switch o.Kind {
	case KindString:
		return o.str.s
	case KindTable:
		return fmt.Sprintf("table(%d)", len(o.table.order))
	case KindFunction:
		if o.fn.Host != nil {
			return "function(host)"
		}
		return "function(script)"
	case KindError:
		return "error: " + o.err.msg
	case KindUser:
		if o.user.ToString != nil {
			return o.user.ToString(o.user.Payload)
		}
		return fmt.Sprintf("user(%s)", o.user.TypeName)
	default:
		return "?"
	}
}

func (o *Object) String() *StringData { return o.str }
func (o *Object) Table() *Table       { return o.table }
func (o *Object) Function() *Function { return o.fn }
func (o *Object) Error() *ErrorData   { return o.err }
func (o *Object) User() *UserData     { return o.user }

// newHeapObject allocates an Object header with refcount 1 around one of
// the dynamic payload kinds.
func newHeapObject(kind Kind) *Object {
	return &Object{Kind: kind, refcount: 1}
}

// Dup increments the refcount of v's heap object, if v is dyn. It is a
// no-op for the other tags.
func Dup(v Value) Value {
	if v.Tag == Dyn && v.obj != nil {
		v.obj.refcount++
	}
	return v
}

// Drop decrements the refcount of v's heap object, if v is dyn, and
// destroys it (recursively dropping its contents) when the count reaches
// zero. Constant-pool objects (IsConst) are never destroyed.
func Drop(v Value) {
	if v.Tag != Dyn || v.obj == nil {
		return
	}
	o := v.obj
	if o.IsConst {
		return
	}
	o.refcount--
	if o.refcount > 0 {
		return
	}
	if o.refcount < 0 {
		panic(fmt.Sprintf("value: double-free of %s object", o.Kind))
	}
	destroy(o)
}

func destroy(o *Object) {
	switch o.Kind {
	case KindString:
		o.str = nil
	case KindTable:
		for _, v := range o.table.values {
			Drop(v)
		}
		o.table.index = nil
		o.table.order = nil
		o.table.values = nil
	case KindFunction:
		if o.fn.Script != nil {
			for _, c := range o.fn.Script.Constants {
				Drop(c)
			}
			o.fn.Script.Code = nil
		}
	case KindError:
		o.err = nil
	case KindUser:
		if o.user.Destroy != nil {
			o.user.Destroy(o.user.Payload)
		}
		o.user = nil
	}
}
