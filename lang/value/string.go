package value

// StringData is the payload of a string heap object: an immutable byte
// sequence along with its cached length.
type StringData struct {
	s string
}

// NewString allocates a fresh string object with refcount 1.
func NewString(s string) Value {
	obj := newHeapObject(KindString)
	obj.str = &StringData{s: s}
	return NewDyn(obj)
}

// NewConstString allocates a string object marked IsConst, as used to
// pre-seed a prototype's constant pool; Drop on it is a no-op.
func NewConstString(s string) Value {
	obj := newHeapObject(KindString)
	obj.IsConst = true
	obj.str = &StringData{s: s}
	return NewDyn(obj)
}

// Bytes returns the raw bytes of a string value. v must be a dyn string.
func (s *StringData) Bytes() []byte { return []byte(s.s) }

// Len returns the byte length of a string value.
func (s *StringData) Len() int { return len(s.s) }

func (s *StringData) Go() string { return s.s }

// IsString reports whether v is a dyn value wrapping a string object.
func IsString(v Value) bool { return v.Tag == Dyn && v.obj != nil && v.obj.Kind == KindString }

// ConcatStrings returns a fresh string value holding the concatenation of
// a and b's bytes. Both a and b must be dyn string values.
func ConcatStrings(a, b Value) Value {
	return NewString(a.obj.str.s + b.obj.str.s)
}

// ToDisplayString renders any value as a fresh (non-const) string object,
// as used by the STR_FROM opcode.
func ToDisplayString(v Value) Value {
	return NewString(v.String())
}
