package value

// UserData is the payload of a user heap object: an opaque host-owned
// payload with a type-name tag and optional destructor/to-string
// callbacks, invoked when the wrapping Object is destroyed or printed.
type UserData struct {
	TypeName string
	Payload  any
	Destroy  func(payload any)
	ToString func(payload any) string
}

// NewUser wraps an arbitrary host payload as a dyn value, tagged by
// typeName and with optional destructor/stringer callbacks.
func NewUser(typeName string, payload any, destroy func(any), toString func(any) string) Value {
	obj := newHeapObject(KindUser)
	obj.user = &UserData{TypeName: typeName, Payload: payload, Destroy: destroy, ToString: toString}
	return NewDyn(obj)
}

// IsUser reports whether v is a dyn value wrapping a user object.
func IsUser(v Value) bool { return v.Tag == Dyn && v.obj != nil && v.obj.Kind == KindUser }
