// Package machine implements the register-based interpreter: it executes a
// compiled value.Prototype in a State, manipulating a shared value stack,
// a call-frame array, and the state's global table.
package machine

import "fmt"

// ErrorKind identifies the class of runtime failure.
type ErrorKind int

//nolint:revive
const (
	UnknownOp ErrorKind = iota
	OobAccess
	TypeMismatch
	MemberNotFound
	Assert
	Panic
)

var kindNames = [...]string{
	UnknownOp:      "UnknownOp",
	OobAccess:      "OobAccess",
	TypeMismatch:   "TypeMismatch",
	MemberNotFound: "MemberNotFound",
	Assert:         "Assert",
	Panic:          "Panic",
}

func (k ErrorKind) String() string { return kindNames[k] }

// Error reports a runtime failure: its class, a human-readable message and
// the program counter at which it was detected. The frame in which it
// occurred has already been torn down by the time the error reaches the
// embedder.
type Error struct {
	Kind    ErrorKind
	Message string
	PC      uint32
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at pc=%d: %s", e.Kind, e.PC, e.Message)
}

func newError(kind ErrorKind, pc uint32, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), PC: pc}
}
