package compiler

import (
	"fmt"

	"github.com/vex-lang/vex/lang/token"
)

// ErrorKind identifies the class of compile-time failure. ScanErr and
// ParseErr wrap an inner error from an earlier pipeline stage; the rest
// are failures detected during compilation itself.
type ErrorKind int

//nolint:revive
const (
	ScanErr ErrorKind = iota
	ParseErr
	ExpectedBlock
	UnknownLocal
	UnknownOperation
	UnusedEvaluation
	TooManyRegisters
	Unknown
)

var kindNames = [...]string{
	ScanErr:          "ScanError",
	ParseErr:         "ParseError",
	ExpectedBlock:    "ExpectedBlock",
	UnknownLocal:     "UnknownLocal",
	UnknownOperation: "UnknownOperation",
	UnusedEvaluation: "UnusedEvaluation",
	TooManyRegisters: "TooManyRegisters",
	Unknown:          "Unknown",
}

func (k ErrorKind) String() string { return kindNames[k] }

// Error reports a compile-time failure with the source position at which
// it was detected.
type Error struct {
	Kind   ErrorKind
	Pos    token.Position
	Lexeme string
	Inner  error // set for ScanErr/ParseErr
}

func (e *Error) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s at %s: %v", e.Kind, e.Pos, e.Inner)
	}
	if e.Lexeme != "" {
		return fmt.Sprintf("%s: %q at %s", e.Kind, e.Lexeme, e.Pos)
	}
	return fmt.Sprintf("%s at %s", e.Kind, e.Pos)
}

func (e *Error) Unwrap() error { return e.Inner }
