package token

import "fmt"

// Position is a 1-based line and column in a source file. A zero value
// means the position is unknown.
type Position struct {
	Line   int
	Column int
}

// IsValid reports whether p has a known, non-zero line and column.
func (p Position) IsValid() bool { return p.Line > 0 && p.Column > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical token produced by the scanner: its kind, the
// literal payload (if any) and the position of its first rune.
type Token struct {
	Kind Kind
	Pos  Position

	// Raw is the lexeme as it appeared in source for identifiers,
	// keywords, punctuation and number literals; for a string literal it
	// holds the decoded contents, without the quotes and with backslash-n
	// already turned into a newline.
	Raw string

	// Payload values, populated according to Kind.
	Str string
	Int int64
	F64 float64
}
