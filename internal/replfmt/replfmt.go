// Package replfmt provides the shared pretty-printing used by DBG_DUMP and
// the CLI's error reporter to render VM state (registers, stack, frames)
// consistently, rather than each call site hand-rolling its own
// fmt.Sprintf dump.
package replfmt

import "github.com/kylelemons/godebug/pretty"

// cfg renders struct fields compactly, one level of indirection followed,
// which is enough depth for the small dump structs this package defines.
var cfg = &pretty.Config{Compact: true, PrintStringers: true}

// FrameDump is the shape DBG_DUMP renders: the
// active frame's program counter, the callable's name, and its register
// file already rendered to strings (via value.Value.String()), so this
// package stays independent of the machine/value packages.
type FrameDump struct {
	PC        uint32
	Name      string
	Registers []string
}

// Sprint renders v (typically a FrameDump) using the shared
// pretty-printing configuration.
func Sprint(v any) string {
	return cfg.Sprint(v)
}

// SourceCaret renders a header (a compact pretty-printed record of the
// file, line, column and message) followed by the offending source line
// and a caret under the column, the shape the CLI's error reporter uses
// for scan, parse and compile errors. Runtime errors carry no source
// position and are reported without it.
func SourceCaret(file string, line, column int, sourceLine, message string) string {
	header := cfg.Sprint(struct {
		File    string
		Line    int
		Column  int
		Message string
	}{file, line, column, message})

	caret := ""
	for i := 1; i < column; i++ {
		caret += " "
	}
	caret += "^"
	return header + "\n" + sourceLine + "\n" + caret
}
