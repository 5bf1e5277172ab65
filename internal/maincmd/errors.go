package maincmd

import (
	"bytes"
	"fmt"

	"github.com/mna/mainer"
	"github.com/vex-lang/vex/internal/replfmt"
	"github.com/vex-lang/vex/lang/compiler"
	"github.com/vex-lang/vex/lang/machine"
	"github.com/vex-lang/vex/lang/parser"
	"github.com/vex-lang/vex/lang/scanner"
	"github.com/vex-lang/vex/lang/token"
)

// printSourceError renders a scan/parse/compile/runtime error as a
// file:line:column header, the offending source line, and a caret under
// the column. Runtime errors carry only a pc, not a source position, so
// they're reported without a source excerpt.
func printSourceError(stdio mainer.Stdio, path string, src []byte, err error) {
	pos, ok := positionOf(err)
	if !ok {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
		return
	}
	line := sourceLine(src, pos.Line)
	fmt.Fprintln(stdio.Stderr, replfmt.SourceCaret(path, pos.Line, pos.Column, line, err.Error()))
}

func positionOf(err error) (token.Position, bool) {
	switch e := err.(type) {
	case *scanner.Error:
		return e.Pos, true
	case *parser.Error:
		return e.Pos, true
	case *compiler.Error:
		return e.Pos, true
	default:
		return token.Position{}, false
	}
}

func sourceLine(src []byte, line int) string {
	n := 1
	start := 0
	for i, b := range src {
		if n == line {
			end := bytes.IndexByte(src[i:], '\n')
			if end < 0 {
				return string(src[i:])
			}
			return string(src[i : i+end])
		}
		if b == '\n' {
			n++
			start = i + 1
		}
	}
	if n == line {
		return string(src[start:])
	}
	return ""
}

// runtimeErrorMessage formats a bubbled machine.Error for stderr; it has
// no source position to render a caret under.
func runtimeErrorMessage(path string, err *machine.Error) string {
	return fmt.Sprintf("%s: %s", path, err)
}
