package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/vex-lang/vex/lang/ast"
	"github.com/vex-lang/vex/lang/parser"
)

// Parse runs the scanner and parser phases over each file and prints the
// resulting AST. The scanner discards comments outright, so there is no
// flag to retain them in the tree.
func (c *Cmd) Parse(_ context.Context, stdio mainer.Stdio, files []string) error {
	printer := ast.Printer{Output: stdio.Stdout}
	var failed error
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			failed = err
			continue
		}
		blk, err := parser.Parse(src)
		if err != nil {
			printSourceError(stdio, path, src, err)
			failed = err
			continue
		}
		if err := printer.Print(blk); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = err
		}
	}
	return failed
}
