package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/vex-lang/vex/lang/scanner"
)

// Tokenize runs the scanner phase over each file and prints the resulting
// tokens, one per line.
func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, files []string) error {
	var failed error
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			failed = err
			continue
		}
		toks, err := scanner.Tokenize(src)
		for _, tok := range toks {
			fmt.Fprintf(stdio.Stdout, "%s: %s", tok.Pos, tok.Kind)
			if tok.Raw != "" {
				fmt.Fprintf(stdio.Stdout, " %q", tok.Raw)
			}
			fmt.Fprintln(stdio.Stdout)
		}
		if err != nil {
			printSourceError(stdio, path, src, err)
			failed = err
		}
	}
	return failed
}
