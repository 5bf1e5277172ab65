package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/vex-lang/vex/internal/config"
	"github.com/vex-lang/vex/lang/compiler"
	"github.com/vex-lang/vex/lang/machine"
	"github.com/vex-lang/vex/stdlib"
)

// Run compiles and executes each file with a fresh state, printing the
// returned value to stdout, or a compile/runtime error report to stderr.
// The process exits 0 on success and non-zero on either kind of error.
func (c *Cmd) Run(_ context.Context, stdio mainer.Stdio, files []string) error {
	limits := config.Default()
	if c.ConfigPath != "" {
		l, err := config.LoadFile(c.ConfigPath)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", c.ConfigPath, err)
			return err
		}
		limits = l
	}

	var failed error
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			failed = err
			continue
		}

		proto, err := compiler.Compile(src)
		if err != nil {
			printSourceError(stdio, path, src, err)
			failed = err
			continue
		}

		st := machine.NewStateWithLimits(limits)
		st.Stdout = stdio.Stdout
		stdlib.Register(st)

		result, rerr := machine.Call(st, proto, nil)
		st.Free()
		if rerr != nil {
			if merr, ok := rerr.(*machine.Error); ok {
				fmt.Fprintln(stdio.Stderr, runtimeErrorMessage(path, merr))
			} else {
				fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, rerr)
			}
			failed = rerr
			continue
		}
		fmt.Fprintln(stdio.Stdout, result.String())
	}
	return failed
}
