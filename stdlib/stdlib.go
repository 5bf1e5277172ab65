// Package stdlib demonstrates the host-binding shape: a native Go function
// wired into a machine.State under a name, callable from script code
// exactly like any other global. The standard library proper is
// host-provided and out of scope here; this package implements exactly one
// function (print) as a worked example of the binding shape, not a
// library.
package stdlib

import (
	"fmt"

	"github.com/vex-lang/vex/lang/machine"
	"github.com/vex-lang/vex/lang/value"
)

// Register installs the example standard-library functions into st.
func Register(st *machine.State) {
	st.RegisterHost("print", printFn(st), 1)
}

// printFn returns the `print` host function closed over st, so it can
// write to the state's configured Stdout. A host function has no other
// channel back to the embedder besides its return value and whatever side
// effects it's given access to at registration time.
func printFn(st *machine.State) value.HostFunc {
	return func(args []value.Value) (value.Value, error) {
		var arg value.Value
		if len(args) > 0 {
			arg = args[0]
		} else {
			arg = value.NewNil()
		}
		fmt.Fprintln(st.Writer(), arg.String())
		return value.NewNil(), nil
	}
}
