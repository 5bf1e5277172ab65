package machine

// Frame is a window into the State's shared value stack for one active
// call: Bottom is the stack index at which the callee's register 0 lives,
// and Size is the number of registers reserved for it (its prototype's
// RegCount, or its declared host arg count for a host call — just enough
// for the callee's Get(i) to see its own arguments).
type Frame struct {
	Bottom uint32
	Size   uint32
	pc     uint32 // only meaningful for script frames
	name   string // prototype/host function name, for debug dumps
}
