package machine

import (
	"io"

	"github.com/vex-lang/vex/internal/config"
	"github.com/vex-lang/vex/lang/value"
)

// State is the embedding surface's handle on one interpreter instance: its
// value stack, its active call frames, and its own globals table. Globals
// live on the state, not in a process singleton, so a host may create
// multiple independent states in the same process, each with its own
// standard-library bindings.
type State struct {
	// Stdout receives STR_ECHO output and DBG_DUMP's dumps. Defaults to
	// os.Stdout when nil.
	Stdout io.Writer

	// Limits are the resource ceilings this state enforces. The zero value
	// is unlimited.
	Limits config.Limits

	stack   []value.Value
	frames  []Frame
	globals value.Value // always a dyn table
}

// NewState creates an empty state with a fresh, empty globals table and
// unlimited resource limits.
func NewState() *State {
	return &State{globals: value.NewTable()}
}

// NewStateWithLimits creates a state that enforces the given resource
// limits, typically loaded via config.Load or config.LoadFile.
func NewStateWithLimits(limits config.Limits) *State {
	st := NewState()
	st.Limits = limits
	return st
}

// Free drops the state's globals table, releasing every host function and
// value reachable from it. Go's own GC would eventually reclaim the same
// memory, but Free gives embedders an explicit teardown point and balances
// the refcount the globals table itself holds, matching the explicit
// dup/drop discipline used everywhere else in this runtime.
func (st *State) Free() {
	value.Drop(st.globals)
	st.stack = nil
	st.frames = nil
}

// Globals returns the state's globals table value.
func (st *State) Globals() value.Value { return st.globals }

// RegisterHost installs a native Go function under name in the globals
// table, the only supported way to expose host functionality to script
// code.
func (st *State) RegisterHost(name string, fn value.HostFunc, argCount uint32) {
	st.globals.Obj().Table().Set(name, value.NewFunctionHost(fn, argCount))
}

// topFrame returns a pointer to the currently active frame. Panics if
// called with no active call, which is a bug in the caller (Get/Set are
// only meaningful while a call is executing).
func (st *State) topFrame() *Frame {
	return &st.frames[len(st.frames)-1]
}

// Get returns register i of the active frame, indexed relative to its
// register-0 origin: stack[top_frame.bottom + i].
func (st *State) Get(i int) value.Value {
	fr := st.topFrame()
	return st.stack[int(fr.Bottom)+i]
}

// Set overwrites register i of the active frame with v, dropping whatever
// value previously occupied the slot.
func (st *State) Set(i int, v value.Value) {
	fr := st.topFrame()
	idx := int(fr.Bottom) + i
	value.Drop(st.stack[idx])
	st.stack[idx] = v
}

// Depth returns the number of currently active call frames, exposed for
// debug dumps (DBG_DUMP) and for host wrappers that need to restore frame
// depth after catching a bubbled runtime error.
func (st *State) Depth() int { return len(st.frames) }

// TruncateFrames pops frames down to depth, dropping every register they
// still hold and truncating the stack to match. A host `catch`/`attempt`
// builtin can use it to return to the depth it recorded before a nested
// Call; Call already tears down its own frame when it returns an error, so
// after a failed Call there is no frame left above that depth.
func (st *State) TruncateFrames(depth int) {
	for len(st.frames) > depth {
		fr := st.frames[len(st.frames)-1]
		st.dropFrameRegisters(fr)
		st.stack = st.stack[:fr.Bottom]
		st.frames = st.frames[:len(st.frames)-1]
	}
}

func (st *State) dropFrameRegisters(fr Frame) {
	end := int(fr.Bottom + fr.Size)
	if end > len(st.stack) {
		end = len(st.stack)
	}
	for i := int(fr.Bottom); i < end; i++ {
		value.Drop(st.stack[i])
	}
}
