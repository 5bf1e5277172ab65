package machine

import (
	"github.com/vex-lang/vex/internal/replfmt"
	"github.com/vex-lang/vex/lang/value"
)

// dumpFrame renders the active frame's register file as a replfmt.FrameDump
// string, implementing DBG_DUMP's stack dump.
// highlight is included so DBG_DUMP's own operand is visible in the dump
// even though it isn't otherwise distinguished from the rest of the frame.
func (st *State) dumpFrame(frameIdx int, proto *value.Prototype, highlight value.Value) string {
	fr := st.frames[frameIdx]
	regs := make([]string, 0, fr.Size)
	for i := uint32(0); i < fr.Size; i++ {
		regs = append(regs, st.stack[fr.Bottom+i].String())
	}
	name := proto.Name
	if name == "" {
		name = "<anonymous>"
	}
	return replfmt.Sprint(replfmt.FrameDump{
		PC:        fr.pc,
		Name:      name,
		Registers: regs,
	}) + "\n; DBG_DUMP operand = " + highlight.String()
}
