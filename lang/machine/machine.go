package machine

import (
	"fmt"
	"io"
	"os"

	"github.com/vex-lang/vex/lang/value"
)

// Call executes proto in state, pushing a new frame whose register window
// is appended to the shared value stack. args are copied into the callee's
// argument registers 0..ArgCount-1 (dup'd, since the callee's frame
// teardown will drop them); a short arg list is nil-padded, a long one has
// its extras silently ignored. Call is reentrant: a host builtin may call
// it again from inside its own native function body.
func Call(st *State, proto *value.Prototype, args []value.Value) (value.Value, error) {
	if st.Limits.MaxCallDepth > 0 && len(st.frames) >= st.Limits.MaxCallDepth {
		return value.Value{}, newError(Panic, 0, "call depth exceeded configured limit of %d", st.Limits.MaxCallDepth)
	}

	bottom := uint32(len(st.stack))
	if st.Limits.StackCapacity > 0 && bottom+proto.RegCount > uint32(st.Limits.StackCapacity) {
		return value.Value{}, newError(Panic, 0, "stack capacity exceeded configured limit of %d slots", st.Limits.StackCapacity)
	}
	st.stack = append(st.stack, make([]value.Value, proto.RegCount)...)
	st.frames = append(st.frames, Frame{Bottom: bottom, Size: proto.RegCount, name: proto.Name})
	frameIdx := len(st.frames) - 1

	argc := int(proto.ArgCount)
	for i := 0; i < argc && i < len(args); i++ {
		v := args[i]
		if v.Tag == value.Dyn {
			v = value.Dup(v)
		}
		st.stack[bottom+uint32(i)] = v
	}

	result, rerr := st.run(frameIdx, proto)

	st.dropFrameRegisters(st.frames[frameIdx])
	st.stack = st.stack[:bottom]
	st.frames = st.frames[:frameIdx]

	if rerr != nil {
		return value.Value{}, rerr
	}
	return result, nil
}

// run executes the instructions of proto, with its frame already pushed at
// st.frames[frameIdx]. It returns the value RET captured, or the runtime
// error raised by the opcode at fault. Either way the caller (Call) is
// responsible for the frame's teardown — run never mutates st.stack's
// length or st.frames' length itself, only the contents of its own
// register window.
func (st *State) run(frameIdx int, proto *value.Prototype) (value.Value, *Error) {
	bottom := st.frames[frameIdx].Bottom
	size := proto.RegCount
	code := proto.Code
	consts := proto.Constants

	get := func(i uint8, pc uint32) (value.Value, *Error) {
		if uint32(i) >= size {
			return value.Value{}, newError(OobAccess, pc, "register %d out of range (frame size %d)", i, size)
		}
		return st.stack[bottom+uint32(i)], nil
	}
	set := func(i uint8, v value.Value, pc uint32) *Error {
		if uint32(i) >= size {
			return newError(OobAccess, pc, "register %d out of range (frame size %d)", i, size)
		}
		idx := bottom + uint32(i)
		value.Drop(st.stack[idx])
		st.stack[idx] = v
		return nil
	}

	var pc uint32 = proto.Entry
	var steps int
	for {
		if int(pc) >= len(code) {
			if len(code) == 0 {
				return value.NewNil(), nil
			}
			return value.Value{}, newError(OobAccess, pc, "program counter past end of code")
		}
		if st.Limits.StepBudget > 0 {
			steps++
			if steps > st.Limits.StepBudget {
				return value.Value{}, newError(Panic, pc, "step budget of %d instructions exceeded", st.Limits.StepBudget)
			}
		}
		st.frames[frameIdx].pc = pc
		ins := code[pc]
		op := ins.Op()

		switch op {
		case value.LOAD:
			a, b := ins.ABOperands()
			if int(b) >= len(consts) {
				return value.Value{}, newError(OobAccess, pc, "constant %d out of range", b)
			}
			v := consts[b]
			if v.Tag == value.Dyn {
				v = value.Dup(v)
			}
			if err := set(a, v, pc); err != nil {
				return value.Value{}, err
			}
			pc++

		case value.MOVE:
			a, b := ins.ABOperands()
			v, err := get(uint8(b), pc)
			if err != nil {
				return value.Value{}, err
			}
			if v.Tag == value.Dyn {
				v = value.Dup(v)
			}
			if err := set(a, v, pc); err != nil {
				return value.Value{}, err
			}
			pc++

		case value.RET:
			a := ins.A()
			v, err := get(uint8(a), pc)
			if err != nil {
				return value.Value{}, err
			}
			if v.Tag == value.Dyn {
				v = value.Dup(v)
			}
			return v, nil

		case value.JMP:
			off := ins.A()
			pc = uint32(int32(pc+1) + off)

		case value.CALL:
			a, b, c := ins.ABCOperands()
			fnVal, err := get(b, pc)
			if err != nil {
				return value.Value{}, err
			}
			result, err := st.dispatchCall(frameIdx, fnVal, c, pc)
			if err != nil {
				return value.Value{}, err
			}
			// dispatchCall always hands back an owned, transferable
			// reference (a script callee's RET already dup'd its result
			// before its frame tore down; a host callee is contractually
			// required to do the same for anything it doesn't freshly
			// construct - see HostFunc's doc comment). No further dup
			// belongs here: reg[a] becomes sole owner, same as OBJ_NEW.
			if err := set(a, result, pc); err != nil {
				return value.Value{}, err
			}
			pc++

		case value.ADD, value.SUB, value.MUL, value.DIV:
			a, b, c := ins.ABCOperands()
			left, err := get(b, pc)
			if err != nil {
				return value.Value{}, err
			}
			right, err := get(c, pc)
			if err != nil {
				return value.Value{}, err
			}
			result, aerr := binaryArith(op, left, right, pc)
			if aerr != nil {
				return value.Value{}, aerr
			}
			if err := set(a, result, pc); err != nil {
				return value.Value{}, err
			}
			pc++

		case value.EQ, value.LT, value.LE:
			inv, b, c := ins.ABCOperands()
			left, err := get(b, pc)
			if err != nil {
				return value.Value{}, err
			}
			right, err := get(c, pc)
			if err != nil {
				return value.Value{}, err
			}
			result, cerr := compareValues(op, left, right, pc)
			if cerr != nil {
				return value.Value{}, cerr
			}
			shouldSkip := result != (inv != 0)
			pc++
			if shouldSkip {
				pc++
			}

		case value.OBJ_NEW:
			a := ins.A()
			if err := set(uint8(a), value.NewTable(), pc); err != nil {
				return value.Value{}, err
			}
			pc++

		case value.OBJ_SET:
			a, b, c := ins.ABCOperands()
			tbl, err := get(a, pc)
			if err != nil {
				return value.Value{}, err
			}
			if !value.IsTable(tbl) {
				return value.Value{}, newError(TypeMismatch, pc, "OBJ_SET target is not a table (got %s)", value.TypeName(tbl))
			}
			key, err := get(b, pc)
			if err != nil {
				return value.Value{}, err
			}
			if !value.IsString(key) {
				return value.Value{}, newError(TypeMismatch, pc, "table key must be a string (got %s)", value.TypeName(key))
			}
			val, err := get(c, pc)
			if err != nil {
				return value.Value{}, err
			}
			if val.Tag == value.Dyn {
				val = value.Dup(val)
			}
			tbl.Obj().Table().Set(key.Obj().String().Go(), val)
			pc++

		case value.OBJ_GET:
			a, b, c := ins.ABCOperands()
			tbl, err := get(b, pc)
			if err != nil {
				return value.Value{}, err
			}
			if !value.IsTable(tbl) {
				return value.Value{}, newError(TypeMismatch, pc, "OBJ_GET target is not a table (got %s)", value.TypeName(tbl))
			}
			key, err := get(c, pc)
			if err != nil {
				return value.Value{}, err
			}
			if !value.IsString(key) {
				return value.Value{}, newError(TypeMismatch, pc, "table key must be a string (got %s)", value.TypeName(key))
			}
			v, found := tbl.Obj().Table().Get(key.Obj().String().Go())
			if !found {
				return value.Value{}, newError(MemberNotFound, pc, "no such key %q", key.Obj().String().Go())
			}
			if v.Tag == value.Dyn {
				v = value.Dup(v)
			}
			if err := set(a, v, pc); err != nil {
				return value.Value{}, err
			}
			pc++

		case value.STR_FROM:
			a, b := ins.ABOperands()
			v, err := get(uint8(b), pc)
			if err != nil {
				return value.Value{}, err
			}
			if err := set(a, value.ToDisplayString(v), pc); err != nil {
				return value.Value{}, err
			}
			pc++

		case value.STR_ECHO:
			a := ins.A()
			v, err := get(uint8(a), pc)
			if err != nil {
				return value.Value{}, err
			}
			if !value.IsString(v) {
				return value.Value{}, newError(TypeMismatch, pc, "STR_ECHO operand is not a string (got %s)", value.TypeName(v))
			}
			fmt.Fprint(st.stdoutWriter(), v.Obj().String().Go())
			pc++

		case value.DBG_DUMP:
			a := ins.A()
			v, err := get(uint8(a), pc)
			if err != nil {
				return value.Value{}, err
			}
			fmt.Fprintln(st.stdoutWriter(), st.dumpFrame(frameIdx, proto, v))
			pc++

		case value.GLOBAL:
			a, b := ins.ABOperands()
			if int(b) >= len(consts) {
				return value.Value{}, newError(OobAccess, pc, "constant %d out of range", b)
			}
			nameVal := consts[b]
			if !value.IsString(nameVal) {
				return value.Value{}, newError(TypeMismatch, pc, "GLOBAL name constant is not a string")
			}
			name := nameVal.Obj().String().Go()
			v, found := st.globals.Obj().Table().Get(name)
			if !found {
				return value.Value{}, newError(MemberNotFound, pc, "undefined global %q", name)
			}
			if v.Tag == value.Dyn {
				v = value.Dup(v)
			}
			if err := set(a, v, pc); err != nil {
				return value.Value{}, err
			}
			pc++

		default:
			return value.Value{}, newError(UnknownOp, pc, "unrecognized opcode %s", op)
		}
	}
}

// dispatchCall resolves and invokes the function in fnVal, reading its
// arguments starting at register firstArg of the caller's frame. Script
// callees recurse through Call, extending the shared stack with their own
// frame; host callees run on the calling Go goroutine with a lightweight
// frame pushed purely so Get/Set and Depth/TruncateFrames observe a
// consistent call stack. No new stack slots are allocated for them, since
// a host function reads its arguments directly from the Go slice it's
// handed.
func (st *State) dispatchCall(callerFrameIdx int, fnVal value.Value, firstArg uint8, pc uint32) (value.Value, *Error) {
	if !value.IsFunction(fnVal) {
		return value.Value{}, newError(TypeMismatch, pc, "CALL target is not a function (got %s)", value.TypeName(fnVal))
	}
	fn := fnVal.Obj().Function()
	argc := int(fn.ArgCount())
	callerBottom := st.frames[callerFrameIdx].Bottom
	callerSize := st.frames[callerFrameIdx].Size

	// args is a borrowed view straight off the caller's stack, same as any
	// get(reg) elsewhere in this file: the caller's registers keep their own
	// ownership. Call's arg-copy loop dup's for the script-callee case
	// before storing into its own frame; fn.Host gets the raw borrow and
	// must dup anything it stores or returns directly (HostFunc's doc
	// comment spells out the contract host authors are bound to).
	args := make([]value.Value, argc)
	for i := 0; i < argc; i++ {
		reg := uint32(firstArg) + uint32(i)
		if reg < callerSize {
			args[i] = st.stack[callerBottom+reg]
		} else {
			args[i] = value.NewNil()
		}
	}

	if fn.Script != nil {
		v, err := Call(st, fn.Script, args)
		if err != nil {
			rerr, ok := err.(*Error)
			if !ok {
				return value.Value{}, newError(Panic, pc, "%v", err)
			}
			return value.Value{}, rerr
		}
		return v, nil
	}

	st.frames = append(st.frames, Frame{Bottom: callerBottom + uint32(firstArg), Size: uint32(argc), name: "<host>"})
	result, herr := fn.Host(args)
	st.frames = st.frames[:len(st.frames)-1]
	if herr != nil {
		if rerr, ok := herr.(*Error); ok {
			return value.Value{}, rerr
		}
		return value.Value{}, newError(Panic, pc, "%v", herr)
	}
	return result, nil
}

// stdoutWriter returns the state's configured standard-output sink,
// defaulting to os.Stdout when unset.
func (st *State) stdoutWriter() io.Writer {
	if st.Stdout != nil {
		return st.Stdout
	}
	return os.Stdout
}

// Writer exposes the same defaulted stdout sink to host functions
// registered outside this package (e.g. stdlib.Print), so they don't
// each have to repeat the os.Stdout fallback.
func (st *State) Writer() io.Writer {
	return st.stdoutWriter()
}
