package value

// Prototype is an immutable compiled script function: its bytecode, its
// constant pool, the register count its frame must allocate, its
// declared argument count, and the code offset at which execution begins.
//
// Invariants (checked by the compiler, relied on by the interpreter):
// every register index referenced by Code is < RegCount; every constant
// index is < len(Constants); Entry < len(Code) (or Code is empty).
type Prototype struct {
	Code      []Instruction
	Constants []Value
	RegCount  uint32
	ArgCount  uint32
	Entry     uint32
	Name      string
}
