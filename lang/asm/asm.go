// Package asm implements the optional textual assembler/disassembler for
// the register bytecode format. It lets a prototype be written and read by
// hand, independent of the scanner/parser/compiler front end, mainly so
// the interpreter can be exercised directly.
//
// The format is section-oriented:
//
//	program:
//		regs: 4
//		args: 1
//		name: double
//		constants:
//			int 2
//		code:
//			loop:
//			MUL 0 0 1
//			JMP loop
//			RET 0
//
// Comments start with '#' and run to end of line. JMP's operand may be a
// numeric relative offset (as the compiler emits) or a label declared by
// a bare "name:" line in the code section, resolved to a relative offset
// against instruction index, since every word is fixed-width.
package asm

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/vex-lang/vex/lang/value"
)

var sectionNames = map[string]bool{
	"program:":   true,
	"constants:": true,
	"code:":      true,
}

// Asm parses a prototype from its textual assembly form.
func Asm(src []byte) (*value.Prototype, error) {
	a := &assembler{s: bufio.NewScanner(bytes.NewReader(src))}
	fields := a.next()
	if len(fields) == 0 || !strings.EqualFold(fields[0], "program:") {
		return nil, fmt.Errorf("asm: expected 'program:' section")
	}
	a.proto = &value.Prototype{}

	fields = a.next()
	for a.err == nil && len(fields) > 0 && !strings.EqualFold(fields[0], "constants:") && !strings.EqualFold(fields[0], "code:") {
		fields = a.scalar(fields)
	}
	fields = a.constants(fields)
	fields = a.code(fields)

	if a.err == nil && len(fields) > 0 {
		a.err = fmt.Errorf("asm: unexpected section: %s", fields[0])
	}
	return a.proto, a.err
}

type assembler struct {
	s       *bufio.Scanner
	rawLine string
	proto   *value.Prototype
	err     error
}

func (a *assembler) scalar(fields []string) []string {
	if a.err != nil {
		return fields
	}
	switch {
	case strings.EqualFold(fields[0], "regs:"):
		a.proto.RegCount = uint32(a.uint(fields[1]))
	case strings.EqualFold(fields[0], "args:"):
		a.proto.ArgCount = uint32(a.uint(fields[1]))
	case strings.EqualFold(fields[0], "entry:"):
		a.proto.Entry = uint32(a.uint(fields[1]))
	case strings.EqualFold(fields[0], "name:"):
		a.proto.Name = strings.Join(fields[1:], " ")
	default:
		a.err = fmt.Errorf("asm: unknown program field: %s", fields[0])
	}
	return a.next()
}

func (a *assembler) constants(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "constants:") {
		return fields
	}
	for fields = a.next(); a.err == nil && len(fields) > 0 && !sectionNames[strings.ToLower(fields[0])]; fields = a.next() {
		if len(fields) < 2 && fields[0] != "nil" {
			a.err = fmt.Errorf("asm: invalid constant line: %s", a.rawLine)
			return fields
		}
		switch fields[0] {
		case "nil":
			a.proto.Constants = append(a.proto.Constants, value.NewNil())
		case "bool":
			a.proto.Constants = append(a.proto.Constants, value.NewBool(fields[1] == "true"))
		case "int":
			a.proto.Constants = append(a.proto.Constants, value.NewI64(a.int(fields[1])))
		case "float":
			f, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				a.err = fmt.Errorf("asm: invalid float constant %q: %w", fields[1], err)
				return fields
			}
			a.proto.Constants = append(a.proto.Constants, value.NewF64(f))
		case "string":
			raw := strings.TrimSpace(strings.TrimPrefix(a.rawLine, fields[0]))
			s, err := strconv.Unquote(raw)
			if err != nil {
				a.err = fmt.Errorf("asm: invalid string constant %q: %w", raw, err)
				return fields
			}
			a.proto.Constants = append(a.proto.Constants, value.NewConstString(s))
		default:
			a.err = fmt.Errorf("asm: unknown constant kind: %s", fields[0])
		}
	}
	return fields
}

type pendingJMP struct {
	index int
	label string
}

func (a *assembler) code(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "code:") {
		return fields
	}

	labels := map[string]int{}
	var pending []pendingJMP
	var code []value.Instruction

	for fields = a.next(); a.err == nil && len(fields) > 0 && !sectionNames[strings.ToLower(fields[0])]; fields = a.next() {
		if len(fields) == 1 && strings.HasSuffix(fields[0], ":") {
			labels[strings.TrimSuffix(fields[0], ":")] = len(code)
			continue
		}

		op, ok := reverseOpcode[strings.ToUpper(fields[0])]
		if !ok {
			a.err = fmt.Errorf("asm: unknown opcode: %s", fields[0])
			return fields
		}
		operands := fields[1:]

		switch op.Encoding() {
		case value.EncA:
			if op == value.JMP && len(operands) == 1 {
				if n, err := strconv.ParseInt(operands[0], 10, 32); err == nil {
					code = append(code, value.EncodeA(op, int32(n)))
					continue
				}
				pending = append(pending, pendingJMP{index: len(code), label: operands[0]})
				code = append(code, value.EncodeA(op, 0))
				continue
			}
			if len(operands) != 1 {
				a.err = fmt.Errorf("asm: %s expects 1 operand, got %d", op, len(operands))
				return fields
			}
			code = append(code, value.EncodeA(op, int32(a.int(operands[0]))))

		case value.EncAB:
			if len(operands) != 2 {
				a.err = fmt.Errorf("asm: %s expects 2 operands, got %d", op, len(operands))
				return fields
			}
			code = append(code, value.EncodeAB(op, uint8(a.uint(operands[0])), uint16(a.uint(operands[1]))))

		case value.EncABC:
			if len(operands) != 3 {
				a.err = fmt.Errorf("asm: %s expects 3 operands, got %d", op, len(operands))
				return fields
			}
			code = append(code, value.EncodeABC(op, uint8(a.uint(operands[0])), uint8(a.uint(operands[1])), uint8(a.uint(operands[2]))))
		}
	}

	for _, p := range pending {
		target, ok := labels[p.label]
		if !ok {
			a.err = fmt.Errorf("asm: undefined label: %s", p.label)
			return fields
		}
		offset := int32(target) - int32(p.index+1)
		code[p.index] = value.EncodeA(value.JMP, offset)
	}

	if a.err == nil {
		a.proto.Code = code
	}
	return fields
}

func (a *assembler) int(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		a.err = fmt.Errorf("asm: invalid integer %q: %w", s, err)
	}
	return n
}

func (a *assembler) uint(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		a.err = fmt.Errorf("asm: invalid unsigned integer %q: %w", s, err)
	}
	return n
}

// next returns the whitespace-split fields of the next non-empty,
// non-comment-only line, stripping any trailing '#' comment.
func (a *assembler) next() []string {
	a.rawLine = ""
	if a.err != nil {
		return nil
	}
	for a.s.Scan() {
		line := a.s.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) != 0 {
			a.rawLine = strings.TrimSpace(line)
			return fields
		}
	}
	a.err = a.s.Err()
	return nil
}

var reverseOpcode = buildReverseOpcode()

func buildReverseOpcode() map[string]value.Opcode {
	names := []value.Opcode{
		value.LOAD, value.MOVE, value.RET, value.JMP, value.CALL,
		value.ADD, value.SUB, value.MUL, value.DIV,
		value.EQ, value.LT, value.LE,
		value.OBJ_NEW, value.OBJ_SET, value.OBJ_GET,
		value.STR_FROM, value.STR_ECHO, value.DBG_DUMP, value.GLOBAL,
	}
	m := make(map[string]value.Opcode, len(names))
	for _, op := range names {
		m[op.String()] = op
	}
	return m
}

// Dasm renders a prototype to its textual assembly form, the inverse of
// Asm. It always emits the numeric JMP offset form (never reconstructs
// labels), since a prototype carries no label metadata of its own.
func Dasm(p *value.Prototype) []byte {
	var buf bytes.Buffer

	buf.WriteString("program:\n")
	fmt.Fprintf(&buf, "\tregs: %d\n", p.RegCount)
	fmt.Fprintf(&buf, "\targs: %d\n", p.ArgCount)
	if p.Entry != 0 {
		fmt.Fprintf(&buf, "\tentry: %d\n", p.Entry)
	}
	if p.Name != "" {
		fmt.Fprintf(&buf, "\tname: %s\n", p.Name)
	}

	if len(p.Constants) > 0 {
		buf.WriteString("\tconstants:\n")
		for _, c := range p.Constants {
			writeConstant(&buf, c)
		}
	}

	buf.WriteString("\tcode:\n")
	for i, ins := range p.Code {
		writeInstruction(&buf, i, ins)
	}

	return buf.Bytes()
}

func writeConstant(buf *bytes.Buffer, c value.Value) {
	switch c.Tag {
	case value.Nil:
		buf.WriteString("\t\tnil\n")
	case value.Bool:
		fmt.Fprintf(buf, "\t\tbool %t\n", c.Bool())
	case value.I64:
		fmt.Fprintf(buf, "\t\tint %d\n", c.I64())
	case value.F64:
		fmt.Fprintf(buf, "\t\tfloat %g\n", c.F64())
	case value.Dyn:
		if value.IsString(c) {
			fmt.Fprintf(buf, "\t\tstring %q\n", c.Obj().String().Go())
			return
		}
		fmt.Fprintf(buf, "\t\t# unsupported constant kind: %s\n", value.TypeName(c))
	}
}

func writeInstruction(buf *bytes.Buffer, idx int, ins value.Instruction) {
	op := ins.Op()
	switch op.Encoding() {
	case value.EncA:
		fmt.Fprintf(buf, "\t\t%s %d\t# %03d\n", op, ins.A(), idx)
	case value.EncAB:
		a, b := ins.ABOperands()
		fmt.Fprintf(buf, "\t\t%s %d %d\t# %03d\n", op, a, b, idx)
	case value.EncABC:
		a, b, c := ins.ABCOperands()
		fmt.Fprintf(buf, "\t\t%s %d %d %d\t# %03d\n", op, a, b, c, idx)
	}
}
