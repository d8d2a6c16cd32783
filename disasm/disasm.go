// Package disasm implements a disassembler for the register-machine
// bytecode dialect assembled by the asm package.
package disasm

import (
	"fmt"
	"strings"

	"rvasm/asm"
	"rvasm/imgfmt"
)

// Instruction is one decoded 4-byte instruction: its address, the address
// immediately following it, and its mnemonic text.
type Instruction struct {
	Addr uint32
	Next uint32
	Text string
}

// Disassemble decodes the instruction in code at byte offset off (an
// index into code, not an absolute image address) and returns a line of
// mnemonic text along with the offset of the next instruction.
func Disassemble(code []byte, off uint32) (line string, next uint32) {
	if int(off)+4 > len(code) {
		return "???", off + 4
	}
	op := asm.Opcode(code[off])
	bytes := [3]byte{code[off+1], code[off+2], code[off+3]}

	var args []string
	i := 0
	for _, kind := range op.Shape() {
		switch kind {
		case asm.OperandShapeRegister:
			args = append(args, fmt.Sprintf("$%d", bytes[i]))
			i++
		case asm.OperandShapeImm16:
			v := uint16(bytes[i])<<8 | uint16(bytes[i+1])
			args = append(args, fmt.Sprintf("#%d", v))
			i += 2
		}
	}

	line = op.String()
	if len(args) > 0 {
		line += " " + strings.Join(args, " ")
	}
	return line, off + 4
}

// Program disassembles an entire code segment, one line per instruction,
// in address order starting at imgfmt.HeaderLength.
func Program(code []byte) []Instruction {
	var out []Instruction
	for off := uint32(0); int(off) < len(code); {
		text, next := Disassemble(code, off)
		out = append(out, Instruction{
			Addr: imgfmt.HeaderLength + off,
			Next: imgfmt.HeaderLength + next,
			Text: text,
		})
		off = next
	}
	return out
}
