// Package asm implements a two-pass assembler for the register-machine
// bytecode dialect described by this module: sections, labels, directives,
// and a small fixed instruction set that the vm package decodes.
package asm

// Opcode identifies one of the machine's instructions. Unknown mnemonics
// and unknown encoded bytes both resolve to Igl.
type Opcode byte

// The closed set of opcodes. Numeric values match the wire encoding
// produced by the encoder and consumed by the vm package.
const (
	Load Opcode = 0
	Add  Opcode = 1
	Sub  Opcode = 2
	Mul  Opcode = 3
	Div  Opcode = 4
	Hlt  Opcode = 6
	Jmp  Opcode = 7
	Eq   Opcode = 8
	Neq  Opcode = 9
	Gt   Opcode = 10
	Gte  Opcode = 11
	Lt   Opcode = 12
	Lte  Opcode = 13
	Jmpe Opcode = 14
	Nop  Opcode = 15
	Aloc Opcode = 17
	Prts Opcode = 18
	Igl  Opcode = 255
)

var mnemonicToOpcode = map[string]Opcode{
	"load": Load,
	"add":  Add,
	"sub":  Sub,
	"mul":  Mul,
	"div":  Div,
	"hlt":  Hlt,
	"jmp":  Jmp,
	"eq":   Eq,
	"neq":  Neq,
	"gt":   Gt,
	"gte":  Gte,
	"lt":   Lt,
	"lte":  Lte,
	"jmpe": Jmpe,
	"nop":  Nop,
	"aloc": Aloc,
	"prts": Prts,
}

var opcodeToMnemonic map[Opcode]string

func init() {
	opcodeToMnemonic = make(map[Opcode]string, len(mnemonicToOpcode))
	for m, o := range mnemonicToOpcode {
		opcodeToMnemonic[o] = m
	}
}

// LookupMnemonic returns the opcode for a lowercase mnemonic string. Unknown
// mnemonics return Igl, matching the VM's handling of unknown encoded bytes.
func LookupMnemonic(s string) Opcode {
	if o, ok := mnemonicToOpcode[s]; ok {
		return o
	}
	return Igl
}

// String returns the mnemonic for an opcode, or "igl" if it isn't one of
// the closed set of recognized codes.
func (o Opcode) String() string {
	if s, ok := opcodeToMnemonic[o]; ok {
		return s
	}
	return "igl"
}

// operandKind classifies one operand slot of an opcode's shape, used by
// both the encoder (C5) and operand-count validation in the parser.
type operandKind byte

const (
	kindNone operandKind = iota
	kindRegister
	kindImm16
	kindRegOrLabel // register opcode slot that may also accept a label (rejected at encode time)
)

// shape lists the operand kinds for an opcode, in order. Opcodes shorter
// than 3 operands are zero-padded by the encoder.
func (o Opcode) shape() []operandKind {
	switch o {
	case Load:
		return []operandKind{kindRegister, kindImm16}
	case Add, Sub, Mul, Div:
		return []operandKind{kindRegister, kindRegister, kindRegister}
	case Eq, Neq, Gt, Gte, Lt, Lte:
		return []operandKind{kindRegister, kindRegister}
	case Jmp:
		return []operandKind{kindRegister}
	case Jmpe:
		return []operandKind{kindRegister}
	case Aloc:
		return []operandKind{kindRegister}
	case Prts:
		return []operandKind{kindImm16}
	case Hlt, Nop, Igl:
		return nil
	default:
		return nil
	}
}

// maxOperands returns the number of operand slots an opcode accepts; the
// parser rejects a line with more operands than this with a ParseError.
func (o Opcode) maxOperands() int {
	return len(o.shape())
}

// OperandShapeKind classifies one decoded operand slot for consumers
// outside this package, such as the disassembler.
type OperandShapeKind byte

// The operand shape kinds a disassembler needs to distinguish.
const (
	OperandShapeRegister OperandShapeKind = iota
	OperandShapeImm16
)

// Shape returns the operand kinds for an opcode, in order, collapsing the
// parser's internal kindRegOrLabel distinction into OperandShapeRegister.
func (o Opcode) Shape() []OperandShapeKind {
	shape := o.shape()
	out := make([]OperandShapeKind, len(shape))
	for i, k := range shape {
		if k == kindImm16 {
			out[i] = OperandShapeImm16
		} else {
			out[i] = OperandShapeRegister
		}
	}
	return out
}
