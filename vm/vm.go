package vm

import (
	"rvasm/asm"
	"rvasm/imgfmt"
)

// NumRegisters is the fixed register file size (spec.md §3 VMState).
const NumRegisters = 32

// VM holds all state for a single execution, owned exclusively by the
// VM for its lifetime (spec.md §5 resource policy): registers, program
// counter, the loaded program and read-only segment, the heap, and the
// equality flag consumed by JMPE.
type VM struct {
	Regs      [NumRegisters]int32
	PC        uint32
	Program   []byte
	Remainder uint32
	EqualFlag bool
	Heap      []byte
	RO        []byte

	// Err records the error that caused the most recent halt, if any
	// (nil after a clean HLT or a jump past the end of the program).
	Err error

	debugger *Debugger
	out      Output
}

// Output receives PRTS's printed bytes. Defaults to discarding them;
// callers (the REPL collaborator) attach their own writer.
type Output interface {
	Write(p []byte) (int, error)
}

// New creates a VM with all registers zero and the program counter set
// to the first byte after the header (spec.md invariant I7, §3).
func New() *VM {
	return &VM{PC: imgfmt.HeaderLength}
}

// SetOutput directs PRTS output to w. A nil w discards output.
func (v *VM) SetOutput(w Output) {
	v.out = w
}

// AttachDebugger attaches a breakpoint debugger to the VM (spec.md §5:
// a host caps execution by wrapping the loop externally; this is that
// wrapping point for the REPL collaborator).
func (v *VM) AttachDebugger(d *Debugger) {
	v.debugger = d
}

// LoadImage validates and loads a complete image, replacing any
// previously loaded program, read-only segment, and registers.
func (v *VM) LoadImage(image []byte) error {
	ro, code, err := Load(image)
	if err != nil {
		return err
	}
	v.RO = ro
	v.Program = code
	v.PC = imgfmt.HeaderLength
	return nil
}

// AppendBytes stages additional code after the currently loaded program,
// used by the REPL to grow the program one instruction at a time
// (spec.md §6 Assembler API).
func (v *VM) AppendBytes(b []byte) {
	v.Program = append(v.Program, b...)
}

// codeIndex converts a VM address (HeaderLength plus a code-segment
// offset, not counting the read-only segment) into an index into
// Program, the VM's view of the code segment.
func (v *VM) codeIndex(addr uint32) (int, bool) {
	if addr < imgfmt.HeaderLength {
		return 0, false
	}
	idx := addr - imgfmt.HeaderLength
	if idx >= uint32(len(v.Program)) {
		return 0, false
	}
	return int(idx), true
}

// Run executes instructions until the program halts, reaches an illegal
// opcode, or runs past the end of the code buffer, returning the exit
// code described in spec.md §4.7: 0 for HLT or end-of-program, 1 for an
// illegal instruction.
func (v *VM) Run() uint32 {
	for {
		code, halted := v.Step()
		if halted {
			return code
		}
	}
}

// Step executes exactly one instruction (spec.md §6 VM API) and reports
// whether the VM halted as a result.
func (v *VM) Step() (exitCode uint32, halted bool) {
	v.Err = nil
	if v.debugger != nil && v.debugger.onFetch(v, v.PC) {
		return 0, true
	}

	idx, ok := v.codeIndex(v.PC)
	if !ok {
		return 0, true
	}

	op := asm.Opcode(v.Program[idx])
	b1, b2, b3 := v.Program[idx+1], v.Program[idx+2], v.Program[idx+3]
	v.PC += 4

	switch op {
	case asm.Load:
		r := b1
		imm := uint16(b2)<<8 | uint16(b3)
		if !v.setReg(r, int32(imm)) {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}

	case asm.Add:
		a, ok1 := v.getReg(b1)
		b, ok2 := v.getReg(b2)
		if !ok1 || !ok2 || !v.setReg(b3, a+b) {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}

	case asm.Sub:
		a, ok1 := v.getReg(b1)
		b, ok2 := v.getReg(b2)
		if !ok1 || !ok2 || !v.setReg(b3, a-b) {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}

	case asm.Mul:
		a, ok1 := v.getReg(b1)
		b, ok2 := v.getReg(b2)
		if !ok1 || !ok2 || !v.setReg(b3, a*b) {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}

	case asm.Div:
		a, ok1 := v.getReg(b1)
		b, ok2 := v.getReg(b2)
		if !ok1 || !ok2 {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}
		if b == 0 {
			return v.haltOn(ErrDivideByZero)
		}
		if !v.setReg(b3, a/b) {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}
		v.Remainder = uint32(a % b)

	case asm.Hlt:
		return 0, true

	case asm.Jmp:
		target, ok := v.getReg(b1)
		if !ok {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}
		v.PC = uint32(target)

	case asm.Eq:
		a, ok1 := v.getReg(b1)
		b, ok2 := v.getReg(b2)
		if !ok1 || !ok2 {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}
		v.EqualFlag = a == b

	case asm.Neq:
		a, ok1 := v.getReg(b1)
		b, ok2 := v.getReg(b2)
		if !ok1 || !ok2 {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}
		v.EqualFlag = a != b

	case asm.Gt:
		a, ok1 := v.getReg(b1)
		b, ok2 := v.getReg(b2)
		if !ok1 || !ok2 {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}
		v.EqualFlag = a > b

	case asm.Gte:
		a, ok1 := v.getReg(b1)
		b, ok2 := v.getReg(b2)
		if !ok1 || !ok2 {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}
		v.EqualFlag = a >= b

	case asm.Lt:
		a, ok1 := v.getReg(b1)
		b, ok2 := v.getReg(b2)
		if !ok1 || !ok2 {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}
		v.EqualFlag = a < b

	case asm.Lte:
		a, ok1 := v.getReg(b1)
		b, ok2 := v.getReg(b2)
		if !ok1 || !ok2 {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}
		v.EqualFlag = a <= b

	case asm.Jmpe:
		if v.EqualFlag {
			target, ok := v.getReg(b1)
			if !ok {
				return v.haltOn(ErrRegisterIndexOutOfRange)
			}
			v.PC = uint32(target)
		}

	case asm.Nop:
		// consume three padding bytes, no other effect

	case asm.Aloc:
		n, ok := v.getReg(b1)
		if !ok {
			return v.haltOn(ErrRegisterIndexOutOfRange)
		}
		if n > 0 {
			v.Heap = append(v.Heap, make([]byte, n)...)
		}

	case asm.Prts:
		offset := uint16(b1)<<8 | uint16(b2)
		s, ok := v.readROString(offset)
		if !ok {
			return v.haltOn(ErrReadOnlyOutOfRange)
		}
		if v.out != nil {
			v.out.Write([]byte(s))
		}

	default:
		return v.haltOn(ErrIllegalOpcode)
	}

	return 0, false
}

func (v *VM) getReg(r byte) (int32, bool) {
	if int(r) >= NumRegisters {
		return 0, false
	}
	return v.Regs[r], true
}

func (v *VM) setReg(r byte, val int32) bool {
	if int(r) >= NumRegisters {
		return false
	}
	v.Regs[r] = val
	return true
}

// readROString reads a NUL-terminated UTF-8 string from the read-only
// segment starting at offset, per spec.md's PRTS semantics.
func (v *VM) readROString(offset uint16) (string, bool) {
	start := int(offset)
	if start >= len(v.RO) {
		return "", false
	}
	end := start
	for end < len(v.RO) && v.RO[end] != 0 {
		end++
	}
	if end >= len(v.RO) {
		return "", false // missing NUL terminator
	}
	return string(v.RO[start:end]), true
}

// haltOn records the error that caused a halt and reports the VM API's
// exit code 1 for any error condition (spec.md §4.7, §7).
func (v *VM) haltOn(err error) (uint32, bool) {
	v.Err = err
	return 1, true
}
