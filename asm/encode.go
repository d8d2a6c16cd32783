package asm

// encodeInstruction lowers a single opcode-bearing Instruction to its
// 4-byte wire encoding, resolving any label operand via syms. Every
// instruction occupies exactly 4 bytes (spec.md invariant I1): one
// opcode byte, up to three operand bytes, zero-padded.
func encodeInstruction(inst Instruction, syms *SymbolTable) ([4]byte, error) {
	var out [4]byte
	out[0] = byte(inst.Opcode)

	shape := inst.Opcode.shape()
	i := 1
	for idx, operand := range inst.Operands {
		var kind operandKind
		if idx < len(shape) {
			kind = shape[idx]
		}

		switch operand.Kind {
		case OperandRegister:
			if i >= 4 {
				return out, &AssemblerError{Kind: InvalidOperand, Reason: "too many operand bytes"}
			}
			out[i] = byte(operand.Reg)
			i++

		case OperandInteger:
			if i+2 > 4 {
				return out, &AssemblerError{Kind: InvalidOperand, Reason: "too many operand bytes"}
			}
			v := uint16(operand.Ival)
			out[i] = byte(v >> 8)
			out[i+1] = byte(v)
			i += 2

		case OperandLabelUse:
			if kind == kindRegister {
				return out, &AssemblerError{Kind: InvalidOperand, Reason: "label cannot be used where a register is expected"}
			}
			offset, ok := syms.Lookup(operand.Name)
			if !ok {
				return out, &AssemblerError{Kind: InvalidOperand, Reason: "undefined label " + operand.Name}
			}
			if i+2 > 4 {
				return out, &AssemblerError{Kind: InvalidOperand, Reason: "too many operand bytes"}
			}
			out[i] = byte(offset >> 8)
			out[i+1] = byte(offset)
			i += 2

		case OperandString:
			return out, &AssemblerError{Kind: InvalidOperand, Reason: "string literal cannot appear as a code operand"}
		}
	}

	return out, nil
}
