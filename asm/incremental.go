package asm

// AssembleIncremental assembles a single line of source using a symbol
// table shared across calls, for the REPL collaborator described in
// spec.md §6 and SPEC_FULL.md's supplemented features: each REPL line is
// parsed, encoded against the running symbol table, and returned as the
// 4 bytes to append to the VM's program. codeAddr is the absolute image
// address (including header) the resulting instruction will occupy, used
// to resolve a label declared on this line.
//
// Unlike the full two-pass Assemble, this entry point has no section
// concept: the REPL has no .data/.code declarations, so labels declared
// here are bound immediately rather than deferred to a pass boundary.
func AssembleIncremental(symbols *SymbolTable, codeAddr uint32, line string) ([]byte, *AssemblerError) {
	prog, err := Parse(line)
	if err != nil {
		return nil, err.(*AssemblerError)
	}
	if len(prog) == 0 {
		return nil, nil
	}
	inst := prog[0]

	if inst.IsDirective {
		return nil, &AssemblerError{Kind: UnknownDirectiveFound, Directive: inst.Directive}
	}
	if !inst.IsOpcode {
		return nil, errParse(inst.Pos, "expected an instruction")
	}

	if inst.HasLabel {
		if !symbols.Has(inst.Label) {
			if ierr := symbols.Insert(inst.Label, SymbolLabel); ierr != nil {
				return nil, ierr.(*AssemblerError)
			}
		}
		symbols.SetOffset(inst.Label, codeAddr)
	}

	bytes, eerr := encodeInstruction(inst, symbols)
	if eerr != nil {
		return nil, eerr.(*AssemblerError)
	}
	return bytes[:], nil
}
