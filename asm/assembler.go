package asm

import "rvasm/imgfmt"

// AssemblerPhase is First during symbol/layout collection and Second
// during code emission (spec.md §3 AssemblerState).
type AssemblerPhase byte

const (
	PhaseFirst AssemblerPhase = iota
	PhaseSecond
)

// assembler is the driver described in spec.md §4.4, the heart of the
// package: a two-pass scheme that collects symbols and section layout in
// pass one, then emits code bytes in pass two.
type assembler struct {
	phase              AssemblerPhase
	symbols            *SymbolTable
	ro                 []byte
	code               []byte
	roOffset           uint32
	sections           []Section
	haveCode, haveData bool
	currentSection     SectionKind
	haveSection        bool
	currentInstruction uint32 // count of opcode instructions seen so far
	errors             []*AssemblerError
}

// Result is what a successful assembly produces: the full image plus a
// symbol table snapshot for diagnostics (spec.md §6 symbols_snapshot).
type Result struct {
	Image   []byte
	Symbols []Symbol
}

// Assemble runs the full two-pass assembly of source text, per spec.md
// §4.4, producing a complete image or a list of structured errors.
func Assemble(src string) (*Result, []*AssemblerError) {
	prog, err := Parse(src)
	if err != nil {
		return nil, []*AssemblerError{err.(*AssemblerError)}
	}
	return assembleProgram(prog)
}

func assembleProgram(prog Program) (*Result, []*AssemblerError) {
	a := &assembler{
		phase:   PhaseFirst,
		symbols: NewSymbolTable(),
	}

	a.passOne(prog)

	if !(a.haveCode && a.haveData) {
		a.errors = append(a.errors, &AssemblerError{Kind: InsufficientSections})
	}

	if len(a.errors) > 0 {
		return nil, a.errors
	}

	a.phase = PhaseSecond
	a.passTwo(prog)

	if len(a.errors) > 0 {
		return nil, a.errors
	}

	header := imgfmt.BuildHeader(uint32(len(a.ro)))
	image := make([]byte, 0, len(header)+len(a.ro)+len(a.code))
	image = append(image, header...)
	image = append(image, a.ro...)
	image = append(image, a.code...)

	return &Result{Image: image, Symbols: a.symbols.Snapshot()}, nil
}

func (a *assembler) addError(e *AssemblerError) {
	a.errors = append(a.errors, e)
}

// passOne collects symbols and section layout (spec.md §4.4 "Pass one").
func (a *assembler) passOne(prog Program) {
	for _, inst := range prog {
		isAsciizWithLabel := inst.HasLabel && inst.IsDirective && inst.Directive == "asciiz" && len(inst.Operands) > 0

		if inst.HasLabel && !isAsciizWithLabel {
			if !a.haveSection {
				a.addError(&AssemblerError{Kind: NoSegmentDeclarationFound, Instruction: int(a.currentInstruction)})
			} else if err := a.symbols.Insert(inst.Label, SymbolLabel); err != nil {
				a.addError(err.(*AssemblerError))
			} else {
				a.symbols.SetOffset(inst.Label, imgfmt.LabelOffset(a.currentInstruction))
			}
		}

		if inst.IsDirective {
			a.passOneDirective(inst)
		}

		if inst.IsOpcode {
			a.currentInstruction++
		}
	}
}

func (a *assembler) passOneDirective(inst Instruction) {
	if len(inst.Operands) == 0 {
		a.enterSection(inst.Directive)
		return
	}

	switch inst.Directive {
	case "asciiz":
		a.passOneAsciiz(inst)
	default:
		a.addError(&AssemblerError{Kind: UnknownDirectiveFound, Directive: inst.Directive})
	}
}

// enterSection implements the section state machine of spec.md §4.4:
// NoSection -> Code <-> Data. Directives naming anything other than
// "code" or "data" are ignored: no error, no diagnostic, and no section
// entry is recorded for them.
func (a *assembler) enterSection(name string) {
	kind, ok := sectionKindFor(name)
	if !ok {
		return
	}

	switch kind {
	case SectionCode:
		if !a.haveCode {
			a.sections = append(a.sections, Section{Kind: SectionCode, Start: a.currentInstruction, HasStart: true})
			a.haveCode = true
		}
	case SectionData:
		if !a.haveData {
			a.sections = append(a.sections, Section{Kind: SectionData, Start: a.currentInstruction, HasStart: true})
			a.haveData = true
		}
	}
	a.currentSection = kind
	a.haveSection = true
}

func (a *assembler) passOneAsciiz(inst Instruction) {
	if !inst.HasLabel {
		a.addError(&AssemblerError{Kind: StringConstantDeclaredWithoutLabel, Instruction: int(a.currentInstruction)})
		return
	}
	if len(inst.Operands) != 1 || inst.Operands[0].Kind != OperandString {
		a.addError(&AssemblerError{Kind: InvalidOperand, Reason: ".asciiz requires a single string operand"})
		return
	}

	pre := a.roOffset
	str := inst.Operands[0].Str
	a.ro = append(a.ro, []byte(str)...)
	a.ro = append(a.ro, 0)
	a.roOffset += uint32(len(str)) + 1

	if err := a.symbols.Insert(inst.Label, SymbolLabel); err != nil {
		a.addError(err.(*AssemblerError))
		return
	}
	a.symbols.SetOffset(inst.Label, pre)
}

// passTwo emits code bytes for every opcode instruction in program order
// (spec.md §4.4 "Pass two"). Directive-only instructions emit nothing.
func (a *assembler) passTwo(prog Program) {
	for _, inst := range prog {
		if !inst.IsOpcode {
			continue
		}
		bytes, err := encodeInstruction(inst, a.symbols)
		if err != nil {
			a.addError(err.(*AssemblerError))
			continue
		}
		a.code = append(a.code, bytes[:]...)
	}
}
