package asm

import "fmt"

// AssemblerError is the closed taxonomy of diagnostics the assembler can
// raise, as described by spec.md §7. Every variant carries enough context
// to locate the offending instruction or symbol.
type AssemblerError struct {
	Kind        ErrorKind
	Message     string // populated for ParseError
	Instruction int    // populated for NoSegmentDeclarationFound, StringConstantDeclaredWithoutLabel
	Name        string // populated for SymbolAlreadyDeclared
	Directive   string // populated for UnknownDirectiveFound
	Reason      string // populated for InvalidOperand
	Pos         pos
}

// ErrorKind enumerates the AssemblerError variants.
type ErrorKind byte

const (
	ParseError ErrorKind = iota
	NoSegmentDeclarationFound
	StringConstantDeclaredWithoutLabel
	SymbolAlreadyDeclared
	UnknownDirectiveFound
	InsufficientSections
	InvalidOperand
)

func (e *AssemblerError) Error() string {
	switch e.Kind {
	case ParseError:
		return fmt.Sprintf("%s: parse error: %s", e.Pos, e.Message)
	case NoSegmentDeclarationFound:
		return fmt.Sprintf("instruction %d: label declared outside any section", e.Instruction)
	case StringConstantDeclaredWithoutLabel:
		return fmt.Sprintf("instruction %d: .asciiz requires a declaring label", e.Instruction)
	case SymbolAlreadyDeclared:
		return fmt.Sprintf("symbol %q already declared", e.Name)
	case UnknownDirectiveFound:
		return fmt.Sprintf("unknown directive %q", e.Directive)
	case InsufficientSections:
		return "assembly must declare both a .code and a .data section"
	case InvalidOperand:
		return fmt.Sprintf("invalid operand: %s", e.Reason)
	default:
		return "unknown assembler error"
	}
}

func errParse(p pos, format string, args ...interface{}) *AssemblerError {
	return &AssemblerError{Kind: ParseError, Pos: p, Message: fmt.Sprintf(format, args...)}
}
