package asm

import "fmt"

// tokenKind tags the variant held by a token.
type tokenKind byte

const (
	tokOp tokenKind = iota
	tokRegister
	tokInteger
	tokLabelDecl
	tokLabelUse
	tokDirective
	tokString
	tokNewline
	tokEOF
)

// token is the tagged-variant Token described by spec.md §3. Only the
// fields relevant to tok's kind are populated.
type token struct {
	kind   tokenKind
	pos    pos    // row/column of the token's start, for diagnostics
	opcode Opcode // tokOp
	reg    int    // tokRegister
	ival   int32  // tokInteger
	name   string // tokLabelDecl, tokLabelUse, tokDirective
	str    string // tokString (literal text, escapes not interpreted)
}

// pos locates a token within the source text.
type pos struct {
	row, col int
}

func (p pos) String() string {
	return fmt.Sprintf("%d:%d", p.row, p.col)
}
