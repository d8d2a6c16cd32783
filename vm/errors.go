// Package vm implements the fetch-decode-execute loop for the
// register-machine bytecode described by spec.md: 32 signed 32-bit
// registers, an equality flag, a byte-addressable heap, and a
// read-only data segment loaded from the image.
package vm

import "errors"

// VM error kinds (spec.md §7). Every one halts execution.
var (
	ErrHeaderInvalid           = errors.New("image header invalid")
	ErrDivideByZero            = errors.New("division by zero")
	ErrIllegalOpcode           = errors.New("illegal opcode")
	ErrRegisterIndexOutOfRange = errors.New("register index out of range")
	ErrReadOnlyOutOfRange      = errors.New("read-only segment access out of range")
)
