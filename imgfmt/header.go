// Package imgfmt defines the binary image header shared by the assembler
// and the VM (spec.md §3 Image, §4.6, §6). Both sides of the contract
// import this package so that the encoding they agree on lives in exactly
// one place.
package imgfmt

import "errors"

// Magic is the 4-byte prefix identifying a valid image.
var Magic = [4]byte{0x2D, 0x32, 0x31, 0x2D}

// HeaderLength is the fixed size, in bytes, of the image header. This
// module resolves the header-length open question (spec.md §9) by using
// the same constant as both the VM's initial program counter and the
// assembler's label-offset base: pc_start = header_length = 64.
const HeaderLength = 64

// roLengthOffset is where, within the reserved header bytes, the
// read-only segment's length is recorded (spec.md §4.6 open question:
// this module records ro_length in the header rather than using a
// side-channel buffer).
const roLengthOffset = 4

// ErrHeaderInvalid is returned when the magic prefix does not match.
var ErrHeaderInvalid = errors.New("image header invalid: bad magic")

// BuildHeader returns a zeroed HeaderLength-byte header with the magic
// prefix and read-only segment length populated.
func BuildHeader(roLen uint32) []byte {
	h := make([]byte, HeaderLength)
	copy(h[0:4], Magic[:])
	h[roLengthOffset+0] = byte(roLen >> 24)
	h[roLengthOffset+1] = byte(roLen >> 16)
	h[roLengthOffset+2] = byte(roLen >> 8)
	h[roLengthOffset+3] = byte(roLen)
	return h
}

// ParseHeader validates the magic prefix and returns the recorded
// read-only segment length.
func ParseHeader(header []byte) (roLen uint32, err error) {
	if len(header) < HeaderLength {
		return 0, ErrHeaderInvalid
	}
	if header[0] != Magic[0] || header[1] != Magic[1] || header[2] != Magic[2] || header[3] != Magic[3] {
		return 0, ErrHeaderInvalid
	}
	roLen = uint32(header[roLengthOffset+0])<<24 |
		uint32(header[roLengthOffset+1])<<16 |
		uint32(header[roLengthOffset+2])<<8 |
		uint32(header[roLengthOffset+3])
	return roLen, nil
}

// LabelOffset computes the VM address of the instruction at code-segment
// index i: HeaderLength plus four bytes per instruction. The read-only
// segment is not counted, so when it is non-empty this is not the
// instruction's byte offset within the image.
func LabelOffset(i uint32) uint32 {
	return HeaderLength + i*4
}

// Split divides a full image into its header, read-only segment, and
// code segment, using the ro_length recorded in the header.
func Split(img []byte) (header, ro, code []byte, err error) {
	roLen, err := ParseHeader(img)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(img) < HeaderLength+int(roLen) {
		return nil, nil, nil, ErrHeaderInvalid
	}
	header = img[:HeaderLength]
	ro = img[HeaderLength : HeaderLength+int(roLen)]
	code = img[HeaderLength+int(roLen):]
	return header, ro, code, nil
}
