package asm

import (
	"encoding/hex"
	"testing"

	"rvasm/imgfmt"
)

func assemble(t *testing.T, src string) *Result {
	t.Helper()
	r, errs := Assemble(src)
	if len(errs) > 0 {
		t.Fatalf("unexpected assembly errors for %q: %v", src, errs)
	}
	return r
}

func assembleErr(t *testing.T, src string) []*AssemblerError {
	t.Helper()
	r, errs := Assemble(src)
	if len(errs) == 0 {
		t.Fatalf("expected assembly errors for %q, got image %v", src, r)
	}
	return errs
}

func codeHex(r *Result) string {
	_, _, code, err := imgfmt.Split(r.Image)
	if err != nil {
		panic(err)
	}
	return hex.EncodeToString(code)
}

func TestMinimalLoad(t *testing.T) {
	r := assemble(t, ".data\n.code\nload $0 #500\nhlt\n")
	if got, want := codeHex(r), "000001f406000000"; got != want {
		t.Errorf("code = %s, want %s", got, want)
	}
}

func TestAdd(t *testing.T) {
	r := assemble(t, ".data\n.code\nload $0 #5\nload $1 #10\nadd $0 $1 $2\nhlt\n")
	_, _, code, _ := imgfmt.Split(r.Image)
	if len(code) != 16 {
		t.Fatalf("code len = %d, want 16", len(code))
	}
	if code[0] != byte(Load) || code[4] != byte(Load) || code[8] != byte(Add) || code[12] != byte(Hlt) {
		t.Errorf("unexpected opcodes: %v", code)
	}
}

func TestHeaderMagic(t *testing.T) {
	r := assemble(t, ".data\n.code\nhlt\n")
	if len(r.Image) < imgfmt.HeaderLength {
		t.Fatalf("image too short: %d", len(r.Image))
	}
	for i, b := range imgfmt.Magic {
		if r.Image[i] != b {
			t.Errorf("magic byte %d = %02x, want %02x", i, r.Image[i], b)
		}
	}
}

func TestStringPrint(t *testing.T) {
	r := assemble(t, ".data\nhello: .asciiz 'Hi!'\n.code\nprts @hello\nhlt\n")
	_, ro, _, err := imgfmt.Split(r.Image)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x48, 0x69, 0x21, 0x00}
	if hex.EncodeToString(ro) != hex.EncodeToString(want) {
		t.Errorf("ro = %v, want %v", ro, want)
	}
}

func TestDuplicateLabel(t *testing.T) {
	errs := assembleErr(t, ".data\nx: .asciiz 'a'\nx: .asciiz 'b'\n.code\nhlt\n")
	found := false
	for _, e := range errs {
		if e.Kind == SymbolAlreadyDeclared && e.Name == "x" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected SymbolAlreadyDeclared for %q, got %v", "x", errs)
	}
}

func TestMissingSections(t *testing.T) {
	errs := assembleErr(t, "hlt\n")
	var sawNoSegment, sawInsufficient bool
	for _, e := range errs {
		switch e.Kind {
		case NoSegmentDeclarationFound:
			sawNoSegment = true
		case InsufficientSections:
			sawInsufficient = true
		}
	}
	if !sawNoSegment || !sawInsufficient {
		t.Errorf("expected NoSegmentDeclarationFound and InsufficientSections, got %v", errs)
	}
}

func TestLabelRoundTrip(t *testing.T) {
	r := assemble(t, ".data\n.code\nstart: load $0 #1\njmp $0\n")
	var off uint32
	for _, s := range r.Symbols {
		if s.Name == "start" {
			off = s.Offset
		}
	}
	if off != imgfmt.LabelOffset(0) {
		t.Errorf("start offset = %d, want %d", off, imgfmt.LabelOffset(0))
	}
}

func TestJumpExample(t *testing.T) {
	// spec.md scenario 3: the jmp target is address 72, which is where
	// hlt lands given header=64 and the two four-byte instructions before it.
	r := assemble(t, ".data\n.code\nload $0 #72\njmp $0\nhlt\n")
	_, _, code, _ := imgfmt.Split(r.Image)
	if len(code) != 12 {
		t.Fatalf("code len = %d, want 12", len(code))
	}
	if imgfmt.HeaderLength+8 != 72 {
		t.Fatalf("test assumption broken: header+8 = %d", imgfmt.HeaderLength+8)
	}
}

func TestIdempotent(t *testing.T) {
	src := ".data\nmsg: .asciiz 'ok'\n.code\nload $0 #1\nprts @msg\nhlt\n"
	r1 := assemble(t, src)
	r2 := assemble(t, src)
	if hex.EncodeToString(r1.Image) != hex.EncodeToString(r2.Image) {
		t.Errorf("assembly is not deterministic")
	}
}

func TestUnknownDirective(t *testing.T) {
	errs := assembleErr(t, ".data\n.code\n.bogus #1\nhlt\n")
	if errs[0].Kind != UnknownDirectiveFound {
		t.Errorf("got %v, want UnknownDirectiveFound", errs[0])
	}
}

func TestUnknownSectionIgnored(t *testing.T) {
	// An unrecognized section-style directive is silently ignored, not an
	// error, and does not count toward the two required sections.
	assemble(t, ".bss\n.data\n.code\nhlt\n")
}

func TestTooManyOperands(t *testing.T) {
	_, err := Parse(".data\n.code\nhlt $0 $1 $2 $3\n")
	if err == nil {
		t.Fatal("expected a parse error for too many operands")
	}
}

func TestRegisterOutOfRange(t *testing.T) {
	_, err := Parse(".data\n.code\nload $32 #1\nhlt\n")
	if err == nil {
		t.Fatal("expected a parse error for an out-of-range register")
	}
}
