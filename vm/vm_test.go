package vm_test

import (
	"bytes"
	"testing"

	"rvasm/asm"
	"rvasm/vm"
)

func loadVM(t *testing.T, asmString string) *vm.VM {
	t.Helper()
	r, errs := asm.Assemble(asmString)
	if len(errs) > 0 {
		t.Fatalf("assembly errors: %v", errs)
	}
	m := vm.New()
	if err := m.LoadImage(r.Image); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	return m
}

func stepVM(m *vm.VM, steps int) {
	for i := 0; i < steps; i++ {
		m.Step()
	}
}

func runVM(t *testing.T, asmString string) (*vm.VM, uint32) {
	t.Helper()
	m := loadVM(t, asmString)
	code := m.Run()
	return m, code
}

func expectReg(t *testing.T, m *vm.VM, r int, v int32) {
	t.Helper()
	if m.Regs[r] != v {
		t.Errorf("register %d incorrect. exp: %d, got: %d", r, v, m.Regs[r])
	}
}

func TestMinimalLoad(t *testing.T) {
	m, code := runVM(t, ".data\n.code\nload $0 #500\nhlt\n")
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	expectReg(t, m, 0, 500)
}

func TestAdd(t *testing.T) {
	m, code := runVM(t, ".data\n.code\nload $0 #5\nload $1 #10\nadd $0 $1 $2\nhlt\n")
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	expectReg(t, m, 2, 15)
}

func TestSubMulDiv(t *testing.T) {
	m, _ := runVM(t, ".data\n.code\n"+
		"load $0 #20\nload $1 #6\n"+
		"sub $0 $1 $2\nmul $0 $1 $3\ndiv $0 $1 $4\nhlt\n")
	expectReg(t, m, 2, 14)
	expectReg(t, m, 3, 120)
	expectReg(t, m, 4, 3)
	if m.Remainder != 2 {
		t.Errorf("remainder = %d, want 2", m.Remainder)
	}
}

func TestDivideByZero(t *testing.T) {
	m, code := runVM(t, ".data\n.code\nload $0 #1\nload $1 #0\ndiv $0 $1 $2\nhlt\n")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if m.Err != vm.ErrDivideByZero {
		t.Errorf("err = %v, want ErrDivideByZero", m.Err)
	}
}

func TestIllegalOpcode(t *testing.T) {
	m := loadVM(t, ".data\n.code\nhlt\n")
	m.Program[0] = 0xff
	code := m.Run()
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if m.Err != vm.ErrIllegalOpcode {
		t.Errorf("err = %v, want ErrIllegalOpcode", m.Err)
	}
}

func TestUnconditionalJump(t *testing.T) {
	// spec.md scenario 3: jmp target is code offset 72, the byte right
	// after the two-instruction load+jmp pair, where hlt lands.
	m, code := runVM(t, ".data\n.code\nload $0 #72\njmp $0\nhlt\n")
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if m.PC != 76 {
		t.Errorf("PC = %d, want 76", m.PC)
	}
}

func TestConditionalJumpTaken(t *testing.T) {
	m, _ := runVM(t, ".data\n.code\n"+
		"load $0 #88\nload $1 #5\nload $2 #5\neq $1 $2\njmpe $0\nload $3 #99\nhlt\n")
	expectReg(t, m, 3, 0)
	if !m.EqualFlag {
		t.Errorf("EqualFlag = false, want true")
	}
}

func TestConditionalJumpNotTaken(t *testing.T) {
	m, _ := runVM(t, ".data\n.code\n"+
		"load $0 #5\nload $1 #6\neq $0 $1\nload $2 #99\nhlt\n")
	expectReg(t, m, 2, 99)
	if m.EqualFlag {
		t.Errorf("EqualFlag = true, want false")
	}
}

func TestStringPrint(t *testing.T) {
	var out bytes.Buffer
	m := loadVM(t, ".data\nhello: .asciiz 'Hi!'\n.code\nprts @hello\nhlt\n")
	m.SetOutput(&out)
	code := m.Run()
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if out.String() != "Hi!" {
		t.Errorf("output = %q, want %q", out.String(), "Hi!")
	}
}

func TestAlloc(t *testing.T) {
	m, _ := runVM(t, ".data\n.code\nload $0 #64\naloc $0\nhlt\n")
	if len(m.Heap) != 64 {
		t.Errorf("heap len = %d, want 64", len(m.Heap))
	}
}

func TestStep(t *testing.T) {
	m := loadVM(t, ".data\n.code\nload $0 #1\nload $1 #2\nhlt\n")
	stepVM(m, 1)
	expectReg(t, m, 0, 1)
	expectReg(t, m, 1, 0)
	stepVM(m, 1)
	expectReg(t, m, 1, 2)
}

func TestBreakpointStopsExecution(t *testing.T) {
	m := loadVM(t, ".data\n.code\nload $0 #1\nload $1 #2\nhlt\n")
	breakAddr := m.PC + 4 // the second load
	d := vm.NewDebugger(nil)
	d.AddBreakpoint(breakAddr)
	m.AttachDebugger(d)

	code := m.Run()
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	expectReg(t, m, 0, 1)
	expectReg(t, m, 1, 0)
	if m.PC != breakAddr {
		t.Errorf("PC = %d, want %d (stopped at breakpoint)", m.PC, breakAddr)
	}
}
