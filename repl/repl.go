// Package repl implements an interactive read-assemble-execute loop for
// the rvasm toolchain: one line of assembly is assembled and run at a
// time, alongside meta-commands for inspecting machine state.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/prefixtree/v2"

	"rvasm/asm"
	"rvasm/disasm"
	"rvasm/imgfmt"
	"rvasm/vm"
)

// REPL holds all state for one interactive session: the virtual machine,
// its growing symbol table, the lines assembled so far, and REPL settings.
type REPL struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool

	m       *vm.VM
	symbols *asm.SymbolTable
	history []string
	symTree *prefixtree.Tree[uint32]

	settings *settings
}

// New creates a REPL with a fresh VM and an empty program.
func New() *REPL {
	m := vm.New()

	r := &REPL{
		m:        m,
		symbols:  asm.NewSymbolTable(),
		symTree:  prefixtree.New[uint32](),
		settings: newSettings(),
	}
	m.SetOutput(stdoutWriter{r})
	return r
}

type stdoutWriter struct{ r *REPL }

func (w stdoutWriter) Write(p []byte) (int, error) {
	return w.r.output.Write(p)
}

// Run reads lines from in and writes output to out until EOF or a "quit"
// command, prompting for input when interactive is true.
func (r *REPL) Run(in io.Reader, out io.Writer, interactive bool) {
	r.input = bufio.NewScanner(in)
	r.output = bufio.NewWriter(out)
	r.interactive = interactive

	for {
		r.prompt()

		line, err := r.getLine()
		if err != nil {
			break
		}
		if line == "" {
			continue
		}

		if err := r.processLine(line); err != nil {
			break
		}
	}
}

func (r *REPL) prompt() {
	if r.interactive {
		r.printf("rvasm> ")
	}
}

func (r *REPL) getLine() (string, error) {
	if r.input.Scan() {
		return r.input.Text(), nil
	}
	if r.input.Err() != nil {
		return "", r.input.Err()
	}
	return "", io.EOF
}

// processLine dispatches a line of input: a recognized meta-command runs
// through the command tree, anything else is treated as one line of
// assembly to append and execute immediately.
func (r *REPL) processLine(line string) error {
	if looksLikeCommand(line) {
		s, err := cmds.Lookup(line)
		switch {
		case err == cmd.ErrNotFound:
			return r.assembleAndRun(line)
		case err == cmd.ErrAmbiguous:
			r.println("Command is ambiguous.")
			return nil
		case err != nil:
			r.printf("ERROR: %v\n", err)
			return nil
		}
		handler := s.Command.Data.(func(*REPL, cmd.Selection) error)
		return handler(r, s)
	}
	return r.assembleAndRun(line)
}

// looksLikeCommand reports whether the first word of line names a known
// command or one of its shortcuts, so that assembly mnemonics that happen
// to collide with nothing never get mis-routed.
func looksLikeCommand(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	_, err := cmds.Lookup(fields[0])
	return err == nil
}

func (r *REPL) assembleAndRun(line string) error {
	codeAddr := imgfmt.HeaderLength + uint32(len(r.m.Program))
	encoded, asmErr := asm.AssembleIncremental(r.symbols, codeAddr, line)
	if asmErr != nil {
		r.printf("%v\n", asmErr)
		return nil
	}
	if encoded == nil {
		return nil
	}

	r.history = append(r.history, line)
	r.m.AppendBytes(encoded)
	for _, s := range r.symbols.Snapshot() {
		if s.HasOffset {
			r.symTree.Add(s.Name, s.Offset)
		}
	}

	if r.m.PC == codeAddr {
		_, halted := r.m.Step()
		r.flush()
		if halted && r.m.Err != nil {
			r.printf("Halted: %v\n", r.m.Err)
		}
	}
	return nil
}

func (r *REPL) cmdQuit(c cmd.Selection) error {
	return errors.New("exiting")
}

func (r *REPL) cmdHelp(c cmd.Selection) error {
	if len(c.Args) == 0 {
		r.println(cmds.Title + " commands:")
		for _, cm := range cmds.Commands {
			if cm.Brief != "" {
				r.printf("    %-15s  %s\n", cm.Name, cm.Brief)
			}
		}
		return nil
	}
	s, err := cmds.Lookup(strings.Join(c.Args, " "))
	if err != nil {
		r.printf("%v\n", err)
		return nil
	}
	if s.Command.Usage != "" {
		r.printf("Usage: %s\n", s.Command.Usage)
	}
	return nil
}

func (r *REPL) cmdHistory(c cmd.Selection) error {
	for i, line := range r.history {
		r.printf("%3d  %s\n", i+1, line)
	}
	return nil
}

func (r *REPL) cmdProgram(c cmd.Selection) error {
	for _, inst := range disasm.Program(r.m.Program) {
		r.printf("%04X- %s\n", inst.Addr, inst.Text)
	}
	return nil
}

func (r *REPL) cmdRegisters(c cmd.Selection) error {
	for i := 0; i < vm.NumRegisters; i += 4 {
		r.printf("$%-2d=%-10d $%-2d=%-10d $%-2d=%-10d $%-2d=%-10d\n",
			i, r.m.Regs[i], i+1, r.m.Regs[i+1], i+2, r.m.Regs[i+2], i+3, r.m.Regs[i+3])
	}
	r.printf("PC=%d  eq=%v  rem=%d\n", r.m.PC, r.m.EqualFlag, r.m.Remainder)
	return nil
}

func (r *REPL) cmdSymbols(c cmd.Selection) error {
	if len(c.Args) == 0 {
		for _, s := range r.symbols.Snapshot() {
			if s.HasOffset {
				r.printf("    %-16s %d\n", s.Name, s.Offset)
			} else {
				r.printf("    %-16s (unresolved)\n", s.Name)
			}
		}
		return nil
	}

	addr, err := r.symTree.FindValue(c.Args[0])
	if err != nil {
		r.printf("%v\n", err)
		return nil
	}
	r.printf("    %-16s %d\n", c.Args[0], addr)
	return nil
}

func (r *REPL) cmdLoadFile(c cmd.Selection) error {
	if len(c.Args) < 1 {
		r.println("Usage: .load_file <path>")
		return nil
	}
	src, err := os.ReadFile(c.Args[0])
	if err != nil {
		r.printf("%v\n", err)
		return nil
	}

	res, errs := asm.Assemble(string(src))
	if len(errs) > 0 {
		for _, e := range errs {
			r.println(e.Error())
		}
		return nil
	}

	_, _, code, err := imgfmt.Split(res.Image)
	if err != nil {
		r.printf("%v\n", err)
		return nil
	}

	r.m.AppendBytes(code)
	for _, s := range res.Symbols {
		if !s.HasOffset {
			continue
		}
		if !r.symbols.Has(s.Name) {
			r.symbols.Insert(s.Name, s.Kind)
		}
		r.symbols.SetOffset(s.Name, s.Offset)
		r.symTree.Add(s.Name, s.Offset)
	}
	r.printf("Appended %d bytes of code from %s.\n", len(code), c.Args[0])
	return nil
}

func (r *REPL) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		r.println("Settings:")
		r.settings.Display(r.output)
		r.flush()
	default:
		key := strings.ToLower(c.Args[0])
		value := strings.Join(c.Args[1:], " ")

		var err error
		switch r.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("setting %q not found", key)
		case reflect.Bool:
			err = r.settings.Set(key, value == "true")
		case reflect.String:
			err = r.settings.Set(key, value)
		default:
			var n int
			_, scanErr := fmt.Sscanf(value, "%d", &n)
			if scanErr != nil {
				err = scanErr
			} else {
				err = r.settings.Set(key, n)
			}
		}

		if err != nil {
			r.printf("%v\n", err)
		} else {
			r.println("Setting updated.")
		}
	}
	return nil
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.output, format, args...)
	r.flush()
}

func (r *REPL) println(args ...any) {
	fmt.Fprintln(r.output, args...)
	r.flush()
}

func (r *REPL) flush() {
	r.output.Flush()
}
