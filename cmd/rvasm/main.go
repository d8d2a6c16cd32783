// Command rvasm assembles and runs the register-machine bytecode
// described by the asm and vm packages. With a file argument, it
// assembles and executes that file and exits. With no argument, it
// starts an interactive REPL.
package main

import (
	"fmt"
	"os"

	"github.com/beevik/term"

	"rvasm/asm"
	"rvasm/repl"
	"rvasm/vm"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		os.Exit(int(runFile(args[0])))
	}

	runInteractive()
}

func runFile(filename string) uint32 {
	src, err := os.ReadFile(filename)
	if err != nil {
		exitOnError(err)
	}

	r, errs := asm.Assemble(string(src))
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		exitOnError(fmt.Errorf("failed to assemble %s", filename))
	}

	m := vm.New()
	if err := m.LoadImage(r.Image); err != nil {
		exitOnError(err)
	}
	m.SetOutput(os.Stdout)

	code := m.Run()
	if m.Err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %v\n", m.Err)
	}
	return code
}

func runInteractive() {
	// Line editing is left to the terminal's own cooked mode; term is used
	// here only to size the welcome banner when stdout is a real terminal.
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if width, _, err := term.GetSize(fd); err == nil && width > 0 {
			fmt.Println(bannerRule(width))
			fmt.Println("rvasm interactive toolchain")
			fmt.Println(bannerRule(width))
		}
	}

	r := repl.New()
	r.Run(os.Stdin, os.Stdout, true)
}

func bannerRule(width int) string {
	if width > 72 {
		width = 72
	}
	rule := make([]byte, width)
	for i := range rule {
		rule[i] = '-'
	}
	return string(rule)
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
