package repl

import "github.com/beevik/cmd"

var cmds *cmd.Tree

func init() {
	root := cmd.NewTree("rvasm")

	root.AddCommand(cmd.Command{
		Name:  "help",
		Brief: "Display help for a command",
		Usage: "help [<command>]",
		Data:  (*REPL).cmdHelp,
	})
	root.AddCommand(cmd.Command{
		Name:      "quit",
		Brief:     "Exit the REPL",
		Shortcuts: []string{"q", "exit"},
		Data:      (*REPL).cmdQuit,
	})
	root.AddCommand(cmd.Command{
		Name:  "history",
		Brief: "Display the lines assembled so far",
		Usage: "history",
		Data:  (*REPL).cmdHistory,
	})
	root.AddCommand(cmd.Command{
		Name:  "program",
		Brief: "Disassemble the currently loaded program",
		Usage: "program",
		Data:  (*REPL).cmdProgram,
	})
	root.AddCommand(cmd.Command{
		Name:      "registers",
		Brief:     "Display register contents",
		Usage:     "registers",
		Shortcuts: []string{"r"},
		Data:      (*REPL).cmdRegisters,
	})
	root.AddCommand(cmd.Command{
		Name:  ".symbols",
		Brief: "List known symbols, or look up the one a prefix abbreviates",
		Usage: ".symbols [<prefix>]",
		Data:  (*REPL).cmdSymbols,
	})
	root.AddCommand(cmd.Command{
		Name:  ".load_file",
		Brief: "Assemble and load a file from disk",
		Usage: ".load_file <path>",
		Data:  (*REPL).cmdLoadFile,
	})
	root.AddCommand(cmd.Command{
		Name:  "set",
		Brief: "Display or change a REPL setting",
		Usage: "set [<name> <value>]",
		Data:  (*REPL).cmdSet,
	})

	cmds = root
}
