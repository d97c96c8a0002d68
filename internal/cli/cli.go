// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and implements the
// non-TUI commands: the chat REPL, key setup, and history inspection.
package cli

import (
	"fmt"
	"os"
	"runtime"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdSetup
	CmdHistory
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Subcommand is the first positional after the command,
	// e.g. "clear" in "aira history clear".
	Subcommand string
	// Raw holds everything after the command name.
	Raw []string
}

// Parse reads os.Args and resolves the command to run. Unknown commands
// fall through to help so a typo never silently launches the TUI.
func Parse() (Command, Args) {
	argv := os.Args[1:]
	if len(argv) == 0 {
		return CmdTUI, Args{}
	}

	args := Args{Raw: argv[1:]}
	if len(args.Raw) > 0 {
		args.Subcommand = args.Raw[0]
	}

	switch argv[0] {
	case "tui":
		return CmdTUI, args
	case "chat":
		return CmdChat, args
	case "setup", "key":
		return CmdSetup, args
	case "history":
		return CmdHistory, args
	case "version", "--version", "-v":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", argv[0])
		return CmdHelp, args
	}
}

// PrintVersion writes build information to stdout.
func PrintVersion() {
	fmt.Printf("aira %s (%s, %s, %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// PrintHelp writes command usage to stdout.
func PrintHelp() {
	fmt.Print(`aira - chat companion for the terminal

Usage:
  aira              Launch the TUI (default)
  aira chat         Interactive chat REPL with markdown rendering
  aira setup        Set and verify your Groq API key
  aira history      Print stored conversation history
  aira history clear  Delete stored history
  aira version      Show version information

Keys inside the TUI:
  enter   send message        ctrl+v  voice mode
  ctrl+d  menu drawer         ctrl+c  quit
`)
}
