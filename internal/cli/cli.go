// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for scribe.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdServe
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool

	// Command-specific
	Query string
	Port  int

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `scribe - terminal client for the GoML solution-architect AI

Scribe talks to a remote solution-architecture backend that answers
infrastructure questions and renders AWS architecture diagrams and
process flowcharts for them.

Usage:
  scribe                     Start the full-screen chat TUI (default)
  scribe ask "question"      Ask a single question, print the answer
  scribe chat                Plain-terminal interactive chat (no TUI)
  scribe serve [--port N]    Run the local backend proxy server
  scribe version             Show version information
  scribe help                Show this help

Ask:
  scribe ask "How do I host a static site on AWS?"
  echo "question" | scribe ask          Read the question from stdin
    --json                              Print the raw response as JSON
    -q, --quiet                         Answer only, no diagram links

Chat (plain REPL):
  /help      Show in-chat commands
  /clear     Clear conversation history
  /history   Show the conversation so far
  /quit      Exit (Ctrl+D also exits)

Serve:
  scribe serve                          Listen on the configured port
  scribe serve --port 8080              Override the listen port

  Endpoints:
    POST /api/chat                      Relay a chat payload to the backend
    GET  /api/chat?url=&filename=       Download a diagram image
    GET  /health                        Proxy and backend health

Configuration:
  ~/.scribe/config.toml (or config.json)

  Environment overrides:
    SCRIBE_BACKEND_URL      Backend base URL
    SCRIBE_BACKEND_TIMEOUT  Request timeout in seconds
    SCRIBE_PROXY_PORT       Proxy listen port
    SCRIBE_DOWNLOAD_DIR     Diagram download directory
    SCRIBE_THEME            UI theme (dark, light, auto)

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("scribe version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return parse(os.Args[1:])
}

// parse is the testable core of Parse.
func parse(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	// No remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "serve", "proxy":
		parseServeArgs(&parsedArgs, remaining)
		return CmdServe, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command - treat it as the start of an ask query so
		// `scribe how do I ...` does something sensible.
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		parseAskArgs(&parsedArgs, parsedArgs.Raw)
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags, returning the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var remaining []string

	for _, arg := range argv {
		switch arg {
		case "-q", "--quiet":
			args.Quiet = true
		case "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, args
}

// parseAskArgs joins the positional args into the query string.
func parseAskArgs(args *Args, remaining []string) {
	var parts []string
	for _, arg := range remaining {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		parts = append(parts, arg)
	}
	args.Query = strings.Join(parts, " ")
}

// parseServeArgs parses serve-specific flags.
func parseServeArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		switch remaining[i] {
		case "-p", "--port":
			if i+1 < len(remaining) {
				if p, err := strconv.Atoi(remaining[i+1]); err == nil && p > 0 {
					args.Port = p
				}
				i++
			}
		}
	}
}
