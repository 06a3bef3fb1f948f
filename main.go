// scribe - terminal client for the GoML solution-architect AI.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/scribe-tui/internal/backend"
	"github.com/jeranaias/scribe-tui/internal/cli"
	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/ui/chat"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		if err := cli.HandleAskCommand(args); err != nil {
			os.Exit(1)
		}
	case cli.CmdChat:
		if err := cli.HandleChatCommand(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdServe:
		if err := cli.HandleServeCommand(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runTUI(args)
	}
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) {
	cfg := config.Global()

	// The TUI owns the terminal, so structured logs go to a file instead
	// of stdout where they would corrupt the display.
	closeLog := redirectLogging()
	defer closeLog()

	theme := styles.NewTheme()

	client := backend.NewClient(cfg.Backend.URL).
		WithTimeout(time.Duration(cfg.Backend.TimeoutSecs) * time.Second)

	m := chat.New(theme, cfg, client)

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
	}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(m, opts...)

	// Hot-reload the config while the TUI runs; the next request picks
	// up the new backend settings.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if watcher, err := config.Watch(ctx, func(updated *config.Config) {
		config.SetGlobal(updated)
	}); err == nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running scribe: %v\n", err)
		os.Exit(1)
	}
}

// redirectLogging sends the standard logger to ~/.scribe/scribe.log and
// returns a cleanup func. Logging is discarded if the file cannot be opened.
func redirectLogging() func() {
	dir, err := config.ConfigDir()
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	if err := config.EnsureConfigDir(); err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	f, err := os.OpenFile(filepath.Join(dir, "scribe.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}
}
