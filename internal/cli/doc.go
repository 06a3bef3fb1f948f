// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements argument parsing and the non-TUI command
// handlers for scribe.
//
// Commands:
//   - (default / tui)  full-screen chat TUI, dispatched by main
//   - ask              one-shot question, markdown-rendered on a TTY
//   - chat             plain readline REPL with persistent history
//   - serve            local backend proxy server
//   - version, help
//
// Parse returns a (Command, Args) pair; main owns the dispatch so this
// package never imports Bubble Tea.
package cli
