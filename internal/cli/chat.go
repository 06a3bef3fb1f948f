// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Plain-terminal interactive chat for the scribe CLI.
//
// Handles the "scribe chat" command: a readline-style REPL against the
// solution-architect backend for terminals where the full TUI is
// unwanted (ssh sessions, screen readers, scripting around expect).
//
// Command: chat
// Short:   Start an interactive chat session
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear conversation history
//   /history            Show the conversation so far
//   /quit, /q           Exit chat
//   Ctrl+C              Abort current input line
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/scribe-tui/internal/backend"
	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Green).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Green)

	thinkingStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		// Fallback to temp directory if config dir unavailable
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}

	cli.LoadHistory()

	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}

	return input, nil
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command REPL loop.
func HandleChatCommand(args Args) error {
	cfg := config.Global()

	client := backend.NewClient(cfg.Backend.URL).
		WithTimeout(time.Duration(cfg.Backend.TimeoutSecs) * time.Second)

	session := model.NewSession()
	input := NewChatCLI()
	defer input.Close()

	if !args.Quiet {
		fmt.Println(welcomeStyle.Render(model.RoleAssistant.DisplayName()))
		fmt.Println(infoStyle.Render("Type /help for commands, /quit or Ctrl+D to exit."))
		fmt.Println()
	}

	prompt := promptStyle.Render("you> ")

	for {
		line, err := input.ReadInput(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				// Ctrl+C clears the current line
				continue
			}
			// Ctrl+D or a closed terminal
			fmt.Println()
			return nil
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			if quit := handleChatCommand(text, session); quit {
				return nil
			}
			continue
		}

		if err := askOnce(client, session, cfg, text, args.Quiet); err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		}
	}
}

// askOnce sends one turn to the backend and prints the reply.
func askOnce(client *backend.Client, session *model.Session, cfg *config.Config, text string, quiet bool) error {
	history := session.History()
	session.AddUserMessage(text)

	if !quiet {
		fmt.Println(thinkingStyle.Render("thinking..."))
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Backend.TimeoutSecs)*time.Second)
	defer cancel()

	result, err := client.Chat(ctx, history, text)
	if err != nil {
		return err
	}

	reply := model.NewAssistantMessage(result.Answer)
	reply.Diagrams = result.Diagrams
	session.ResolveLoading(reply)

	displayResponse(result.Answer)

	if !quiet {
		printDiagramLinks(result, client)
	}
	fmt.Println()

	return nil
}

// handleChatCommand processes a /command. Returns true if the REPL should exit.
func handleChatCommand(text string, session *model.Session) bool {
	switch strings.ToLower(strings.Fields(text)[0]) {
	case "/quit", "/q", "/exit":
		return true

	case "/clear", "/c":
		session.Reset()
		fmt.Println(infoStyle.Render("Conversation cleared."))

	case "/history":
		printHistory(session)

	case "/help", "/h":
		printChatHelp()

	default:
		fmt.Println(infoStyle.Render(fmt.Sprintf("Unknown command %q. Type /help for commands.", text)))
	}
	return false
}

// printHistory dumps the conversation so far.
func printHistory(session *model.Session) {
	if session.IsEmpty() {
		fmt.Println(infoStyle.Render("No messages yet."))
		return
	}

	for _, msg := range session.Messages() {
		if msg.IsLoading() {
			continue
		}
		label := commandStyle.Render(msg.Sender.DisplayName())
		preview := msg.Preview(120)
		fmt.Printf("%s: %s\n", label, preview)
	}
}

// printChatHelp lists the in-chat commands.
func printChatHelp() {
	fmt.Println(commandStyle.Render("Commands:"))
	fmt.Println("  /help, /h     Show this help")
	fmt.Println("  /clear, /c    Clear conversation history")
	fmt.Println("  /history      Show the conversation so far")
	fmt.Println("  /quit, /q     Exit chat (Ctrl+D also exits)")
}
