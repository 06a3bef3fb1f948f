// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command handler for the scribe CLI.
//
// Handles the "scribe ask" command: sends a single question to the
// solution-architect backend and prints the answer, markdown-rendered
// when stdout is a terminal.
//
// Command: ask
// Short:   Ask a single question
//
// Examples:
//   scribe ask "How do I host a static site on AWS?"
//   echo "question" | scribe ask
//   scribe ask --json "question"      Raw JSON output for scripting
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/scribe-tui/internal/backend"
	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/ui/components"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse displays a response with markdown rendering when appropriate.
// Only renders markdown when stdout is a TTY to avoid corrupting piped output.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(components.NormalizeEscapes(response)))
	} else {
		fmt.Println(components.NormalizeEscapes(response))
	}
}

// =============================================================================
// STYLES
// =============================================================================

var (
	diagramLabelStyle = lipgloss.NewStyle().
				Foreground(styles.Indigo).
				Bold(true)

	diagramURLStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

// =============================================================================
// ASK HANDLER
// =============================================================================

// askResponse is the JSON output shape for --json.
type askResponse struct {
	Answer   string            `json:"answer"`
	Diagrams map[string]string `json:"diagrams,omitempty"`
}

// HandleAskCommand handles the "ask" command: one question, one answer.
func HandleAskCommand(args Args) error {
	cfg := config.Global()

	question := strings.TrimSpace(args.Query)

	// No question on the command line: try stdin (piped input)
	if question == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			data, err := io.ReadAll(io.LimitReader(os.Stdin, 64*1024))
			if err != nil {
				return fmt.Errorf("failed to read question from stdin: %w", err)
			}
			question = strings.TrimSpace(string(data))
		}
	}

	if question == "" {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: no question provided"))
		fmt.Fprintln(os.Stderr, "Usage: scribe ask \"your question\"")
		return errors.New("no question provided")
	}

	client := backend.NewClient(cfg.Backend.URL).
		WithTimeout(time.Duration(cfg.Backend.TimeoutSecs) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Backend.TimeoutSecs)*time.Second)
	defer cancel()

	result, err := client.Chat(ctx, nil, question)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		return err
	}

	if args.JSON {
		return printAskJSON(result, client)
	}

	displayResponse(result.Answer)

	if !args.Quiet {
		printDiagramLinks(result, client)
	}

	return nil
}

// printDiagramLinks lists any diagram URLs attached to the response.
func printDiagramLinks(result *backend.ChatResult, client *backend.Client) {
	msg := model.NewAssistantMessage(result.Answer)
	msg.Diagrams = result.Diagrams

	refs := components.DiagramRefs(msg, client.ResolveAssetURL)
	if len(refs) == 0 {
		return
	}

	fmt.Println()
	for _, ref := range refs {
		fmt.Printf("%s %s\n",
			diagramLabelStyle.Render(ref.Title+":"),
			diagramURLStyle.Render(ref.URL))
	}
}

// printAskJSON emits the response as JSON for scripting.
func printAskJSON(result *backend.ChatResult, client *backend.Client) error {
	out := askResponse{Answer: result.Answer}

	msg := model.NewAssistantMessage(result.Answer)
	msg.Diagrams = result.Diagrams
	if refs := components.DiagramRefs(msg, client.ResolveAssetURL); len(refs) > 0 {
		out.Diagrams = make(map[string]string, len(refs))
		for _, ref := range refs {
			out.Diagrams[ref.Title] = ref.URL
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
