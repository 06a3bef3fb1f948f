// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the scribe TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER COMPONENT
// =============================================================================

// Markdown renders assistant answers as terminal markdown. The backend
// emits GitHub-flavored markdown (headings, bold, ordered and unordered
// lists, links); glamour handles all of it. Render failures degrade to the
// normalized plain text, never an error in the transcript.
type Markdown struct {
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a markdown renderer wrapping at the given width.
func NewMarkdown(width int) *Markdown {
	m := &Markdown{}
	m.SetWidth(width)
	return m
}

// SetWidth updates the word-wrap width, rebuilding the renderer.
func (m *Markdown) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	m.width = width

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		m.renderer = nil
		return
	}
	m.renderer = renderer
}

// Width returns the current wrap width.
func (m *Markdown) Width() int {
	return m.width
}

// Render renders markdown content for terminal display.
// Returns the normalized content if rendering fails.
func (m *Markdown) Render(content string) string {
	content = NormalizeEscapes(content)

	if m.renderer == nil {
		return content
	}

	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// NormalizeEscapes converts literal backslash-n sequences into real
// newlines. The backend sometimes double-escapes newlines inside JSON
// strings and the transcript must not show "\n" literally.
func NormalizeEscapes(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
