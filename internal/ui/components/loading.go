// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
	"github.com/jeranaias/scribe-tui/internal/util"
)

// =============================================================================
// LOADING VIEW COMPONENT
// =============================================================================

// LoadingView renders the assistant's thinking placeholder as a typewriter:
// the current status line is revealed one rune at a time with a blinking
// caret, followed by an animated dots spinner. The chat model owns the tick
// timers and drives the animation through AdvanceTyping, ToggleCaret and
// AdvanceDots.
type LoadingView struct {
	theme *styles.Theme

	status   string
	revealed int
	caretOn  bool
	dotFrame int
}

// NewLoadingView creates a new LoadingView.
func NewLoadingView(theme *styles.Theme) *LoadingView {
	return &LoadingView{
		theme:   theme,
		caretOn: true,
	}
}

// SetStatus replaces the status line and restarts the reveal from the
// first rune. Setting the same status again is a no-op so a repeated
// sequencer tick does not reset mid-reveal.
func (lv *LoadingView) SetStatus(status string) {
	if status == lv.status {
		return
	}
	lv.status = status
	lv.revealed = 0
}

// Status returns the status line currently being revealed.
func (lv *LoadingView) Status() string {
	return lv.status
}

// AdvanceTyping reveals one more rune. It reports whether the line is
// fully revealed, so the caller can stop the typing ticker early.
func (lv *LoadingView) AdvanceTyping() bool {
	total := util.RuneLen(lv.status)
	if lv.revealed < total {
		lv.revealed++
	}
	return lv.revealed >= total
}

// ToggleCaret flips the caret blink state.
func (lv *LoadingView) ToggleCaret() {
	lv.caretOn = !lv.caretOn
}

// AdvanceDots steps the dots spinner one frame.
func (lv *LoadingView) AdvanceDots() {
	lv.dotFrame = (lv.dotFrame + 1) % len(styles.DotsSpinner.Frames)
}

// Reset clears all animation state for a fresh loading cycle.
func (lv *LoadingView) Reset() {
	lv.status = ""
	lv.revealed = 0
	lv.caretOn = true
	lv.dotFrame = 0
}

// View renders the typing line with caret and spinner.
func (lv *LoadingView) View() string {
	if lv.status == "" {
		return lv.theme.ThinkingDots.Render(styles.DotsSpinner.Frames[lv.dotFrame])
	}

	visible := string([]rune(lv.status)[:lv.revealed])

	caret := " "
	if lv.caretOn {
		caret = styles.TypingCaretChar
	}

	line := lv.theme.ThinkingText.Render(visible) +
		lv.theme.TypingCaret.Render(caret)

	spinner := lv.theme.ThinkingDots.Render(styles.DotsSpinner.Frames[lv.dotFrame])

	return lipgloss.JoinHorizontal(lipgloss.Top, line, " ", spinner)
}
