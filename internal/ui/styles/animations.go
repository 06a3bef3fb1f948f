// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the scribe TUI.
package styles

import "time"

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	return time.Second / time.Duration(s.FPS)
}

// LineSpinner - Simple line rotation (ASCII-safe)
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// DotsSpinner - Bounded three-dot thinking animation
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// =============================================================================
// TYPING ANIMATION
// =============================================================================

// Timing for the loading message's typing-effect reveal. The status text is
// revealed one character per tick while the caret blinks on its own clock.
const (
	// TypingTickRate is the per-character reveal interval.
	TypingTickRate = 50 * time.Millisecond

	// CaretBlinkRate is the caret on/off toggle interval.
	CaretBlinkRate = 500 * time.Millisecond
)

// TypingCaretChar is the caret glyph shown during the typing effect.
const TypingCaretChar = "|"
