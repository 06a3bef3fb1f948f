// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea message types used by the chat screen:
//   - Backend: chat responses and errors, tagged with the session generation
//   - Animation: sequencer, typing, caret, and dots ticks, tagged with a run
//     token so stale timers from a finished request are ignored
//   - Browser: outcomes of quick-action and diagram URL opens
package chat

import (
	"github.com/jeranaias/scribe-tui/internal/backend"
)

// =============================================================================
// BACKEND MESSAGES
// =============================================================================

// ChatResponseMsg delivers a backend chat result. Gen is the session
// generation captured at dispatch; results from a generation other than the
// session's current one are discarded.
type ChatResponseMsg struct {
	Gen    uint64
	Result *backend.ChatResult
}

// ChatErrorMsg delivers a backend chat failure, tagged like ChatResponseMsg.
type ChatErrorMsg struct {
	Gen uint64
	Err error
}

// =============================================================================
// ANIMATION TICKS
// =============================================================================

// sequencerTickMsg advances the loading status sequence. Run identifies the
// sequencer cycle that scheduled it; a tick whose run token no longer
// matches is dropped.
type sequencerTickMsg struct {
	Run int
}

// typingTickMsg reveals the next rune of the loading status.
type typingTickMsg struct {
	Run int
}

// caretTickMsg toggles the typing caret.
type caretTickMsg struct {
	Run int
}

// dotsTickMsg advances the thinking-dots spinner.
type dotsTickMsg struct {
	Run int
}

// =============================================================================
// BROWSER MESSAGES
// =============================================================================

// urlOpenedMsg reports the outcome of opening a URL in the system browser.
type urlOpenedMsg struct {
	URL string
	Err error
}
