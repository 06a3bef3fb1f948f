// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat implements the main chat screen of the scribe TUI.

The package follows the Bubble Tea Elm architecture, split across files:

  - model.go: the Model struct, constructor, and backend dispatch
  - update.go: message handling (keys, ticks, responses, quick actions)
  - view.go: rendering (header, transcript or welcome, input, status bar)
  - messages.go: Bubble Tea message type definitions
  - sequencer.go: the loading status rotation
  - keys.go: key bindings

# Request lifecycle

Submitting input appends the user message, snapshots the prior history,
begins the loading placeholder at the first sequencer status, and dispatches
the backend call as a tea.Cmd. The command carries the session generation
captured at dispatch; ChatResponseMsg and ChatErrorMsg from a stale
generation (the session was reset meanwhile) are discarded without touching
the transcript.

While the request is in flight, the sequencer rotates the placeholder status
every 2 seconds and three owned timers animate the typewriter reveal, caret
blink, and thinking dots. All four carry the sequencer's run token; stopping
the sequencer (response arrived, error, or reset) orphans their pending
ticks.

Errors resolve the placeholder into an apologetic assistant message that
embeds the error text. There is no automatic retry.
*/
package chat
