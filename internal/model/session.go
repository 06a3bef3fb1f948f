// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strings"
	"time"
)

// MaxMessages is the maximum number of messages to keep in session history.
// When exceeded, old messages are pruned to prevent unbounded memory growth.
const MaxMessages = 1000

// =============================================================================
// HISTORY ENTRY
// =============================================================================

// HistoryEntry is one role/content pair of the conversation history sent to
// the backend with each request.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds a chat session: the ordered transcript, the input buffer,
// and the generation counter used to discard responses that arrive after a
// reset.
//
// Invariants maintained by the mutating methods: at most one loading
// placeholder exists and it is always the last message; message IDs are
// unique and ascending.
type Session struct {
	messages []*Message

	// Started flips on the first submitted message and gates the
	// welcome-screen view.
	Started bool

	// Input is the current input buffer contents.
	Input string

	// CreatedAt is when the session began (or last reset).
	CreatedAt time.Time

	generation uint64
}

// NewSession creates an empty, not-yet-started session.
func NewSession() *Session {
	return &Session{
		messages:  make([]*Message, 0),
		CreatedAt: time.Now(),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddUserMessage appends a user message and marks the session started.
func (s *Session) AddUserMessage(text string) *Message {
	msg := NewUserMessage(text)
	s.messages = append(s.messages, msg)
	s.Started = true
	s.prune()
	return msg
}

// BeginLoading appends the loading placeholder with the given initial status.
// If a placeholder already exists it is replaced, preserving the at-most-one
// invariant.
func (s *Session) BeginLoading(status string) *Message {
	s.dropLoading()
	msg := NewLoadingMessage(status)
	s.messages = append(s.messages, msg)
	return msg
}

// ResolveLoading removes the loading placeholder and appends the resolved
// assistant message as a single mutation, so no observer ever sees the
// transcript without one or with both.
func (s *Session) ResolveLoading(msg *Message) {
	s.dropLoading()
	s.messages = append(s.messages, msg)
	s.prune()
}

// LoadingMessage returns the in-flight placeholder, or nil.
func (s *Session) LoadingMessage() *Message {
	if n := len(s.messages); n > 0 && s.messages[n-1].IsLoading() {
		return s.messages[n-1]
	}
	return nil
}

// Messages returns the transcript in order.
func (s *Session) Messages() []*Message {
	return s.messages
}

// LastMessage returns the most recent message, or nil if empty.
func (s *Session) LastMessage() *Message {
	if len(s.messages) == 0 {
		return nil
	}
	return s.messages[len(s.messages)-1]
}

// MessageCount returns the number of messages.
func (s *Session) MessageCount() int {
	return len(s.messages)
}

// IsEmpty returns true if there are no messages.
func (s *Session) IsEmpty() bool {
	return len(s.messages) == 0
}

// History returns the role/content pairs to send to the backend, excluding
// the loading placeholder.
func (s *Session) History() []HistoryEntry {
	history := make([]HistoryEntry, 0, len(s.messages))
	for _, msg := range s.messages {
		if msg.IsLoading() {
			continue
		}
		history = append(history, HistoryEntry{
			Role:    msg.Sender.String(),
			Content: msg.Text,
		})
	}
	return history
}

// =============================================================================
// INPUT BUFFER
// =============================================================================

// SetInput replaces the input buffer contents.
func (s *Session) SetInput(text string) {
	s.Input = text
}

// TakeInput returns the trimmed input buffer and clears it.
func (s *Session) TakeInput() string {
	text := strings.TrimSpace(s.Input)
	s.Input = ""
	return text
}

// =============================================================================
// GENERATION / RESET
// =============================================================================

// Generation returns the current generation. Commands dispatched against the
// session capture this value; results carrying a stale generation are
// discarded by the caller.
func (s *Session) Generation() uint64 {
	return s.generation
}

// Reset clears the transcript and input, returns to the not-started state,
// and bumps the generation so in-flight responses can never land in the new
// session. Calling Reset on a fresh session is harmless.
func (s *Session) Reset() {
	s.messages = make([]*Message, 0)
	s.Started = false
	s.Input = ""
	s.CreatedAt = time.Now()
	s.generation++
}

// =============================================================================
// INTERNAL
// =============================================================================

// dropLoading removes the placeholder if present.
func (s *Session) dropLoading() {
	if n := len(s.messages); n > 0 && s.messages[n-1].IsLoading() {
		s.messages = s.messages[:n-1]
	}
}

// prune removes the oldest messages once history exceeds MaxMessages.
func (s *Session) prune() {
	if len(s.messages) <= MaxMessages {
		return
	}
	s.messages = s.messages[len(s.messages)-MaxMessages:]
}
