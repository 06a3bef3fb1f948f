// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"sync"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the transcript label for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "ME"
	case RoleAssistant:
		return "GoML's Scribe"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a chat session.
//
// Text is mutable while Loading is non-nil (the loading placeholder rewrites
// it as the status sequence advances); once resolved it never changes.
// CreatedAt is set at construction and never changes.
type Message struct {
	// Identity
	ID        int64     `json:"id"`
	Sender    Role      `json:"sender"`
	CreatedAt time.Time `json:"created_at"`

	// Content
	Text string `json:"text"`

	// Loading is non-nil only on the in-flight placeholder message.
	Loading *LoadingState `json:"-"`

	// Diagrams is non-nil once a backend response attached diagram URLs.
	Diagrams *DiagramSet `json:"diagrams,omitempty"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(text string) *Message {
	return &Message{
		ID:        nextMessageID(),
		Sender:    RoleUser,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(text string) *Message {
	return &Message{
		ID:        nextMessageID(),
		Sender:    RoleAssistant,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// NewLoadingMessage creates the assistant placeholder shown while a request
// is in flight. Its text starts at the given status and is rewritten by the
// loading sequencer until the message is resolved.
func NewLoadingMessage(status string) *Message {
	return &Message{
		ID:        nextMessageID(),
		Sender:    RoleAssistant,
		Text:      status,
		CreatedAt: time.Now(),
		Loading:   &LoadingState{},
	}
}

// IsLoading reports whether this message is the in-flight placeholder.
func (m *Message) IsLoading() bool {
	return m.Loading != nil
}

// SetStatus rewrites the placeholder text for the given sequencer stage.
// No-op on resolved messages.
func (m *Message) SetStatus(stage int, status string) {
	if m.Loading == nil {
		return
	}
	m.Loading.Stage = stage
	m.Text = status
}

// Preview returns a rune-safe truncated preview of the message text.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// LOADING STATE
// =============================================================================

// LoadingState tracks the placeholder's position in the status sequence.
type LoadingState struct {
	// Stage is the index of the status currently displayed.
	Stage int
}

// =============================================================================
// DIAGRAM SET
// =============================================================================

// DiagramMode is the resolved display mode for a message's diagrams.
type DiagramMode int

const (
	// DiagramNone means the message carries no renderable diagram.
	DiagramNone DiagramMode = iota
	// DiagramVisualization is a bare visualization with no type flags.
	DiagramVisualization
	// DiagramArchitecture is an AWS architecture diagram.
	DiagramArchitecture
	// DiagramFlowchart is a process flowchart.
	DiagramFlowchart
	// DiagramBoth means both architecture and flowchart are present.
	DiagramBoth
)

// String returns the mode name for logging.
func (d DiagramMode) String() string {
	switch d {
	case DiagramVisualization:
		return "visualization"
	case DiagramArchitecture:
		return "architecture"
	case DiagramFlowchart:
		return "flowchart"
	case DiagramBoth:
		return "both"
	default:
		return "none"
	}
}

// Title returns the display title shown above a diagram panel.
func (d DiagramMode) Title() string {
	switch d {
	case DiagramArchitecture:
		return "AWS Architecture Diagram"
	case DiagramFlowchart:
		return "Process Flowchart"
	case DiagramVisualization:
		return "Visualization"
	default:
		return ""
	}
}

// DiagramSet holds the diagram URLs and type flags attached to an assistant
// response. URLs may be backend-relative; callers host-qualify them before
// display or fetch.
type DiagramSet struct {
	VisualizationURL string `json:"visualization_url,omitempty"`
	ArchitectureURL  string `json:"architecture_url,omitempty"`
	FlowchartURL     string `json:"flowchart_url,omitempty"`

	HasArchitecture bool `json:"has_architecture,omitempty"`
	HasFlowchart    bool `json:"has_flowchart,omitempty"`
	HasBothDiagrams bool `json:"has_both_diagrams,omitempty"`
}

// Mode resolves the display precedence: both diagrams beat a single
// architecture diagram, which beats a flowchart, which beats a bare
// visualization. Flags only count when the matching URL is present.
func (d *DiagramSet) Mode() DiagramMode {
	if d == nil {
		return DiagramNone
	}
	if d.HasBothDiagrams && d.ArchitectureURL != "" && d.FlowchartURL != "" {
		return DiagramBoth
	}
	if d.HasArchitecture && d.ArchitectureURL != "" {
		return DiagramArchitecture
	}
	if d.HasFlowchart && d.FlowchartURL != "" {
		return DiagramFlowchart
	}
	if d.VisualizationURL != "" {
		return DiagramVisualization
	}
	return DiagramNone
}

// IsEmpty reports whether the set carries nothing displayable.
func (d *DiagramSet) IsEmpty() bool {
	return d.Mode() == DiagramNone
}

// =============================================================================
// ID GENERATION
// =============================================================================

var (
	idMu   sync.Mutex
	lastID int64
)

// nextMessageID creates a unique, strictly ascending message ID.
// Base is wall-clock milliseconds so IDs sort by creation time across runs;
// IDs minted within the same millisecond are tie-broken by incrementing.
func nextMessageID() int64 {
	idMu.Lock()
	defer idMu.Unlock()

	id := time.Now().UnixMilli() * 1000
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return id
}
