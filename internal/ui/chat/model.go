// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/scribe-tui/internal/backend"
	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/ui/components"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
)

// =============================================================================
// SCREEN STATE
// =============================================================================

// screen identifies which top-level view is showing.
type screen int

const (
	screenWelcome screen = iota // Pre-conversation greeting with quick actions
	screenChat                  // Active transcript
)

// Input placeholders per screen.
const (
	placeholderWelcome = "Ask anything you need"
	placeholderChat    = "Ask me anything about your projects..."
)

// errorReplyPrefix opens the assistant message shown when a request fails.
const errorReplyPrefix = "I'm sorry, I encountered an error while processing your request. Please try again. Error: "

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	// State
	screen   screen
	quitting bool

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Domain
	session *model.Session
	client  *backend.Client
	cfg     *config.Config

	// UI components
	input       textinput.Model
	viewport    *components.ChatViewport
	welcome     components.Welcome
	loadingView *components.LoadingView
	imageViewer *components.ImageViewer

	// Loading status rotation
	sequencer *LoadingSequencer

	// Key bindings
	keyMap KeyMap

	// Transient status line (download results, browser opens)
	statusMsg string
}

// New creates a new chat model.
func New(theme *styles.Theme, cfg *config.Config, client *backend.Client) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholderWelcome
	ti.CharLimit = 4096
	ti.Focus()

	vp := components.NewChatViewport(theme)
	lv := components.NewLoadingView(theme)
	vp.SetLoadingView(lv)
	if client != nil {
		vp.SetURLResolver(client.ResolveAssetURL)
	}

	iv := components.NewImageViewer(theme, client)
	if cfg != nil {
		iv.SetProxyURL(fmt.Sprintf("http://127.0.0.1:%d", cfg.Proxy.Port))
		iv.SetDownloadDir(cfg.DownloadDir())
	}

	return Model{
		screen:      screenWelcome,
		theme:       theme,
		session:     model.NewSession(),
		client:      client,
		cfg:         cfg,
		input:       ti,
		viewport:    vp,
		welcome:     components.NewWelcome(theme),
		loadingView: lv,
		imageViewer: iv,
		sequencer:   NewLoadingSequencer(),
		keyMap:      DefaultKeyMap(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Session exposes the conversation state, mainly for tests.
func (m Model) Session() *model.Session {
	return m.session
}

// =============================================================================
// BACKEND DISPATCH
// =============================================================================

// requestChat returns the command that performs the backend call. The
// captured generation tags the eventual response so a session reset in the
// meantime makes it moot.
func (m Model) requestChat(gen uint64, history []model.HistoryEntry, query string) tea.Cmd {
	client := m.client

	timeout := backend.DefaultTimeout
	if m.cfg != nil && m.cfg.Backend.TimeoutSecs > 0 {
		timeout = time.Duration(m.cfg.Backend.TimeoutSecs) * time.Second
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		result, err := client.Chat(ctx, history, query)
		if err != nil {
			return ChatErrorMsg{Gen: gen, Err: err}
		}
		return ChatResponseMsg{Gen: gen, Result: result}
	}
}

// =============================================================================
// ANIMATION TIMERS
// =============================================================================

func (m Model) typingTick() tea.Cmd {
	run := m.sequencer.Run()
	return tea.Tick(styles.TypingTickRate, func(time.Time) tea.Msg {
		return typingTickMsg{Run: run}
	})
}

func (m Model) caretTick() tea.Cmd {
	run := m.sequencer.Run()
	return tea.Tick(styles.CaretBlinkRate, func(time.Time) tea.Msg {
		return caretTickMsg{Run: run}
	})
}

func (m Model) dotsTick() tea.Cmd {
	run := m.sequencer.Run()
	return tea.Tick(styles.DotsSpinner.Duration(), func(time.Time) tea.Msg {
		return dotsTickMsg{Run: run}
	})
}

// animTickCurrent reports whether an animation tick belongs to the active
// loading cycle.
func (m Model) animTickCurrent(run int) bool {
	return m.sequencer.Active() && run == m.sequencer.Run()
}
