// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/ui/components"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.screen == screenChat {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case sequencerTickMsg:
		return m.handleSequencerTick(msg)

	case typingTickMsg:
		return m.handleTypingTick(msg)

	case caretTickMsg:
		return m.handleCaretTick(msg)

	case dotsTickMsg:
		return m.handleDotsTick(msg)

	case ChatResponseMsg:
		return m.handleChatResponse(msg)

	case ChatErrorMsg:
		return m.handleChatError(msg)

	case components.OpenURLMsg:
		return m, m.openURL(msg.URL)

	case components.PromptSelectedMsg:
		return m.selectQuickAction(msg.Prompt)

	case components.DownloadResultMsg:
		return m.handleDownloadResult(msg)

	case components.BrowserOpenedMsg:
		if msg.Err != nil {
			m.imageViewer.SetStatus("could not open browser: "+msg.Err.Error(), true)
		} else {
			m.imageViewer.SetStatus("opened in browser", false)
		}
		return m, nil

	case urlOpenedMsg:
		if msg.Err != nil {
			m.statusMsg = "could not open " + msg.URL
		}
		return m, nil
	}

	// Forward anything else to the focused text input (cursor blink etc.)
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	contentHeight := msg.Height - chromeHeight
	if contentHeight < 3 {
		contentHeight = 3
	}

	m.viewport.SetSize(msg.Width, contentHeight)
	m.welcome.SetSize(msg.Width, contentHeight)
	m.imageViewer.SetSize(msg.Width, msg.Height)
	m.input.Width = msg.Width - 6

	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit always wins
	if key.Matches(msg, m.keyMap.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	// The image viewer modal swallows all input while open
	if m.imageViewer.IsOpen() {
		return m.handleViewerKey(msg)
	}

	if key.Matches(msg, m.keyMap.NewSession) {
		return m.resetToWelcome()
	}

	if m.screen == screenWelcome {
		return m.handleWelcomeKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m Model) handleViewerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.CloseModal):
		m.imageViewer.Close()
		return m, nil
	case key.Matches(msg, m.keyMap.Download):
		m.imageViewer.SetStatus("downloading...", false)
		return m, m.imageViewer.Download()
	case key.Matches(msg, m.keyMap.OpenBrowser):
		return m, m.imageViewer.OpenInBrowser()
	}
	return m, nil
}

func (m Model) handleWelcomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Tab moves focus between the input and the quick-action row. While the
	// picker is open the welcome component keeps tab for itself.
	if key.Matches(msg, m.keyMap.FocusToggle) && !m.welcome.InPromptPicker() {
		if m.welcome.Focused() {
			m.welcome.SetFocused(false)
			m.input.Focus()
			return m, textinput.Blink
		}
		m.welcome.SetFocused(true)
		m.input.Blur()
		return m, nil
	}

	if m.welcome.Focused() {
		var cmd tea.Cmd
		m.welcome, cmd = m.welcome.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keyMap.Submit) {
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keyMap.OpenDiagram):
		return m.openLatestDiagram()

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ScrollUp(m.viewportPage())
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ScrollDown(m.viewportPage())
		return m, nil

	case key.Matches(msg, m.keyMap.Home):
		m.viewport.ScrollToTop()
		return m, nil

	case key.Matches(msg, m.keyMap.End):
		m.viewport.ScrollToBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) viewportPage() int {
	page := m.height - chromeHeight - 1
	if page < 1 {
		page = 1
	}
	return page
}

// =============================================================================
// SUBMIT
// =============================================================================

// submitInput sends the input buffer to the backend. Blank input is a no-op.
// The history snapshot is taken before the new user message is appended, so
// the backend sees the query separately from prior turns.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.session.LoadingMessage() != nil {
		// One request at a time
		return m, nil
	}

	history := m.session.History()
	m.session.AddUserMessage(text)
	m.input.Reset()
	m.input.Placeholder = placeholderChat

	status, seqCmd := m.sequencer.Start()
	m.session.BeginLoading(status)
	m.loadingView.Reset()
	m.loadingView.SetStatus(status)

	m.screen = screenChat
	m.welcome.SetFocused(false)
	m.input.Focus()
	m.viewport.SetMessages(m.session.Messages())

	gen := m.session.Generation()
	return m, tea.Batch(
		seqCmd,
		m.typingTick(),
		m.caretTick(),
		m.dotsTick(),
		m.requestChat(gen, history, text),
	)
}

// =============================================================================
// BACKEND RESPONSES
// =============================================================================

func (m Model) handleChatResponse(msg ChatResponseMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.session.Generation() {
		// Response from a session that was reset; drop it
		return m, nil
	}

	m.sequencer.Stop()
	m.loadingView.Reset()

	reply := model.NewAssistantMessage(msg.Result.Answer)
	reply.Diagrams = msg.Result.Diagrams
	m.session.ResolveLoading(reply)

	m.viewport.SetMessages(m.session.Messages())
	return m, nil
}

func (m Model) handleChatError(msg ChatErrorMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.session.Generation() {
		return m, nil
	}

	m.sequencer.Stop()
	m.loadingView.Reset()

	reply := model.NewAssistantMessage(errorReplyPrefix + msg.Err.Error())
	m.session.ResolveLoading(reply)

	m.viewport.SetMessages(m.session.Messages())
	return m, nil
}

// =============================================================================
// LOADING ANIMATION
// =============================================================================

func (m Model) handleSequencerTick(msg sequencerTickMsg) (tea.Model, tea.Cmd) {
	status, next, ok := m.sequencer.Advance(msg)
	if !ok {
		return m, nil
	}

	if loading := m.session.LoadingMessage(); loading != nil {
		loading.SetStatus(m.sequencer.Stage(), status)
	}
	m.loadingView.SetStatus(status)
	m.viewport.Refresh()

	// A fresh status restarts the typewriter
	return m, tea.Batch(next, m.typingTick())
}

func (m Model) handleTypingTick(msg typingTickMsg) (tea.Model, tea.Cmd) {
	if !m.animTickCurrent(msg.Run) {
		return m, nil
	}

	done := m.loadingView.AdvanceTyping()
	m.viewport.Refresh()
	if done {
		return m, nil
	}
	return m, m.typingTick()
}

func (m Model) handleCaretTick(msg caretTickMsg) (tea.Model, tea.Cmd) {
	if !m.animTickCurrent(msg.Run) {
		return m, nil
	}

	m.loadingView.ToggleCaret()
	m.viewport.Refresh()
	return m, m.caretTick()
}

func (m Model) handleDotsTick(msg dotsTickMsg) (tea.Model, tea.Cmd) {
	if !m.animTickCurrent(msg.Run) {
		return m, nil
	}

	m.loadingView.AdvanceDots()
	m.viewport.Refresh()
	return m, m.dotsTick()
}

// =============================================================================
// SESSION RESET
// =============================================================================

// resetToWelcome abandons the current conversation and returns to the
// greeting. Safe mid-request: the generation bump orphans any in-flight
// response.
func (m Model) resetToWelcome() (tea.Model, tea.Cmd) {
	m.sequencer.Stop()
	m.session.Reset()
	m.loadingView.Reset()
	m.imageViewer.Close()

	m.screen = screenWelcome
	m.statusMsg = ""
	m.input.Reset()
	m.input.Placeholder = placeholderWelcome
	m.input.Focus()
	m.welcome.SetFocused(false)
	m.viewport.SetMessages(nil)

	return m, textinput.Blink
}

// =============================================================================
// QUICK ACTIONS AND DIAGRAMS
// =============================================================================

// selectQuickAction prefills the input with a canned prompt. It never
// submits; the user still has to press enter.
func (m Model) selectQuickAction(prompt string) (tea.Model, tea.Cmd) {
	m.session.SetInput(prompt)
	m.input.SetValue(prompt)
	m.input.CursorEnd()
	m.input.Focus()
	m.welcome.SetFocused(false)
	return m, textinput.Blink
}

// openLatestDiagram opens the viewer on the first diagram of the most
// recent message that carries one.
func (m Model) openLatestDiagram() (tea.Model, tea.Cmd) {
	messages := m.session.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		refs := components.DiagramRefs(messages[i], m.resolveURL)
		if len(refs) > 0 {
			m.imageViewer.Open(refs[0].Title, refs[0].URL)
			return m, nil
		}
	}
	m.statusMsg = "no diagrams in this conversation"
	return m, nil
}

func (m Model) resolveURL(url string) string {
	if m.client == nil {
		return url
	}
	return m.client.ResolveAssetURL(url)
}

func (m Model) handleDownloadResult(msg components.DownloadResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.imageViewer.SetStatus("download failed: "+msg.Err.Error(), true)
		return m, nil
	}

	switch msg.Method {
	case components.DownloadViaBrowser:
		m.imageViewer.SetStatus("opened in browser", false)
	default:
		m.imageViewer.SetStatus("saved to "+msg.Path, false)
	}
	return m, nil
}

// openURL opens a quick-action URL with the platform's default opener.
func (m Model) openURL(target string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", target)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
		default:
			cmd = exec.Command("xdg-open", target)
		}
		return urlOpenedMsg{URL: target, Err: cmd.Start()}
	}
}
