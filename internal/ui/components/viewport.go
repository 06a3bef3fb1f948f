// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
)

// =============================================================================
// CHAT VIEWPORT COMPONENT - Scrollable transcript with bottom indicator
// =============================================================================

// scrollIndicatorThreshold is how many lines above the bottom the user must
// be before the "jump to latest" indicator appears.
const scrollIndicatorThreshold = 4

// minMessagesForIndicator keeps the indicator quiet for short transcripts.
const minMessagesForIndicator = 3

// ChatViewport is the scrollable transcript area. New content pins to the
// bottom until the user scrolls up; scrolling back to the bottom re-enables
// the pin.
type ChatViewport struct {
	viewport    viewport.Model
	messages    []*model.Message
	width       int
	height      int
	ready       bool
	autoScroll  bool
	theme       *styles.Theme
	messageList *MessageList

	scrollY    int
	maxScrollY int
}

// NewChatViewport creates a new ChatViewport.
func NewChatViewport(theme *styles.Theme) *ChatViewport {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	return &ChatViewport{
		viewport:    vp,
		messages:    []*model.Message{},
		width:       80,
		height:      20,
		autoScroll:  true,
		theme:       theme,
		messageList: NewMessageList(theme),
	}
}

// SetSize updates the viewport dimensions and re-renders.
func (cv *ChatViewport) SetSize(width, height int) {
	cv.width = width
	cv.height = height
	cv.viewport.Width = width
	cv.viewport.Height = height
	cv.messageList.SetWidth(width - 4)
	cv.ready = true

	cv.updateContent()
}

// SetLoadingView wires the shared typing-effect view into the transcript.
func (cv *ChatViewport) SetLoadingView(lv *LoadingView) {
	cv.messageList.SetLoadingView(lv)
}

// SetURLResolver sets the diagram URL resolver for message panels.
func (cv *ChatViewport) SetURLResolver(resolve func(string) string) {
	cv.messageList.SetURLResolver(resolve)
}

// SetMessages replaces the transcript and re-renders.
func (cv *ChatViewport) SetMessages(messages []*model.Message) {
	cv.messages = messages
	cv.messageList.SetMessages(messages)
	cv.updateContent()

	if cv.autoScroll {
		cv.ScrollToBottom()
	}
}

// Refresh re-renders the current transcript, e.g. after a loading
// placeholder ticked or resolved in place.
func (cv *ChatViewport) Refresh() {
	cv.updateContent()

	if cv.autoScroll {
		cv.ScrollToBottom()
	}
}

// updateContent re-renders the message content and updates scroll tracking.
func (cv *ChatViewport) updateContent() {
	content := cv.messageList.View()

	wrapped := wrapContentForViewport(content, cv.width-2)
	cv.viewport.SetContent(wrapped)

	lines := strings.Count(wrapped, "\n") + 1
	cv.maxScrollY = maxInt0(0, lines-cv.height)

	cv.scrollY = cv.viewport.YOffset
	if cv.scrollY > cv.maxScrollY {
		cv.scrollY = cv.maxScrollY
	}
	if cv.scrollY < 0 {
		cv.scrollY = 0
	}
}

// ScrollToBottom pins the viewport to the newest message.
func (cv *ChatViewport) ScrollToBottom() {
	cv.viewport.GotoBottom()
	cv.scrollY = cv.maxScrollY
	cv.autoScroll = true
}

// ScrollToTop jumps to the oldest message and releases the pin.
func (cv *ChatViewport) ScrollToTop() {
	cv.viewport.GotoTop()
	cv.scrollY = 0
	cv.autoScroll = false
}

// ScrollUp scrolls up by the given number of lines and releases the pin.
func (cv *ChatViewport) ScrollUp(lines int) {
	cv.autoScroll = false
	cv.scrollY = maxInt0(0, cv.scrollY-lines)
	cv.viewport.SetYOffset(cv.scrollY)
}

// ScrollDown scrolls down, re-enabling the pin at the bottom.
func (cv *ChatViewport) ScrollDown(lines int) {
	cv.scrollY = minInt(cv.maxScrollY, cv.scrollY+lines)
	cv.viewport.SetYOffset(cv.scrollY)

	if cv.scrollY >= cv.maxScrollY {
		cv.autoScroll = true
	}
}

// AtTop reports whether the viewport is at the top.
func (cv *ChatViewport) AtTop() bool {
	return cv.viewport.AtTop()
}

// AtBottom reports whether the viewport is at the bottom.
func (cv *ChatViewport) AtBottom() bool {
	return cv.viewport.AtBottom()
}

// AutoScroll reports whether the viewport is pinned to the bottom.
func (cv *ChatViewport) AutoScroll() bool {
	return cv.autoScroll
}

// ShowsScrollIndicator reports whether the jump-to-latest indicator should
// be visible: only when the user has scrolled well away from the bottom and
// the transcript is long enough to be worth jumping through.
func (cv *ChatViewport) ShowsScrollIndicator() bool {
	if len(cv.messages) <= minMessagesForIndicator {
		return false
	}
	return cv.maxScrollY-cv.scrollY > scrollIndicatorThreshold
}

// Update handles scroll keys and mouse wheel events.
func (cv *ChatViewport) Update(msg tea.Msg) (*ChatViewport, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			cv.ScrollUp(1)
			return cv, nil
		case "down", "j":
			cv.ScrollDown(1)
			return cv, nil
		case "pgup":
			cv.ScrollUp(cv.height)
			return cv, nil
		case "pgdn", "pgdown":
			cv.ScrollDown(cv.height)
			return cv, nil
		case "home", "g":
			cv.ScrollToTop()
			return cv, nil
		case "end", "G":
			cv.ScrollToBottom()
			return cv, nil
		}

	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp:
			cv.ScrollUp(3)
			return cv, nil
		case tea.MouseWheelDown:
			cv.ScrollDown(3)
			return cv, nil
		}
	}

	cv.viewport, cmd = cv.viewport.Update(msg)
	cv.scrollY = cv.viewport.YOffset

	return cv, cmd
}

// View renders the transcript with the jump-to-latest indicator overlaid
// at the bottom edge when the user has scrolled away.
func (cv *ChatViewport) View() string {
	if !cv.ready {
		return ""
	}

	content := cv.viewport.View()

	if !cv.ShowsScrollIndicator() {
		return content
	}

	indicator := cv.theme.ScrollIndicator.Render("v new messages below, end: jump to latest v")

	indicatorLine := lipgloss.NewStyle().
		Width(cv.width).
		Align(lipgloss.Center).
		Render(indicator)

	// Replace the last content line so the overall height stays stable
	lines := strings.Split(content, "\n")
	if len(lines) > 0 {
		lines[len(lines)-1] = indicatorLine
	}

	return strings.Join(lines, "\n")
}

// =============================================================================
// CONTENT WRAPPING WITH RUNEWIDTH SUPPORT
// =============================================================================

// wrapContentForViewport wraps content to the given display width, using
// go-runewidth so wide characters count for two columns.
func wrapContentForViewport(content string, width int) string {
	if width <= 0 {
		return content
	}

	var wrapped strings.Builder
	for _, line := range strings.Split(content, "\n") {
		if wrapped.Len() > 0 {
			wrapped.WriteByte('\n')
		}

		if runewidth.StringWidth(line) <= width {
			wrapped.WriteString(line)
			continue
		}

		wrapped.WriteString(wordWrapWithRunewidth(line, width))
	}

	return wrapped.String()
}

// wordWrapWithRunewidth wraps a single line to the given display width,
// breaking at the last space when one is available.
func wordWrapWithRunewidth(line string, width int) string {
	if width <= 0 {
		return line
	}

	var result strings.Builder
	var current strings.Builder
	currentWidth := 0
	hasSpace := false

	flush := func() {
		if result.Len() > 0 {
			result.WriteByte('\n')
		}
		result.WriteString(strings.TrimRight(current.String(), " "))
		current.Reset()
		currentWidth = 0
		hasSpace = false
	}

	for _, r := range line {
		charWidth := runewidth.RuneWidth(r)

		if currentWidth+charWidth > width {
			if hasSpace {
				// Break at the last space in the current segment
				segment := current.String()
				idx := strings.LastIndexByte(segment, ' ')
				head, tail := segment[:idx], segment[idx+1:]

				if result.Len() > 0 {
					result.WriteByte('\n')
				}
				result.WriteString(strings.TrimRight(head, " "))

				current.Reset()
				current.WriteString(tail)
				currentWidth = runewidth.StringWidth(tail)
				hasSpace = strings.ContainsRune(tail, ' ')
			} else {
				flush()
			}
		}

		if r == ' ' {
			hasSpace = true
		}
		current.WriteRune(r)
		currentWidth += charWidth
	}

	if current.Len() > 0 {
		flush()
	}

	return result.String()
}

// maxInt0 returns the maximum of two integers.
func maxInt0(a, b int) int {
	if a > b {
		return a
	}
	return b
}
