// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the scribe TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
	"github.com/jeranaias/scribe-tui/internal/util"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders a single transcript message: an indigo user bubble,
// a green assistant bubble with markdown body and diagram panels, or the
// typing-effect loading placeholder.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	ShowTimestamp bool

	theme    *styles.Theme
	markdown *Markdown
	loading  *LoadingView
	resolve  func(string) string
}

// NewMessageBubble creates a new MessageBubble.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		theme:         theme,
		resolve:       func(url string) string { return url },
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// SetMarkdown sets the shared markdown renderer for assistant bodies.
func (b *MessageBubble) SetMarkdown(md *Markdown) {
	b.markdown = md
}

// SetLoadingView sets the typing-effect view used for loading placeholders.
func (b *MessageBubble) SetLoadingView(lv *LoadingView) {
	b.loading = lv
}

// SetURLResolver sets the function that host-qualifies diagram URLs.
func (b *MessageBubble) SetURLResolver(resolve func(string) string) {
	if resolve != nil {
		b.resolve = resolve
	}
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	if b.Message == nil {
		return ""
	}
	if b.Message.IsLoading() {
		return b.renderLoadingBubble()
	}
	switch b.Message.Sender {
	case model.RoleUser:
		return b.renderUserBubble()
	default:
		return b.renderAssistantBubble()
	}
}

// ==========================================================================
// USER BUBBLE - Indigo tones, right-aligned
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.Message.Text
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12 // Account for margins and padding
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)

	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-8)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.UserBubbleFg).
		Background(styles.UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.UserBubbleBorder).
		Padding(0, 2).
		Width(contentWidth)

	bubble := bubbleStyle.Render(wrappedContent)

	header := b.theme.UserLabel.Render(model.RoleUser.DisplayName())
	if b.ShowTimestamp {
		if ts := b.renderTimestamp(); ts != "" {
			header += " " + ts
		}
	}

	// Right-align the bubble with left margin
	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	marginStyle := lipgloss.NewStyle().MarginLeft(leftMargin)

	return lipgloss.JoinVertical(lipgloss.Right,
		marginStyle.Render(header),
		marginStyle.Render(bubble),
	)
}

// ==========================================================================
// ASSISTANT BUBBLE - Green tones, markdown body, diagram panels
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	content := b.Message.Text
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}

	// Markdown render when available; plain wrap otherwise
	var body string
	if b.markdown != nil {
		body = b.markdown.Render(content)
	} else {
		body = wordWrap(NormalizeEscapes(content), maxContentWidth)
	}

	contentWidth := minInt(maxLineWidth(body)+4, b.Width-8)
	if contentWidth < 24 {
		contentWidth = minInt(24, b.Width-8)
	}

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.AssistantBubbleFg).
		Background(styles.AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.AssistantBubbleBorder).
		Padding(0, 2).
		Width(contentWidth).
		MarginRight(4)

	bubble := bubbleStyle.Render(body)

	header := b.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName())
	if b.ShowTimestamp {
		if ts := b.renderTimestamp(); ts != "" {
			header += " " + ts
		}
	}

	result := lipgloss.JoinVertical(lipgloss.Left, header, bubble)

	// Diagram panels below the answer
	if panels := b.renderDiagramPanels(); panels != "" {
		result = lipgloss.JoinVertical(lipgloss.Left, result, panels)
	}

	return result
}

// ==========================================================================
// LOADING BUBBLE - Typing-effect status placeholder
// ==========================================================================

func (b *MessageBubble) renderLoadingBubble() string {
	header := b.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName())

	var body string
	if b.loading != nil {
		body = b.loading.View()
	} else {
		body = b.theme.ThinkingText.Render(b.Message.Text)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// ==========================================================================
// DIAGRAM PANELS
// ==========================================================================

// DiagramRef is a displayable diagram entry extracted from a message.
type DiagramRef struct {
	Title string
	URL   string // host-qualified
}

// DiagramRefs returns the displayable diagrams for a message, in display
// order, with host-qualified URLs. The set follows the message's
// DiagramMode precedence.
func DiagramRefs(msg *model.Message, resolve func(string) string) []DiagramRef {
	if msg == nil || msg.Diagrams == nil {
		return nil
	}
	if resolve == nil {
		resolve = func(url string) string { return url }
	}

	d := msg.Diagrams
	switch d.Mode() {
	case model.DiagramBoth:
		return []DiagramRef{
			{Title: model.DiagramArchitecture.Title(), URL: resolve(d.ArchitectureURL)},
			{Title: model.DiagramFlowchart.Title(), URL: resolve(d.FlowchartURL)},
		}
	case model.DiagramArchitecture:
		return []DiagramRef{{Title: model.DiagramArchitecture.Title(), URL: resolve(d.ArchitectureURL)}}
	case model.DiagramFlowchart:
		return []DiagramRef{{Title: model.DiagramFlowchart.Title(), URL: resolve(d.FlowchartURL)}}
	case model.DiagramVisualization:
		return []DiagramRef{{Title: model.DiagramVisualization.Title(), URL: resolve(d.VisualizationURL)}}
	default:
		return nil
	}
}

// renderDiagramPanels renders the diagram panels for the message.
func (b *MessageBubble) renderDiagramPanels() string {
	refs := DiagramRefs(b.Message, b.resolve)
	if len(refs) == 0 {
		return ""
	}

	panelWidth := b.Width - 10
	if panelWidth < 30 {
		panelWidth = 30
	}

	var panels []string
	for _, ref := range refs {
		title := b.theme.DiagramTitle.Render(ref.Title)
		url := b.theme.DiagramURL.Render(util.TruncateWidth(ref.URL, panelWidth-4))
		hint := b.theme.DiagramHint.Render("ctrl+o: open viewer")

		panel := b.theme.DiagramPanel.
			Width(panelWidth).
			Render(lipgloss.JoinVertical(lipgloss.Left, title, url, hint))

		panels = append(panels, panel)
	}

	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

// ==========================================================================
// HELPER METHODS
// ==========================================================================

// renderTimestamp renders a dimmed timestamp.
func (b *MessageBubble) renderTimestamp() string {
	ts := b.Message.CreatedAt
	if ts.IsZero() {
		return ""
	}

	now := time.Now()
	var formatted string
	if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
		formatted = formatTime(ts)
	} else {
		formatted = formatDate(ts) + ", " + formatTime(ts)
	}

	return b.theme.Timestamp.Render(formatted)
}

// ==========================================================================
// UTILITY FUNCTIONS
// ==========================================================================

// wordWrap wraps text to fit within the specified width.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for lineIdx, line := range lines {
		if lineIdx > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]
		for _, word := range words[1:] {
			if util.RuneLen(currentLine)+1+util.RuneLen(word) <= width {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			}
		}

		result.WriteString(currentLine)
	}

	return result.String()
}

// maxLineWidth returns the display width of the widest line.
func maxLineWidth(text string) int {
	maxWidth := 0
	for _, line := range strings.Split(text, "\n") {
		lineWidth := util.StringWidth(line)
		if lineWidth > maxWidth {
			maxWidth = lineWidth
		}
	}
	return maxWidth
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// formatTime formats a time as "3:04 PM".
func formatTime(t time.Time) string {
	hour := t.Hour()
	minute := t.Minute()
	ampm := "AM"

	if hour >= 12 {
		ampm = "PM"
		if hour > 12 {
			hour -= 12
		}
	}
	if hour == 0 {
		hour = 12
	}

	minuteStr := util.IntToString(minute)
	if minute < 10 {
		minuteStr = "0" + minuteStr
	}

	return util.IntToString(hour) + ":" + minuteStr + " " + ampm
}

// formatDate formats a date as "Jan 5".
func formatDate(t time.Time) string {
	months := []string{
		"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
	}
	return months[t.Month()-1] + " " + util.IntToString(t.Day())
}

// =============================================================================
// MESSAGE LIST COMPONENT
// =============================================================================

// MessageList renders the whole transcript as stacked message bubbles.
type MessageList struct {
	Messages       []*model.Message
	Width          int
	ShowTimestamps bool

	theme    *styles.Theme
	markdown *Markdown
	loading  *LoadingView
	resolve  func(string) string
}

// NewMessageList creates a new MessageList.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{
		Messages:       []*model.Message{},
		Width:          80,
		ShowTimestamps: true,
		theme:          theme,
		markdown:       NewMarkdown(76),
		resolve:        func(url string) string { return url },
	}
}

// SetMessages sets the messages to display.
func (ml *MessageList) SetMessages(messages []*model.Message) {
	ml.Messages = messages
}

// SetWidth sets the list width.
func (ml *MessageList) SetWidth(width int) {
	ml.Width = width
	ml.markdown.SetWidth(width - 12)
}

// SetLoadingView sets the shared typing-effect view.
func (ml *MessageList) SetLoadingView(lv *LoadingView) {
	ml.loading = lv
}

// SetURLResolver sets the diagram URL resolver.
func (ml *MessageList) SetURLResolver(resolve func(string) string) {
	if resolve != nil {
		ml.resolve = resolve
	}
}

// View renders all messages.
func (ml *MessageList) View() string {
	if len(ml.Messages) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Width(ml.Width).
			Align(lipgloss.Center).
			Padding(2, 0)

		return emptyStyle.Render("No messages yet. Ask anything you need.")
	}

	var bubbles []string
	for _, msg := range ml.Messages {
		bubble := NewMessageBubble(msg, ml.theme)
		bubble.SetWidth(ml.Width)
		bubble.ShowTimestamp = ml.ShowTimestamps
		bubble.SetMarkdown(ml.markdown)
		bubble.SetLoadingView(ml.loading)
		bubble.SetURLResolver(ml.resolve)

		bubbles = append(bubbles, bubble.View())
	}

	return strings.Join(bubbles, "\n")
}
