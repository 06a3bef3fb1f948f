// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/scribe-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN MODEL
// =============================================================================

// WelcomeGreeting is the headline shown before the first message.
const WelcomeGreeting = "Hey User!\nCan I help you with anything?"

// WelcomeSubtitle sits under the greeting.
const WelcomeSubtitle = "Ready to assist you with anything you need."

// QuickAction is one of the shortcut buttons on the welcome screen. Actions
// with a URL open in the browser; the prompt-ideas action opens a picker
// that prefills the input instead.
type QuickAction struct {
	Label string
	URL   string
}

// quickActions are displayed left to right under the greeting.
var quickActions = []QuickAction{
	{Label: "Glossary", URL: "https://www.goml.io/ai-glossary"},
	{Label: "Prompt ideas"},
	{Label: "Price Calculator", URL: "https://calculator.aws/#/"},
	{Label: "Services", URL: "https://aws.amazon.com/about-aws/global-infrastructure/regional-product-services/"},
}

// PromptIdeas are the canned prompts offered by the prompt-ideas picker.
var PromptIdeas = []string{
	"My customer in retail wants to reduce inventory waste using AI - what case studies can I show them?",
	"Can you give me 2-3 AI/ML solutions for a healthcare customer who needs faster patient insights from unstructured data?",
	"Do we have any examples where funding reduced the customer's upfront cost of AI adoption?",
	"Which partners have built AI solutions on top of Snowflake or Databricks that I can reference for a financial services customer?",
	"Show me examples of how we've accelerated time-to-market for AI products in manufacturing.",
	"What AI workloads have delivered measurable revenue growth for media & entertainment customers?",
	"Can you suggest a proposed solution for an insurance customer wanting to automate claims processing?",
	"Do we have case studies showing partner expertise with customer service chatbots?",
	"Give me a comparison of 2 case studies where different LLMs (Claude vs. ChatGPT) were used, and why.",
	"If my customer doesn't know what AI can do, can you suggest 3 industry-relevant workloads with business value proof points?",
}

// OpenURLMsg asks the chat model to open a quick-action URL in the browser.
type OpenURLMsg struct {
	URL string
}

// PromptSelectedMsg asks the chat model to prefill the input with a canned
// prompt. The prompt is not sent until the user presses enter.
type PromptSelectedMsg struct {
	Prompt string
}

// Welcome is the pre-conversation screen: greeting, subtitle, and a row of
// quick actions. Tab/arrow keys move the selection; enter activates. The
// prompt-ideas action swaps the row for a vertical picker of canned prompts.
type Welcome struct {
	width  int
	height int
	theme  *styles.Theme

	focused    bool
	actionIdx  int
	promptMode bool
	promptIdx  int
}

// NewWelcome creates a new welcome screen.
func NewWelcome(theme *styles.Theme) Welcome {
	return Welcome{
		width:  80,
		height: 24,
		theme:  theme,
	}
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// SetFocused controls whether the quick-action row takes key input.
func (w *Welcome) SetFocused(focused bool) {
	w.focused = focused
	if !focused {
		w.promptMode = false
	}
}

// Focused reports whether the quick-action row has key focus.
func (w *Welcome) Focused() bool {
	return w.focused
}

// InPromptPicker reports whether the prompt-ideas picker is open.
func (w *Welcome) InPromptPicker() bool {
	return w.promptMode
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the welcome screen.
func (w Welcome) Init() tea.Cmd {
	return nil
}

// Update handles quick-action navigation and activation.
func (w Welcome) Update(msg tea.Msg) (Welcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil

	case tea.KeyMsg:
		if !w.focused {
			return w, nil
		}
		if w.promptMode {
			return w.updatePromptPicker(msg)
		}
		return w.updateActionRow(msg)
	}

	return w, nil
}

func (w Welcome) updateActionRow(msg tea.KeyMsg) (Welcome, tea.Cmd) {
	switch msg.String() {
	case "left", "shift+tab":
		w.actionIdx = (w.actionIdx + len(quickActions) - 1) % len(quickActions)
	case "right", "tab":
		w.actionIdx = (w.actionIdx + 1) % len(quickActions)
	case "enter":
		action := quickActions[w.actionIdx]
		if action.URL != "" {
			target := action.URL
			return w, func() tea.Msg { return OpenURLMsg{URL: target} }
		}
		w.promptMode = true
		w.promptIdx = 0
	}
	return w, nil
}

func (w Welcome) updatePromptPicker(msg tea.KeyMsg) (Welcome, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		w.promptIdx = (w.promptIdx + len(PromptIdeas) - 1) % len(PromptIdeas)
	case "down", "j":
		w.promptIdx = (w.promptIdx + 1) % len(PromptIdeas)
	case "esc":
		w.promptMode = false
	case "enter":
		prompt := PromptIdeas[w.promptIdx]
		w.promptMode = false
		return w, func() tea.Msg { return PromptSelectedMsg{Prompt: prompt} }
	}
	return w, nil
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the welcome screen centered in the available area.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 24
	}

	var body string
	if w.promptMode {
		body = w.renderPromptPicker(width)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Center,
			w.theme.WelcomeLogo.Render(WelcomeGreeting),
			"",
			w.theme.WelcomeInfo.Render(WelcomeSubtitle),
			"",
			w.renderQuickActions(width),
		)
	}

	boxWidth := minInt(width-4, 76)
	if boxWidth < 30 {
		boxWidth = width - 2
	}

	box := w.theme.WelcomeBox.
		Width(boxWidth).
		Align(lipgloss.Center).
		Render(body)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// renderQuickActions renders the action row, stacking vertically on narrow
// terminals.
func (w Welcome) renderQuickActions(width int) string {
	rendered := make([]string, len(quickActions))
	for i, action := range quickActions {
		style := w.theme.QuickAction
		if w.focused && i == w.actionIdx {
			style = w.theme.QuickActionSelected
		}
		rendered[i] = style.Render(action.Label)
	}

	if width < 70 {
		return lipgloss.JoinVertical(lipgloss.Center, rendered...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderPromptPicker renders the vertical prompt-ideas list.
func (w Welcome) renderPromptPicker(width int) string {
	header := w.theme.WelcomeInfo.Render("Pick a prompt (enter: use, esc: back)")

	maxLine := width - 12
	if maxLine < 30 {
		maxLine = 30
	}

	lines := make([]string, 0, len(PromptIdeas)+2)
	lines = append(lines, header, "")

	for i, prompt := range PromptIdeas {
		display := prompt
		if len([]rune(display)) > maxLine {
			display = string([]rune(display)[:maxLine-3]) + "..."
		}

		if w.focused && i == w.promptIdx {
			lines = append(lines, w.theme.QuickActionSelected.Render("> "+display))
		} else {
			lines = append(lines, w.theme.QuickAction.Render("  "+display))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
