// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/scribe-tui/internal/model"
)

// chromeHeight is the vertical space taken by the header, input bar, and
// status bar around the transcript area.
const chromeHeight = 7

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	// The diagram modal replaces the whole screen while open
	if m.imageViewer.IsOpen() {
		return m.imageViewer.View()
	}

	header := m.renderHeader()

	var body string
	if m.screen == screenWelcome {
		body = m.welcome.View()
	} else {
		body = m.viewport.View()
	}

	inputBar := m.theme.InputContainer.
		Width(m.width - 2).
		Render(m.input.View())

	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, inputBar, statusBar)
}

// =============================================================================
// CHROME
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render(model.RoleAssistant.DisplayName())

	subtitle := ""
	if m.width >= 60 {
		subtitle = "  " + m.theme.HeaderSubtitle.Render("AI solution architect")
	}

	return m.theme.Header.
		Width(m.width - 2).
		Render(title + subtitle)
}

func (m Model) renderStatusBar() string {
	if m.statusMsg != "" {
		bar := m.theme.StatusBar.Width(m.width).Render(m.statusMsg)
		return bar
	}

	var parts []string
	for _, b := range m.keyMap.ShortHelp() {
		parts = append(parts,
			m.theme.ShortcutKey.Render(b.Help().Key)+
				" "+
				m.theme.ShortcutDesc.Render(b.Help().Desc))
	}

	return m.theme.StatusBar.
		Width(m.width).
		Render(strings.Join(parts, "  "))
}
