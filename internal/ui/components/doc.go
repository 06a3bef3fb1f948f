// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the scribe TUI.

This package contains the styled, interactive pieces the chat screen is
assembled from, built on top of the Bubble Tea and Lip Gloss libraries.

# Core Components

## Transcript

MessageBubble (message.go) - Styled bubbles for user and assistant messages,
including diagram panels and the loading placeholder.
MessageList (message.go) - Renders the full transcript as stacked bubbles.
ChatViewport (viewport.go) - Scrollable transcript area with bottom-pinning
and a jump-to-latest indicator.
Markdown (markdown.go) - Glamour-backed markdown rendering with a plain-text
fallback.

## Feedback

LoadingView (loading.go) - Typewriter reveal of the assistant's thinking
status with blinking caret and dots spinner.

## Overlays

Welcome (welcome.go) - Pre-conversation greeting with quick actions and the
prompt-ideas picker.
ImageViewer (imageviewer.go) - Diagram modal with download and open-in-browser
actions.

# Theme Integration

All components accept a *styles.Theme for consistent styling:

	theme := styles.NewTheme()
	vp := components.NewChatViewport(theme)
	vp.SetSize(80, 24)
	view := vp.View()

# Bubble Tea Integration

Interactive components implement the Bubble Tea model shape:

	type Component interface {
		Init() tea.Cmd
		Update(tea.Msg) (Component, tea.Cmd)
		View() string
	}

Commands that do work off the UI thread (diagram downloads, browser opens)
report back through typed messages such as DownloadResultMsg and OpenURLMsg.
*/
package components
