// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the scribe TUI.

This package defines the color palette, theme, and animation timing used
throughout the application. All colors use Lip Gloss AdaptiveColor for
automatic light/dark terminal detection.

# Color System (colors.go)

## Primary Accent Colors

  - Indigo - Primary accent for user messages and focused elements
  - Green - Brand color for assistant highlights and success states
  - Amber - Warnings and degraded backend status
  - Rose - Errors and failed downloads

## Semantic Colors

Message bubbles and diagram panels use semantic color tokens:

	UserBubbleBg      - Background for user messages
	UserBubbleFg      - Text color for user messages
	AssistantBubbleBg - Background for assistant messages
	AssistantBubbleFg - Text color for assistant messages
	DiagramPanelBg    - Background for diagram panels

## Text Colors

Hierarchical text color system:

	TextPrimary   - Main content text
	TextSecondary - Supporting text
	TextMuted     - Timestamps, loading statuses
	TextInverse   - Text on colored backgrounds

# Theme System (theme.go)

The Theme struct provides runtime color adaptation:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}
	if theme.HasTrueColor {
		// Terminal supports 16M colors
	}

# Animation System (animations.go)

Spinner frame sets plus the timing constants for the loading message's
typing-effect reveal:

	TypingTickRate - per-character reveal interval (50ms)
	CaretBlinkRate - caret toggle interval (500ms)

# Usage Example

	import "github.com/jeranaias/scribe-tui/internal/ui/styles"

	headerStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextPrimary)

	theme := styles.NewTheme()
	label := theme.AssistantLabel.Render("GoML's Scribe")
*/
package styles
