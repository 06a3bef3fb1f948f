// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
)

func TestMessageBubble_UserMessage(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewUserMessage("deploy a chatbot for claims processing")

	bubble := NewMessageBubble(msg, theme)
	bubble.SetWidth(80)

	view := bubble.View()
	if !strings.Contains(view, "ME") {
		t.Error("user bubble missing sender label")
	}
	if !strings.Contains(view, "deploy a chatbot") {
		t.Error("user bubble missing message text")
	}
}

func TestMessageBubble_AssistantMessage(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewAssistantMessage("Here is a proposed architecture.")

	bubble := NewMessageBubble(msg, theme)
	bubble.SetWidth(80)

	view := bubble.View()
	if !strings.Contains(view, "GoML's Scribe") {
		t.Error("assistant bubble missing sender label")
	}
	if !strings.Contains(view, "proposed architecture") {
		t.Error("assistant bubble missing message text")
	}
}

func TestMessageBubble_LoadingUsesLoadingView(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewLoadingMessage("Analyzing your requirements...")

	lv := NewLoadingView(theme)
	lv.SetStatus("Analyzing your requirements...")
	for i := 0; i < 9; i++ {
		lv.AdvanceTyping()
	}

	bubble := NewMessageBubble(msg, theme)
	bubble.SetWidth(80)
	bubble.SetLoadingView(lv)

	view := bubble.View()
	if !strings.Contains(view, "Analyzing") {
		t.Errorf("loading bubble missing revealed status prefix: %q", view)
	}
	if strings.Contains(view, "requirements") {
		t.Error("loading bubble revealed more characters than typed")
	}
}

func TestMessageBubble_NilMessage(t *testing.T) {
	bubble := NewMessageBubble(nil, styles.NewTheme())
	if got := bubble.View(); got != "" {
		t.Errorf("nil message rendered %q, want empty", got)
	}
}

func TestDiagramRefs(t *testing.T) {
	testCases := []struct {
		name       string
		diagrams   *model.DiagramSet
		wantTitles []string
	}{
		{
			name:       "no diagrams",
			diagrams:   nil,
			wantTitles: nil,
		},
		{
			name: "both diagrams in order",
			diagrams: &model.DiagramSet{
				ArchitectureURL: "/img/arch.png",
				FlowchartURL:    "/img/flow.png",
				HasBothDiagrams: true,
			},
			wantTitles: []string{"AWS Architecture Diagram", "Process Flowchart"},
		},
		{
			name: "architecture only",
			diagrams: &model.DiagramSet{
				ArchitectureURL: "/img/arch.png",
				HasArchitecture: true,
			},
			wantTitles: []string{"AWS Architecture Diagram"},
		},
		{
			name: "flowchart only",
			diagrams: &model.DiagramSet{
				FlowchartURL: "/img/flow.png",
				HasFlowchart: true,
			},
			wantTitles: []string{"Process Flowchart"},
		},
		{
			name: "bare visualization",
			diagrams: &model.DiagramSet{
				VisualizationURL: "/img/vis.png",
			},
			wantTitles: []string{"Visualization"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := model.NewAssistantMessage("answer")
			msg.Diagrams = tc.diagrams

			refs := DiagramRefs(msg, nil)
			if len(refs) != len(tc.wantTitles) {
				t.Fatalf("got %d refs, want %d", len(refs), len(tc.wantTitles))
			}
			for i, want := range tc.wantTitles {
				if refs[i].Title != want {
					t.Errorf("ref[%d].Title = %q, want %q", i, refs[i].Title, want)
				}
			}
		})
	}
}

func TestDiagramRefs_ResolverQualifiesURLs(t *testing.T) {
	msg := model.NewAssistantMessage("answer")
	msg.Diagrams = &model.DiagramSet{
		ArchitectureURL: "/img/arch.png",
		HasArchitecture: true,
	}

	refs := DiagramRefs(msg, func(url string) string {
		return "http://backend:8000" + url
	})

	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1", len(refs))
	}
	if refs[0].URL != "http://backend:8000/img/arch.png" {
		t.Errorf("URL = %q, want host-qualified", refs[0].URL)
	}
}

func TestMessageBubble_DiagramPanels(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewAssistantMessage("A serverless design.")
	msg.Diagrams = &model.DiagramSet{
		ArchitectureURL: "/img/arch.png",
		FlowchartURL:    "/img/flow.png",
		HasBothDiagrams: true,
	}

	bubble := NewMessageBubble(msg, theme)
	bubble.SetWidth(100)

	view := bubble.View()
	if !strings.Contains(view, "AWS Architecture Diagram") {
		t.Error("missing architecture panel title")
	}
	if !strings.Contains(view, "Process Flowchart") {
		t.Error("missing flowchart panel title")
	}
	if !strings.Contains(view, "open viewer") {
		t.Error("missing open-viewer hint")
	}
}

func TestMessageList_Empty(t *testing.T) {
	ml := NewMessageList(styles.NewTheme())
	ml.SetWidth(80)

	view := ml.View()
	if !strings.Contains(view, "Ask anything you need") {
		t.Errorf("empty transcript placeholder missing: %q", view)
	}
}

func TestMessageList_RendersAllMessages(t *testing.T) {
	ml := NewMessageList(styles.NewTheme())
	ml.SetWidth(80)
	ml.SetMessages([]*model.Message{
		model.NewUserMessage("first question"),
		model.NewAssistantMessage("first answer"),
		model.NewUserMessage("second question"),
	})

	view := ml.View()
	for _, want := range []string{"first question", "first answer", "second question"} {
		if !strings.Contains(view, want) {
			t.Errorf("transcript missing %q", want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{"short line unchanged", "hello", 20, "hello"},
		{"wraps at width", "one two three four", 9, "one two\nthree\nfour"},
		{"preserves existing newlines", "a\nb", 20, "a\nb"},
		{"zero width returns input", "hello world", 0, "hello world"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := wordWrap(tc.input, tc.width)
			if got != tc.expected {
				t.Errorf("wordWrap(%q, %d) = %q, want %q", tc.input, tc.width, got, tc.expected)
			}
		})
	}
}

func TestMaxLineWidth(t *testing.T) {
	if got := maxLineWidth("ab\nabcd\nabc"); got != 4 {
		t.Errorf("maxLineWidth = %d, want 4", got)
	}
	if got := maxLineWidth(""); got != 0 {
		t.Errorf("maxLineWidth empty = %d, want 0", got)
	}
}

func TestFormatTime(t *testing.T) {
	testCases := []struct {
		name     string
		hour     int
		minute   int
		expected string
	}{
		{"morning", 9, 5, "9:05 AM"},
		{"noon", 12, 0, "12:00 PM"},
		{"afternoon", 15, 30, "3:30 PM"},
		{"midnight", 0, 15, "12:15 AM"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := time.Date(2025, 6, 1, tc.hour, tc.minute, 0, 0, time.UTC)
			if got := formatTime(ts); got != tc.expected {
				t.Errorf("formatTime = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	if got := formatDate(ts); got != "Jan 5" {
		t.Errorf("formatDate = %q, want %q", got, "Jan 5")
	}
}
