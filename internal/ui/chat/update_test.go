// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/scribe-tui/internal/backend"
	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/ui/components"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
)

func newTestModel() Model {
	cfg := config.Default()
	client := backend.NewClient(cfg.Backend.URL).WithMaxRetries(1)
	m := New(styles.NewTheme(), cfg, client)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func submit(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	updated, cmd := m.submitInput()
	return updated.(Model), cmd
}

func TestSubmit_BlankIsNoOp(t *testing.T) {
	m := newTestModel()

	m2, cmd := submit(t, m, "   ")
	if cmd != nil {
		t.Error("blank submit produced a command")
	}
	if m2.session.MessageCount() != 0 {
		t.Error("blank submit touched the session")
	}
	if m2.screen != screenWelcome {
		t.Error("blank submit left the welcome screen")
	}
}

func TestSubmit_AppendsUserAndLoading(t *testing.T) {
	m := newTestModel()

	m, cmd := submit(t, m, "design a data lake")
	if cmd == nil {
		t.Fatal("submit produced no command")
	}
	if m.screen != screenChat {
		t.Error("submit did not switch to the chat screen")
	}

	msgs := m.session.Messages()
	if len(msgs) != 2 {
		t.Fatalf("session has %d messages, want user + loading", len(msgs))
	}
	if msgs[0].Sender != model.RoleUser || msgs[0].Text != "design a data lake" {
		t.Error("first message is not the submitted text")
	}
	if !msgs[1].IsLoading() {
		t.Error("second message is not the loading placeholder")
	}
	if msgs[1].Text != "Analyzing your requirements..." {
		t.Errorf("placeholder status = %q", msgs[1].Text)
	}
	if m.input.Value() != "" {
		t.Error("input not cleared after submit")
	}
	if !m.sequencer.Active() {
		t.Error("sequencer not started")
	}
}

func TestSubmit_BlockedWhileLoading(t *testing.T) {
	m := newTestModel()
	m, _ = submit(t, m, "first question")

	m2, cmd := submit(t, m, "second question")
	if cmd != nil {
		t.Error("second submit produced a command while a request is in flight")
	}
	if m2.session.MessageCount() != 2 {
		t.Errorf("session has %d messages, want 2", m2.session.MessageCount())
	}
}

func TestChatResponse_ResolvesLoading(t *testing.T) {
	m := newTestModel()
	m, _ = submit(t, m, "suggest an architecture")

	diagrams := &model.DiagramSet{
		ArchitectureURL: "/img/arch.png",
		HasArchitecture: true,
	}
	updated, _ := m.Update(ChatResponseMsg{
		Gen:    m.session.Generation(),
		Result: &backend.ChatResult{Answer: "Use S3 and Athena.", Diagrams: diagrams},
	})
	m = updated.(Model)

	if m.sequencer.Active() {
		t.Error("sequencer still active after response")
	}
	if m.session.LoadingMessage() != nil {
		t.Error("loading placeholder survived the response")
	}

	last := m.session.LastMessage()
	if last == nil || last.Sender != model.RoleAssistant {
		t.Fatal("no assistant reply appended")
	}
	if last.Text != "Use S3 and Athena." {
		t.Errorf("reply text = %q", last.Text)
	}
	if last.Diagrams == nil || last.Diagrams.Mode() != model.DiagramArchitecture {
		t.Error("diagrams not attached to the reply")
	}
}

func TestChatResponse_StaleGenerationDropped(t *testing.T) {
	m := newTestModel()
	m, _ = submit(t, m, "question before reset")
	staleGen := m.session.Generation()

	updated, _ := m.resetToWelcome()
	m = updated.(Model)

	updated, _ = m.Update(ChatResponseMsg{
		Gen:    staleGen,
		Result: &backend.ChatResult{Answer: "too late"},
	})
	m = updated.(Model)

	if m.session.MessageCount() != 0 {
		t.Error("stale response reached the transcript")
	}
	if m.screen != screenWelcome {
		t.Error("stale response moved the screen")
	}
}

func TestChatError_ApologeticReply(t *testing.T) {
	m := newTestModel()
	m, _ = submit(t, m, "question that will fail")

	updated, _ := m.Update(ChatErrorMsg{
		Gen: m.session.Generation(),
		Err: errors.New("connection refused"),
	})
	m = updated.(Model)

	last := m.session.LastMessage()
	if last == nil || last.Sender != model.RoleAssistant {
		t.Fatal("no assistant reply appended")
	}
	if !strings.HasPrefix(last.Text, "I'm sorry, I encountered an error") {
		t.Errorf("reply = %q", last.Text)
	}
	if !strings.Contains(last.Text, "connection refused") {
		t.Error("reply does not embed the error text")
	}
	if m.sequencer.Active() {
		t.Error("sequencer still active after error")
	}
}

func TestChatError_StaleGenerationDropped(t *testing.T) {
	m := newTestModel()
	m, _ = submit(t, m, "question")
	staleGen := m.session.Generation()

	updated, _ := m.resetToWelcome()
	m = updated.(Model)

	updated, _ = m.Update(ChatErrorMsg{Gen: staleGen, Err: errors.New("boom")})
	m = updated.(Model)

	if m.session.MessageCount() != 0 {
		t.Error("stale error reached the transcript")
	}
}

func TestResetToWelcome(t *testing.T) {
	m := newTestModel()
	m, _ = submit(t, m, "a question")

	updated, _ := m.resetToWelcome()
	m = updated.(Model)

	if m.screen != screenWelcome {
		t.Error("not back on the welcome screen")
	}
	if m.session.MessageCount() != 0 {
		t.Error("session not cleared")
	}
	if m.sequencer.Active() {
		t.Error("sequencer still running")
	}
	if m.input.Placeholder != placeholderWelcome {
		t.Errorf("placeholder = %q", m.input.Placeholder)
	}

	// Idempotent
	updated, _ = m.resetToWelcome()
	m = updated.(Model)
	if m.session.MessageCount() != 0 || m.screen != screenWelcome {
		t.Error("second reset changed state")
	}
}

func TestSelectQuickAction_PrefillsWithoutSubmit(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(components.PromptSelectedMsg{Prompt: components.PromptIdeas[0]})
	m = updated.(Model)

	if m.input.Value() != components.PromptIdeas[0] {
		t.Errorf("input = %q", m.input.Value())
	}
	if m.session.MessageCount() != 0 {
		t.Error("quick action auto-submitted")
	}
	if m.screen != screenWelcome {
		t.Error("quick action left the welcome screen")
	}
}

func TestSequencerTick_RotatesPlaceholderText(t *testing.T) {
	m := newTestModel()
	m, _ = submit(t, m, "question")

	updated, cmd := m.Update(sequencerTickMsg{Run: m.sequencer.Run()})
	m = updated.(Model)

	if cmd == nil {
		t.Error("tick did not reschedule")
	}
	loading := m.session.LoadingMessage()
	if loading == nil {
		t.Fatal("placeholder gone")
	}
	if loading.Text != "Understanding the context..." {
		t.Errorf("placeholder = %q", loading.Text)
	}
	if loading.Loading.Stage != 1 {
		t.Errorf("stage = %d, want 1", loading.Loading.Stage)
	}
}

func TestSequencerTick_AfterStopIsDropped(t *testing.T) {
	m := newTestModel()
	m, _ = submit(t, m, "question")
	staleRun := m.sequencer.Run()

	updated, _ := m.Update(ChatResponseMsg{
		Gen:    m.session.Generation(),
		Result: &backend.ChatResult{Answer: "done"},
	})
	m = updated.(Model)

	before := m.session.LastMessage().Text
	updated, _ = m.Update(sequencerTickMsg{Run: staleRun})
	m = updated.(Model)

	if m.session.LastMessage().Text != before {
		t.Error("stale tick rewrote a resolved message")
	}
}

func TestViewerKeys(t *testing.T) {
	m := newTestModel()
	m, _ = submit(t, m, "question")

	updated, _ := m.Update(ChatResponseMsg{
		Gen: m.session.Generation(),
		Result: &backend.ChatResult{
			Answer: "see diagram",
			Diagrams: &model.DiagramSet{
				FlowchartURL: "/img/flow.png",
				HasFlowchart: true,
			},
		},
	})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = updated.(Model)
	if !m.imageViewer.IsOpen() {
		t.Fatal("ctrl+o did not open the viewer")
	}
	if m.imageViewer.Title() != "Process Flowchart" {
		t.Errorf("viewer title = %q", m.imageViewer.Title())
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.imageViewer.IsOpen() {
		t.Error("esc did not close the viewer")
	}
}

func TestOpenDiagram_NoDiagrams(t *testing.T) {
	m := newTestModel()
	m, _ = submit(t, m, "question")

	updated, _ := m.Update(ChatResponseMsg{
		Gen:    m.session.Generation(),
		Result: &backend.ChatResult{Answer: "plain answer"},
	})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = updated.(Model)
	if m.imageViewer.IsOpen() {
		t.Error("viewer opened with no diagrams in the transcript")
	}
	if m.statusMsg == "" {
		t.Error("no status feedback for missing diagrams")
	}
}

func TestView_WelcomeAndChat(t *testing.T) {
	m := newTestModel()

	view := m.View()
	if !strings.Contains(view, "Hey User!") {
		t.Error("welcome view missing greeting")
	}
	if !strings.Contains(view, placeholderWelcome) {
		t.Error("welcome view missing input placeholder")
	}

	m, _ = submit(t, m, "question")
	view = m.View()
	if !strings.Contains(view, "question") {
		t.Error("chat view missing transcript")
	}
	if strings.Contains(view, "Hey User!") {
		t.Error("chat view still shows the greeting")
	}
}
