// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// LOADING SEQUENCER
// =============================================================================

// statusInterval is how long each loading status is displayed before the
// sequencer advances to the next one.
const statusInterval = 2000 * time.Millisecond

// loadingStatuses is the fixed rotation shown while a request is in flight.
var loadingStatuses = []string{
	"Analyzing your requirements...",
	"Understanding the context...",
	"Processing technical specifications...",
	"Generating solution architecture...",
	"Creating visual diagrams...",
	"Optimizing the solution...",
	"Finalizing recommendations...",
}

// LoadingSequencer owns the timer that rotates the loading placeholder's
// status text. Each Start bumps the run token; ticks scheduled by an earlier
// run carry a stale token and are ignored, so a finished or reset request
// can never write into a later one's placeholder.
type LoadingSequencer struct {
	stage  int
	run    int
	active bool
}

// NewLoadingSequencer creates an idle sequencer.
func NewLoadingSequencer() *LoadingSequencer {
	return &LoadingSequencer{}
}

// Start resets the sequence to the first status and schedules the first
// advance. It returns the stage-0 status and the tick command.
func (s *LoadingSequencer) Start() (string, tea.Cmd) {
	s.run++
	s.stage = 0
	s.active = true
	return loadingStatuses[0], s.tick()
}

// Stop halts the rotation. Idempotent; in-flight ticks from the stopped run
// are dropped by Advance.
func (s *LoadingSequencer) Stop() {
	s.active = false
}

// Active reports whether the sequencer is running.
func (s *LoadingSequencer) Active() bool {
	return s.active
}

// Stage returns the index of the status currently displayed.
func (s *LoadingSequencer) Stage() int {
	return s.stage
}

// Run returns the current run token. Animation timers started alongside the
// sequencer tag their ticks with it so they die with the run.
func (s *LoadingSequencer) Run() int {
	return s.run
}

// Advance handles a sequencer tick. It returns the new status and the next
// tick command, or ok=false when the tick is stale or the sequencer is
// stopped.
func (s *LoadingSequencer) Advance(msg sequencerTickMsg) (string, tea.Cmd, bool) {
	if !s.active || msg.Run != s.run {
		return "", nil, false
	}
	s.stage = (s.stage + 1) % len(loadingStatuses)
	return loadingStatuses[s.stage], s.tick(), true
}

func (s *LoadingSequencer) tick() tea.Cmd {
	run := s.run
	return tea.Tick(statusInterval, func(time.Time) tea.Msg {
		return sequencerTickMsg{Run: run}
	})
}
