// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

// Package agent implements the think/act/observe/respond/guard workflow
// engine and the security guard that checkpoints every candidate reply.
package agent

import (
	"github.com/sqlward-dev/sqlward/internal/conversation"
	"github.com/sqlward-dev/sqlward/internal/sqlguard"
)

// Step identifies a state of the workflow machine.
type Step string

const (
	StepThink   Step = "think"
	StepAct     Step = "act"
	StepObserve Step = "observe"
	StepRespond Step = "respond"
	StepGuard   Step = "guard"
	StepDone    Step = "done"
)

// Violation records one extracted statement that failed validation.
type Violation struct {
	Statement string
	Result    sqlguard.ValidationResult
}

// Verdict is the guard's decision over a single message. Checked
// distinguishes "checked and safe" from "never checked"; an unchecked
// verdict defaults to safe (the explicit fail-open policy).
type Verdict struct {
	Safe       bool
	Violations []Violation
	Checked    bool
}

// verdictSafeDefault is the fail-open verdict used when a message carries
// no content or no detectable SQL.
func verdictSafeDefault() Verdict {
	return Verdict{Safe: true, Checked: true}
}

// RunState is the state threaded through one user turn. It is created fresh
// per turn, mutated only by the single in-flight sequence of steps, and
// discarded once the reply is emitted.
type RunState struct {
	Transcript *conversation.Transcript

	// Iterations counts think-steps; incremented exactly once per THINK,
	// never decremented.
	Iterations int

	// ShouldContinue is decided by OBSERVE: true iff the last tool result
	// reported an error the model should react to.
	ShouldContinue bool

	// LastToolOutput mirrors the content of the most recent tool message.
	LastToolOutput string

	// Verdict is the most recent guard decision for this turn.
	Verdict Verdict
}

// NewRunState creates the per-turn state around a transcript.
func NewRunState(transcript *conversation.Transcript) *RunState {
	return &RunState{Transcript: transcript}
}

// Reply returns the content of the last message, which after a completed
// run is the released assistant reply.
func (s *RunState) Reply() string {
	last, ok := s.Transcript.Last()
	if !ok {
		return ""
	}
	return last.Content
}
