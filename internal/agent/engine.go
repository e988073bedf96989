// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sqlward-dev/sqlward/internal/backend"
	"github.com/sqlward-dev/sqlward/internal/conversation"
	"github.com/sqlward-dev/sqlward/internal/tooling"
	sqlwarderr "github.com/sqlward-dev/sqlward/pkg/errors"
)

// defaultMaxIterations bounds the observe→think reasoning cycle when no
// limit is configured.
const defaultMaxIterations = 3

// defaultMaxSteps bounds the total number of state transitions in one turn.
// The guard→think regeneration edge is deliberately not gated by the
// iteration limit; this overall budget is what keeps a backend that
// persistently re-emits unsafe content from looping the engine forever.
const defaultMaxSteps = 25

// systemPreamble is inserted at the head of every transcript, exactly once,
// before the first reasoning step.
const systemPreamble = `You are a helpful AI assistant with access to SQL validation tools.

CRITICAL SECURITY RULES FOR SQL QUERIES:
1. ALWAYS use the 'sql_query_constructor' tool to validate ANY SQL query.
2. NEVER write raw SQL directly in your response without validation.
3. If a user provides SQL, validate it with the tool before discussing it.
4. If you need to suggest SQL, run the tool FIRST, then present the validated result.

All SQL must go through the tool so it is checked for destructive operations and complexity limits.`

// errorResultPrefix tags tool results that report a failure. OBSERVE keys
// its continue decision off this prefix.
const errorResultPrefix = "Error:"

// Recorder persists transcript messages as they are produced. Appends are
// best-effort: a failing recorder never fails the turn.
type Recorder interface {
	Append(ctx context.Context, msg conversation.Message) error
}

// StepHooks provides optional test hooks, fired after each step's handler.
type StepHooks struct {
	OnThink   func()
	OnAct     func()
	OnObserve func()
	OnRespond func()
	OnGuard   func()
}

// EngineConfig holds dependencies for the Engine.
type EngineConfig struct {
	Backend       backend.Responder
	Registry      *tooling.Registry
	Guard         *Guard
	MaxIterations int
	MaxSteps      int
	Recorder      Recorder
	Logger        *slog.Logger
	Hooks         *StepHooks
}

// Engine is the workflow state machine. It drives one user turn through
// think/act/observe/respond/guard and owns all transition decisions.
type Engine struct {
	backend       backend.Responder
	registry      *tooling.Registry
	guard         *Guard
	maxIterations int
	maxSteps      int
	recorder      Recorder
	logger        *slog.Logger
	hooks         *StepHooks
}

// NewEngine creates an Engine with the given dependencies.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Backend == nil {
		return nil, sqlwarderr.New(sqlwarderr.CodeAgentRunInvalidInput, "Backend is required")
	}
	if cfg.Registry == nil {
		return nil, sqlwarderr.New(sqlwarderr.CodeAgentRunInvalidInput, "Registry is required")
	}
	if cfg.Guard == nil {
		return nil, sqlwarderr.New(sqlwarderr.CodeAgentRunInvalidInput, "Guard is required")
	}

	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		backend:       cfg.Backend,
		registry:      cfg.Registry,
		guard:         cfg.Guard,
		maxIterations: maxIterations,
		maxSteps:      maxSteps,
		recorder:      cfg.Recorder,
		logger:        logger,
		hooks:         cfg.Hooks,
	}, nil
}

// Run executes one user turn: a fresh RunState is threaded through the
// machine from THINK until DONE, and the final state is returned. The last
// transcript message is the released reply.
func (e *Engine) Run(ctx context.Context, input string) (*RunState, error) {
	if strings.TrimSpace(input) == "" {
		return nil, sqlwarderr.New(sqlwarderr.CodeAgentRunInvalidInput, "empty user input")
	}

	transcript := conversation.NewTranscript()
	state := NewRunState(transcript)
	e.appendMessage(ctx, state, conversation.NewUserMessage(input))

	step := StepThink
	for taken := 0; step != StepDone; taken++ {
		if taken >= e.maxSteps {
			return nil, sqlwarderr.New(sqlwarderr.CodeAgentStepBudgetExceeded,
				"step budget exhausted before the turn completed",
				sqlwarderr.Field("max_steps", e.maxSteps),
				sqlwarderr.FieldStep(string(step)),
			)
		}

		next, err := e.execute(ctx, step, state)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("step transition",
			slog.String("from", string(step)),
			slog.String("to", string(next)),
			slog.Int("iterations", state.Iterations),
		)
		step = next
	}

	return state, nil
}

// execute runs one step's handler and returns the next step.
func (e *Engine) execute(ctx context.Context, step Step, state *RunState) (Step, error) {
	switch step {
	case StepThink:
		if err := e.think(ctx, state); err != nil {
			return "", err
		}
		e.fire(step)
		if last, ok := state.Transcript.Last(); ok && last.HasToolCalls() {
			return StepAct, nil
		}
		return StepRespond, nil

	case StepAct:
		e.act(ctx, state)
		e.fire(step)
		return StepObserve, nil

	case StepObserve:
		e.observe(state)
		e.fire(step)
		if state.ShouldContinue && state.Iterations < e.maxIterations {
			return StepThink, nil
		}
		return StepRespond, nil

	case StepRespond:
		// The reply is already the last message produced by THINK;
		// nothing to do but hand over to the guard.
		e.fire(step)
		return StepGuard, nil

	case StepGuard:
		e.runGuard(state)
		e.fire(step)
		if state.Verdict.Safe {
			return StepDone, nil
		}
		// Unsafe content forces regeneration. This edge is not gated by
		// the iteration limit; the run-level step budget bounds it.
		return StepThink, nil

	default:
		return "", sqlwarderr.New(sqlwarderr.CodeAgentUnknownStep, "unknown step", sqlwarderr.FieldStep(string(step)))
	}
}

// think ensures the preamble, makes exactly one backend call with the full
// transcript and the registry's tool schemas, and appends the produced
// message. Backend failure is fatal for the turn.
func (e *Engine) think(ctx context.Context, state *RunState) error {
	state.Transcript.EnsurePreamble(systemPreamble)

	msg, err := e.backend.Respond(ctx, state.Transcript.Messages(), e.registry.Definitions())
	if err != nil {
		return sqlwarderr.Wrap(err, sqlwarderr.CodeAgentRunFailure, "backend call failed", sqlwarderr.FieldStep(string(StepThink)))
	}

	e.appendMessage(ctx, state, msg)
	state.Iterations++
	return nil
}

// act dispatches the single most recent tool invocation request (only the
// first when several are present; multi-call fan-out is not supported) and
// appends exactly one tool message. Dispatch failures are captured as
// Error:-prefixed results and never raised past this boundary.
func (e *Engine) act(ctx context.Context, state *RunState) {
	last, ok := state.Transcript.Last()
	if !ok || !last.HasToolCalls() {
		state.LastToolOutput = errorResultPrefix + " no tool invocation requested"
		e.appendMessage(ctx, state, conversation.NewToolMessage(state.LastToolOutput, ""))
		return
	}

	call := last.ToolCalls[0]
	content, err := e.registry.Dispatch(ctx, call.Name, call.Arguments)
	if err != nil {
		content = errorResultPrefix + " " + err.Error()
		e.logger.Warn("tool dispatch failed",
			slog.String("tool", call.Name),
			slog.Any("error", err),
		)
	}

	state.LastToolOutput = content
	e.appendMessage(ctx, state, conversation.NewToolMessage(content, call.ID))
}

// observe decides whether to keep reasoning: only an error-tagged tool
// result warrants another think cycle. Pure function of state.
func (e *Engine) observe(state *RunState) {
	state.ShouldContinue = strings.HasPrefix(state.LastToolOutput, errorResultPrefix)
}

// runGuard checks the last message and records the verdict.
func (e *Engine) runGuard(state *RunState) {
	last, ok := state.Transcript.Last()
	if !ok {
		state.Verdict = verdictSafeDefault()
		return
	}

	state.Verdict = e.guard.Check(last)
	if !state.Verdict.Safe {
		statements := make([]string, 0, len(state.Verdict.Violations))
		for _, v := range state.Verdict.Violations {
			statements = append(statements, v.Statement)
		}
		e.logger.Warn("guard rejected candidate reply",
			slog.Int("violations", len(state.Verdict.Violations)),
			slog.Any("statements", statements),
		)
	}
}

// appendMessage appends to the transcript and records the message. The
// recorder is best-effort; failures are logged and swallowed.
func (e *Engine) appendMessage(ctx context.Context, state *RunState, msg conversation.Message) {
	state.Transcript.Append(msg)
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Append(ctx, msg); err != nil {
		e.logger.Warn("history append failed",
			slog.String("role", string(msg.Role)),
			slog.Any("error", err),
		)
	}
}

func (e *Engine) fire(step Step) {
	if e.hooks == nil {
		return
	}

	var fn func()
	switch step {
	case StepThink:
		fn = e.hooks.OnThink
	case StepAct:
		fn = e.hooks.OnAct
	case StepObserve:
		fn = e.hooks.OnObserve
	case StepRespond:
		fn = e.hooks.OnRespond
	case StepGuard:
		fn = e.hooks.OnGuard
	}

	if fn != nil {
		fn()
	}
}
