// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package main

import (
	"log/slog"

	"github.com/sqlward-dev/sqlward/internal/agent"
	"github.com/sqlward-dev/sqlward/internal/backend/ollama"
	"github.com/sqlward-dev/sqlward/internal/config"
	"github.com/sqlward-dev/sqlward/internal/sqlguard"
	"github.com/sqlward-dev/sqlward/internal/tooling"
)

// buildEngine assembles the full agent stack from configuration: validator,
// guard, tool registry, chat backend, and the workflow engine.
func buildEngine(cfg *config.Config, logger *slog.Logger, recorder agent.Recorder) (*agent.Engine, error) {
	validator := sqlguard.NewValidator(sqlguard.Limits{
		MaxJoins:      cfg.SQL.MaxJoins,
		MaxSubqueries: cfg.SQL.MaxSubqueries,
	})

	registry := tooling.NewRegistry()
	registry.Register(tooling.NewSQLQueryConstructor(validator))

	client := ollama.NewClient(ollama.Config{
		BaseURL:     cfg.Backend.BaseURL,
		Model:       cfg.Backend.Model,
		Temperature: cfg.Backend.Temperature,
		JSONMode:    cfg.Backend.JSONMode,
	})

	return agent.NewEngine(agent.EngineConfig{
		Backend:       client,
		Registry:      registry,
		Guard:         agent.NewGuard(validator),
		MaxIterations: cfg.Agent.MaxIterations,
		MaxSteps:      cfg.Agent.MaxSteps,
		Recorder:      recorder,
		Logger:        logger,
	})
}
