// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

// Package tooling provides the tool capability registry and the built-in
// tools shipped with the agent.
package tooling

import (
	"context"
	"sync"

	"github.com/sqlward-dev/sqlward/internal/backend"
	sqlwarderr "github.com/sqlward-dev/sqlward/pkg/errors"
)

// Tool is a capability the agent can invoke. Invoke may fail; the engine
// reports failures back into the transcript rather than propagating them.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// Registry is a thread-safe name→capability lookup. It is constructed once
// and injected into the engine; there is no package-level instance.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register stores the tool under its declared name, overwriting any prior
// registration of the same name.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Definitions returns descriptors for every registered tool, in registration
// order, for binding to the backend.
func (r *Registry) Definitions() []backend.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]backend.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, backend.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return defs
}

// Dispatch looks up a tool by name and invokes it.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (string, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return "", sqlwarderr.New(sqlwarderr.CodeToolNotFound, "unknown tool: "+name, sqlwarderr.FieldTool(name))
	}

	out, err := tool.Invoke(ctx, args)
	if err != nil {
		return "", sqlwarderr.Wrap(err, sqlwarderr.CodeToolInvokeFailure, "invoking tool "+name, sqlwarderr.FieldTool(name))
	}
	return out, nil
}
