// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

// Package backend defines the contract between the workflow engine and the
// language-model service that produces candidate messages.
package backend

import (
	"context"

	"github.com/sqlward-dev/sqlward/internal/conversation"
)

// ToolDefinition describes a tool capability for binding to the backend.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Responder turns a transcript plus the available tools into one candidate
// message. The returned assistant message may carry zero or more tool
// invocation requests. The engine makes no assumption about how the call is
// implemented; it treats it as blocking and synchronous.
type Responder interface {
	Respond(ctx context.Context, messages []conversation.Message, tools []ToolDefinition) (conversation.Message, error)
}
