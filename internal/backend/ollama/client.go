// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

// Package ollama implements the backend contract against a local Ollama
// server's /api/chat endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sqlward-dev/sqlward/internal/backend"
	"github.com/sqlward-dev/sqlward/internal/conversation"
	sqlwarderr "github.com/sqlward-dev/sqlward/pkg/errors"
)

// Config holds connection and model settings for the client.
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	// JSONMode asks the model for structured JSON output.
	JSONMode bool
}

// Client is a non-streaming Ollama chat client.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a Client. The base URL is normalized; the model name is
// required by the server, not validated here.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// wire types for /api/chat

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Tools    []chatTool     `json:"tools,omitempty"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
}

type chatTool struct {
	Type     string           `json:"type"`
	Function chatToolFunction `json:"function"`
}

type chatToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type chatToolCall struct {
	Function chatToolCallFunction `json:"function"`
}

type chatToolCallFunction struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// Respond sends the transcript and tool schemas to the server and maps the
// reply into a conversation message. Ollama does not assign invocation IDs,
// so the client mints one per tool call.
func (c *Client) Respond(ctx context.Context, messages []conversation.Message, tools []backend.ToolDefinition) (conversation.Message, error) {
	req := chatRequest{
		Model:    c.cfg.Model,
		Messages: toWireMessages(messages),
		Tools:    toWireTools(tools),
		Stream:   false,
	}
	if c.cfg.JSONMode {
		req.Format = "json"
	}
	if c.cfg.Temperature > 0 {
		req.Options = map[string]any{"temperature": c.cfg.Temperature}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return conversation.Message{}, sqlwarderr.Wrapf(err, sqlwarderr.CodeBackendRequestFailure, "encoding chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return conversation.Message{}, sqlwarderr.Wrapf(err, sqlwarderr.CodeBackendRequestFailure, "building chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return conversation.Message{}, sqlwarderr.Wrapf(err, sqlwarderr.CodeBackendUpstreamFailure, "calling %s", c.cfg.BaseURL)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return conversation.Message{}, sqlwarderr.Wrapf(err, sqlwarderr.CodeBackendUpstreamFailure, "reading chat response")
	}
	if resp.StatusCode != http.StatusOK {
		return conversation.Message{}, sqlwarderr.Errorf(sqlwarderr.CodeBackendUpstreamFailure,
			"chat call failed: %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return conversation.Message{}, sqlwarderr.Wrapf(err, sqlwarderr.CodeBackendResponseInvalid, "decoding chat response")
	}
	if decoded.Error != "" {
		return conversation.Message{}, sqlwarderr.Errorf(sqlwarderr.CodeBackendUpstreamFailure, "server error: %s", decoded.Error)
	}

	return fromWireMessage(decoded.Message), nil
}

func toWireMessages(messages []conversation.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		wm := chatMessage{Role: string(m.Role), Content: m.Content}
		for _, tc := range m.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, chatToolCall{
				Function: chatToolCallFunction{Name: tc.Name, Arguments: tc.Arguments},
			})
		}
		out = append(out, wm)
	}
	return out
}

func toWireTools(tools []backend.ToolDefinition) []chatTool {
	out := make([]chatTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, chatTool{
			Type: "function",
			Function: chatToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}
	return out
}

func fromWireMessage(wm chatMessage) conversation.Message {
	if len(wm.ToolCalls) == 0 {
		return conversation.NewAssistantMessage(wm.Content)
	}

	calls := make([]conversation.ToolCall, 0, len(wm.ToolCalls))
	for _, tc := range wm.ToolCalls {
		calls = append(calls, conversation.ToolCall{
			ID:        uuid.New().String(),
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return conversation.NewAssistantToolCall(wm.Content, calls)
}
