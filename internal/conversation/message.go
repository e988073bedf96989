// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

// Package conversation holds the message and transcript model shared by the
// workflow engine, the tool registry, and the backend contract.
package conversation

// Role identifies the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Valid reports whether the role is a known message role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return true
	default:
		return false
	}
}

// ToolCall is a single tool invocation requested by the backend. It is
// consumed exactly once by the engine's ACT step.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Message is one entry in a transcript. The Role tag determines which
// fields are meaningful: ToolCalls only on assistant messages, ToolCallID
// only on tool messages. Messages are immutable once created; construct
// them through the New* helpers below.
type Message struct {
	Role      Role
	Content   string
	ToolCalls []ToolCall
	// ToolCallID links a tool result back to the assistant request it answers.
	ToolCallID string
}

// NewUserMessage returns a user-role message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewSystemMessage returns a system-role message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewAssistantMessage returns an assistant-role message with no tool calls.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewAssistantToolCall returns an assistant-role message carrying tool
// invocation requests.
func NewAssistantToolCall(content string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// NewToolMessage returns a tool-role message carrying the result of the
// invocation identified by callID.
func NewToolMessage(content, callID string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// HasToolCalls reports whether the message requests any tool invocations.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// Transcript is the ordered, append-only conversation history. It is never
// reordered or truncated during a run; the only structural exception is
// EnsurePreamble, which inserts the system preamble at position zero exactly
// once, before any reasoning step has consumed the transcript.
type Transcript struct {
	messages []Message
}

// NewTranscript returns a transcript seeded with the given messages.
func NewTranscript(messages ...Message) *Transcript {
	t := &Transcript{}
	t.messages = append(t.messages, messages...)
	return t
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// Len returns the number of messages held.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last returns the most recent message. The second return is false when the
// transcript is empty.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Messages returns a copy of the history in insertion order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// EnsurePreamble guarantees the transcript starts with a system preamble.
// It inserts one at the front when the first message is not system-role,
// and is a no-op otherwise, so repeated calls insert at most one preamble.
func (t *Transcript) EnsurePreamble(content string) {
	if len(t.messages) > 0 && t.messages[0].Role == RoleSystem {
		return
	}
	t.messages = append([]Message{NewSystemMessage(content)}, t.messages...)
}
