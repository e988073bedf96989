// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package conversation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlward-dev/sqlward/internal/conversation"
)

func TestMessageConstructors(t *testing.T) {
	calls := []conversation.ToolCall{{ID: "c1", Name: "tool", Arguments: map[string]any{"q": "x"}}}

	tests := []struct {
		name          string
		msg           conversation.Message
		wantRole      conversation.Role
		wantToolCalls bool
	}{
		{"user", conversation.NewUserMessage("hi"), conversation.RoleUser, false},
		{"system", conversation.NewSystemMessage("rules"), conversation.RoleSystem, false},
		{"assistant", conversation.NewAssistantMessage("hello"), conversation.RoleAssistant, false},
		{"assistant with tool calls", conversation.NewAssistantToolCall("", calls), conversation.RoleAssistant, true},
		{"tool", conversation.NewToolMessage("result", "c1"), conversation.RoleTool, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRole, tt.msg.Role)
			assert.True(t, tt.msg.Role.Valid())
			assert.Equal(t, tt.wantToolCalls, tt.msg.HasToolCalls())
		})
	}

	assert.False(t, conversation.Role("robot").Valid())
	assert.Equal(t, "c1", conversation.NewToolMessage("result", "c1").ToolCallID)
}

func TestTranscript_AppendAndLast(t *testing.T) {
	tr := conversation.NewTranscript()

	_, ok := tr.Last()
	assert.False(t, ok)
	assert.Zero(t, tr.Len())

	tr.Append(conversation.NewUserMessage("one"))
	tr.Append(conversation.NewAssistantMessage("two"))

	assert.Equal(t, 2, tr.Len())
	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, "two", last.Content)
}

func TestTranscript_MessagesReturnsCopy(t *testing.T) {
	tr := conversation.NewTranscript(conversation.NewUserMessage("original"))

	got := tr.Messages()
	got[0].Content = "mutated"

	fresh := tr.Messages()
	assert.Equal(t, "original", fresh[0].Content)
}

func TestTranscript_EnsurePreamble(t *testing.T) {
	t.Run("inserts at front", func(t *testing.T) {
		tr := conversation.NewTranscript(conversation.NewUserMessage("hi"))
		tr.EnsurePreamble("rules")

		msgs := tr.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, conversation.RoleSystem, msgs[0].Role)
		assert.Equal(t, "rules", msgs[0].Content)
		assert.Equal(t, conversation.RoleUser, msgs[1].Role)
	})

	t.Run("repeated calls insert once", func(t *testing.T) {
		tr := conversation.NewTranscript(conversation.NewUserMessage("hi"))
		tr.EnsurePreamble("rules")
		tr.EnsurePreamble("rules")
		tr.EnsurePreamble("other rules")

		var systems int
		for _, m := range tr.Messages() {
			if m.Role == conversation.RoleSystem {
				systems++
			}
		}
		assert.Equal(t, 1, systems)
	})

	t.Run("existing system preamble kept", func(t *testing.T) {
		tr := conversation.NewTranscript(conversation.NewSystemMessage("mine"))
		tr.EnsurePreamble("ignored")

		msgs := tr.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "mine", msgs[0].Content)
	})
}
