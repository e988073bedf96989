// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlward-dev/sqlward/internal/agent"
	"github.com/sqlward-dev/sqlward/internal/conversation"
	"github.com/sqlward-dev/sqlward/internal/sqlguard"
)

func newTestGuard() *agent.Guard {
	return agent.NewGuard(sqlguard.NewValidator(sqlguard.Limits{}))
}

func TestGuard_Check(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		wantSafe       bool
		wantViolations int
	}{
		{
			name:     "safe/plain prose",
			content:  "Here is a summary of your data model.",
			wantSafe: true,
		},
		{
			name:     "safe/empty content",
			content:  "",
			wantSafe: true,
		},
		{
			name:     "safe/conversational verbs",
			content:  "You should select a plan and update me tomorrow.",
			wantSafe: true,
		},
		{
			name:     "safe/valid select statement",
			content:  "Run this:\n```sql\nSELECT * FROM users WHERE active = 1\n```",
			wantSafe: true,
		},
		{
			name:           "unsafe/fenced destructive statement",
			content:        "Sure:\n```sql\nDROP TABLE users;\n```",
			wantSafe:       false,
			wantViolations: 1,
		},
		{
			name:           "unsafe/inline delete",
			content:        "Just run DELETE FROM users WHERE id = 1 and you're done.",
			wantSafe:       false,
			wantViolations: 1,
		},
		{
			name: "unsafe/mixed safe and destructive",
			content: "First:\n```sql\nSELECT * FROM users\n```\nthen:\n" +
				"```sql\nTRUNCATE TABLE users\n```",
			wantSafe:       false,
			wantViolations: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := newTestGuard().Check(conversation.NewAssistantMessage(tt.content))

			assert.True(t, verdict.Checked, "verdict must always be marked checked")
			assert.Equal(t, tt.wantSafe, verdict.Safe)
			assert.Len(t, verdict.Violations, tt.wantViolations)
		})
	}
}

func TestGuard_ViolationCarriesStatement(t *testing.T) {
	verdict := newTestGuard().Check(conversation.NewAssistantMessage("```sql\nDROP TABLE users;\n```"))

	require.False(t, verdict.Safe)
	require.Len(t, verdict.Violations, 1)
	assert.Equal(t, "DROP TABLE users;", verdict.Violations[0].Statement)
	assert.NotEmpty(t, verdict.Violations[0].Result.Errors)
}

// Tool messages get the same scrutiny as assistant messages: the guard keys
// off content, not role.
func TestGuard_ChecksToolMessages(t *testing.T) {
	verdict := newTestGuard().Check(conversation.NewToolMessage("result: DROP TABLE users now", "c1"))

	assert.True(t, verdict.Checked)
	assert.False(t, verdict.Safe)
}
