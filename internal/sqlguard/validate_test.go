// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package sqlguard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlward-dev/sqlward/internal/sqlguard"
)

func TestValidator_Validate(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		limits sqlguard.Limits

		wantValid      bool
		wantErrs       []string
		wantJoins      int
		wantSubqueries int
	}{
		{
			name:      "select/simple query valid",
			query:     "SELECT * FROM users",
			wantValid: true,
		},
		{
			name: "select/joins at the limit valid",
			query: "SELECT * FROM a " +
				"JOIN b ON a.id = b.id " +
				"JOIN c ON b.id = c.id " +
				"JOIN d ON c.id = d.id",
			wantValid: true,
			wantJoins: 3,
		},
		{
			name: "select/joins over the limit rejected",
			query: "SELECT * FROM a " +
				"JOIN b ON a.id = b.id " +
				"JOIN c ON b.id = c.id " +
				"JOIN d ON c.id = d.id " +
				"JOIN e ON d.id = e.id",
			wantValid: false,
			wantErrs:  []string{"too many JOINs: 4 (max: 3)"},
			wantJoins: 4,
		},
		{
			name:      "select/left join counts once",
			query:     "SELECT * FROM a LEFT JOIN b ON a.id = b.id",
			wantValid: true,
			wantJoins: 1,
		},
		{
			name:           "select/subqueries at the limit valid",
			query:          "SELECT * FROM t WHERE a IN (SELECT x FROM u) AND b IN (SELECT y FROM v)",
			limits:         sqlguard.Limits{MaxJoins: 3, MaxSubqueries: 2},
			wantValid:      true,
			wantSubqueries: 2,
		},
		{
			name: "select/subqueries over the limit rejected",
			query: "SELECT * FROM t WHERE a IN (SELECT x FROM u) " +
				"AND b IN (SELECT y FROM v) AND c IN (SELECT z FROM w)",
			limits:         sqlguard.Limits{MaxJoins: 3, MaxSubqueries: 2},
			wantValid:      false,
			wantErrs:       []string{"too many subqueries: 3 (max: 2)"},
			wantSubqueries: 3,
		},
		{
			name:           "select/nested subqueries count each level",
			query:          "SELECT * FROM (SELECT * FROM (SELECT id FROM t))",
			wantValid:      true,
			wantSubqueries: 2,
		},
		{
			name:      "type/delete rejected",
			query:     "DELETE FROM users WHERE id = 1",
			wantValid: false,
			wantErrs:  []string{"only SELECT statements are allowed, got: DELETE"},
		},
		{
			name:      "type/drop rejected",
			query:     "DROP TABLE users",
			wantValid: false,
			wantErrs:  []string{"only SELECT statements are allowed, got: DROP"},
		},
		{
			name:      "blocklist/piggybacked drop rejected",
			query:     "SELECT * FROM users; DROP TABLE users",
			wantValid: false,
			wantErrs:  []string{"blocked keyword found: DROP"},
		},
		{
			name:      "blocklist/keyword inside string literal ignored",
			query:     "SELECT * FROM comments WHERE body = 'DROP TABLE users'",
			wantValid: true,
		},
		{
			name:      "complexity/joins counted inside non-select groups",
			query:     "SELECT * FROM (a JOIN b ON a.id = b.id)",
			wantValid: true,
			wantJoins: 1,
		},
		{
			name:      "complexity/in list is not a subquery",
			query:     "SELECT * FROM t WHERE id IN (1, 2, 3)",
			wantValid: true,
		},
		{
			name:      "parse/empty statement rejected",
			query:     "   ",
			wantValid: false,
			wantErrs:  []string{"empty or invalid SQL statement"},
		},
		{
			name:      "parse/comment-only statement rejected",
			query:     "-- just a comment",
			wantValid: false,
			wantErrs:  []string{"empty or invalid SQL statement"},
		},
		{
			name:      "parse/unbalanced parenthesis rejected",
			query:     "SELECT * FROM (users",
			wantValid: false,
			wantErrs:  []string{"SQL parsing failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := sqlguard.NewValidator(tt.limits)
			result := v.Validate(tt.query)

			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Equal(t, tt.wantJoins, result.JoinCount, "join count")
			assert.Equal(t, tt.wantSubqueries, result.SubqueryCount, "subquery count")
			for _, want := range tt.wantErrs {
				found := false
				for _, got := range result.Errors {
					if strings.Contains(got, want) {
						found = true
						break
					}
				}
				assert.True(t, found, "expected error containing %q, got %v", want, result.Errors)
			}
			if tt.wantValid {
				assert.Empty(t, result.Errors)
			}
		})
	}
}

// Non-SELECT statements short-circuit before the complexity layers: a DELETE
// stuffed with joins still reports only the type violation.
func TestValidator_TypeCheckShortCircuits(t *testing.T) {
	v := sqlguard.NewValidator(sqlguard.Limits{MaxJoins: 1, MaxSubqueries: 1})
	result := v.Validate("DELETE FROM a JOIN b ON a.id = b.id JOIN c ON b.id = c.id")

	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "only SELECT statements are allowed, got: DELETE", result.Errors[0])
	assert.Zero(t, result.JoinCount)
}

// Joins are counted through every group; subqueries only through groups that
// are themselves SELECTs.
func TestValidator_CounterAsymmetry(t *testing.T) {
	v := sqlguard.NewValidator(sqlguard.Limits{})
	result := v.Validate("SELECT * FROM (a JOIN b ON a.id = b.id) WHERE x IN (SELECT y FROM (c JOIN d ON c.id = d.id))")

	require.True(t, result.Valid)
	assert.Equal(t, 2, result.JoinCount)
	assert.Equal(t, 1, result.SubqueryCount)
}

func TestValidator_Formatted(t *testing.T) {
	v := sqlguard.NewValidator(sqlguard.Limits{})
	result := v.Validate("select id from users where id = 1")

	require.True(t, result.Valid)
	assert.Equal(t, "SELECT id\nFROM users\nWHERE id = 1", result.Formatted)
}

func TestNewValidator_Defaults(t *testing.T) {
	assert.Equal(t, sqlguard.DefaultLimits(), sqlguard.NewValidator(sqlguard.Limits{}).Limits())

	partial := sqlguard.NewValidator(sqlguard.Limits{MaxJoins: 10})
	assert.Equal(t, sqlguard.Limits{MaxJoins: 10, MaxSubqueries: 5}, partial.Limits())
}
