// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package tooling

import (
	"context"
	"fmt"
	"strings"

	"github.com/sqlward-dev/sqlward/internal/sqlguard"
	sqlwarderr "github.com/sqlward-dev/sqlward/pkg/errors"
)

// SQLQueryConstructorName is the registered name of the built-in validator
// tool the system prompt instructs the model to call.
const SQLQueryConstructorName = "sql_query_constructor"

// SQLQueryConstructor validates and analyzes SELECT queries without
// executing them, reporting policy violations and complexity metrics.
type SQLQueryConstructor struct {
	validator *sqlguard.Validator
}

// NewSQLQueryConstructor wraps a validator as an agent tool.
func NewSQLQueryConstructor(validator *sqlguard.Validator) *SQLQueryConstructor {
	return &SQLQueryConstructor{validator: validator}
}

func (t *SQLQueryConstructor) Name() string {
	return SQLQueryConstructorName
}

func (t *SQLQueryConstructor) Description() string {
	return "Validates a SQL SELECT query against security and complexity rules without executing it. " +
		"Only SELECT statements are allowed; destructive operations and excessive JOINs or subqueries are rejected."
}

func (t *SQLQueryConstructor) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The SQL query to validate",
			},
		},
		"required": []string{"query"},
	}
}

// Invoke validates args["query"] and renders a textual report. The report
// is fed back to the model as a tool result, so it is prose, not JSON.
func (t *SQLQueryConstructor) Invoke(_ context.Context, args map[string]any) (string, error) {
	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return "", sqlwarderr.New(sqlwarderr.CodeToolInputInvalid, `missing required string argument "query"`)
	}

	result := t.validator.Validate(query)
	limits := t.validator.Limits()

	var b strings.Builder
	if result.Valid {
		b.WriteString("SQL query is valid.\n\n")
		b.WriteString("Formatted query:\n")
		b.WriteString(result.Formatted)
		b.WriteString("\n\nAnalysis:\n")
		fmt.Fprintf(&b, "- JOINs: %d/%d\n", result.JoinCount, limits.MaxJoins)
		fmt.Fprintf(&b, "- Subqueries: %d/%d\n", result.SubqueryCount, limits.MaxSubqueries)
		b.WriteString("\nThis query is safe and ready for execution (dry-run mode).\n")
		return b.String(), nil
	}

	b.WriteString("SQL query validation failed.\n\nErrors:\n")
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "  - %s\n", e)
	}
	b.WriteString("\nPlease fix these issues before proceeding.\n")
	return b.String(), nil
}
