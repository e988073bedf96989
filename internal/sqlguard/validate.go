// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package sqlguard

import (
	"fmt"
	"strings"
)

// BlockedKeywords are rejected wherever they appear in a statement's token
// stream, even inside an otherwise SELECT-classified statement. The type
// allow-list already rejects most of these as statement heads; this layer
// catches them smuggled deeper into the statement.
var BlockedKeywords = map[string]struct{}{
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "DROP": {},
	"ALTER": {}, "CREATE": {}, "TRUNCATE": {}, "REPLACE": {},
	"MERGE": {}, "UPSERT": {}, "GRANT": {}, "REVOKE": {},
	"EXEC": {}, "EXECUTE": {},
}

// Limits are the structural complexity caps enforced by the validator.
type Limits struct {
	MaxJoins      int
	MaxSubqueries int
}

// DefaultLimits returns the stock complexity caps.
func DefaultLimits() Limits {
	return Limits{MaxJoins: 3, MaxSubqueries: 5}
}

// ValidationResult is the outcome of validating one candidate statement.
// It is never mutated after Validate returns it.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string

	JoinCount     int
	SubqueryCount int
	// Formatted is the canonical rendering of the statement (uppercase
	// keywords, clause-aligned), populated whenever the statement parsed.
	Formatted string
}

// Metadata returns the result's analysis fields keyed for reporting.
func (r ValidationResult) Metadata() map[string]any {
	return map[string]any{
		"join_count":      r.JoinCount,
		"subquery_count":  r.SubqueryCount,
		"formatted_query": r.Formatted,
	}
}

// Validator enforces the statement security policy: SELECT-only type
// allow-list, destructive keyword blocklist, and complexity limits. It is a
// pure structural check; nothing is ever executed against a database.
type Validator struct {
	limits Limits
}

// NewValidator creates a Validator with the given limits. Non-positive
// limits fall back to the defaults.
func NewValidator(limits Limits) *Validator {
	def := DefaultLimits()
	if limits.MaxJoins <= 0 {
		limits.MaxJoins = def.MaxJoins
	}
	if limits.MaxSubqueries <= 0 {
		limits.MaxSubqueries = def.MaxSubqueries
	}
	return &Validator{limits: limits}
}

// Limits returns the caps this validator enforces.
func (v *Validator) Limits() Limits {
	return v.limits
}

// Validate runs the layered policy check over a single candidate statement.
func (v *Validator) Validate(statement string) ValidationResult {
	result := ValidationResult{Valid: true}

	// Layer 1: parse.
	if strings.TrimSpace(statement) == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "empty or invalid SQL statement")
		return result
	}
	parsed, err := Parse(statement)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("SQL parsing failed: %v", err))
		return result
	}
	if len(parsed.Tokens) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "empty or invalid SQL statement")
		return result
	}

	// Layer 2: statement-type allow-list. Non-SELECT statements are
	// rejected outright; the remaining layers assume a SELECT head.
	if typ := parsed.Type(); typ != "SELECT" {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("only SELECT statements are allowed, got: %s", typ))
		return result
	}

	// Layer 3: keyword blocklist over the flattened token stream.
	for _, tok := range parsed.Flatten() {
		if tok.Kind != TokenKeyword {
			continue
		}
		if _, blocked := BlockedKeywords[tok.Text]; blocked {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("blocked keyword found: %s", tok.Text))
		}
	}

	// Layer 4: join complexity, counted across every nested group.
	result.JoinCount = countJoins(parsed.Tokens)
	if result.JoinCount > v.limits.MaxJoins {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("too many JOINs: %d (max: %d)", result.JoinCount, v.limits.MaxJoins))
	}

	// Layer 5: subquery complexity, counted only through parenthesized
	// SELECT groups. The asymmetry with join counting is deliberate.
	result.SubqueryCount = countSubqueries(parsed.Tokens)
	if result.SubqueryCount > v.limits.MaxSubqueries {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("too many subqueries: %d (max: %d)", result.SubqueryCount, v.limits.MaxSubqueries))
	}

	result.Formatted = Format(parsed)
	return result
}

// countJoins counts JOIN keyword tokens, descending into every group
// regardless of what the group contains.
func countJoins(tokens []Token) int {
	count := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenKeyword:
			if tok.Text == "JOIN" {
				count++
			}
		case TokenGroup:
			count += countJoins(tok.Children)
		}
	}
	return count
}

// countSubqueries counts parenthesized groups whose own top level classifies
// as SELECT, recursing only inside such groups. A parenthesized group that
// is not itself a SELECT is not descended.
func countSubqueries(tokens []Token) int {
	count := 0
	for _, tok := range tokens {
		if tok.Kind != TokenGroup {
			continue
		}
		if classify(tok.Children) == "SELECT" {
			count += 1 + countSubqueries(tok.Children)
		}
	}
	return count
}
