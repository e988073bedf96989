// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package agent

import (
	"github.com/sqlward-dev/sqlward/internal/conversation"
	"github.com/sqlward-dev/sqlward/internal/sqlguard"
)

// Guard is the post-generation checkpoint: it scans a candidate message for
// embedded SQL and validates every extracted statement against the policy.
// A message is safe only when every statement independently passes.
type Guard struct {
	validator *sqlguard.Validator
}

// NewGuard creates a Guard enforcing the given validator's policy.
func NewGuard(validator *sqlguard.Validator) *Guard {
	return &Guard{validator: validator}
}

// Check produces the verdict for one message. Messages with no content or
// no detectable SQL pass by default; Checked is always true on return, so
// callers can distinguish this verdict from one that was never computed.
func (g *Guard) Check(msg conversation.Message) Verdict {
	if msg.Content == "" {
		return verdictSafeDefault()
	}
	if !sqlguard.ContainsSQL(msg.Content) {
		return verdictSafeDefault()
	}

	var violations []Violation
	for _, statement := range sqlguard.ExtractStatements(msg.Content) {
		result := g.validator.Validate(statement)
		if result.Valid {
			continue
		}
		violations = append(violations, Violation{Statement: statement, Result: result})
	}

	return Verdict{
		Safe:       len(violations) == 0,
		Violations: violations,
		Checked:    true,
	}
}
