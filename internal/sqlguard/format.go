// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package sqlguard

import "strings"

// clauseBreakers start a new line in the canonical rendering.
var clauseBreakers = map[string]struct{}{
	"FROM": {}, "WHERE": {}, "GROUP": {}, "ORDER": {}, "HAVING": {},
	"LIMIT": {}, "OFFSET": {}, "UNION": {}, "VALUES": {}, "SET": {},
	"JOIN": {}, "LEFT": {}, "RIGHT": {}, "INNER": {}, "OUTER": {},
	"FULL": {}, "CROSS": {},
}

// joinModifiers precede JOIN without their own line break.
var joinModifiers = map[string]struct{}{
	"LEFT": {}, "RIGHT": {}, "INNER": {}, "OUTER": {}, "FULL": {}, "CROSS": {},
}

// Format renders a parsed statement canonically: keywords uppercased, one
// clause per line, single spaces elsewhere. Display-only; the rendering is
// not guaranteed to be re-parseable into the identical token tree.
func Format(stmt *Statement) string {
	var b strings.Builder
	writeTokens(&b, stmt.Tokens, true)
	return b.String()
}

func writeTokens(b *strings.Builder, tokens []Token, breakClauses bool) {
	prevText := ""
	for i, tok := range tokens {
		text := tok.Text
		if tok.Kind == TokenGroup {
			var inner strings.Builder
			inner.WriteString("(")
			writeTokens(&inner, tok.Children, false)
			inner.WriteString(")")
			text = inner.String()
		}

		switch {
		case i == 0:
			// no separator
		case breakClauses && tok.Kind == TokenKeyword && breaksClause(tok.Text, prevText):
			b.WriteString("\n")
		case text == "," || text == ";" || text == ".":
			// commas, terminators, and dots attach to the previous token
		case prevText == ".":
			// qualified names stay glued: a.id, schema.table
		default:
			b.WriteString(" ")
		}

		b.WriteString(text)
		if tok.Kind == TokenKeyword {
			prevText = tok.Text
		} else {
			prevText = text
		}
	}
}

// breaksClause reports whether keyword starts a new clause line. JOIN does
// not break when it directly follows one of its modifiers (LEFT JOIN stays
// on one line, broken before LEFT).
func breaksClause(keyword, prev string) bool {
	if _, ok := clauseBreakers[keyword]; !ok {
		return false
	}
	_, prevModifier := joinModifiers[prev]
	if keyword == "JOIN" && prevModifier {
		return false
	}
	// LEFT OUTER JOIN breaks once, before LEFT.
	if _, modifier := joinModifiers[keyword]; modifier && prevModifier {
		return false
	}
	return true
}
