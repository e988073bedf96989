// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

// Package sqlguard detects SQL embedded in free text and validates
// candidate statements against a structural security policy. It never
// executes anything against a data store.
package sqlguard

import (
	"regexp"
	"strings"
)

// DetectionKeywords are the statement verbs that mark text as potentially
// containing SQL. Order is significant: extraction iterates in this order so
// output is deterministic.
var DetectionKeywords = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP",
	"ALTER", "TRUNCATE", "MERGE", "UPSERT", "REPLACE",
}

const keywordAlt = "SELECT|INSERT|UPDATE|DELETE|CREATE|DROP|ALTER|TRUNCATE|MERGE|UPSERT|REPLACE"

var (
	fencedBlockRe = regexp.MustCompile("(?is)```(?:sql)?\\s*(.*?)```")

	// Inline detection requires the verb's syntactic companion, not just the
	// verb, so conversational phrases like "select a good option" pass.
	selectFromRe  = regexp.MustCompile(`(?s)\b(?:` + keywordAlt + `)\b\s+(?:\*|\w+(?:\s*,\s*\w+)*)\s+FROM\b`)
	intoRe        = regexp.MustCompile(`(?s)\b(?:` + keywordAlt + `)\b\s+INTO\b`)
	tableRe       = regexp.MustCompile(`(?s)\b(?:` + keywordAlt + `)\b\s+TABLE\b`)
	identSetRe    = regexp.MustCompile(`(?s)\b(?:` + keywordAlt + `)\b\s+\w+\s+SET\b`)
	fromIdentRe   = regexp.MustCompile(`(?s)\b(?:` + keywordAlt + `)\b\s+FROM\s+\w+`)
	confirmWordRe = regexp.MustCompile(`(?i)\b(?:FROM|INTO|TABLE|SET|WHERE|JOIN)\b`)

	trailingPunctRe = regexp.MustCompile(`[.!?]+$`)

	// inlineSpanRes delimit a candidate span per detection keyword: the
	// keyword up to the next statement terminator (;, ., newline, or end).
	inlineSpanRes = buildInlineSpanRes()
)

func buildInlineSpanRes() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(DetectionKeywords))
	for _, kw := range DetectionKeywords {
		res = append(res, regexp.MustCompile(`(?im)\b(`+kw+`\b[^.;]*?(?:;|\.|\n|$))`))
	}
	return res
}

// ContainsSQL reports whether the text appears to contain SQL. Fenced code
// regions are checked first (any detection keyword inside one flags the
// whole text); the unfenced remainder must show a keyword with its
// syntactic companion token.
func ContainsSQL(text string) bool {
	for _, m := range fencedBlockRe.FindAllStringSubmatch(text, -1) {
		if containsKeyword(m[1]) {
			return true
		}
	}

	// Strip fenced regions so inline scanning does not double-match.
	remainder := strings.ToUpper(fencedBlockRe.ReplaceAllString(text, ""))

	for _, re := range []*regexp.Regexp{selectFromRe, intoRe, tableRe, identSetRe, fromIdentRe} {
		if re.MatchString(remainder) {
			return true
		}
	}
	return false
}

// ExtractStatements pulls candidate SQL statements out of the text, in
// order, deduplicated. Fenced-region contents containing a detection
// keyword are taken verbatim (trimmed); inline spans from the unfenced
// remainder are kept only when a confirmation keyword
// (FROM/INTO/TABLE/SET/WHERE/JOIN) co-occurs.
func ExtractStatements(text string) []string {
	var statements []string
	seen := make(map[string]struct{})

	add := func(s string) {
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		statements = append(statements, s)
	}

	for _, m := range fencedBlockRe.FindAllStringSubmatch(text, -1) {
		content := strings.TrimSpace(m[1])
		if content != "" && containsKeyword(content) {
			add(content)
		}
	}

	remainder := fencedBlockRe.ReplaceAllString(text, "")

	for _, re := range inlineSpanRes {
		for _, m := range re.FindAllStringSubmatch(remainder, -1) {
			span := strings.TrimSpace(m[1])
			if !confirmWordRe.MatchString(span) {
				continue
			}
			add(trailingPunctRe.ReplaceAllString(span, ""))
		}
	}

	return statements
}

// containsKeyword reports whether the text contains any detection keyword.
// Plain substring matching on purpose: fenced regions are already a strong
// signal, so the companion-token requirement is waived inside them.
func containsKeyword(text string) bool {
	upper := strings.ToUpper(text)
	for _, kw := range DetectionKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
