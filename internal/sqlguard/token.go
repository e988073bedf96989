// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package sqlguard

import (
	"strings"
	"unicode"

	sqlwarderr "github.com/sqlward-dev/sqlward/pkg/errors"
)

// TokenKind classifies a lexed token.
type TokenKind int

const (
	TokenKeyword TokenKind = iota
	TokenIdentifier
	TokenNumber
	TokenString
	TokenPunct
	// TokenGroup is a parenthesized group; Children holds its contents.
	TokenGroup
)

// Token is one element of the token tree produced by Parse. Groups nest;
// all other kinds are leaves.
type Token struct {
	Kind     TokenKind
	Text     string
	Children []Token
}

// Statement is a single parsed statement: a token tree over the raw text.
type Statement struct {
	Raw    string
	Tokens []Token
}

// StatementType classifies a statement by its leading type keyword.
type StatementType string

const StatementTypeUnknown StatementType = "UNKNOWN"

// statementTypeKeywords are the keywords that classify a statement when they
// appear first at the top level.
var statementTypeKeywords = map[string]struct{}{
	"SELECT": {}, "INSERT": {}, "UPDATE": {}, "DELETE": {},
	"CREATE": {}, "DROP": {}, "ALTER": {}, "TRUNCATE": {},
	"MERGE": {}, "UPSERT": {}, "REPLACE": {},
	"GRANT": {}, "REVOKE": {}, "EXEC": {}, "EXECUTE": {},
}

// sqlKeywords is the full keyword vocabulary the lexer recognizes. Anything
// alphabetic outside this set lexes as an identifier.
var sqlKeywords = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "JOIN": {}, "INNER": {},
	"LEFT": {}, "RIGHT": {}, "OUTER": {}, "FULL": {}, "CROSS": {},
	"ON": {}, "AND": {}, "OR": {}, "NOT": {}, "IN": {}, "AS": {},
	"GROUP": {}, "BY": {}, "ORDER": {}, "HAVING": {}, "LIMIT": {},
	"OFFSET": {}, "UNION": {}, "ALL": {}, "DISTINCT": {}, "INSERT": {},
	"INTO": {}, "VALUES": {}, "UPDATE": {}, "SET": {}, "DELETE": {},
	"CREATE": {}, "TABLE": {}, "DROP": {}, "ALTER": {}, "TRUNCATE": {},
	"MERGE": {}, "UPSERT": {}, "REPLACE": {}, "GRANT": {}, "REVOKE": {},
	"EXEC": {}, "EXECUTE": {}, "CASE": {}, "WHEN": {}, "THEN": {},
	"ELSE": {}, "END": {}, "IS": {}, "NULL": {}, "LIKE": {},
	"BETWEEN": {}, "EXISTS": {}, "ASC": {}, "DESC": {}, "ADD": {},
	"COLUMN": {},
}

// Parse lexes a statement into a token tree. It fails on an unterminated
// string literal or unbalanced parentheses; everything else is accepted,
// mirroring the permissive parser the validator was designed around.
func Parse(statement string) (*Statement, error) {
	lx := &lexer{input: statement}
	tokens, err := lx.run(0)
	if err != nil {
		return nil, err
	}
	return &Statement{Raw: statement, Tokens: tokens}, nil
}

// Type returns the statement classification: the first top-level keyword
// that names a statement type, or StatementTypeUnknown.
func (s *Statement) Type() StatementType {
	return classify(s.Tokens)
}

// Flatten returns all leaf tokens in source order, descending into groups.
func (s *Statement) Flatten() []Token {
	return flatten(s.Tokens, nil)
}

func classify(tokens []Token) StatementType {
	for _, tok := range tokens {
		if tok.Kind != TokenKeyword {
			continue
		}
		if _, ok := statementTypeKeywords[tok.Text]; ok {
			return StatementType(tok.Text)
		}
	}
	return StatementTypeUnknown
}

func flatten(tokens []Token, out []Token) []Token {
	for _, tok := range tokens {
		if tok.Kind == TokenGroup {
			out = flatten(tok.Children, out)
			continue
		}
		out = append(out, tok)
	}
	return out
}

type lexer struct {
	input string
	pos   int
}

// run lexes until end of input or, when depth > 0, a closing parenthesis.
func (lx *lexer) run(depth int) ([]Token, error) {
	var tokens []Token

	for lx.pos < len(lx.input) {
		c := lx.input[lx.pos]

		switch {
		case c == ')':
			if depth == 0 {
				return nil, sqlwarderr.New(sqlwarderr.CodeSQLParseFailure, "unbalanced closing parenthesis")
			}
			return tokens, nil

		case c == '(':
			lx.pos++
			children, err := lx.run(depth + 1)
			if err != nil {
				return nil, err
			}
			if lx.pos >= len(lx.input) || lx.input[lx.pos] != ')' {
				return nil, sqlwarderr.New(sqlwarderr.CodeSQLParseFailure, "unbalanced opening parenthesis")
			}
			lx.pos++ // consume ')'
			tokens = append(tokens, Token{Kind: TokenGroup, Children: children})

		case unicode.IsSpace(rune(c)):
			lx.pos++

		case c == '-' && lx.peekAt(1) == '-':
			lx.skipLineComment()

		case c == '/' && lx.peekAt(1) == '*':
			if err := lx.skipBlockComment(); err != nil {
				return nil, err
			}

		case c == '\'' || c == '"':
			lit, err := lx.lexString(c)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Kind: TokenString, Text: lit})

		case isIdentStart(c):
			word := lx.lexWord()
			upper := strings.ToUpper(word)
			if _, ok := sqlKeywords[upper]; ok {
				tokens = append(tokens, Token{Kind: TokenKeyword, Text: upper})
			} else {
				tokens = append(tokens, Token{Kind: TokenIdentifier, Text: word})
			}

		case c >= '0' && c <= '9':
			tokens = append(tokens, Token{Kind: TokenNumber, Text: lx.lexNumber()})

		default:
			tokens = append(tokens, Token{Kind: TokenPunct, Text: string(c)})
			lx.pos++
		}
	}

	if depth > 0 {
		return nil, sqlwarderr.New(sqlwarderr.CodeSQLParseFailure, "unbalanced opening parenthesis")
	}
	return tokens, nil
}

func (lx *lexer) peekAt(offset int) byte {
	if lx.pos+offset >= len(lx.input) {
		return 0
	}
	return lx.input[lx.pos+offset]
}

func (lx *lexer) skipLineComment() {
	for lx.pos < len(lx.input) && lx.input[lx.pos] != '\n' {
		lx.pos++
	}
}

func (lx *lexer) skipBlockComment() error {
	lx.pos += 2 // consume "/*"
	for lx.pos+1 < len(lx.input) {
		if lx.input[lx.pos] == '*' && lx.input[lx.pos+1] == '/' {
			lx.pos += 2
			return nil
		}
		lx.pos++
	}
	return sqlwarderr.New(sqlwarderr.CodeSQLParseFailure, "unterminated block comment")
}

// lexString consumes a quoted literal, honoring doubled-quote escapes
// ('it''s'). The returned text includes the surrounding quotes.
func (lx *lexer) lexString(quote byte) (string, error) {
	start := lx.pos
	lx.pos++ // opening quote
	for lx.pos < len(lx.input) {
		if lx.input[lx.pos] == quote {
			if lx.peekAt(1) == quote {
				lx.pos += 2
				continue
			}
			lx.pos++
			return lx.input[start:lx.pos], nil
		}
		lx.pos++
	}
	return "", sqlwarderr.New(sqlwarderr.CodeSQLParseFailure, "unterminated string literal")
}

func (lx *lexer) lexWord() string {
	start := lx.pos
	for lx.pos < len(lx.input) && isIdentPart(lx.input[lx.pos]) {
		lx.pos++
	}
	return lx.input[start:lx.pos]
}

func (lx *lexer) lexNumber() string {
	start := lx.pos
	for lx.pos < len(lx.input) {
		c := lx.input[lx.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		lx.pos++
	}
	return lx.input[start:lx.pos]
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '$'
}
