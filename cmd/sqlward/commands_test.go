// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlward dev")
}

func TestValidateCommand_ValidQuery(t *testing.T) {
	out, err := runCommand(t, "validate", "SELECT * FROM users", "--data-dir", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, out, "SQL query is valid.")
	assert.Contains(t, out, "- JOINs: 0/3")
}

func TestValidateCommand_InvalidQuery(t *testing.T) {
	out, err := runCommand(t, "validate", "DROP TABLE users", "--data-dir", t.TempDir())
	require.Error(t, err)

	assert.Contains(t, out, "SQL query validation failed.")
	assert.Contains(t, out, "only SELECT statements are allowed, got: DROP")
}

func TestValidateCommand_RequiresArgument(t *testing.T) {
	_, err := runCommand(t, "validate")
	require.Error(t, err)
}

func TestHistoryListCommand_Empty(t *testing.T) {
	out, err := runCommand(t, "history", "list", "--data-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "no sessions found")
}

func TestRootCommand_Help(t *testing.T) {
	out, err := runCommand(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "chat")
	assert.Contains(t, out, "validate")
	assert.Contains(t, out, "history")
}
