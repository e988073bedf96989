// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqlwarderr "github.com/sqlward-dev/sqlward/pkg/errors"
)

func TestNewAndCodeOf(t *testing.T) {
	err := sqlwarderr.New(sqlwarderr.CodeToolNotFound, "unknown tool: x")
	require.Error(t, err)

	assert.Equal(t, sqlwarderr.CodeToolNotFound, sqlwarderr.CodeOf(err))
	assert.True(t, sqlwarderr.HasCode(err, sqlwarderr.CodeToolNotFound))
	assert.False(t, sqlwarderr.HasCode(err, sqlwarderr.CodeAgentRunFailure))
	assert.Contains(t, err.Error(), "unknown tool: x")
}

func TestCodeOf_ForeignError(t *testing.T) {
	assert.Equal(t, sqlwarderr.Code(""), sqlwarderr.CodeOf(stderrors.New("plain")))
	assert.Equal(t, sqlwarderr.Code(""), sqlwarderr.CodeOf(nil))
}

func TestWrap(t *testing.T) {
	t.Run("nil passthrough", func(t *testing.T) {
		assert.NoError(t, sqlwarderr.Wrap(nil, sqlwarderr.CodeAgentRunFailure, "ignored"))
		assert.NoError(t, sqlwarderr.Wrapf(nil, sqlwarderr.CodeAgentRunFailure, "ignored %d", 1))
	})

	t.Run("wraps with code and preserves cause", func(t *testing.T) {
		cause := stderrors.New("connection refused")
		err := sqlwarderr.Wrap(cause, sqlwarderr.CodeBackendUpstreamFailure, "calling backend")

		assert.True(t, sqlwarderr.HasCode(err, sqlwarderr.CodeBackendUpstreamFailure))
		assert.ErrorIs(t, err, cause)
	})
}

func TestFields(t *testing.T) {
	err := sqlwarderr.New(sqlwarderr.CodeToolInvokeFailure, "boom",
		sqlwarderr.FieldTool("sql_query_constructor"),
		sqlwarderr.Field("attempt", 2),
	)

	fields := sqlwarderr.FieldsOf(err)
	require.NotNil(t, fields)
	assert.Equal(t, "sql_query_constructor", fields["tool"])
	assert.Equal(t, 2, fields["attempt"])
}

func TestReasonPredicates(t *testing.T) {
	assert.True(t, sqlwarderr.IsNotFound(sqlwarderr.New(sqlwarderr.CodeToolNotFound, "x")))
	assert.False(t, sqlwarderr.IsNotFound(sqlwarderr.New(sqlwarderr.CodeAgentRunFailure, "x")))

	assert.True(t, sqlwarderr.IsInvalidInput(sqlwarderr.New(sqlwarderr.CodeAgentRunInvalidInput, "x")))
	assert.True(t, sqlwarderr.IsInvalidInput(sqlwarderr.New(sqlwarderr.CodeConfigValidateInvalidValue, "x")))
	assert.False(t, sqlwarderr.IsInvalidInput(sqlwarderr.New(sqlwarderr.CodeToolNotFound, "x")))

	assert.True(t, sqlwarderr.IsBudgetExceeded(sqlwarderr.New(sqlwarderr.CodeAgentStepBudgetExceeded, "x")))
	assert.False(t, sqlwarderr.IsBudgetExceeded(stderrors.New("plain")))
}

func TestWith(t *testing.T) {
	assert.NoError(t, sqlwarderr.With(nil, sqlwarderr.Field("k", "v")))

	base := sqlwarderr.New(sqlwarderr.CodeHistoryWriteFailure, "disk full")
	err := sqlwarderr.With(base, sqlwarderr.FieldSessionID("abc"))

	assert.True(t, sqlwarderr.HasCode(err, sqlwarderr.CodeHistoryWriteFailure))
	assert.Equal(t, "abc", sqlwarderr.FieldsOf(err)["session_id"])
}
