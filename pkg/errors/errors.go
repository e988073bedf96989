// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

// Package errors wraps samber/oops with machine-readable error codes.
// Every error produced inside sqlward carries a Code so callers can
// branch on failure class without string matching.
package errors

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeBackendRequestFailure  Code = "backend.request.failure"
	CodeBackendResponseInvalid Code = "backend.response.invalid"
	CodeBackendUpstreamFailure Code = "backend.upstream.failure"

	CodeSQLParseFailure Code = "sqlguard.parse.failure"

	CodeToolNotFound      Code = "tooling.registry.not_found"
	CodeToolInputInvalid  Code = "tooling.invoke.invalid_input"
	CodeToolInvokeFailure Code = "tooling.invoke.failure"

	CodeAgentRunInvalidInput    Code = "agent.run.invalid_input"
	CodeAgentRunFailure         Code = "agent.run.failure"
	CodeAgentStepBudgetExceeded Code = "agent.run.step_budget_exceeded"
	CodeAgentUnknownStep        Code = "agent.run.unknown_step"

	CodeHistoryWriteFailure Code = "history.write.failure"
	CodeHistoryReadFailure  Code = "history.read.failure"

	CodeCLISetupFailure Code = "cli.setup.failure"
	CodeCLIInputInvalid Code = "cli.input.invalid"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldTool(value string) Attr {
	return Field("tool", value)
}

func FieldStep(value string) Attr {
	return Field("step", value)
}

func FieldSessionID(value string) Attr {
	return Field("session_id", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// With adds structured fields to an existing error chain.
func With(err error, fields ...Attr) error {
	if err == nil {
		return nil
	}

	code := CodeOf(err)
	if code == "" {
		code = CodeAgentRunFailure
	}

	return oops.Code(code).With(flatten(fields)...).Wrap(err)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid_input" || r == "invalid_value"
}

func IsBudgetExceeded(err error) bool {
	return reason(CodeOf(err)) == "step_budget_exceeded"
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
