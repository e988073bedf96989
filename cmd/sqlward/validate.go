// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlward-dev/sqlward/internal/sqlguard"
	"github.com/sqlward-dev/sqlward/internal/tooling"
	sqlwarderr "github.com/sqlward-dev/sqlward/pkg/errors"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <query>",
		Short: "Validate a SQL query without running the agent",
		Long:  "Runs the query through the same validator the agent uses and prints the report. Exits non-zero when the query fails validation.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	validator := sqlguard.NewValidator(sqlguard.Limits{
		MaxJoins:      cfg.SQL.MaxJoins,
		MaxSubqueries: cfg.SQL.MaxSubqueries,
	})
	tool := tooling.NewSQLQueryConstructor(validator)

	query := strings.Join(args, " ")
	report, err := tool.Invoke(cmd.Context(), map[string]any{"query": query})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), report)

	if result := validator.Validate(query); !result.Valid {
		return sqlwarderr.New(sqlwarderr.CodeCLIInputInvalid, "query failed validation")
	}
	return nil
}
