// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlward-dev/sqlward/internal/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved chat sessions",
	}

	cmd.AddCommand(newHistoryListCmd(), newHistoryShowCmd())
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent session files, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			paths, err := history.RecentSessions(cfg.DataDir, limit)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no sessions found")
				return nil
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 10, "maximum number of sessions to list")
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-file>",
		Short: "Print a saved session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := history.LoadSession(args[0])
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", r.Timestamp.Format("15:04:05"), r.Role, r.Content)
				for _, call := range r.ToolCalls {
					fmt.Fprintf(cmd.OutOrStdout(), "           -> tool call %s\n", call.Name)
				}
			}
			return nil
		},
	}
}
