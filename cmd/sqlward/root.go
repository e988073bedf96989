// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlward-dev/sqlward/internal/config"
)

// NewRootCmd creates the root sqlward command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sqlward",
		Short:         "sqlward — SQL-guarded chat agent",
		Long:          "sqlward is a chat agent whose replies are checked for unsafe SQL before they are released.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags — overrides applied on top of the loaded config.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("data-dir", "", "path to data directory")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newChatCmd(),
		newValidateCmd(),
		newHistoryCmd(),
		newVersionCmd(),
	)

	return root
}

// loadConfig reads the config file named by --config (or defaults and env
// vars when absent) and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}

	return cfg, nil
}

// newLogger builds the process logger. Verbose mode lowers the level to
// debug so engine step transitions become visible.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
