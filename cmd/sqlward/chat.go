// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sqlward-dev/sqlward/internal/agent"
	"github.com/sqlward-dev/sqlward/internal/history"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the SQL-guarded agent",
		Long:  "Answers a single message when one is given, otherwise starts an interactive session. Every reply is checked for unsafe SQL before it is shown.",
		RunE:  runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)

	log, err := history.NewLog(cfg.DataDir)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, logger, log)
	if err != nil {
		return err
	}

	render := newMarkdownRenderer()

	if len(args) > 0 {
		return answer(cmd, engine, render, strings.Join(args, " "))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bannerStyle.Render("sqlward — SQL-guarded chat agent"))
	fmt.Fprintln(out, noticeStyle.Render(fmt.Sprintf("model: %s @ %s — type 'quit' or 'exit' to leave", cfg.Backend.Model, cfg.Backend.BaseURL)))
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, promptStyle.Render("You> "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}

		if err := answer(cmd, engine, render, input); err != nil {
			fmt.Fprintln(out, errorStyle.Render("error: "+err.Error()))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Fprintln(out, noticeStyle.Render("session saved to "+log.Path()))
	return nil
}

// answer runs one turn and renders the released reply as markdown.
func answer(cmd *cobra.Command, engine *agent.Engine, render func(string) string, input string) error {
	state, err := engine.Run(cmd.Context(), input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, render(state.Reply()))
	return nil
}

// newMarkdownRenderer builds a terminal markdown renderer. On setup failure
// replies pass through unrendered.
func newMarkdownRenderer() func(string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) string { return markdown + "\n" }
	}
	return func(markdown string) string {
		rendered, err := r.Render(markdown)
		if err != nil {
			return markdown + "\n"
		}
		return rendered
	}
}
