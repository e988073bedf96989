// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

// Package config loads and validates the sqlward configuration.
package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	sqlwarderr "github.com/sqlward-dev/sqlward/pkg/errors"
)

// Config is the top-level sqlward configuration.
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Agent   AgentConfig   `mapstructure:"agent"`
	SQL     SQLConfig     `mapstructure:"sql"`
	DataDir string        `mapstructure:"data_dir"`
}

// BackendConfig holds the endpoint and model for the chat backend.
type BackendConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	JSONMode    bool    `mapstructure:"json_mode"`
}

// AgentConfig bounds the reasoning loop.
type AgentConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
	MaxSteps      int `mapstructure:"max_steps"`
}

// SQLConfig sets complexity limits for query validation.
type SQLConfig struct {
	MaxJoins      int `mapstructure:"max_joins"`
	MaxSubqueries int `mapstructure:"max_subqueries"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix SQLWARD_).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("backend.base_url", "http://localhost:11434")
	v.SetDefault("backend.model", "llama3.2")
	v.SetDefault("backend.temperature", 0.0)
	v.SetDefault("backend.json_mode", false)
	v.SetDefault("agent.max_iterations", 3)
	v.SetDefault("agent.max_steps", 25)
	v.SetDefault("sql.max_joins", 3)
	v.SetDefault("sql.max_subqueries", 5)
	v.SetDefault("data_dir", "data")

	// Environment
	v.SetEnvPrefix("SQLWARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, sqlwarderr.Errorf(sqlwarderr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, sqlwarderr.Errorf(sqlwarderr.CodeConfigLoadReadFailure, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, sqlwarderr.Errorf(sqlwarderr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors. It returns a slice
// of all validation errors found, collecting all issues rather than stopping
// at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateBackend()...)
	errs = append(errs, c.validateAgent()...)
	errs = append(errs, c.validateSQL()...)

	if c.DataDir == "" {
		errs = append(errs, sqlwarderr.Errorf(sqlwarderr.CodeConfigValidateInvalidValue,
			"config: data_dir must not be empty"))
	}

	return errs
}

func (c *Config) validateBackend() []error {
	var errs []error

	if c.Backend.BaseURL == "" {
		errs = append(errs, sqlwarderr.Errorf(sqlwarderr.CodeConfigValidateInvalidValue,
			"config: backend.base_url must not be empty"))
	} else {
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, sqlwarderr.Errorf(sqlwarderr.CodeConfigValidateInvalidValue,
				"config: backend.base_url must be an absolute URL, got %q",
				c.Backend.BaseURL,
			))
		}
	}

	if c.Backend.Model == "" {
		errs = append(errs, sqlwarderr.Errorf(sqlwarderr.CodeConfigValidateInvalidValue,
			"config: backend.model must not be empty"))
	}

	if c.Backend.Temperature < 0 || c.Backend.Temperature > 2 {
		errs = append(errs, sqlwarderr.Errorf(sqlwarderr.CodeConfigValidateInvalidValue,
			"config: backend.temperature must be between 0 and 2, got %g",
			c.Backend.Temperature,
		))
	}

	return errs
}

func (c *Config) validateAgent() []error {
	var errs []error

	if c.Agent.MaxIterations <= 0 {
		errs = append(errs, sqlwarderr.Errorf(sqlwarderr.CodeConfigValidateInvalidValue,
			"config: agent.max_iterations must be greater than 0, got %d",
			c.Agent.MaxIterations,
		))
	}

	if c.Agent.MaxSteps <= 0 {
		errs = append(errs, sqlwarderr.Errorf(sqlwarderr.CodeConfigValidateInvalidValue,
			"config: agent.max_steps must be greater than 0, got %d",
			c.Agent.MaxSteps,
		))
	}

	// The guard→think edge consumes steps, so the step budget must leave
	// room for at least one full reasoning cycle.
	if c.Agent.MaxSteps > 0 && c.Agent.MaxIterations > 0 && c.Agent.MaxSteps < c.Agent.MaxIterations {
		errs = append(errs, sqlwarderr.Errorf(sqlwarderr.CodeConfigValidateInvalidValue,
			"config: agent.max_steps (%d) must be at least agent.max_iterations (%d)",
			c.Agent.MaxSteps, c.Agent.MaxIterations,
		))
	}

	return errs
}

func (c *Config) validateSQL() []error {
	var errs []error

	if c.SQL.MaxJoins <= 0 {
		errs = append(errs, sqlwarderr.Errorf(sqlwarderr.CodeConfigValidateInvalidValue,
			"config: sql.max_joins must be greater than 0, got %d",
			c.SQL.MaxJoins,
		))
	}

	if c.SQL.MaxSubqueries <= 0 {
		errs = append(errs, sqlwarderr.Errorf(sqlwarderr.CodeConfigValidateInvalidValue,
			"config: sql.max_subqueries must be greater than 0, got %d",
			c.SQL.MaxSubqueries,
		))
	}

	return errs
}
