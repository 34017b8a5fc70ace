// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/buildgraph/internal/plan"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DescriptorPath string   // hcl file or directory
	Targets        []string // empty means every declared target
	OutputDir      string   // empty means the app's output writer
	Format         string

	LogFormat   string
	LogLevel    string
	MetricsFile string
	Parallel    int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DescriptorPath == "" {
		return nil, errors.New("DescriptorPath is a required configuration field and cannot be empty")
	}

	if cfg.Format == "" {
		cfg.Format = string(plan.FormatJSON)
	}
	format, err := plan.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	cfg.Format = string(format)

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.Parallel == 0 {
		cfg.Parallel = 1
	}
	if cfg.Parallel < 0 {
		return nil, fmt.Errorf("invalid parallelism %d: must be at least 1", cfg.Parallel)
	}

	return &cfg, nil
}

func (c *Config) planFormat() plan.Format {
	return plan.Format(c.Format)
}
