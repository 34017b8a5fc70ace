// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package app

import (
	"io"
	"log/slog"

	"github.com/specialistvlad/buildgraph/internal/metrics"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	metrics *metrics.Collector
}

// NewApp is the constructor for the main application. Plans go to outW when
// no output directory is configured; logs always go to logW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		metrics: metrics.New(),
	}
}

// Metrics returns the application's metrics collector. This is primarily for
// testing.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}
