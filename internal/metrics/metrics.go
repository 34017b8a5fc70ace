// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package metrics collects per-run resolution metrics on a private Prometheus
// registry and exports them in the text exposition format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	modulesPlanned *prometheus.GaugeVec
	duration       *prometheus.HistogramVec
}

// New creates a Collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildgraph_resolution_runs_total",
				Help: "Number of resolution runs by target.",
			},
			[]string{"target"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildgraph_resolution_errors_total",
				Help: "Number of failed resolution runs by target and error kind.",
			},
			[]string{"target", "kind"},
		),
		modulesPlanned: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "buildgraph_modules_planned",
				Help: "Number of modules in the last plan produced for a target.",
			},
			[]string{"target"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buildgraph_resolution_duration_seconds",
				Help:    "Time taken to resolve one target.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"target"},
		),
	}
	c.registry.MustRegister(c.runsTotal, c.errorsTotal, c.modulesPlanned, c.duration)
	return c
}

// ObserveRun records one run. planned is ignored when errKind is non-empty.
func (c *Collector) ObserveRun(target string, elapsed time.Duration, planned int, errKind string) {
	c.runsTotal.WithLabelValues(target).Inc()
	c.duration.WithLabelValues(target).Observe(elapsed.Seconds())
	if errKind != "" {
		c.errorsTotal.WithLabelValues(target, errKind).Inc()
		return
	}
	c.modulesPlanned.WithLabelValues(target).Set(float64(planned))
}

// Registry exposes the underlying registry, for tests and for callers that
// serve metrics themselves.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteFile writes every metric to path in the text exposition format. The
// file is replaced atomically.
func (c *Collector) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
