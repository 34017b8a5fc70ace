// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/specialistvlad/buildgraph/internal/ctxlog"
	"github.com/specialistvlad/buildgraph/internal/hclconfig"
	"github.com/specialistvlad/buildgraph/internal/plan"
	"github.com/specialistvlad/buildgraph/internal/resolver"
	"golang.org/x/sync/errgroup"
)

// Run loads the descriptor workspace, resolves every selected target with at
// most Config.Parallel runs in flight and writes one plan per target. Plans
// are written only when every target resolved; metrics are written either
// way.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	ws, err := hclconfig.LoadWorkspace(ctx, a.config.DescriptorPath)
	if err != nil {
		return fmt.Errorf("failed to load workspace: %w", err)
	}

	targets, err := a.selectTargets(ws)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		a.logger.Warn("No targets found in workspace, resolution not required.")
		return nil
	}

	a.logger.Info("Resolving targets.", "count", len(targets), "parallel", a.config.Parallel)
	plans := make([]*plan.BuildPlan, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Parallel)
	for i, t := range targets {
		g.Go(func() error {
			p, err := a.resolveTarget(gctx, ws, t)
			if err != nil {
				return err
			}
			plans[i] = p
			return nil
		})
	}
	runErr := g.Wait()

	if a.config.MetricsFile != "" {
		if err := a.metrics.WriteFile(a.config.MetricsFile); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("failed to write metrics: %w", err))
		} else {
			a.logger.Debug("Metrics written.", "path", a.config.MetricsFile)
		}
	}
	if runErr != nil {
		return runErr
	}

	for i, t := range targets {
		if err := a.writePlan(t.Name, plans[i]); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) selectTargets(ws *hclconfig.Workspace) ([]*hclconfig.Target, error) {
	if len(a.config.Targets) == 0 {
		return ws.Targets, nil
	}
	out := make([]*hclconfig.Target, 0, len(a.config.Targets))
	for _, name := range a.config.Targets {
		t, ok := ws.Target(name)
		if !ok {
			return nil, fmt.Errorf("unknown target %q (declared: %s)", name, strings.Join(ws.TargetNames(), ", "))
		}
		out = append(out, t)
	}
	return out, nil
}

func (a *App) resolveTarget(ctx context.Context, ws *hclconfig.Workspace, t *hclconfig.Target) (*plan.BuildPlan, error) {
	logger := ctxlog.FromContext(ctx).With("target", t.Name)
	bc, err := t.BuildContext()
	if err != nil {
		a.metrics.ObserveRun(t.Name, 0, 0, resolver.KindOther)
		return nil, err
	}

	start := time.Now()
	p, err := resolver.Run(ctxlog.WithLogger(ctx, logger), ws.Modules, bc)
	planned := 0
	if p != nil {
		planned = len(p.Modules)
	}
	a.metrics.ObserveRun(t.Name, time.Since(start), planned, resolver.ErrorKind(err))
	if err != nil {
		logger.Error("Target resolution failed.", "error", err)
		return nil, fmt.Errorf("target %q: %w", t.Name, err)
	}

	p.Target = t.Name
	logger.Info("Target resolved.", "modules", planned, "elapsed", time.Since(start))
	return p, nil
}

// writePlan writes p to <OutputDir>/<target>.plan.<ext>, or to the output
// writer when no directory is configured.
func (a *App) writePlan(target string, p *plan.BuildPlan) error {
	format := a.config.planFormat()
	if a.config.OutputDir == "" {
		return plan.Encode(a.outW, p, format)
	}

	var buf bytes.Buffer
	if err := plan.Encode(&buf, p, format); err != nil {
		return fmt.Errorf("failed to encode plan for %q: %w", target, err)
	}
	if err := os.MkdirAll(a.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(a.config.OutputDir, target+".plan."+format.Extension())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	a.logger.Info("Plan written.", "target", target, "path", path)
	return nil
}
