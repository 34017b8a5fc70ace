// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package resolver runs one complete resolution: raw descriptors and a build
// context in, an ordered build plan out. A run either returns a whole plan or
// an error, never a partial plan.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/buildgraph/internal/buildctx"
	"github.com/specialistvlad/buildgraph/internal/ctxlog"
	"github.com/specialistvlad/buildgraph/internal/dag"
	"github.com/specialistvlad/buildgraph/internal/descriptor"
	"github.com/specialistvlad/buildgraph/internal/evaluator"
	"github.com/specialistvlad/buildgraph/internal/plan"
	"github.com/specialistvlad/buildgraph/internal/visibility"
)

// Run evaluates modules against bc, builds and validates the dependency
// graph, restricts it to bc.Roots when any are given, propagates visibility
// and orders the result.
func Run(ctx context.Context, modules []*descriptor.Module, bc buildctx.BuildContext) (*plan.BuildPlan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Run: Starting resolution.", "context", bc.String(), "descriptor_count", len(modules))

	res, err := evaluator.ResolveAll(modules, bc)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve descriptors: %w", err)
	}
	for _, name := range res.Excluded {
		logger.Debug("Run: Editor-only module excluded.", "module", name)
	}
	for _, m := range res.Modules {
		for _, d := range m.Duplicates {
			logger.Warn("Duplicate dependency declaration collapsed.",
				"module", m.Name, "dependency", d.Module, "visibility", string(d.Visibility), "count", d.Count)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, err := dag.Build(ctx, res.Modules)
	if err != nil {
		return nil, markExcluded(err, res.Excluded)
	}
	if len(bc.Roots) > 0 {
		g, err = g.Subgraph(bc.Roots)
		if err != nil {
			return nil, fmt.Errorf("failed to select root modules: %w", markExcluded(err, res.Excluded))
		}
		logger.Debug("Run: Graph restricted to roots.", "roots", bc.Roots, "node_count", g.Len())
	}

	annotated, err := visibility.Propagate(g)
	if err != nil {
		return nil, err
	}

	p, err := plan.Resolve(annotated)
	if err != nil {
		return nil, err
	}
	logger.Debug("Run: Resolution complete.", "planned", len(p.Modules))
	return p, nil
}

// markExcluded flags an unknown reference to a module that ResolveAll left
// out of the build.
func markExcluded(err error, excluded []string) error {
	var unknown *dag.UnknownModuleError
	if errors.As(err, &unknown) && slices.Contains(excluded, unknown.Module) {
		unknown.EditorOnly = true
	}
	return err
}
