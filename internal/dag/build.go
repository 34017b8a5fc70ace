// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package dag

import (
	"context"
	"fmt"

	"github.com/specialistvlad/buildgraph/internal/ctxlog"
	"github.com/specialistvlad/buildgraph/internal/evaluator"
)

// Build constructs a complete, validated dependency graph from concrete
// modules.
func Build(ctx context.Context, modules []*evaluator.ConcreteModule) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")
	graph := New()

	// First pass: create all nodes.
	for _, m := range modules {
		if _, exists := graph.nodes[m.Name]; exists {
			return nil, fmt.Errorf("duplicate module %q in graph input", m.Name)
		}
		graph.AddNode(m)
	}
	logger.Debug("Build: Node creation complete.", "node_count", graph.Len())

	// Second pass: link dependencies.
	edges := 0
	for _, m := range modules {
		for _, dep := range m.Dependencies {
			if err := graph.AddEdge(m.Name, dep.Module, dep.Visibility); err != nil {
				return nil, err
			}
			edges++
		}
	}
	logger.Debug("Build: Node linking complete.", "edge_count", edges)

	if err := graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.")

	return graph, nil
}
