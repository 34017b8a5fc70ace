// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package dag

import (
	"github.com/specialistvlad/buildgraph/internal/descriptor"
	"github.com/specialistvlad/buildgraph/internal/evaluator"
)

// Graph is a collection of module nodes and their dependency edges.
type Graph struct {
	// nodes stores all nodes in the graph, keyed by module name.
	nodes map[string]*node
}

// node represents a single module. It is un-exported to enforce interaction
// with the graph via the public API (using module names).
type node struct {
	module *evaluator.ConcreteModule
	// deps maps each dependency to the visibility of the edge.
	deps map[string]descriptor.Visibility
	// dependents holds the set of nodes that depend on this node.
	dependents map[string]*node
}

// Dep is an outgoing edge as seen by callers.
type Dep struct {
	Module     string
	Visibility descriptor.Visibility
}
