// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package dag

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/buildgraph/internal/descriptor"
	"github.com/specialistvlad/buildgraph/internal/evaluator"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a node for m. If a node with the same name already exists,
// the function does nothing.
func (g *Graph) AddNode(m *evaluator.ConcreteModule) {
	if _, ok := g.nodes[m.Name]; ok {
		return
	}

	g.nodes[m.Name] = &node{
		module:     m,
		deps:       make(map[string]descriptor.Visibility),
		dependents: make(map[string]*node),
	}
}

// AddEdge records that `from` depends on `to` with the given visibility.
// Adding the same edge twice is a no-op; if the pair already exists with a
// different visibility the edge becomes public, since a public dependency is
// also used internally.
//
// A missing `to` node is reported as an *UnknownModuleError.
func (g *Graph) AddEdge(from, to string, vis descriptor.Visibility) error {
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", from, from)
	}

	fromNode, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("source node not found: %s", from)
	}

	toNode, ok := g.nodes[to]
	if !ok {
		return &UnknownModuleError{Module: to, ReferencedBy: from}
	}

	if prev, exists := fromNode.deps[to]; exists && prev == descriptor.Public {
		vis = descriptor.Public
	}
	fromNode.deps[to] = vis
	toNode.dependents[from] = fromNode

	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns all module names in ascending order.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Module returns the concrete module stored at name.
func (g *Graph) Module(name string) (*evaluator.ConcreteModule, bool) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, false
	}
	return n.module, true
}

// Dependencies returns the direct dependencies of name, sorted by module.
func (g *Graph) Dependencies(name string) ([]Dep, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", name)
	}

	deps := make([]Dep, 0, len(n.deps))
	for _, dep := range sortedKeys(n.deps) {
		deps = append(deps, Dep{Module: dep, Visibility: n.deps[dep]})
	}
	return deps, nil
}

// Dependents returns the names of the modules that directly depend on name,
// sorted.
func (g *Graph) Dependents(name string) ([]string, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", name)
	}
	return sortedKeys(n.dependents), nil
}

// DetectCycles checks the graph for cycles. Nodes and edges are visited in
// ascending name order, so the reported *CycleError is deterministic.
func (g *Graph) DetectCycles() error {
	// Classic depth-first search with three states:
	// done: fully visited and known not to be part of a cycle.
	// onStack: in the current traversal path, at the recorded stack index.
	// unvisited: everything else.
	done := make(map[string]bool)
	onStack := make(map[string]int)
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		onStack[name] = len(stack)
		stack = append(stack, name)

		for _, dep := range sortedKeys(g.nodes[name].deps) {
			if idx, ok := onStack[dep]; ok {
				// Back-edge: the cycle is the stack from dep onwards, closed by dep.
				path := append(slices.Clone(stack[idx:]), dep)
				return &CycleError{Path: path}
			}
			if done[dep] {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, name)
		done[name] = true
		return nil
	}

	for _, name := range g.Nodes() {
		if done[name] {
			continue
		}
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// Subgraph returns a new graph holding only the modules reachable from roots,
// roots included. An unknown root is an *UnknownModuleError.
func (g *Graph) Subgraph(roots []string) (*Graph, error) {
	keep := make(map[string]bool)
	var walk func(name string)
	walk = func(name string) {
		if keep[name] {
			return
		}
		keep[name] = true
		for dep := range g.nodes[name].deps {
			walk(dep)
		}
	}

	for _, root := range roots {
		if _, ok := g.nodes[root]; !ok {
			return nil, &UnknownModuleError{Module: root}
		}
		walk(root)
	}

	sub := New()
	for _, name := range g.Nodes() {
		if keep[name] {
			sub.AddNode(g.nodes[name].module)
		}
	}
	for _, name := range sub.Nodes() {
		for dep, vis := range g.nodes[name].deps {
			if err := sub.AddEdge(name, dep, vis); err != nil {
				return nil, fmt.Errorf("internal error: copying edge %s -> %s: %w", name, dep, err)
			}
		}
	}
	return sub, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
