// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package visibility computes which modules each module may see through its
// dependency edges.
//
// Two closures are computed per module M:
//
//   - PublicClosure(M): every module reachable from M through public edges
//     only. This is what M exposes to anything that depends on it.
//   - PrivateClosure(M): PublicClosure(M), plus every direct private
//     dependency D of M together with PublicClosure(D). This is what M itself
//     may include.
//
// A private edge gives visibility for exactly one hop. If A privately depends
// on B, dependents of A never see B, and A never sees B's private
// dependencies.
package visibility

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/buildgraph/internal/dag"
	"github.com/specialistvlad/buildgraph/internal/descriptor"
)

// AnnotatedGraph is a dependency graph together with its visibility closures.
type AnnotatedGraph struct {
	Graph *dag.Graph

	public  map[string][]string
	private map[string][]string
}

// Propagate computes both closures for every node. A graph with a cycle is
// rejected with the cycle error from the dag package.
func Propagate(g *dag.Graph) (*AnnotatedGraph, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	a := &AnnotatedGraph{
		Graph:   g,
		public:  make(map[string][]string, g.Len()),
		private: make(map[string][]string, g.Len()),
	}

	for _, name := range g.Nodes() {
		if _, err := a.publicClosure(name); err != nil {
			return nil, err
		}
	}

	for _, name := range g.Nodes() {
		deps, err := g.Dependencies(name)
		if err != nil {
			return nil, err
		}
		set := toSet(a.public[name])
		for _, d := range deps {
			if d.Visibility != descriptor.Private {
				continue
			}
			set[d.Module] = struct{}{}
			for _, v := range a.public[d.Module] {
				set[v] = struct{}{}
			}
		}
		a.private[name] = fromSet(set)
	}
	return a, nil
}

// publicClosure memoises the public closure. The graph is acyclic, so the
// recursion terminates.
func (a *AnnotatedGraph) publicClosure(name string) ([]string, error) {
	if c, ok := a.public[name]; ok {
		return c, nil
	}
	deps, err := a.Graph.Dependencies(name)
	if err != nil {
		return nil, fmt.Errorf("computing public closure: %w", err)
	}

	set := make(map[string]struct{})
	for _, d := range deps {
		if d.Visibility != descriptor.Public {
			continue
		}
		set[d.Module] = struct{}{}
		sub, err := a.publicClosure(d.Module)
		if err != nil {
			return nil, err
		}
		for _, v := range sub {
			set[v] = struct{}{}
		}
	}
	c := fromSet(set)
	a.public[name] = c
	return c, nil
}

// PublicClosure returns the sorted public closure of name, or nil for an
// unknown module.
func (a *AnnotatedGraph) PublicClosure(name string) []string {
	return slices.Clone(a.public[name])
}

// PrivateClosure returns the sorted set of modules name may include, or nil
// for an unknown module.
func (a *AnnotatedGraph) PrivateClosure(name string) []string {
	return slices.Clone(a.private[name])
}

// Sees reports whether from may include the public interface of to.
func (a *AnnotatedGraph) Sees(from, to string) bool {
	_, found := slices.BinarySearch(a.private[from], to)
	return found
}

func toSet(in []string) map[string]struct{} {
	set := make(map[string]struct{}, len(in))
	for _, s := range in {
		set[s] = struct{}{}
	}
	return set
}

func fromSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}
