// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package plan orders an annotated dependency graph into a build sequence
// and derives the per-module compile context handed to a compiler driver:
// effective include paths, effective link set and dynamic-load manifest.
package plan

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/buildgraph/internal/dag"
	"github.com/specialistvlad/buildgraph/internal/visibility"
)

// Dependency is a direct edge as recorded in the plan.
type Dependency struct {
	Module     string `json:"module" yaml:"module"`
	Visibility string `json:"visibility" yaml:"visibility"`
}

// ModulePlan is the compile context of one module.
type ModulePlan struct {
	Name     string `json:"name" yaml:"name"`
	Kind     string `json:"kind" yaml:"kind"`
	PCHUsage string `json:"pch_usage" yaml:"pch_usage"`
	// Dependencies are the direct edges, sorted by module.
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies"`
	// VisibleModules are the modules whose public interface this module may
	// include, sorted: the public closure plus each direct private dependency
	// and that dependency's public closure.
	VisibleModules []string `json:"visible_modules" yaml:"visible_modules"`
	// IncludePaths are the module's own public and private paths followed by
	// the public paths of VisibleModules in build order. Direct private
	// dependencies contribute their public paths here; their private paths
	// and their own private dependencies never do.
	IncludePaths []string `json:"include_paths" yaml:"include_paths"`
	// LinkModules is every module reachable through any edge, sorted.
	LinkModules       []string `json:"link_modules" yaml:"link_modules"`
	DynamicallyLoaded []string `json:"dynamically_loaded" yaml:"dynamically_loaded"`
}

// BuildPlan lists modules so that every module comes after all of its
// dependencies.
type BuildPlan struct {
	Target  string       `json:"target,omitempty" yaml:"target,omitempty"`
	Modules []ModulePlan `json:"modules" yaml:"modules"`
}

// Order returns the module names in build order.
func (p *BuildPlan) Order() []string {
	names := make([]string, len(p.Modules))
	for i, m := range p.Modules {
		names[i] = m.Name
	}
	return names
}

// Module looks up a module's plan by name.
func (p *BuildPlan) Module(name string) (ModulePlan, bool) {
	for _, m := range p.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return ModulePlan{}, false
}

// Resolve produces the build plan. Ties in the topological order are broken
// by ascending module name, so identical input always yields an identical
// plan. An empty graph yields an empty plan.
func Resolve(a *visibility.AnnotatedGraph) (*BuildPlan, error) {
	g := a.Graph
	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}

	position := make(map[string]int, len(order))
	for i, name := range order {
		position[name] = i
	}

	p := &BuildPlan{Modules: make([]ModulePlan, 0, len(order))}
	links := make(map[string]map[string]struct{}, len(order))

	for _, name := range order {
		m, _ := g.Module(name)
		deps, err := g.Dependencies(name)
		if err != nil {
			return nil, err
		}

		// Dependencies precede name in the order, so their link sets are done.
		link := make(map[string]struct{})
		mp := ModulePlan{
			Name:              name,
			Kind:              string(m.Kind),
			PCHUsage:          string(m.PCHUsage),
			Dependencies:      make([]Dependency, 0, len(deps)),
			VisibleModules:    a.PrivateClosure(name),
			DynamicallyLoaded: sortedCopy(m.DynamicallyLoaded),
		}
		for _, d := range deps {
			mp.Dependencies = append(mp.Dependencies, Dependency{Module: d.Module, Visibility: string(d.Visibility)})
			link[d.Module] = struct{}{}
			for l := range links[d.Module] {
				link[l] = struct{}{}
			}
		}
		links[name] = link
		mp.LinkModules = setToSorted(link)

		visible := slices.Clone(mp.VisibleModules)
		slices.SortFunc(visible, func(x, y string) int { return position[x] - position[y] })
		mp.IncludePaths = includePaths(g, name, visible)

		p.Modules = append(p.Modules, mp)
	}
	return p, nil
}

// includePaths concatenates own paths and the public paths of visible
// modules, dropping repeats. Private paths of other modules never appear.
func includePaths(g *dag.Graph, name string, visible []string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(paths []string) {
		for _, p := range paths {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}

	self, _ := g.Module(name)
	add(self.PublicIncludePaths)
	add(self.PrivateIncludePaths)
	for _, v := range visible {
		m, _ := g.Module(v)
		add(m.PublicIncludePaths)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// topoSort is Kahn's algorithm with a name-ordered ready list.
func topoSort(g *dag.Graph) ([]string, error) {
	pending := make(map[string]int, g.Len())
	var ready []string

	for _, name := range g.Nodes() {
		deps, err := g.Dependencies(name)
		if err != nil {
			return nil, err
		}
		pending[name] = len(deps)
		if len(deps) == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, g.Len())
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		dependents, err := g.Dependents(name)
		if err != nil {
			return nil, err
		}
		for _, d := range dependents {
			pending[d]--
			if pending[d] == 0 {
				i, _ := slices.BinarySearch(ready, d)
				ready = slices.Insert(ready, i, d)
			}
		}
	}

	if len(order) != g.Len() {
		// Only reachable when the graph was not validated; report the cycle.
		if err := g.DetectCycles(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("internal error: ordered %d of %d modules", len(order), g.Len())
	}
	return order, nil
}

func sortedCopy(in []string) []string {
	out := slices.Clone(in)
	if out == nil {
		return []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func setToSorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}
