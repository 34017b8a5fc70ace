// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package hclconfig

import (
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/buildgraph/internal/buildctx"
	"github.com/specialistvlad/buildgraph/internal/descriptor"
)

// Target is a named build configuration. Options carries the raw values;
// BuildContext validates them.
type Target struct {
	Name    string
	Options buildctx.Options
	Source  string
}

// BuildContext returns the validated context for one resolution run. The
// target's extra modules become the run's roots.
func (t *Target) BuildContext() (buildctx.BuildContext, error) {
	bc, err := buildctx.New(t.Options)
	if err != nil {
		return buildctx.BuildContext{}, fmt.Errorf("target %q (%s): %w", t.Name, t.Source, err)
	}
	return bc, nil
}

// Workspace is everything declared in a set of .hcl files. Modules keep file
// and declaration order; Targets are sorted by name.
type Workspace struct {
	Modules []*descriptor.Module
	Targets []*Target
}

// Target looks up a target by name.
func (w *Workspace) Target(name string) (*Target, bool) {
	i, found := slices.BinarySearchFunc(w.Targets, name, func(t *Target, n string) int {
		return strings.Compare(t.Name, n)
	})
	if !found {
		return nil, false
	}
	return w.Targets[i], true
}

// TargetNames returns the sorted target names.
func (w *Workspace) TargetNames() []string {
	names := make([]string, len(w.Targets))
	for i, t := range w.Targets {
		names[i] = t.Name
	}
	return names
}
