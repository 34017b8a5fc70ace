// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package descriptor

import (
	"fmt"
	"slices"
	"strings"
)

// Kind distinguishes modules that take part in every build from modules that
// only exist in editor builds.
type Kind string

const (
	KindRuntime Kind = "Runtime"
	KindEditor  Kind = "Editor"
)

// ParseKind accepts "Runtime", "Editor" and "EditorOnly" case-insensitively.
// An empty string means Runtime.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "runtime":
		return KindRuntime, nil
	case "editor", "editoronly", "editor-only":
		return KindEditor, nil
	}
	return "", fmt.Errorf("unrecognized module kind %q", s)
}

// PCHUsage is the precompiled-header policy of a module.
type PCHUsage string

const (
	PCHExplicitOrShared PCHUsage = "explicit-or-shared"
	PCHNone             PCHUsage = "none"
	PCHPrivate          PCHUsage = "private"
)

var pchAliases = map[string]PCHUsage{
	"":                        PCHExplicitOrShared,
	"explicit-or-shared":      PCHExplicitOrShared,
	"useexplicitorsharedpchs": PCHExplicitOrShared,
	"none":                    PCHNone,
	"nopchs":                  PCHNone,
	"private":                 PCHPrivate,
	"nosharedpchs":            PCHPrivate,
}

// ParsePCHUsage accepts the canonical names and their Unreal spellings
// (UseExplicitOrSharedPCHs, NoPCHs, NoSharedPCHs). An empty string means
// explicit-or-shared.
func ParsePCHUsage(s string) (PCHUsage, error) {
	if p, ok := pchAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unrecognized PCH usage %q", s)
}

// Visibility tags a dependency edge.
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// ParseVisibility accepts "public" and "private" case-insensitively.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return Public, nil
	case "private":
		return Private, nil
	}
	return "", fmt.Errorf("unrecognized visibility %q", s)
}

// Dependency is one declaration: "this module depends on Module with this
// visibility when When holds".
type Dependency struct {
	Module     string
	Visibility Visibility
	When       *Condition
}

// Spec is the raw, unvalidated input for New. Kind and PCHUsage are strings so
// that loaders can pass through whatever the source said.
type Spec struct {
	Name                string
	Kind                string
	PCHUsage            string
	PublicIncludePaths  []string
	PrivateIncludePaths []string
	Dependencies        []Dependency
	DynamicallyLoaded   []string
	// Source is where the descriptor came from, used in diagnostics only.
	Source string
}

// Module is a validated, read-only module descriptor.
type Module struct {
	name                string
	kind                Kind
	pch                 PCHUsage
	publicIncludePaths  []string
	privateIncludePaths []string
	dependencies        []Dependency
	dynamicallyLoaded   []string
	source              string
}

// New validates spec and returns the module. Every failure is a
// *MalformedError.
func New(spec Spec) (*Module, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, malformed(spec.Name, spec.Source, "module name is empty")
	}

	kind, err := ParseKind(spec.Kind)
	if err != nil {
		return nil, malformed(name, spec.Source, err.Error())
	}
	pch, err := ParsePCHUsage(spec.PCHUsage)
	if err != nil {
		return nil, malformed(name, spec.Source, err.Error())
	}

	deps := make([]Dependency, 0, len(spec.Dependencies))
	for i, d := range spec.Dependencies {
		target := strings.TrimSpace(d.Module)
		if target == "" {
			return nil, malformed(name, spec.Source, fmt.Sprintf("dependency #%d has an empty module name", i))
		}
		if target == name {
			return nil, malformed(name, spec.Source, "module declares itself as a dependency")
		}
		vis, err := ParseVisibility(string(d.Visibility))
		if err != nil {
			return nil, malformed(name, spec.Source, fmt.Sprintf("dependency %q: %v", target, err))
		}
		if d.When != nil {
			for _, cl := range d.When.Clauses {
				if !cl.Op.valid() {
					return nil, malformed(name, spec.Source, fmt.Sprintf("dependency %q: unrecognized condition operator %q", target, cl.Op))
				}
			}
		}
		deps = append(deps, Dependency{Module: target, Visibility: vis, When: d.When.clone()})
	}

	return &Module{
		name:                name,
		kind:                kind,
		pch:                 pch,
		publicIncludePaths:  orderedSet(spec.PublicIncludePaths),
		privateIncludePaths: orderedSet(spec.PrivateIncludePaths),
		dependencies:        deps,
		dynamicallyLoaded:   orderedSet(spec.DynamicallyLoaded),
		source:              spec.Source,
	}, nil
}

// MustNew is New for static fixtures; it panics on error.
func MustNew(spec Spec) *Module {
	m, err := New(spec)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Module) Name() string       { return m.name }
func (m *Module) Kind() Kind         { return m.kind }
func (m *Module) PCHUsage() PCHUsage { return m.pch }
func (m *Module) Source() string     { return m.source }

func (m *Module) PublicIncludePaths() []string  { return slices.Clone(m.publicIncludePaths) }
func (m *Module) PrivateIncludePaths() []string { return slices.Clone(m.privateIncludePaths) }
func (m *Module) DynamicallyLoaded() []string   { return slices.Clone(m.dynamicallyLoaded) }

// Dependencies returns the declarations in source order.
func (m *Module) Dependencies() []Dependency {
	out := make([]Dependency, len(m.dependencies))
	for i, d := range m.dependencies {
		out[i] = Dependency{Module: d.Module, Visibility: d.Visibility, When: d.When.clone()}
	}
	return out
}

// orderedSet drops blanks and repeats, keeping first occurrence order.
func orderedSet(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
