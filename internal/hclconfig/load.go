// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package hclconfig

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/buildgraph/internal/buildctx"
	"github.com/specialistvlad/buildgraph/internal/ctxlog"
	"github.com/specialistvlad/buildgraph/internal/descriptor"
	"github.com/specialistvlad/buildgraph/internal/fsutil"
)

// LoadWorkspace finds and parses all .hcl files under path into a Workspace.
func LoadWorkspace(ctx context.Context, path string) (*Workspace, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading workspace from path", "path", path)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to find descriptor files in %s: %w", path, err)
	}

	ws := &Workspace{}
	if len(files) == 0 {
		logger.Warn("No .hcl descriptor files found in path, returning empty workspace", "path", path)
		return ws, nil
	}
	logger.Debug("Found HCL files to load", "files", files)

	moduleSources := make(map[string]string)
	targetSources := make(map[string]string)
	parser := hclparse.NewParser()

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		modules, targets, err := loadFile(file, parser)
		if err != nil {
			return nil, err
		}
		for _, m := range modules {
			if prev, dup := moduleSources[m.Name()]; dup {
				return nil, &descriptor.MalformedError{
					Module: m.Name(),
					Source: file,
					Reason: fmt.Sprintf("module is already declared in %s", prev),
				}
			}
			moduleSources[m.Name()] = file
		}
		for _, t := range targets {
			if prev, dup := targetSources[t.Name]; dup {
				return nil, fmt.Errorf("target %q in %s is already declared in %s", t.Name, file, prev)
			}
			targetSources[t.Name] = file
		}
		ws.Modules = append(ws.Modules, modules...)
		ws.Targets = append(ws.Targets, targets...)
		logger.Debug("Successfully loaded definitions from HCL file", "file", file, "modules", len(modules), "targets", len(targets))
	}

	slices.SortFunc(ws.Targets, func(a, b *Target) int { return strings.Compare(a.Name, b.Name) })
	logger.Info("Workspace loaded successfully.", "modules", len(ws.Modules), "targets", len(ws.Targets))
	return ws, nil
}

// loadFile parses a single HCL file and returns the modules and targets found
// within it.
func loadFile(filePath string, parser *hclparse.Parser) ([]*descriptor.Module, []*Target, error) {
	file, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", filePath, diags)
	}

	modules := make([]*descriptor.Module, 0, len(parsed.Modules))
	for _, hm := range parsed.Modules {
		m, err := newModule(hm, filePath)
		if err != nil {
			return nil, nil, err
		}
		modules = append(modules, m)
	}

	targets := make([]*Target, 0, len(parsed.Targets))
	for _, ht := range parsed.Targets {
		targets = append(targets, newTarget(ht, filePath))
	}
	return modules, targets, nil
}

func newModule(hm *hclModule, source string) (*descriptor.Module, error) {
	spec := descriptor.Spec{
		Name:                hm.Name,
		Kind:                deref(hm.Kind),
		PCHUsage:            deref(hm.PCHUsage),
		PublicIncludePaths:  hm.PublicIncludePaths,
		PrivateIncludePaths: hm.PrivateIncludePaths,
		DynamicallyLoaded:   hm.DynamicallyLoaded,
		Source:              source,
	}
	spec.Dependencies = appendDeps(spec.Dependencies, hm.PublicDependencies, descriptor.Public, nil)
	spec.Dependencies = appendDeps(spec.Dependencies, hm.PrivateDependencies, descriptor.Private, nil)

	var diags hcl.Diagnostics
	for _, group := range hm.Conditional {
		cond, cdiags := translateWhen(group.When)
		diags = append(diags, cdiags...)
		if cdiags.HasErrors() {
			continue
		}
		spec.Dependencies = appendDeps(spec.Dependencies, group.Public, descriptor.Public, cond)
		spec.Dependencies = appendDeps(spec.Dependencies, group.Private, descriptor.Private, cond)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("error parsing module %q in file %s: %w", hm.Name, source, diags)
	}

	return descriptor.New(spec)
}

func appendDeps(deps []descriptor.Dependency, names []string, vis descriptor.Visibility, when *descriptor.Condition) []descriptor.Dependency {
	for _, n := range names {
		deps = append(deps, descriptor.Dependency{Module: n, Visibility: vis, When: when})
	}
	return deps
}

func newTarget(ht *hclTarget, source string) *Target {
	return &Target{
		Name: ht.Name,
		Options: buildctx.Options{
			TargetType:    ht.Type,
			EditorBuild:   ht.EditorBuild,
			BuildSettings: deref(ht.BuildSettings),
			Platform:      deref(ht.Platform),
			EngineVersion: deref(ht.IncludeOrderVersion),
			Roots:         slices.Clone(ht.ExtraModules),
		},
		Source: source,
	}
}
