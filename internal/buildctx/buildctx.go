// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package buildctx defines the concrete build environment a resolution run is
// evaluated against: target type, editor flag, build-settings version, platform
// and engine version.
//
// Conditions attached to dependency declarations never read the struct fields
// directly. They address fields by name (e.g. "target_type") and receive
// cty values, so the set of addressable fields is closed and an unknown name is
// always detectable.
package buildctx

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/zclconf/go-cty/cty"
)

// TargetType is the kind of binary a target produces.
type TargetType string

const (
	TargetEditor  TargetType = "Editor"
	TargetGame    TargetType = "Game"
	TargetClient  TargetType = "Client"
	TargetServer  TargetType = "Server"
	TargetProgram TargetType = "Program"
)

// ParseTargetType accepts the canonical names case-insensitively.
func ParseTargetType(s string) (TargetType, error) {
	for _, t := range []TargetType{TargetEditor, TargetGame, TargetClient, TargetServer, TargetProgram} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown target type %q", s)
}

// BuildSettingsVersion orders the default-build-settings generations.
type BuildSettingsVersion int

const (
	BuildSettingsV1 BuildSettingsVersion = iota + 1
	BuildSettingsV2
	BuildSettingsV3
	BuildSettingsV4
	BuildSettingsV5
	BuildSettingsLatest
)

var buildSettingsNames = map[BuildSettingsVersion]string{
	BuildSettingsV1:     "V1",
	BuildSettingsV2:     "V2",
	BuildSettingsV3:     "V3",
	BuildSettingsV4:     "V4",
	BuildSettingsV5:     "V5",
	BuildSettingsLatest: "Latest",
}

func (v BuildSettingsVersion) String() string {
	if name, ok := buildSettingsNames[v]; ok {
		return name
	}
	return fmt.Sprintf("BuildSettingsVersion(%d)", int(v))
}

// ParseBuildSettingsVersion parses "V1".."V5" and "Latest".
func ParseBuildSettingsVersion(s string) (BuildSettingsVersion, error) {
	for v, name := range buildSettingsNames {
		if strings.EqualFold(s, name) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown build settings version %q", s)
}

// Field names addressable from a condition.
const (
	FieldTargetType           = "target_type"
	FieldEditorBuild          = "editor_build"
	FieldBuildSettingsVersion = "build_settings_version"
	FieldPlatform             = "platform"
	FieldEngineVersion        = "engine_version"
)

// fieldSpec describes one addressable field.
type fieldSpec struct {
	typ     cty.Type
	ordered bool
}

var fields = map[string]fieldSpec{
	FieldTargetType:           {typ: cty.String},
	FieldEditorBuild:          {typ: cty.Bool},
	FieldBuildSettingsVersion: {typ: cty.String, ordered: true},
	FieldPlatform:             {typ: cty.String},
	FieldEngineVersion:        {typ: cty.String, ordered: true},
}

// FieldNames returns the sorted list of fields a condition may reference.
func FieldNames() []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsKnownField reports whether name is an addressable field.
func IsKnownField(name string) bool {
	_, ok := fields[name]
	return ok
}

// IsOrderedField reports whether >= and < are meaningful for the field.
func IsOrderedField(name string) bool {
	return fields[name].ordered
}

// FieldType returns the cty type of a known field.
func FieldType(name string) (cty.Type, bool) {
	spec, ok := fields[name]
	return spec.typ, ok
}

// ParseOrdered checks that raw is a valid literal for the ordered field name.
func ParseOrdered(name, raw string) error {
	switch name {
	case FieldBuildSettingsVersion:
		_, err := ParseBuildSettingsVersion(raw)
		return err
	case FieldEngineVersion:
		if _, err := semver.NewVersion(raw); err != nil {
			return fmt.Errorf("engine version %q: %w", raw, err)
		}
		return nil
	}
	return fmt.Errorf("field %q is not ordered", name)
}

// BuildContext is the immutable environment for one resolution run.
type BuildContext struct {
	TargetType    TargetType
	EditorBuild   bool
	BuildSettings BuildSettingsVersion
	Platform      string
	EngineVersion *semver.Version
	// Roots restricts the plan to modules reachable from these names. Empty
	// means every supplied module takes part.
	Roots []string
}

// Options holds the raw values used to build a BuildContext.
type Options struct {
	TargetType    string
	EditorBuild   *bool
	BuildSettings string
	Platform      string
	EngineVersion string
	Roots         []string
}

// New validates opts and returns a BuildContext. EditorBuild defaults to true
// for Editor targets and false otherwise; BuildSettings defaults to Latest.
func New(opts Options) (BuildContext, error) {
	tt, err := ParseTargetType(opts.TargetType)
	if err != nil {
		return BuildContext{}, err
	}

	bc := BuildContext{
		TargetType:    tt,
		EditorBuild:   tt == TargetEditor,
		BuildSettings: BuildSettingsLatest,
		Platform:      opts.Platform,
		Roots:         slices.Clone(opts.Roots),
	}
	if opts.EditorBuild != nil {
		bc.EditorBuild = *opts.EditorBuild
	}
	if opts.BuildSettings != "" {
		if bc.BuildSettings, err = ParseBuildSettingsVersion(opts.BuildSettings); err != nil {
			return BuildContext{}, err
		}
	}
	if opts.EngineVersion != "" {
		v, err := semver.NewVersion(opts.EngineVersion)
		if err != nil {
			return BuildContext{}, fmt.Errorf("engine version %q: %w", opts.EngineVersion, err)
		}
		bc.EngineVersion = v
	}
	return bc, nil
}

// Field returns the value of a named field. ok is false for unknown names.
// An unset engine version or platform is returned as a null value.
func (c BuildContext) Field(name string) (cty.Value, bool) {
	switch name {
	case FieldTargetType:
		return cty.StringVal(string(c.TargetType)), true
	case FieldEditorBuild:
		return cty.BoolVal(c.EditorBuild), true
	case FieldBuildSettingsVersion:
		return cty.StringVal(c.BuildSettings.String()), true
	case FieldPlatform:
		if c.Platform == "" {
			return cty.NullVal(cty.String), true
		}
		return cty.StringVal(c.Platform), true
	case FieldEngineVersion:
		if c.EngineVersion == nil {
			return cty.NullVal(cty.String), true
		}
		return cty.StringVal(c.EngineVersion.Original()), true
	}
	return cty.NilVal, false
}

// Compare orders the context's value of an ordered field against v and
// returns -1, 0 or 1. v must be a known cty string.
func (c BuildContext) Compare(name string, v cty.Value) (int, error) {
	if !IsOrderedField(name) {
		return 0, fmt.Errorf("field %q is not ordered", name)
	}
	if v.IsNull() || !v.IsKnown() || !v.Type().Equals(cty.String) {
		return 0, fmt.Errorf("field %q compares against strings only", name)
	}
	raw := v.AsString()

	switch name {
	case FieldBuildSettingsVersion:
		other, err := ParseBuildSettingsVersion(raw)
		if err != nil {
			return 0, err
		}
		return cmpInt(int(c.BuildSettings), int(other)), nil
	case FieldEngineVersion:
		other, err := semver.NewVersion(raw)
		if err != nil {
			return 0, fmt.Errorf("engine version %q: %w", raw, err)
		}
		if c.EngineVersion == nil {
			return 0, fmt.Errorf("engine version is not set on the build context")
		}
		return c.EngineVersion.Compare(other), nil
	}
	return 0, fmt.Errorf("field %q has no comparator", name)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String renders the context for logs.
func (c BuildContext) String() string {
	ev := "-"
	if c.EngineVersion != nil {
		ev = c.EngineVersion.Original()
	}
	return fmt.Sprintf("%s(editor=%t settings=%s platform=%s engine=%s)",
		c.TargetType, c.EditorBuild, c.BuildSettings, c.Platform, ev)
}
