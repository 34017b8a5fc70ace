// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package hclconfig

import "github.com/hashicorp/hcl/v2"

// hclFile represents the top-level structure of a workspace file for decoding.
type hclFile struct {
	Modules []*hclModule `hcl:"module,block"`
	Targets []*hclTarget `hcl:"target,block"`
}

type hclModule struct {
	Name                string             `hcl:"name,label"`
	Kind                *string            `hcl:"kind,optional"`
	PCHUsage            *string            `hcl:"pch_usage,optional"`
	PublicIncludePaths  []string           `hcl:"public_include_paths,optional"`
	PrivateIncludePaths []string           `hcl:"private_include_paths,optional"`
	PublicDependencies  []string           `hcl:"public_dependencies,optional"`
	PrivateDependencies []string           `hcl:"private_dependencies,optional"`
	DynamicallyLoaded   []string           `hcl:"dynamically_loaded,optional"`
	Conditional         []*hclDependencies `hcl:"dependencies,block"`
}

// hclDependencies is a group of dependencies sharing one condition. An absent
// `when` decodes to a static null expression.
type hclDependencies struct {
	When    hcl.Expression `hcl:"when,optional"`
	Public  []string       `hcl:"public,optional"`
	Private []string       `hcl:"private,optional"`
}

type hclTarget struct {
	Name                string   `hcl:"name,label"`
	Type                string   `hcl:"type"`
	EditorBuild         *bool    `hcl:"editor_build,optional"`
	BuildSettings       *string  `hcl:"build_settings,optional"`
	IncludeOrderVersion *string  `hcl:"include_order_version,optional"`
	Platform            *string  `hcl:"platform,optional"`
	ExtraModules        []string `hcl:"extra_modules,optional"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
