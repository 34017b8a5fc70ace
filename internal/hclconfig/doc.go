// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package hclconfig loads module descriptors and build targets from .hcl
// files.
//
// A workspace is a directory tree (or a single file). Every .hcl file in it
// is parsed in path order and may declare any number of `module` and `target`
// blocks. Names are global across the workspace: declaring the same module or
// target twice is an error, wherever the two blocks live.
//
// Conditional dependencies are written as `dependencies` blocks with a `when`
// expression over the `target` object:
//
//	dependencies {
//	  when    = target.editor_build && target.engine_version >= "5.4"
//	  public  = ["AnimGraph"]
//	  private = ["BlueprintGraph"]
//	}
//
// The expression is never evaluated here. It is translated into descriptor
// clauses, and the evaluator decides per build context.
package hclconfig
