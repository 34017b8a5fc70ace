// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package dag

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownModuleReference matches every *UnknownModuleError.
	ErrUnknownModuleReference = errors.New("unknown module reference")
	// ErrDependencyCycle matches every *CycleError.
	ErrDependencyCycle = errors.New("dependency cycle")
)

// UnknownModuleError reports an edge or root naming a module that is not in
// the build scope. ReferencedBy is empty for roots. EditorOnly is set when the
// module is declared but was left out of a non-editor build.
type UnknownModuleError struct {
	Module       string
	ReferencedBy string
	EditorOnly   bool
}

func (e *UnknownModuleError) Error() string {
	msg := fmt.Sprintf("unknown module reference %q", e.Module)
	if e.ReferencedBy != "" {
		msg += fmt.Sprintf(" (referenced by %q)", e.ReferencedBy)
	}
	if e.EditorOnly {
		msg += ": module is editor-only and excluded from non-editor builds"
	}
	return msg
}

func (e *UnknownModuleError) Is(target error) bool {
	return target == ErrUnknownModuleReference
}

// CycleError carries the full cycle, first element repeated at the end:
// [A B A] for A -> B -> A.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "dependency cycle detected: " + strings.Join(e.Path, " → ")
}

func (e *CycleError) Is(target error) bool {
	return target == ErrDependencyCycle
}
