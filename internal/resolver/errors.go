// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package resolver

import (
	"context"
	"errors"

	"github.com/specialistvlad/buildgraph/internal/dag"
	"github.com/specialistvlad/buildgraph/internal/descriptor"
	"github.com/specialistvlad/buildgraph/internal/evaluator"
)

// Error kinds, as reported by ErrorKind.
const (
	KindMalformedDescriptor    = "malformed_descriptor"
	KindInvalidCondition       = "invalid_condition"
	KindUnknownModuleReference = "unknown_module_reference"
	KindDependencyCycle        = "dependency_cycle"
	KindCanceled               = "canceled"
	KindOther                  = "other"
)

// ErrorKind classifies an error returned by Run. It returns "" for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, descriptor.ErrMalformedDescriptor):
		return KindMalformedDescriptor
	case errors.Is(err, evaluator.ErrInvalidCondition):
		return KindInvalidCondition
	case errors.Is(err, dag.ErrUnknownModuleReference):
		return KindUnknownModuleReference
	case errors.Is(err, dag.ErrDependencyCycle):
		return KindDependencyCycle
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	return KindOther
}
