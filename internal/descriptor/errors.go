// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package descriptor

import (
	"errors"
	"fmt"
)

// ErrMalformedDescriptor matches every *MalformedError via errors.Is.
var ErrMalformedDescriptor = errors.New("malformed descriptor")

// MalformedError reports raw input that cannot form a module. The source
// descriptor has to be fixed.
type MalformedError struct {
	Module string
	Source string
	Reason string
}

func (e *MalformedError) Error() string {
	where := e.Module
	if where == "" {
		where = "<unnamed>"
	}
	if e.Source != "" {
		where = fmt.Sprintf("%s (%s)", where, e.Source)
	}
	return fmt.Sprintf("malformed descriptor %s: %s", where, e.Reason)
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedDescriptor
}

func malformed(module, source, reason string) error {
	return &MalformedError{Module: module, Source: source, Reason: reason}
}
