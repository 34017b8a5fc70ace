// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package evaluator turns raw module descriptors into concrete, context-free
// modules for one build context. Every dependency declaration is evaluated on
// its own, so the order of declarations never changes the result.
package evaluator

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/buildgraph/internal/buildctx"
	"github.com/specialistvlad/buildgraph/internal/descriptor"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ErrInvalidCondition matches every *InvalidConditionError via errors.Is.
var ErrInvalidCondition = errors.New("invalid condition")

// InvalidConditionError reports a clause that cannot be evaluated against any
// build context, such as a reference to a field that does not exist.
type InvalidConditionError struct {
	Module     string
	Dependency string
	Clause     string
	Reason     string
}

func (e *InvalidConditionError) Error() string {
	return fmt.Sprintf("invalid condition on %s -> %s (%s): %s", e.Module, e.Dependency, e.Clause, e.Reason)
}

func (e *InvalidConditionError) Is(target error) bool {
	return target == ErrInvalidCondition
}

// Edge is a surviving declaration.
type Edge struct {
	Module     string
	Visibility descriptor.Visibility
}

// Duplicate records an (module, visibility) pair that was declared more than
// once and collapsed into a single edge.
type Duplicate struct {
	Edge
	Count int
}

// ConcreteModule is a module with every condition resolved.
type ConcreteModule struct {
	Name                string
	Kind                descriptor.Kind
	PCHUsage            descriptor.PCHUsage
	PublicIncludePaths  []string
	PrivateIncludePaths []string
	DynamicallyLoaded   []string
	Source              string
	// Dependencies holds each surviving (module, visibility) pair once, sorted
	// by module then visibility.
	Dependencies []Edge
	Duplicates   []Duplicate
}

// Resolve evaluates every declaration of m against bc.
func Resolve(m *descriptor.Module, bc buildctx.BuildContext) (*ConcreteModule, error) {
	counts := make(map[Edge]int)
	for _, dep := range m.Dependencies() {
		ok, err := evaluate(dep.When, bc)
		if err != nil {
			return nil, locate(err, m.Name(), dep.Module)
		}
		if ok {
			counts[Edge{Module: dep.Module, Visibility: dep.Visibility}]++
		}
	}

	cm := &ConcreteModule{
		Name:                m.Name(),
		Kind:                m.Kind(),
		PCHUsage:            m.PCHUsage(),
		PublicIncludePaths:  m.PublicIncludePaths(),
		PrivateIncludePaths: m.PrivateIncludePaths(),
		DynamicallyLoaded:   m.DynamicallyLoaded(),
		Source:              m.Source(),
		Dependencies:        make([]Edge, 0, len(counts)),
	}
	for e, n := range counts {
		cm.Dependencies = append(cm.Dependencies, e)
		if n > 1 {
			cm.Duplicates = append(cm.Duplicates, Duplicate{Edge: e, Count: n})
		}
	}
	slices.SortFunc(cm.Dependencies, compareEdges)
	slices.SortFunc(cm.Duplicates, func(a, b Duplicate) int { return compareEdges(a.Edge, b.Edge) })
	return cm, nil
}

func compareEdges(a, b Edge) int {
	if c := strings.Compare(a.Module, b.Module); c != 0 {
		return c
	}
	return strings.Compare(string(a.Visibility), string(b.Visibility))
}

// Validate checks every condition of m without a build context. It reports
// the same InvalidConditionError that Resolve would for any context.
func Validate(m *descriptor.Module) error {
	for _, dep := range m.Dependencies() {
		if dep.When == nil {
			continue
		}
		for _, cl := range dep.When.Clauses {
			if err := validateClause(cl); err != nil {
				return locate(err, m.Name(), dep.Module)
			}
		}
	}
	return nil
}

func locate(err error, module, dependency string) error {
	var ice *InvalidConditionError
	if errors.As(err, &ice) {
		ice.Module = module
		ice.Dependency = dependency
	}
	return err
}

// Result is the output of ResolveAll.
type Result struct {
	// Modules are sorted by name.
	Modules []*ConcreteModule
	// Excluded names the editor-only modules dropped from a non-editor build.
	Excluded []string
}

// ResolveAll resolves a whole descriptor set. Module names must be unique.
// Editor-only modules are left out when bc is not an editor build; their
// conditions are still validated.
func ResolveAll(modules []*descriptor.Module, bc buildctx.BuildContext) (*Result, error) {
	res := &Result{Modules: make([]*ConcreteModule, 0, len(modules))}
	seen := make(map[string]string, len(modules))

	for _, m := range modules {
		if prev, ok := seen[m.Name()]; ok {
			return nil, &descriptor.MalformedError{
				Module: m.Name(),
				Source: m.Source(),
				Reason: fmt.Sprintf("duplicate module name, first declared in %q", prev),
			}
		}
		seen[m.Name()] = m.Source()

		if m.Kind() == descriptor.KindEditor && !bc.EditorBuild {
			if err := Validate(m); err != nil {
				return nil, err
			}
			res.Excluded = append(res.Excluded, m.Name())
			continue
		}
		cm, err := Resolve(m, bc)
		if err != nil {
			return nil, err
		}
		res.Modules = append(res.Modules, cm)
	}

	slices.SortFunc(res.Modules, func(a, b *ConcreteModule) int { return strings.Compare(a.Name, b.Name) })
	slices.Sort(res.Excluded)
	return res, nil
}

// evaluate reports whether every clause of c holds. A nil condition holds.
func evaluate(c *descriptor.Condition, bc buildctx.BuildContext) (bool, error) {
	if c == nil {
		return true, nil
	}
	// All clauses are checked even after one fails so that a broken clause is
	// reported regardless of its position.
	result := true
	for _, cl := range c.Clauses {
		ok, err := evaluateClause(cl, bc)
		if err != nil {
			return false, err
		}
		result = result && ok
	}
	return result, nil
}

func invalidClause(cl descriptor.Clause, format string, args ...any) error {
	return &InvalidConditionError{Clause: cl.String(), Reason: fmt.Sprintf(format, args...)}
}

// validateClause checks that the field exists, the operator suits it and the
// value fits the field's type.
func validateClause(cl descriptor.Clause) error {
	fieldType, ok := buildctx.FieldType(cl.Field)
	if !ok {
		return invalidClause(cl, "unknown context field %q (known: %s)", cl.Field, strings.Join(buildctx.FieldNames(), ", "))
	}
	if cl.Value == cty.NilVal || !cl.Value.IsWhollyKnown() {
		return invalidClause(cl, "clause value must be a known literal")
	}

	switch cl.Op {
	case descriptor.OpEqual, descriptor.OpNotEqual:
		if _, err := convert.Convert(cl.Value, fieldType); err != nil {
			return invalidClause(cl, "value does not fit field type %s: %v", fieldType.FriendlyName(), err)
		}
		return nil

	case descriptor.OpIn:
		ty := cl.Value.Type()
		if cl.Value.IsNull() || !(ty.IsTupleType() || ty.IsListType() || ty.IsSetType()) {
			return invalidClause(cl, "'in' needs a list of values")
		}
		for it := cl.Value.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			if _, err := convert.Convert(ev, fieldType); err != nil {
				return invalidClause(cl, "list element does not fit field type %s: %v", fieldType.FriendlyName(), err)
			}
		}
		return nil

	case descriptor.OpAtLeast, descriptor.OpBelow:
		if !buildctx.IsOrderedField(cl.Field) {
			return invalidClause(cl, "field %q does not support ordering", cl.Field)
		}
		// Numbers lose their source form ("5.10" reads back as 5.1).
		if cl.Value.IsNull() || !cl.Value.Type().Equals(cty.String) {
			return invalidClause(cl, "ordering needs a quoted version string such as \"5.10\", got %s", cl.Value.Type().FriendlyName())
		}
		if err := buildctx.ParseOrdered(cl.Field, cl.Value.AsString()); err != nil {
			return invalidClause(cl, "%v", err)
		}
		return nil
	}
	return invalidClause(cl, "unrecognized operator %q", cl.Op)
}

func evaluateClause(cl descriptor.Clause, bc buildctx.BuildContext) (bool, error) {
	if err := validateClause(cl); err != nil {
		return false, err
	}
	actual, _ := bc.Field(cl.Field)
	fieldType, _ := buildctx.FieldType(cl.Field)

	switch cl.Op {
	case descriptor.OpEqual, descriptor.OpNotEqual:
		want, _ := convert.Convert(cl.Value, fieldType)
		eq := equal(actual, want)
		if cl.Op == descriptor.OpNotEqual {
			return !eq, nil
		}
		return eq, nil

	case descriptor.OpIn:
		found := false
		for it := cl.Value.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			want, _ := convert.Convert(ev, fieldType)
			if equal(actual, want) {
				found = true
			}
		}
		return found, nil
	}

	if actual.IsNull() {
		return false, nil
	}
	cmp, err := bc.Compare(cl.Field, cl.Value)
	if err != nil {
		return false, invalidClause(cl, "%v", err)
	}
	if cl.Op == descriptor.OpAtLeast {
		return cmp >= 0, nil
	}
	return cmp < 0, nil
}

func equal(a, b cty.Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	return a.Equals(b).True()
}
