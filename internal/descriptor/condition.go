// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package descriptor

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Op is a clause operator.
type Op string

const (
	OpEqual    Op = "=="
	OpNotEqual Op = "!="
	OpIn       Op = "in"
	OpAtLeast  Op = ">="
	OpBelow    Op = "<"
)

func (o Op) valid() bool {
	switch o {
	case OpEqual, OpNotEqual, OpIn, OpAtLeast, OpBelow:
		return true
	}
	return false
}

// Clause is a single predicate over a named build-context field. The field
// name is not checked here; an unknown field is reported when the clause is
// evaluated.
type Clause struct {
	Field string
	Op    Op
	Value cty.Value
}

func (c Clause) String() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, formatValue(c.Value))
}

// Condition is a conjunction of clauses. A nil *Condition is always true.
type Condition struct {
	Clauses []Clause
}

// When builds a condition from clauses.
func When(clauses ...Clause) *Condition {
	return &Condition{Clauses: clauses}
}

// And returns a new condition holding the clauses of both operands. Either
// operand may be nil.
func (c *Condition) And(other *Condition) *Condition {
	if c == nil {
		return other.clone()
	}
	if other == nil {
		return c.clone()
	}
	out := &Condition{Clauses: make([]Clause, 0, len(c.Clauses)+len(other.Clauses))}
	out.Clauses = append(out.Clauses, c.Clauses...)
	out.Clauses = append(out.Clauses, other.Clauses...)
	return out
}

func (c *Condition) clone() *Condition {
	if c == nil {
		return nil
	}
	return &Condition{Clauses: append([]Clause(nil), c.Clauses...)}
}

func (c *Condition) String() string {
	if c == nil || len(c.Clauses) == 0 {
		return "always"
	}
	parts := make([]string, len(c.Clauses))
	for i, cl := range c.Clauses {
		parts[i] = cl.String()
	}
	return strings.Join(parts, " && ")
}

// Eq is field == value.
func Eq(field string, value cty.Value) Clause {
	return Clause{Field: field, Op: OpEqual, Value: value}
}

// Ne is field != value.
func Ne(field string, value cty.Value) Clause {
	return Clause{Field: field, Op: OpNotEqual, Value: value}
}

// In is satisfied when the field equals any of values.
func In(field string, values ...cty.Value) Clause {
	if len(values) == 0 {
		return Clause{Field: field, Op: OpIn, Value: cty.EmptyTupleVal}
	}
	return Clause{Field: field, Op: OpIn, Value: cty.TupleVal(values)}
}

// AtLeast is field >= value, for ordered fields.
func AtLeast(field, value string) Clause {
	return Clause{Field: field, Op: OpAtLeast, Value: cty.StringVal(value)}
}

// Below is field < value, for ordered fields.
func Below(field, value string) Clause {
	return Clause{Field: field, Op: OpBelow, Value: cty.StringVal(value)}
}

func formatValue(v cty.Value) string {
	switch {
	case v == cty.NilVal:
		return "<nil>"
	case v.IsNull():
		return "null"
	case !v.IsKnown():
		return "<unknown>"
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return fmt.Sprintf("%q", v.AsString())
	case ty == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case ty == cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			parts = append(parts, formatValue(ev))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ty.FriendlyName()
}
