// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package hclconfig

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/buildgraph/internal/descriptor"
	"github.com/zclconf/go-cty/cty"
)

// targetRoot is the only variable a `when` expression may reference.
const targetRoot = "target"

// translateWhen turns a `when` expression into a condition. A missing
// expression, a null literal and the literal true all mean "always" and yield
// a nil condition.
func translateWhen(expr hcl.Expression) (*descriptor.Condition, hcl.Diagnostics) {
	if expr == nil {
		return nil, nil
	}
	if len(expr.Variables()) == 0 {
		v, diags := expr.Value(nil)
		if diags.HasErrors() {
			return nil, unsupported(expr, "expected target.<field> comparisons joined by &&")
		}
		if v.IsNull() || (v.Type() == cty.Bool && v.True()) {
			return nil, nil
		}
		return nil, unsupported(expr, "a constant condition other than true is never useful; remove the dependency instead")
	}

	clauses, diags := translateClauses(expr)
	if diags.HasErrors() {
		return nil, diags
	}
	return descriptor.When(clauses...), nil
}

func translateClauses(expr hcl.Expression) ([]descriptor.Clause, hcl.Diagnostics) {
	switch e := expr.(type) {
	case *hclsyntax.ParenthesesExpr:
		return translateClauses(e.Expression)

	case *hclsyntax.BinaryOpExpr:
		if e.Op == hclsyntax.OpLogicalAnd {
			lhs, diags := translateClauses(e.LHS)
			rhs, rdiags := translateClauses(e.RHS)
			diags = append(diags, rdiags...)
			if diags.HasErrors() {
				return nil, diags
			}
			return append(lhs, rhs...), nil
		}
		cl, diags := translateComparison(e)
		if diags.HasErrors() {
			return nil, diags
		}
		return []descriptor.Clause{cl}, nil

	case *hclsyntax.ScopeTraversalExpr:
		field, diags := targetField(e)
		if diags.HasErrors() {
			return nil, diags
		}
		return []descriptor.Clause{descriptor.Eq(field, cty.True)}, nil

	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpLogicalNot {
			return nil, unsupported(expr, "only ! may negate a target flag")
		}
		field, diags := targetField(e.Val)
		if diags.HasErrors() {
			return nil, diags
		}
		return []descriptor.Clause{descriptor.Eq(field, cty.False)}, nil

	case *hclsyntax.FunctionCallExpr:
		cl, diags := translateContains(e)
		if diags.HasErrors() {
			return nil, diags
		}
		return []descriptor.Clause{cl}, nil
	}
	return nil, unsupported(expr, "expected target.<field> comparisons joined by &&")
}

var comparisonOps = map[*hclsyntax.Operation]descriptor.Op{
	hclsyntax.OpEqual:              descriptor.OpEqual,
	hclsyntax.OpNotEqual:           descriptor.OpNotEqual,
	hclsyntax.OpGreaterThanOrEqual: descriptor.OpAtLeast,
	hclsyntax.OpLessThan:           descriptor.OpBelow,
}

// translateComparison handles `target.f <op> literal`. Equality may also be
// written with the literal first.
func translateComparison(e *hclsyntax.BinaryOpExpr) (descriptor.Clause, hcl.Diagnostics) {
	op, ok := comparisonOps[e.Op]
	if !ok {
		return descriptor.Clause{}, unsupported(e, "supported operators are ==, !=, >=, < and &&")
	}

	ref, lit := e.LHS, e.RHS
	if _, isRef := ref.(*hclsyntax.ScopeTraversalExpr); !isRef {
		if op != descriptor.OpEqual && op != descriptor.OpNotEqual {
			return descriptor.Clause{}, unsupported(e, "ordering comparisons must have target.<field> on the left")
		}
		ref, lit = lit, ref
	}

	field, diags := targetField(ref)
	if diags.HasErrors() {
		return descriptor.Clause{}, diags
	}
	val, diags := literal(lit)
	if diags.HasErrors() {
		return descriptor.Clause{}, diags
	}
	if (op == descriptor.OpAtLeast || op == descriptor.OpBelow) && val.Type() == cty.Number {
		return descriptor.Clause{}, unsupported(lit, `version literals in ordering comparisons must be quoted strings, such as "5.10"`)
	}
	return descriptor.Clause{Field: field, Op: op, Value: val}, nil
}

// translateContains handles `contains([..], target.f)`.
func translateContains(e *hclsyntax.FunctionCallExpr) (descriptor.Clause, hcl.Diagnostics) {
	if e.Name != "contains" || len(e.Args) != 2 || e.ExpandFinal {
		return descriptor.Clause{}, unsupported(e, "the only supported function is contains(list, target.<field>)")
	}
	field, diags := targetField(e.Args[1])
	if diags.HasErrors() {
		return descriptor.Clause{}, diags
	}
	list, diags := literal(e.Args[0])
	if diags.HasErrors() {
		return descriptor.Clause{}, diags
	}
	ty := list.Type()
	if list.IsNull() || !(ty.IsTupleType() || ty.IsListType() || ty.IsSetType()) {
		return descriptor.Clause{}, unsupported(e.Args[0], "the first argument of contains must be a list")
	}

	var values []cty.Value
	for it := list.ElementIterator(); it.Next(); {
		_, v := it.Element()
		values = append(values, v)
	}
	return descriptor.In(field, values...), nil
}

// targetField extracts f from `target.f`. The name is not checked against
// the known fields; the evaluator reports unknown ones.
func targetField(expr hcl.Expression) (string, hcl.Diagnostics) {
	ref, ok := expr.(*hclsyntax.ScopeTraversalExpr)
	if !ok {
		return "", unsupported(expr, "expected a reference to target.<field>")
	}
	t := ref.Traversal
	if t.RootName() != targetRoot || len(t) != 2 {
		return "", unsupported(expr, "expected a reference to target.<field>")
	}
	attr, ok := t[1].(hcl.TraverseAttr)
	if !ok {
		return "", unsupported(expr, "expected a reference to target.<field>")
	}
	return attr.Name, nil
}

func literal(expr hcl.Expression) (cty.Value, hcl.Diagnostics) {
	if len(expr.Variables()) != 0 {
		return cty.NilVal, unsupported(expr, "comparison values must be literals")
	}
	return expr.Value(nil)
}

func unsupported(expr hcl.Expression, detail string) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Unsupported condition",
		Detail:   fmt.Sprintf("Invalid `when` expression: %s.", detail),
		Subject:  expr.Range().Ptr(),
	}}
}
