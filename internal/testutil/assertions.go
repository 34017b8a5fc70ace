// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package testutil

import (
	"slices"
	"testing"

	"github.com/specialistvlad/buildgraph/internal/plan"
	"github.com/stretchr/testify/require"
)

// RequirePlan returns the plan resolved for target or fails the test.
func RequirePlan(t *testing.T, result *HarnessResult, target string) *plan.BuildPlan {
	t.Helper()
	require.NoError(t, result.Err, "the application run should not produce an error")
	p, ok := result.Plans[target]
	require.True(t, ok, "no plan was written for target %q", target)
	return p
}

// RequireModule returns a module's plan or fails the test.
func RequireModule(t *testing.T, p *plan.BuildPlan, name string) plan.ModulePlan {
	t.Helper()
	m, ok := p.Module(name)
	require.True(t, ok, "module %q is not in the plan for %q (have %v)", name, p.Target, p.Order())
	return m
}

// AssertBuiltBefore checks that every name in deps precedes module in the
// plan's build order.
func AssertBuiltBefore(t *testing.T, p *plan.BuildPlan, module string, deps ...string) {
	t.Helper()
	order := p.Order()
	at := slices.Index(order, module)
	require.GreaterOrEqual(t, at, 0, "module %q is not in the plan", module)
	for _, d := range deps {
		i := slices.Index(order, d)
		require.GreaterOrEqual(t, i, 0, "module %q is not in the plan", d)
		require.Less(t, i, at, "%q must be built before %q, order: %v", d, module, order)
	}
}

// AssertNotPlanned checks that none of names made it into the plan.
func AssertNotPlanned(t *testing.T, p *plan.BuildPlan, names ...string) {
	t.Helper()
	for _, n := range names {
		_, ok := p.Module(n)
		require.False(t, ok, "module %q should not be planned for %q", n, p.Target)
	}
}
