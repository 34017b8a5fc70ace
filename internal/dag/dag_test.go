package dag

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/buildgraph/internal/descriptor"
	"github.com/specialistvlad/buildgraph/internal/evaluator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cm(name string, deps ...evaluator.Edge) *evaluator.ConcreteModule {
	return &evaluator.ConcreteModule{Name: name, Dependencies: deps}
}

func pub(name string) evaluator.Edge {
	return evaluator.Edge{Module: name, Visibility: descriptor.Public}
}

func priv(name string) evaluator.Edge {
	return evaluator.Edge{Module: name, Visibility: descriptor.Private}
}

func graphOf(t *testing.T, names ...string) *Graph {
	t.Helper()
	g := New()
	for _, n := range names {
		g.AddNode(cm(n))
	}
	return g
}

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode(cm("a"))
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.module.Name)
	assert.NotNil(t, nodeA.deps)
	assert.NotNil(t, nodeA.dependents)

	g.AddNode(cm("a")) // Test idempotency
	assert.Len(t, g.nodes, 1)

	g.AddNode(cm("b"))
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"a", "b"}, g.Nodes())
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := graphOf(t, "a", "b")

		require.NoError(t, g.AddEdge("a", "b", descriptor.Private)) // a depends on b

		deps, err := g.Dependencies("a")
		require.NoError(t, err)
		assert.Equal(t, []Dep{{Module: "b", Visibility: descriptor.Private}}, deps)

		dependents, err := g.Dependents("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, dependents)
	})

	t.Run("public wins over private", func(t *testing.T) {
		g := graphOf(t, "a", "b")
		require.NoError(t, g.AddEdge("a", "b", descriptor.Public))
		require.NoError(t, g.AddEdge("a", "b", descriptor.Private))

		deps, err := g.Dependencies("a")
		require.NoError(t, err)
		assert.Equal(t, []Dep{{Module: "b", Visibility: descriptor.Public}}, deps)

		g = graphOf(t, "a", "b")
		require.NoError(t, g.AddEdge("a", "b", descriptor.Private))
		require.NoError(t, g.AddEdge("a", "b", descriptor.Public))
		deps, err = g.Dependencies("a")
		require.NoError(t, err)
		assert.Equal(t, descriptor.Public, deps[0].Visibility)
	})

	t.Run("error cases", func(t *testing.T) {
		g := graphOf(t, "a", "b")

		err := g.AddEdge("dne", "a", descriptor.Public)
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("a", "dne", descriptor.Public)
		assert.ErrorIs(t, err, ErrUnknownModuleReference)
		var ume *UnknownModuleError
		require.True(t, errors.As(err, &ume))
		assert.Equal(t, "dne", ume.Module)
		assert.Equal(t, "a", ume.ReferencedBy)

		err = g.AddEdge("a", "a", descriptor.Public)
		assert.ErrorContains(t, err, "self-referential edge")

		_, err = g.Dependencies("dne")
		assert.ErrorContains(t, err, "node not found")
		_, err = g.Dependents("dne")
		assert.ErrorContains(t, err, "node not found")
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		assert.NoError(t, New().DetectCycles())
	})

	t.Run("graph with nodes but no edges has no cycles", func(t *testing.T) {
		assert.NoError(t, graphOf(t, "a", "b", "c").DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := graphOf(t, "a", "b", "c", "d")
		require.NoError(t, g.AddEdge("a", "b", descriptor.Public))
		require.NoError(t, g.AddEdge("b", "c", descriptor.Private))
		require.NoError(t, g.AddEdge("a", "c", descriptor.Public)) // Transitive edge
		require.NoError(t, g.AddEdge("c", "d", descriptor.Public))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("simple direct cycle reports the path", func(t *testing.T) {
		g := graphOf(t, "A", "B")
		require.NoError(t, g.AddEdge("A", "B", descriptor.Public))
		require.NoError(t, g.AddEdge("B", "A", descriptor.Public))

		err := g.DetectCycles()
		require.ErrorIs(t, err, ErrDependencyCycle)
		var ce *CycleError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, []string{"A", "B", "A"}, ce.Path)
		assert.Equal(t, "dependency cycle detected: A → B → A", err.Error())
	})

	t.Run("longer cycle reports every node", func(t *testing.T) {
		g := graphOf(t, "a", "b", "c", "d")
		require.NoError(t, g.AddEdge("a", "b", descriptor.Public))
		require.NoError(t, g.AddEdge("b", "c", descriptor.Private))
		require.NoError(t, g.AddEdge("c", "d", descriptor.Public))
		require.NoError(t, g.AddEdge("d", "a", descriptor.Private)) // Cycle back to the start

		var ce *CycleError
		require.True(t, errors.As(g.DetectCycles(), &ce))
		assert.Equal(t, []string{"a", "b", "c", "d", "a"}, ce.Path)
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := graphOf(t, "a", "b", "x", "y", "z")
		// Component 1 (valid)
		require.NoError(t, g.AddEdge("a", "b", descriptor.Public))

		// Component 2 (has a cycle that does not include x)
		require.NoError(t, g.AddEdge("x", "y", descriptor.Public))
		require.NoError(t, g.AddEdge("y", "z", descriptor.Public))
		require.NoError(t, g.AddEdge("z", "y", descriptor.Public))

		var ce *CycleError
		require.True(t, errors.As(g.DetectCycles(), &ce))
		assert.Equal(t, []string{"y", "z", "y"}, ce.Path)
	})
}

func TestSubgraph(t *testing.T) {
	g := graphOf(t, "Game", "Core", "Engine", "Tool", "Unused")
	require.NoError(t, g.AddEdge("Game", "Engine", descriptor.Public))
	require.NoError(t, g.AddEdge("Engine", "Core", descriptor.Private))
	require.NoError(t, g.AddEdge("Tool", "Core", descriptor.Public))

	sub, err := g.Subgraph([]string{"Game"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Core", "Engine", "Game"}, sub.Nodes())

	deps, err := sub.Dependencies("Engine")
	require.NoError(t, err)
	assert.Equal(t, []Dep{{Module: "Core", Visibility: descriptor.Private}}, deps)

	dependents, err := sub.Dependents("Core")
	require.NoError(t, err)
	assert.Equal(t, []string{"Engine"}, dependents, "Tool is outside the subgraph")

	_, err = g.Subgraph([]string{"Missing"})
	assert.ErrorIs(t, err, ErrUnknownModuleReference)
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("builds nodes and edges", func(t *testing.T) {
		g, err := Build(ctx, []*evaluator.ConcreteModule{
			cm("Game", pub("Engine"), priv("Niagara")),
			cm("Engine", pub("Core")),
			cm("Niagara", pub("Core")),
			cm("Core"),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Core", "Engine", "Game", "Niagara"}, g.Nodes())

		deps, err := g.Dependencies("Game")
		require.NoError(t, err)
		assert.Equal(t, []Dep{
			{Module: "Engine", Visibility: descriptor.Public},
			{Module: "Niagara", Visibility: descriptor.Private},
		}, deps)
	})

	t.Run("unknown reference names the module", func(t *testing.T) {
		_, err := Build(ctx, []*evaluator.ConcreteModule{
			cm("A", pub("B")),
			cm("B", priv("C")),
		})
		require.ErrorIs(t, err, ErrUnknownModuleReference)
		var ume *UnknownModuleError
		require.True(t, errors.As(err, &ume))
		assert.Equal(t, "C", ume.Module)
		assert.Equal(t, "B", ume.ReferencedBy)
	})

	t.Run("two module cycle", func(t *testing.T) {
		_, err := Build(ctx, []*evaluator.ConcreteModule{
			cm("B", pub("A")),
			cm("A", pub("B")),
		})
		require.ErrorIs(t, err, ErrDependencyCycle)
		var ce *CycleError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, []string{"A", "B", "A"}, ce.Path)
	})

	t.Run("duplicate module", func(t *testing.T) {
		_, err := Build(ctx, []*evaluator.ConcreteModule{cm("A"), cm("A")})
		assert.ErrorContains(t, err, "duplicate module")
	})

	t.Run("empty input", func(t *testing.T) {
		g, err := Build(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, g.Len())
	})
}
