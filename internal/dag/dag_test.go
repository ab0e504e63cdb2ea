package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/assetpipe/internal/asset"
)

func TestAddNode(t *testing.T) {
	g := New()
	g.AddNode("b.png")
	g.AddNode("a.png")
	g.AddNode("a.png") // idempotent

	assert.Equal(t, []string{"a.png", "b.png"}, g.Nodes())
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("palette.pal")
		g.AddNode("tex.png")
		require.NoError(t, g.AddEdge("palette.pal", "tex.png")) // tex depends on palette

		deps, err := g.Dependencies("tex.png")
		require.NoError(t, err)
		assert.Equal(t, []string{"palette.pal"}, deps)

		dependents, err := g.Dependents("palette.pal")
		require.NoError(t, err)
		assert.Equal(t, []string{"tex.png"}, dependents)
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		assert.ErrorContains(t, g.AddEdge("dne", "a"), "source node not found")
		assert.ErrorContains(t, g.AddEdge("a", "dne"), "destination node not found")
		assert.ErrorContains(t, g.AddEdge("a", "a"), "self-referential edge")

		_, err := g.Dependencies("dne")
		assert.Error(t, err)
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("valid graph has no cycles", func(t *testing.T) {
		g := New()
		for _, id := range []string{"a", "b", "c", "d"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("a", "c"))
		require.NoError(t, g.AddEdge("c", "d"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := New()
		for _, id := range []string{"a", "b", "x", "y", "z"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("x", "y"))
		require.NoError(t, g.AddEdge("y", "z"))
		require.NoError(t, g.AddEdge("z", "y"))

		err := g.DetectCycles()
		require.ErrorIs(t, err, asset.ErrCircularLoadDependency)
		assert.ErrorContains(t, err, "node 'y'")
	})
}

func TestFromTasks(t *testing.T) {
	tasks := []*Task{
		{Name: "materials/stone.mat", Generated: &asset.Generated{LoadDependencies: []string{"stone.png", "/shaders/lit.wgsl", "missing.png"}}},
		{Name: "materials/stone.png", Generated: &asset.Generated{}},
		{Name: "shaders/lit.wgsl", Generated: &asset.Generated{}},
		{Name: "broken.png"},
	}
	g := FromTasks(tasks)

	deps, err := g.Dependencies("materials/stone.mat")
	require.NoError(t, err)
	assert.Equal(t, []string{"materials/stone.png", "shaders/lit.wgsl"}, deps)
	assert.Len(t, g.Nodes(), 4)
	assert.NoError(t, g.DetectCycles())
}
