package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeline mirrors the shape of the olist derivation graph.
func pipeline(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	for _, n := range []string{"matching", "orders", "products", "sellers", "product_categories", "seller_history"} {
		g.AddNode(n, n+" table")
	}
	edges := [][2]string{
		{"matching", "orders"},
		{"matching", "products"},
		{"matching", "sellers"},
		{"products", "product_categories"},
		{"products", "seller_history"},
		{"sellers", "seller_history"},
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := pipeline(t)

	assert.Equal(t, 6, g.Len())
	assert.Equal(t, []string{"products", "sellers"}, g.Parents("seller_history"))
	assert.Equal(t, []string{"orders", "products", "sellers"}, g.Children("matching"))
	assert.Equal(t, []string{"product_categories", "seller_history"}, g.Children("products"))
	assert.Empty(t, g.Children("seller_history"))
	assert.Empty(t, g.Parents("matching"))

	g.AddNode("orders", "order features")
	n, ok := g.Node("orders")
	require.True(t, ok)
	assert.Equal(t, "order features", n.Description)
	assert.Equal(t, 6, g.Len())
}

func TestGraph_AddEdge_Errors(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "")

	tests := []struct {
		name          string
		parent, child string
	}{
		{"missing child", "a", "nonexistent"},
		{"missing parent", "nonexistent", "a"},
		{"self loop", "a", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, g.AddEdge(tt.parent, tt.child))
		})
	}
}

func TestGraph_DuplicateEdges(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "")
	g.AddNode("b", "")
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("a", "b"))

	assert.Equal(t, []string{"b"}, g.Children("a"))
	assert.Equal(t, []string{"a"}, g.Parents("b"))
}

func TestGraph_FindCycle(t *testing.T) {
	assert.Nil(t, pipeline(t).FindCycle())

	g := NewGraph()
	g.AddNode("a", "")
	g.AddNode("b", "")
	g.AddNode("c", "")
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))
	require.NoError(t, g.AddEdge("c", "a"))

	assert.Equal(t, []string{"a", "b", "c", "a"}, g.FindCycle())

	_, err := g.Levels()
	assert.ErrorContains(t, err, "cycle detected")
}

func TestGraph_Levels(t *testing.T) {
	g := pipeline(t)

	tests := []struct {
		name    string
		targets []string
		want    [][]string
	}{
		{
			name: "whole graph",
			want: [][]string{
				{"matching"},
				{"orders", "products", "sellers"},
				{"product_categories", "seller_history"},
			},
		},
		{
			name:    "single leaf",
			targets: []string{"orders"},
			want:    [][]string{{"matching"}, {"orders"}},
		},
		{
			name:    "shared upstream",
			targets: []string{"seller_history", "product_categories"},
			want: [][]string{
				{"matching"},
				{"products", "sellers"},
				{"product_categories", "seller_history"},
			},
		},
		{
			name:    "root only",
			targets: []string{"matching"},
			want:    [][]string{{"matching"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels, err := g.Levels(tt.targets...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, levels)
		})
	}
}

func TestGraph_Levels_UnknownTarget(t *testing.T) {
	_, err := pipeline(t).Levels("customers")
	assert.ErrorContains(t, err, `unknown node "customers"`)
}

func TestGraph_UpstreamAndClosure(t *testing.T) {
	g := pipeline(t)

	assert.Equal(t, []string{"matching", "products", "sellers"}, g.Upstream("seller_history"))
	assert.Empty(t, g.Upstream("matching"))

	closure, err := g.Closure("orders", "product_categories")
	require.NoError(t, err)
	assert.Equal(t, []string{"matching", "orders", "product_categories", "products"}, closure)
}
