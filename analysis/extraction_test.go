package analysis_test

import (
	"testing"

	"github.com/eqsat/slotted-egraph/analysis"
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_SmallestPicksFewestNodes(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, one := g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{zero}})
	g, two := g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{one}})
	g, directTwo := g.Add(egraph.ENode{Type: op("two")})
	g, changed := g.Union(two, directTwo)
	require.True(t, changed)

	ex := analysis.Smallest()
	tree, cost, err := ex.Apply(g, two)
	require.NoError(t, err)

	assert.Equal(t, 1, cost, "the nullary \"two\" node is cheaper in node count than succ(succ(zero))")
	assert.Equal(t, op("two"), tree.Type)
	assert.Len(t, tree.Args, 0)
}

func TestExtractor_ShallowestPicksLowestDepth(t *testing.T) {
	g := egraph.New()
	g, a := g.Add(egraph.ENode{Type: op("a")})
	g, b := g.Add(egraph.ENode{Type: op("b")})
	g, pair := g.Add(egraph.ENode{Type: op("pair"), Args: []egraph.EClassCall{a, b}})
	g, leaf := g.Add(egraph.ENode{Type: op("leaf")})
	g, changed := g.Union(pair, leaf)
	require.True(t, changed)

	ex := analysis.Shallowest()
	tree, cost, err := ex.Apply(g, pair)
	require.NoError(t, err)

	assert.Equal(t, 1, cost)
	assert.Equal(t, op("leaf"), tree.Type)
}

func TestExtractor_ApplyMaterializesNestedArgs(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, one := g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{zero}})

	ex := analysis.Smallest()
	tree, cost, err := ex.Apply(g, one)
	require.NoError(t, err)

	assert.Equal(t, 2, cost)
	assert.Equal(t, op("succ"), tree.Type)
	require.Len(t, tree.Args, 1)
	assert.Equal(t, op("zero"), tree.Args[0].Type)
}

func TestExtractor_ReusesCachedResultAcrossRepeatedApplyOnSameSnapshot(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})

	ex := analysis.Smallest()
	_, _, err := ex.Apply(g, zero)
	require.NoError(t, err)

	// A second Apply on the same snapshot must not error or panic, and must
	// agree with the first.
	tree, cost, err := ex.Apply(g, zero)
	require.NoError(t, err)
	assert.Equal(t, 1, cost)
	assert.Equal(t, op("zero"), tree.Type)
}
