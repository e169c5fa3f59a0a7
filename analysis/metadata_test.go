package analysis_test

import (
	"hash/fnv"
	"testing"

	"github.com/eqsat/slotted-egraph/analysis"
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/slot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type opType struct{ name string }

func (o opType) Equal(other egraph.NodeType) bool {
	t, ok := other.(opType)
	return ok && t.name == o.name
}

func (o opType) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(o.name))
	return h.Sum64()
}

func (o opType) Less(other egraph.NodeType) bool { return o.name < other.(opType).name }

func (o opType) TypeArgCount() int { return 0 }

func op(name string) opType { return opType{name: name} }

// depthAnalysis is a minimal Analysis[int]: the depth of the cheapest
// derivation seen for a class (nullary nodes are depth 1).
type depthAnalysis struct{}

func (depthAnalysis) Make(_ egraph.ENode, argResults []int) int {
	max := 0
	for _, d := range argResults {
		if d > max {
			max = d
		}
	}
	return max + 1
}

func (depthAnalysis) Join(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (depthAnalysis) Rename(result int, _ slot.SlotMap) int { return result }

func TestMetadata_ComputeSeedsNullaryNodesAtDepthOne(t *testing.T) {
	g := egraph.New()
	g, leaf := g.Add(egraph.ENode{Type: op("zero")})

	meta := analysis.New[int](depthAnalysis{})
	meta.Compute(g)

	d, ok := meta.Get(g, leaf.Ref)
	require.True(t, ok)
	assert.Equal(t, 1, d)
}

func TestMetadata_ComputePropagatesThroughArgs(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, succ := g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{zero}})
	g, succ2 := g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{succ}})

	meta := analysis.New[int](depthAnalysis{})
	meta.Compute(g)

	d, ok := meta.Get(g, succ2.Ref)
	require.True(t, ok)
	assert.Equal(t, 3, d)
}

func TestMetadata_JoinPicksTheLesserWhenTwoNodesShareAClass(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, tall := g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{zero}})

	// A second, nullary node added to tall's class should win the join: its
	// depth (1) is lower than the succ-chain's (2).
	g, short := g.Add(egraph.ENode{Type: op("alt")})
	g, changed := g.Union(tall, short)
	require.True(t, changed)

	meta := analysis.New[int](depthAnalysis{})
	meta.Compute(g)

	d, ok := meta.Get(g, tall.Ref)
	require.True(t, ok)
	assert.Equal(t, 1, d)
}

func TestMetadata_RefineRecomputesOnlyFromChangedClasses(t *testing.T) {
	g0 := egraph.New()
	g0, zero := g0.Add(egraph.ENode{Type: op("zero")})

	meta := analysis.New[int](depthAnalysis{})
	meta.Compute(g0)

	g1, succ := g0.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{zero}})
	meta.Refine(g1, []egraph.EClassRef{succ.Ref})

	d, ok := meta.Get(g1, succ.Ref)
	require.True(t, ok)
	assert.Equal(t, 2, d)

	dz, ok := meta.Get(g1, zero.Ref)
	require.True(t, ok)
	assert.Equal(t, 1, dz)
}
