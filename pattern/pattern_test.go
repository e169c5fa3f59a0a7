package pattern_test

import (
	"hash/fnv"
	"testing"

	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/pattern"
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

func TestPattern_ToSearcherFindsNullaryNode(t *testing.T) {
	g := egraph.New()
	g, _ = g.Add(egraph.ENode{Type: op("zero")})

	p := pattern.Node(op("zero"), nil, nil)
	matches := p.ToSearcher()(g, false)

	require.Len(t, matches, 1)
	assert.Equal(t, 0, len(matches[0].Slots.Keys().Slice()))
}

func TestPattern_ToSearcherMatchesNestedArgsAndVar(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, _ = g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{zero}})

	// succ(x) — bind x to the argument.
	p := pattern.Node(op("succ"), nil, nil, pattern.VarPattern("x"))
	matches := p.ToSearcher()(g, false)

	require.Len(t, matches, 1)
	bound, ok := matches[0].Vars["x"]
	require.True(t, ok)
	require.True(t, bound.IsAtom && bound.Atom.IsCall)
	assert.True(t, g.AreSame(bound.Atom.Call, zero))
}

func TestPattern_ToSearcherRejectsTypeMismatch(t *testing.T) {
	g := egraph.New()
	g, _ = g.Add(egraph.ENode{Type: op("zero")})

	p := pattern.Node(op("one"), nil, nil)
	matches := p.ToSearcher()(g, false)
	assert.Empty(t, matches)
}

func TestPattern_ToApplierInstantiatesBoundVar(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, _ = g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{zero}})

	lhs := pattern.Node(op("succ"), nil, nil, pattern.VarPattern("x"))
	matches := lhs.ToSearcher()(g, false)
	require.Len(t, matches, 1)

	// succ(succ(x))
	rhs := pattern.Node(op("succ"), nil, nil, pattern.Node(op("succ"), nil, nil, pattern.VarPattern("x")))
	applied := rhs.ToApplier()(matches[0])

	require.False(t, applied.IsAtom)
	assert.Equal(t, op("succ"), applied.Type)
	require.Len(t, applied.Args, 1)
	inner := applied.Args[0]
	require.False(t, inner.IsAtom)
	require.Len(t, inner.Args, 1)
	require.True(t, inner.Args[0].IsAtom && inner.Args[0].Atom.IsCall)
	assert.True(t, g.AreSame(inner.Args[0].Atom.Call, zero), "x resolves to succ's matched argument")
}

func TestPattern_BindNodeIsInjectiveOverPatternSlots(t *testing.T) {
	s := slot.Numbered(100)
	pairNode := egraph.ENode{Type: op("pair"), Uses: []slot.Slot{s, s}} // same concrete slot used twice

	g := egraph.New()
	g, _ = g.Add(pairNode)

	ps1, ps2 := slot.Numbered(1), slot.Numbered(2)
	// Pattern requiring two DISTINCT pattern slots to both be uses: since
	// the node only exposes one concrete slot, injective unification must
	// fail (both pattern slots would have to map to the same concrete slot).
	p := pattern.Node(op("pair"), nil, []slot.Slot{ps1, ps2})
	matches := p.ToSearcher()(g, false)
	assert.Empty(t, matches)

	// A pattern requiring the SAME pattern slot twice matches fine.
	p2 := pattern.Node(op("pair"), nil, []slot.Slot{ps1, ps1})
	matches2 := p2.ToSearcher()(g, false)
	assert.Len(t, matches2, 1)
}
