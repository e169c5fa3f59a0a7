package egraph_test

import (
	"hash/fnv"
	"testing"

	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/slot"
	"github.com/stretchr/testify/assert"
)

// symbolType is a minimal NodeType test double: nodes are distinguished only
// by name.
type symbolType struct{ name string }

func (s symbolType) Equal(other egraph.NodeType) bool {
	o, ok := other.(symbolType)
	return ok && o.name == s.name
}

func (s symbolType) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(s.name))
	return h.Sum64()
}

func (s symbolType) Less(other egraph.NodeType) bool {
	return s.name < other.(symbolType).name
}

func (s symbolType) TypeArgCount() int { return 0 }

func sym(name string) symbolType { return symbolType{name: name} }

func TestHashConsEGraph_AddDedupesIdenticalLeaves(t *testing.T) {
	g := egraph.New()
	leaf := egraph.ENode{Type: sym("zero")}

	g1, c1 := g.Add(leaf)
	g2, c2 := g1.Add(leaf)

	assert.Equal(t, c1.Ref, c2.Ref, "re-adding an identical leaf hits the hash-cons")
	assert.Len(t, g2.Classes(), 1)
}

func TestHashConsEGraph_UnusedBinderIsAlphaInvariant(t *testing.T) {
	bound1 := slot.Numbered(10)
	bound2 := slot.Numbered(20)
	lam1 := egraph.ENode{Type: sym("lam"), Defs: []slot.Slot{bound1}}
	lam2 := egraph.ENode{Type: sym("lam"), Defs: []slot.Slot{bound2}}

	g := egraph.New()
	g1, c1 := g.Add(lam1)
	g2, c2 := g1.Add(lam2)

	assert.Equal(t, c1.Ref, c2.Ref, "an unused binder's concrete slot identity must not matter")
	assert.Len(t, g2.Classes(), 1)
}

func TestHashConsEGraph_VarLeafExposesOnePublicSlot(t *testing.T) {
	s1 := slot.Numbered(1)
	v1 := egraph.ENode{Type: sym("var"), Uses: []slot.Slot{s1}}

	g := egraph.New()
	g1, c1 := g.Add(v1)

	data, ok := g1.ClassData(c1.Ref)
	assert.True(t, ok)
	assert.Equal(t, 1, data.Slots.Len(), "a free variable occurrence exposes exactly one public slot")

	mapped, ok := c1.Args.Lookup(s1)
	assert.True(t, ok)
	assert.True(t, data.Slots.Contains(mapped))

	s2 := slot.Numbered(2)
	v2 := egraph.ENode{Type: sym("var"), Uses: []slot.Slot{s2}}
	g2, c2 := g1.Add(v2)

	assert.Equal(t, c1.Ref, c2.Ref, "two var leaves differing only in their use slot's identity dedupe")
	assert.Len(t, g2.Classes(), 1)
}

func TestHashConsEGraph_UnionMergesClassesWithoutMutatingThePriorSnapshot(t *testing.T) {
	a := egraph.ENode{Type: sym("a")}
	b := egraph.ENode{Type: sym("b")}

	g0 := egraph.New()
	g1, ca := g0.Add(a)
	g2, cb := g1.Add(b)

	assert.False(t, g2.AreSame(ca, cb))
	assert.Len(t, g2.Classes(), 2)

	g3, changed := g2.Union(ca, cb)
	assert.True(t, changed)
	assert.True(t, g3.AreSame(ca, cb))
	assert.Len(t, g3.Classes(), 1)

	// g2 must remain exactly as it was: Union returns a new value.
	assert.False(t, g2.AreSame(ca, cb))
	assert.Len(t, g2.Classes(), 2)

	g4, changedAgain := g3.Union(ca, cb)
	assert.False(t, changedAgain, "unioning an already-merged pair is a no-op")
	assert.Len(t, g4.Classes(), 1)
}

func TestHashConsEGraph_AddingAUserDoesNotLeakIntoEarlierSnapshots(t *testing.T) {
	a := egraph.ENode{Type: sym("a")}

	g0 := egraph.New()
	g1, ca := g0.Add(a)

	d1, ok := g1.ClassData(ca.Ref)
	assert.True(t, ok)
	assert.Len(t, d1.Users, 0)

	wrap := egraph.ENode{Type: sym("wrap"), Args: []egraph.EClassCall{ca}}
	g2, _ := g1.Add(wrap)

	d1Again, ok := g1.ClassData(ca.Ref)
	assert.True(t, ok)
	assert.Len(t, d1Again.Users, 0, "g1's class data must not be mutated by a later Add on a clone")

	d2, ok := g2.ClassData(ca.Ref)
	assert.True(t, ok)
	assert.Len(t, d2.Users, 1, "g2 sees the new wrap node as a user of a's class")
}
