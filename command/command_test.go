package command_test

import (
	"hash/fnv"
	"testing"

	"github.com/eqsat/slotted-egraph/command"
	"github.com/eqsat/slotted-egraph/egraph"
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

func TestSchedule_SingleLevelAddsNode(t *testing.T) {
	g := egraph.New()

	s := command.NewSchedule().Add(1, command.ENodeSymbol{Type: op("zero")})
	g2, changed := s.Run(g)

	assert.True(t, changed)
	assert.Len(t, g2.Classes(), 1)
}

func TestSchedule_LaterLevelReferencesEarlierHandle(t *testing.T) {
	g := egraph.New()

	s := command.NewSchedule()
	s.Add(1, command.ENodeSymbol{Type: op("zero")})
	s.AddLevel()
	s.Add(2, command.ENodeSymbol{Type: op("succ"), Args: []command.Symbol{command.Virtual(1)}})

	g2, changed := s.Run(g)
	assert.True(t, changed)
	assert.Len(t, g2.Classes(), 2)
}

func TestSchedule_UnionsRunAfterAllLevels(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, one := g.Add(egraph.ENode{Type: op("one")})

	s := command.NewSchedule().Union(command.Real(zero), command.Real(one))
	g2, changed := s.Run(g)

	assert.True(t, changed)
	assert.True(t, g2.AreSame(zero, one))
}

func TestSchedule_HashConsHitDoesNotGrow(t *testing.T) {
	g := egraph.New()
	g, _ = g.Add(egraph.ENode{Type: op("zero")})

	s := command.NewSchedule().Add(1, command.ENodeSymbol{Type: op("zero")})
	g2, changed := s.Run(g)

	assert.False(t, changed)
	assert.Len(t, g2.Classes(), 1)
}

func TestSchedule_UnresolvedVirtualPanics(t *testing.T) {
	g := egraph.New()
	s := command.NewSchedule().Add(1, command.ENodeSymbol{
			Type: op("succ"),
			Args: []command.Symbol{command.Virtual(99)},
	})

	require.Panics(t, func() { s.Run(g) })
}
