package rule_test

import (
	"hash/fnv"
	"testing"

	"github.com/eqsat/slotted-egraph/command"
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/pattern"
	"github.com/eqsat/slotted-egraph/rule"
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

func TestRule_ApplyUnionsInstantiatedNodeWithSource(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, addZero := g.Add(egraph.ENode{Type: op("add"), Args: []egraph.EClassCall{zero, zero}})

	// add(x, x) => double(x), a rewrite that mints a fresh node.
	lhs := pattern.Node(op("add"), nil, nil, pattern.VarPattern("x"), pattern.VarPattern("x"))
	rhs := pattern.Node(op("double"), nil, nil, pattern.VarPattern("x"))
	r := rule.FromPatterns("add-self-to-double", lhs, rhs, g)

	matches := r.Search(g, false)
	require.Len(t, matches, 1)

	s := r.Apply(matches[0])
	g2, changed := s.Run(g)
	require.True(t, changed)
	assert.True(t, g2.Contains(addZero.Ref))

	doubleMatches := pattern.Node(op("double"), nil, nil, pattern.VarPattern("y")).ToSearcher()(g2, false)
	require.Len(t, doubleMatches, 1)
	assert.True(t, g2.AreSame(egraph.EClassCall{Ref: doubleMatches[0].Root}, addZero))
}

func TestRule_TryReverseSwapsSearchAndApply(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, _ = g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{zero}})

	lhs := pattern.Node(op("succ"), nil, nil, pattern.VarPattern("x"))
	rhs := pattern.Node(op("wrapped"), nil, nil, pattern.VarPattern("x"))
	r := rule.FromPatterns("succ-to-wrapped", lhs, rhs, g)

	reversed, ok := r.TryReverse()
	require.True(t, ok)
	assert.Equal(t, "succ-to-wrapped (reversed)", reversed.Name)

	// The reversed rule searches for "wrapped", which doesn't exist yet.
	assert.Empty(t, reversed.Search(g, false))
}

func TestRule_NonReversibleRuleReportsFalse(t *testing.T) {
	r := rule.Rule{
		Name: "hand-written",
		Search: func(eg *egraph.HashConsEGraph, parallel bool) []rule.Match {
			return nil
		},
		Apply: func(m rule.Match) command.Schedule { return command.Schedule{} },
	}
	_, ok := r.TryReverse()
	assert.False(t, ok)
}

func TestValidateRules_ReportsAllDuplicates(t *testing.T) {
	dup := rule.Rule{Name: "same"}
	err := rule.ValidateRules([]rule.Rule{dup, dup, dup})
	require.Error(t, err)
	assert.ErrorIs(t, err, rule.ErrDuplicateName)
}
