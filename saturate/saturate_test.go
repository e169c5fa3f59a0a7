package saturate_test

import (
	"hash/fnv"
	"testing"

	"github.com/eqsat/slotted-egraph/analysis"
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/pattern"
	"github.com/eqsat/slotted-egraph/rng"
	"github.com/eqsat/slotted-egraph/rule"
	"github.com/eqsat/slotted-egraph/saturate"
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

// succRule wraps every "succ" node's argument into "wrapped" exactly
// once; a pattern not applicable to its own output, so repeated runs
// converge immediately (good for exercising RepeatUntilStable/policies
// without an infinite growth spiral).
func succRule(g *egraph.HashConsEGraph) rule.Rule {
	lhs := pattern.Node(op("succ"), nil, nil, pattern.VarPattern("x"))
	rhs := pattern.Node(op("wrapped"), nil, nil, pattern.VarPattern("x"))
	return rule.FromPatterns("succ-to-wrapped", lhs, rhs, g)
}

func TestMaximalRuleApplication_AppliesEveryMatch(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, _ = g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{zero}})

	strategy := saturate.MaximalRuleApplication([]rule.Rule{succRule(g)}, false)
	next, changed := strategy(g)
	require.True(t, changed)

	matches := pattern.Node(op("wrapped"), nil, nil, pattern.VarPattern("y")).ToSearcher()(next, false)
	assert.Len(t, matches, 1)
}

func TestRepeatUntilStable_StopsOnceNoRuleMatches(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, _ = g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{zero}})

	r := succRule(g)
	strategy := saturate.RepeatUntilStable(saturate.MaximalRuleApplication([]rule.Rule{r}, false))
	_, changed := strategy(g)
	assert.True(t, changed)
}

func TestMaximalRuleApplicationWithCaching_SkipsAlreadyAppliedMatch(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, _ = g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{zero}})

	r := succRule(g)
	cache := saturate.NewMatchCache()
	strategy := saturate.MaximalRuleApplicationWithCaching([]rule.Rule{r}, cache, false)

	next1, changed1 := strategy(g)
	require.True(t, changed1)

	_, changed2 := strategy(next1)
	assert.False(t, changed2, "second run should find nothing new to apply")
}

func TestBackoffRuleApplication_BansRuleAfterExceedingLimit(t *testing.T) {
	g := egraph.New()
	var zeros []egraph.EClassCall
	for i := 0; i < 5; i++ {
		var c egraph.EClassCall
		g, c = g.Add(egraph.ENode{Type: op("zero" + string(rune('0'+i)))})
		zeros = append(zeros, c)
		g, _ = g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{c}})
	}

	r := succRule(g)
	strategy := saturate.BackoffRuleApplication([]rule.Rule{r}, 2, 3, false)

	next, changed := strategy(g)
	assert.True(t, changed)

	// Five succ matches exceed the limit of two, so the rule is banned and
	// the next call applies nothing.
	_, changed2 := strategy(next)
	assert.False(t, changed2)
}

func TestStochasticRuleApplication_AppliesAtMostK(t *testing.T) {
	g := egraph.New()
	for i := 0; i < 5; i++ {
		var c egraph.EClassCall
		g, c = g.Add(egraph.ENode{Type: op("zero")})
		g, _ = g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{c}})
	}

	r := succRule(g)
	geom := rng.NewShiftedGeometric(0.5)
	src := rng.NewSource(42)
	strategy := saturate.StochasticRuleApplication([]rule.Rule{r}, 2, geom, src, false)

	next, changed := strategy(g)
	require.True(t, changed)

	matches := pattern.Node(op("wrapped"), nil, nil, pattern.VarPattern("y")).ToSearcher()(next, false)
	assert.LessOrEqual(t, len(matches), 2)
}

func TestThenRebase_ProducesFreshGraphWithExtractedTrees(t *testing.T) {
	g := egraph.New()
	g, zero := g.Add(egraph.ENode{Type: op("zero")})
	g, _ = g.Add(egraph.ENode{Type: op("succ"), Args: []egraph.EClassCall{zero}})

	extractor := analysis.Smallest()
	rebase := saturate.ThenRebase(extractor, func(a, b egraph.Tree) bool { return false })
	next, changed := rebase(g)

	assert.False(t, changed)
	assert.Len(t, next.Classes(), len(g.Classes()))
}

func TestThenApply_ReportsChangedIfEitherStageChanged(t *testing.T) {
	noop := saturate.Strategy(func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) { return eg, false })
	changer := saturate.Strategy(func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) { return eg, true })

	_, changed := saturate.ThenApply(noop, changer)(egraph.New())
	assert.True(t, changed)

	_, changed2 := saturate.ThenApply(changer, noop)(egraph.New())
	assert.True(t, changed2)

	_, changed3 := saturate.ThenApply(noop, noop)(egraph.New())
	assert.False(t, changed3)
}
