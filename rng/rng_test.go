package rng_test

import (
	"testing"

	"github.com/eqsat/slotted-egraph/rng"
	"github.com/stretchr/testify/assert"
)

func TestSource_DeterministicForSameSeed(t *testing.T) {
	a := rng.NewSource(42)
	b := rng.NewSource(42)
	for i := 0; i < 8; i++ {
		assert.Equal(t, a.NextDouble(), b.NextDouble())
	}
}

func TestSource_ZeroSeedRemapsToDefault(t *testing.T) {
	a := rng.NewSource(0)
	b := rng.NewSource(0)
	assert.Equal(t, a.NextDouble(), b.NextDouble())
}

func TestSource_SplitProducesIndependentStream(t *testing.T) {
	base := rng.NewSource(7)
	child := base.Split()

	baseVals := []float64{base.NextDouble(), base.NextDouble()}
	childVals := []float64{child.NextDouble(), child.NextDouble()}

	assert.NotEqual(t, baseVals, childVals)
}

func TestShiftedGeometric_PanicsOnInvalidProbability(t *testing.T) {
	assert.Panics(t, func() { rng.NewShiftedGeometric(0) })
	assert.Panics(t, func() { rng.NewShiftedGeometric(1.5) })
}

func TestShiftedGeometric_SampleIsNonNegative(t *testing.T) {
	g := rng.NewShiftedGeometric(0.3)
	src := rng.NewSource(1234)
	for i := 0; i < 50; i++ {
		assert.GreaterOrEqual(t, g.Sample(src), 0)
	}
}

func TestLexicographic_FirstNonZeroWins(t *testing.T) {
	byLen := func(a, b string) int { return rng.OrderedCompare(len(a), len(b)) }
	byName := func(a, b string) int { return rng.OrderedCompare(a, b) }
	cmp := rng.Lexicographic(byLen, byName)

	assert.Equal(t, 0, cmp("ab", "ab"))
	assert.Less(t, cmp("a", "bb"), 0)
	assert.Greater(t, cmp("bb", "aa"), 0)
}
