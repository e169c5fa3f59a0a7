package rng

import "math"

// Source is a deterministic, splittable random source, used by stochastic
// saturation strategies that need independent sampling streams.
type Source interface {
	// NextDouble returns a uniformly distributed float64 in [0, 1) and
	// advances the stream.
	NextDouble() float64
	// Split derives an independent stream from this one, consuming one
	// draw from this stream in the process: consuming a value from the
	// parent before mixing decorrelates children that reuse the same
	// stream identifier.
	Split() Source
}

// NewSource returns a deterministic Source seeded from seed. seed == 0 is
// remapped to a fixed non-zero default, so a caller who never picked a seed
// still gets a valid, reproducible stream rather than the degenerate
// all-zero one.
func NewSource(seed int64) Source {
	s := seed
	if s == 0 {
		s = defaultSeed
	}
	return &splitMix64Source{state: uint64(s)}
}

const defaultSeed int64 = 1

// splitMix64Source is a SplitMix64 generator: small, fast, and good enough
// avalanche behavior for rule-sampling decisions that need reproducibility,
// not cryptographic strength.
type splitMix64Source struct {
	state uint64
}

func (s *splitMix64Source) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	x := s.state
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

func (s *splitMix64Source) NextDouble() float64 {
	// Take the top 53 bits for a uniform float64 in [0, 1), the usual
	// construction for a 64-bit generator feeding an IEEE double mantissa.
	return float64(s.next()>>11) / float64(1<<53)
}

func (s *splitMix64Source) Split() Source {
	parent := s.next()
	return &splitMix64Source{state: parent ^ 0x9e3779b97f4a7c15}
}

// ShiftedGeometric samples k >= 0 with P(k) = (1-p)^k * p, used by
// StochasticRuleApplication to pick how many rules down a priority-ordered
// list to skip before applying one.
type ShiftedGeometric struct {
	p float64
}

// NewShiftedGeometric returns a sampler for probability p. It panics with
// ErrInvalidProbability if p is not in (0, 1].
func NewShiftedGeometric(p float64) ShiftedGeometric {
	if p <= 0 || p > 1 {
		panic(ErrInvalidProbability)
	}
	return ShiftedGeometric{p: p}
}

// Sample draws k via inverse-CDF sampling: k = floor(log(1-u) / log(1-p)).
func (g ShiftedGeometric) Sample(src Source) int {
	if g.p == 1 {
		return 0
	}
	u := src.NextDouble()
	k := math.Floor(math.Log(1-u) / math.Log(1-g.p))
	if k < 0 || math.IsNaN(k) {
		return 0
	}
	return int(k)
}

// Compare is a three-way comparator: negative if a < b, zero if equal,
// positive if a > b.
type Compare[T any] func(a, b T) int

// Lexicographic folds a sequence of comparators into one that applies them
// in order, returning the first non-zero result (or zero if every
// comparator agrees) — shared by egraph shape ordering and analysis
// extraction's (cost, size, depth, nodeType,...) tie-break tuple.
func Lexicographic[T any](cmps...Compare[T]) Compare[T] {
	return func(a, b T) int {
		for _, cmp := range cmps {
			if r := cmp(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// OrderedCompare builds a Compare for any ordered primitive type.
func OrderedCompare[T int | int64 | uint64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
