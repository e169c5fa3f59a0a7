package pattern

import "github.com/eqsat/slotted-egraph/egraph"

// Searcher produces a batch of matches of type M against an e-graph;
// parallel hints whether the searcher may fan work out across classes
// (via parallelmap) rather than run strictly sequentially.
type Searcher[M any] func(eg *egraph.HashConsEGraph, parallel bool) []M

// Filter keeps only the matches satisfying pred.
func Filter[M any](s Searcher[M], pred func(M) bool) Searcher[M] {
	return func(eg *egraph.HashConsEGraph, parallel bool) []M {
		in := s(eg, parallel)
		out := make([]M, 0, len(in))
		for _, m := range in {
			if pred(m) {
				out = append(out, m)
			}
		}
		return out
	}
}

// Map transforms every match of s with f.
func Map[M, N any](s Searcher[M], f func(M) N) Searcher[N] {
	return func(eg *egraph.HashConsEGraph, parallel bool) []N {
		in := s(eg, parallel)
		out := make([]N, len(in))
		for i, m := range in {
			out[i] = f(m)
		}
		return out
	}
}

// FlatMap transforms every match of s into zero or more results, flattened.
func FlatMap[M, N any](s Searcher[M], f func(M) []N) Searcher[N] {
	return func(eg *egraph.HashConsEGraph, parallel bool) []N {
		in := s(eg, parallel)
		var out []N
		for _, m := range in {
			out = append(out, f(m)...)
		}
		return out
	}
}

// AndThen chains s into a second searcher built per-match from next,
// running each phase-two search against the same e-graph and flattening
// the results.
func AndThen[M, N any](s Searcher[M], next func(M) Searcher[N]) Searcher[N] {
	return func(eg *egraph.HashConsEGraph, parallel bool) []N {
		in := s(eg, parallel)
		var out []N
		for _, m := range in {
			out = append(out, next(m)(eg, parallel)...)
		}
		return out
	}
}

// Pair is the element type Product emits.
type Pair[A, B any] struct {
	First A
	Second B
}

// Product runs a and b independently and emits their cartesian product.
func Product[A, B any](a Searcher[A], b Searcher[B]) Searcher[Pair[A, B]] {
	return func(eg *egraph.HashConsEGraph, parallel bool) []Pair[A, B] {
		as := a(eg, parallel)
		bs := b(eg, parallel)
		out := make([]Pair[A, B], 0, len(as)*len(bs))
		for _, x := range as {
			for _, y := range bs {
				out = append(out, Pair[A, B]{First: x, Second: y})
			}
		}
		return out
	}
}

// Merge runs s (typically a Product of two PatternMatch searchers) and
// unifies each pair via PatternMatch.Merge, dropping inconsistent pairs.
func Merge(s Searcher[Pair[PatternMatch, PatternMatch]]) Searcher[PatternMatch] {
	return func(eg *egraph.HashConsEGraph, parallel bool) []PatternMatch {
		in := s(eg, parallel)
		out := make([]PatternMatch, 0, len(in))
		for _, p := range in {
			if m, ok := p.First.Merge(p.Second); ok {
				out = append(out, m)
			}
		}
		return out
	}
}
