// Package rng provides the deterministic, splittable random source used by
// StochasticRuleApplication's rule sampling, plus the small total-ordering
// helpers shared by egraph shape ordering and analysis extraction
// tie-breaking.
//
// Determinism: a Source never reaches for a time-based seed on its own —
// every stream traces back to a caller-supplied int64 seed, so two runs
// given the same seed and the same sequence of Split calls see identical
// sampling decisions.
//
// Concurrency: a Source is not goroutine-safe. Split to hand an independent
// stream to each worker rather than sharing one across goroutines.
package rng
