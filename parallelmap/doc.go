// Package parallelmap is the concurrency primitive saturation and rule
// search run every matcher/applier over: a small Map[T, R] interface with a
// sequential reference implementation and two pooled implementations
// (unbounded work-stealing via sourcegraph/conc, a fixed-size worker pool via
// golang.org/x/sync/errgroup), plus two composable decorators —
// cancellation and timing — that wrap any Map without changing its
// interface.
//
// Concurrency: every implementation here is safe to call concurrently from
// multiple goroutines as long as the caller's own f does not race on shared
// state; Map itself holds no mutable state between calls other than a
// fixed worker-count configuration.
package parallelmap
