package saturate

import (
	"context"
	"time"

	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/parallelmap"
)

// Strategy takes an e-graph and returns the next one plus whether
// anything changed — Go's stand-in for Option[new_egraph]
// (false = None, no match found this round, which is not a failure).
type Strategy func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool)

// RepeatUntilStable runs s repeatedly, feeding each result back in, until
// an iteration reports no change. The returned bool is true iff at least
// one iteration changed something.
func RepeatUntilStable(s Strategy) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		current := eg
		changedOverall := false
		for {
			next, changed := s(current)
			if !changed {
				return current, changedOverall
			}
			current = next
			changedOverall = true
		}
	}
}

// WithIterationLimit runs s at most n times, stopping early if an
// iteration reports no change.
func WithIterationLimit(s Strategy, n int) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		current := eg
		changedOverall := false
		for i := 0; i < n; i++ {
			next, changed := s(current)
			if !changed {
				return current, changedOverall
			}
			current = next
			changedOverall = true
		}
		return current, changedOverall
	}
}

// WithTimeout runs s repeatedly until it stabilizes or d elapses,
// cooperatively: the deadline is checked between iterations via a
// parallelmap.CancellationToken rather than preempting a running
// iteration mid-flight (an iteration already in progress always finishes).
func WithTimeout(s Strategy, d time.Duration) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		ctx, cancel := context.WithTimeout(context.Background(), d)
		defer cancel()
		token := parallelmap.NewCancellationToken()
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				token.Cancel()
			case <-done:
			}
		}()

		current := eg
		changedOverall := false
		for {
			if token.IsCanceled() {
				return current, changedOverall
			}
			next, changed := s(current)
			if !changed {
				return current, changedOverall
			}
			current = next
			changedOverall = true
		}
	}
}

// WithChangeLogger runs s, calling observe(old, new) whenever it reports
// a change — used to surface per-iteration transitions to a caller
// without baking logging into the policy itself.
func WithChangeLogger(s Strategy, observe func(old, new *egraph.HashConsEGraph)) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		next, changed := s(eg)
		if changed {
			observe(eg, next)
		}
		return next, changed
	}
}

// ThenApply sequences a then b, threading a's output into b and
// reporting a change if either stage did.
func ThenApply(a, b Strategy) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		mid, c1 := a(eg)
		final, c2 := b(mid)
		return final, c1 || c2
	}
}
