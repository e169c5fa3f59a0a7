package saturate

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/eqsat/slotted-egraph/command"
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/rng"
	"github.com/eqsat/slotted-egraph/rule"
)

// applyAll runs every match through its rule's Apply, merging every
// resulting schedule's levels/unions into one combined schedule. Each
// match's schedule is built by its own levelBuilder, whose handle counter
// restarts at 1, so every schedule after the first is shifted by the
// running handle count before being appended — without this, two matches
// that each mint a fresh node would both claim Handle(1) and Schedule.Run
// would panic on the duplicate the moment it resolves that level.
func applyAll(rules []rule.Rule, matchesByRule [][]rule.Match) *command.Schedule {
	combined := command.NewSchedule()
	var base command.Handle
	for i, matches := range matchesByRule {
		for _, m := range matches {
			s := rules[i].Apply(m)
			shifted := s.Offset(base)
			combined.Levels = append(combined.Levels, shifted.Levels...)
			combined.Unions = append(combined.Unions, shifted.Unions...)
			base += s.HandleCount()
		}
	}
	return combined
}

// MaximalRuleApplication runs every rule's searcher, then applies every
// match found, once per iteration — the simplest policy in the package.
func MaximalRuleApplication(rules []rule.Rule, parallel bool) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		matchesByRule := make([][]rule.Match, len(rules))
		for i, r := range rules {
			matchesByRule[i] = r.Search(eg, parallel)
		}
		return applyAll(rules, matchesByRule).Run(eg)
	}
}

// MaximalRuleApplicationWithCaching behaves like MaximalRuleApplication
// but skips matches already recorded in cache from a previous call
// (ported forward across this call's unions via Match.Port), so a rule
// that keeps matching the same spot after it's already been rewritten
// doesn't reapply indefinitely.
func MaximalRuleApplicationWithCaching(rules []rule.Rule, cache *MatchCache, parallel bool) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		matchesByRule := make([][]rule.Match, len(rules))
		newRecords := make(map[string][]rule.Match, len(rules))

		for i, r := range rules {
			recorded := cache.byRule[r.Name]
			seen := make(map[string]bool, len(recorded))
			for _, m := range recorded {
				seen[matchKey(m)] = true
			}
			var fresh []rule.Match
			for _, m := range r.Search(eg, parallel) {
				k := matchKey(m)
				if seen[k] {
					continue
				}
				seen[k] = true
				fresh = append(fresh, m)
			}
			matchesByRule[i] = fresh
			newRecords[r.Name] = append(append([]rule.Match(nil), recorded...), fresh...)
		}

		next, changed := applyAll(rules, matchesByRule).Run(eg)

		ported := make(map[string][]rule.Match, len(newRecords))
		for name, matches := range newRecords {
			var out []rule.Match
			for _, m := range matches {
				if p, ok := m.Port(eg, next); ok {
					out = append(out, p)
				}
			}
			ported[name] = out
		}
		cache.byRule = ported

		return next, changed
	}
}

// BackoffRuleApplication behaves like MaximalRuleApplication, but any
// rule whose match count on an iteration exceeds applicationLimit is
// banned from subsequent iterations for a growing number of iterations
// — banLength on the first offense, then backoff.ExponentialBackOff's
// successive intervals (in whole seconds, truncated, never below
// banLength) for every later offense — so a rule
// that matches explosively doesn't dominate every iteration's budget.
func BackoffRuleApplication(rules []rule.Rule, applicationLimit, banLength int, parallel bool) Strategy {
	bannedUntil := make(map[string]int, len(rules))
	growth := make(map[string]*backoff.ExponentialBackOff, len(rules))
	iteration := 0

	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		iteration++
		matchesByRule := make([][]rule.Match, len(rules))

		for i, r := range rules {
			if until, banned := bannedUntil[r.Name]; banned && iteration <= until {
				continue
			}
			matches := r.Search(eg, parallel)
			if len(matches) > applicationLimit {
				grown := banLength
				if b, ok := growth[r.Name]; ok {
					grown = int(b.NextBackOff().Seconds())
					if grown < banLength {
						grown = banLength
					}
				} else {
					b = backoff.NewExponentialBackOff()
					b.InitialInterval = time.Duration(banLength) * time.Second
					b.MaxElapsedTime = 0
					growth[r.Name] = b
				}
				bannedUntil[r.Name] = iteration + grown
				matches = matches[:applicationLimit]
			}
			matchesByRule[i] = matches
		}

		return applyAll(rules, matchesByRule).Run(eg)
	}
}

// StochasticRuleApplication samples at most k matches per iteration,
// weighted toward the front of rules (a priority order, highest-priority
// first) via geom — a shifted-geometric "how many rules down the list to
// skip" draw per sample. Each
// sampled rule is searched at most once per iteration and its matches
// consumed front-to-back across repeated samples of that rule.
func StochasticRuleApplication(rules []rule.Rule, k int, geom rng.ShiftedGeometric, src rng.Source, parallel bool) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		if len(rules) == 0 || k <= 0 {
			return eg, false
		}

		matchesByRule := make([][]rule.Match, len(rules))
		searched := make([]bool, len(rules))
		cursor := make([]int, len(rules))
		applied := make([][]rule.Match, len(rules))

		maxAttempts := k * 8
		count := 0
		for attempt := 0; count < k && attempt < maxAttempts; attempt++ {
			idx := geom.Sample(src)
			if idx >= len(rules) {
				idx = len(rules) - 1
			}
			if !searched[idx] {
				matchesByRule[idx] = rules[idx].Search(eg, parallel)
				searched[idx] = true
			}
			if cursor[idx] >= len(matchesByRule[idx]) {
				if allExhausted(searched, matchesByRule, cursor) {
					break
				}
				continue
			}
			applied[idx] = append(applied[idx], matchesByRule[idx][cursor[idx]])
			cursor[idx]++
			count++
		}

		return applyAll(rules, applied).Run(eg)
	}
}

func allExhausted(searched []bool, matchesByRule [][]rule.Match, cursor []int) bool {
	for i := range matchesByRule {
		if !searched[i] {
			return false
		}
		if cursor[i] < len(matchesByRule[i]) {
			return false
		}
	}
	return true
}
