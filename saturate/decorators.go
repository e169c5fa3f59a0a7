package saturate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eqsat/slotted-egraph/analysis"
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/rule"
)

// AnalysisCloser lets a heterogeneous set of analysis.Metadata[A]
// instances (each over its own A) be refreshed or discarded without the
// caller naming every A — CloseAnalysis is the adapter that gives one a
// value satisfying this.
type AnalysisCloser interface {
	refresh(eg *egraph.HashConsEGraph)
	drop()
}

type analysisHandle[A any] struct{ m *analysis.Metadata[A] }

// CloseAnalysis wraps m so it can be passed to AddAnalyses/CloseMetadata/
// DropData alongside metadata instances of other result types.
func CloseAnalysis[A any](m *analysis.Metadata[A]) AnalysisCloser { return analysisHandle[A]{m} }

func (h analysisHandle[A]) refresh(eg *egraph.HashConsEGraph) { h.m.Compute(eg) }
func (h analysisHandle[A]) drop() {}

// AddAnalyses wraps s so that whenever it changes the e-graph, every
// attached analysis is recomputed against the result — a rule applier or
// extractor consuming metas downstream always sees metadata current with
// the latest iteration, without the policy itself needing to know about
// them.
func AddAnalyses(s Strategy, metas...AnalysisCloser) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		next, changed := s(eg)
		if changed {
			for _, m := range metas {
				m.refresh(next)
			}
		}
		return next, changed
	}
}

// CloseMetadata is a Strategy that refreshes every attached analysis
// against the current e-graph and reports no change itself — used as a
// "prime the caches" step composed via ThenApply before a policy that
// depends on up-to-date metadata runs for the first time.
func CloseMetadata(metas...AnalysisCloser) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		for _, m := range metas {
			m.refresh(eg)
		}
		return eg, false
	}
}

// CloseRecording is a Strategy that clears cache, releasing the
// per-rule applied-match records a caching policy accumulated — run it
// between unrelated saturation runs sharing the same cache instance so
// the second run doesn't skip matches the first run already recorded.
func CloseRecording(cache *MatchCache) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		cache.clear()
		return eg, false
	}
}

// DropData calls drop on every attached analysis and, if cache is non-nil,
// clears it. For handles built by CloseAnalysis, drop does nothing: the
// wrapped Metadata keeps its computed results.
func DropData(metas []AnalysisCloser, cache *MatchCache) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		for _, m := range metas {
			m.drop()
		}
		if cache != nil {
			cache.clear()
		}
		return eg, false
	}
}

// MatchCache holds, per rule name, the matches a caching policy has
// already applied — ported across unions so a later iteration recognizes
// a previously-seen match under its new canonical form instead of
// re-applying it.
type MatchCache struct {
	byRule map[string][]rule.Match
}

// NewMatchCache returns an empty cache.
func NewMatchCache() *MatchCache { return &MatchCache{byRule: make(map[string][]rule.Match)} }

func (c *MatchCache) clear() { c.byRule = make(map[string][]rule.Match) }

// matchKey builds a deterministic string identity for m, stable across
// calls within one process run — sufficient for a same-run dedup cache,
// though not meant to be persisted or compared across runs.
func matchKey(m rule.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "src:%d|slots:%v", m.Source, m.Slots)
	keys := make([]string, 0, len(m.Vars))
	for k := range m.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%v", k, m.Vars[k])
	}
	return b.String()
}
