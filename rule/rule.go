package rule

import (
	"fmt"

	"github.com/eqsat/slotted-egraph/command"
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Searcher finds matches of a rule's left-hand side; parallel hints
// whether it may fan work out across classes rather than run strictly
// sequentially.
type Searcher func(eg *egraph.HashConsEGraph, parallel bool) []Match

// Applier turns a single match into a schedule describing the rewrite
// that match licenses (new nodes plus the union tying them to the
// match's source class).
type Applier func(m Match, eg *egraph.HashConsEGraph) command.Schedule

// ReversibleSearcher pairs a Searcher with its reverse: the would-be
// right-hand side's own pattern, used as the search target. Go function
// values carry no methods, so reversibility is expressed by handing
// FromReversible both directions up front rather than probing a
// plain Searcher for a Reverse method.
type ReversibleSearcher struct {
	Search Searcher
	Reverse Searcher
}

// ReversibleApplier pairs an Applier with its reverse: the would-be
// left-hand side's pattern, used as the instantiation template.
type ReversibleApplier struct {
	Apply Applier
	Reverse Applier
}

// Rule names a rewrite: search for matches, apply each independently.
// reverse is nil unless the rule was built via FromReversible, in which
// case TryReverse can swap search and apply roles — true
// only for structural pattern-to-pattern rules, since a hand-written
// searcher or applier generally has no well-defined inverse.
type Rule struct {
	Name string
	Search Searcher
	Apply func(m Match) command.Schedule
	reverse func() Rule
}

// New builds a Rule directly from an Applier, closing it over eg at
// construction time — the common case where a rule's rewrite side
// doesn't need anything from the e-graph beyond what the match bound.
func New(name string, search Searcher, apply Applier, eg *egraph.HashConsEGraph) Rule {
	return Rule{
		Name: name,
		Search: search,
		Apply: func(m Match) command.Schedule { return apply(m, eg) },
	}
}

// FromReversible builds a Rule from a ReversibleSearcher/ReversibleApplier
// pair, wiring TryReverse to swap both halves and rename the result
// "<name> (reversed)" — the case calls reversible, typically a
// rule whose searcher runs a Pattern's ToSearcher and whose applier runs
// the other Pattern's ToApplier, so the reverse direction is just the two
// Patterns swapped.
func FromReversible(name string, s ReversibleSearcher, a ReversibleApplier, eg *egraph.HashConsEGraph) Rule {
	r := Rule{
		Name: name,
		Search: s.Search,
		Apply: func(m Match) command.Schedule { return a.Apply(m, eg) },
	}
	r.reverse = func() Rule {
		return Rule{
			Name: fmt.Sprintf("%s (reversed)", name),
			Search: s.Reverse,
			Apply: func(m Match) command.Schedule { return a.Reverse(m, eg) },
		}
	}
	return r
}

// TryReverse returns the reversed rule built by FromReversible, or false
// if r wasn't constructed from a reversible searcher/applier pair.
func (r Rule) TryReverse() (Rule, bool) {
	if r.reverse == nil {
		return Rule{}, false
	}
	return r.reverse(), true
}

// Delayed runs search then batches every match's schedule into one,
// concatenating levels and union lists, used by saturation policies that
// want one combined schedule per rule per iteration instead of running
// each match's schedule independently. Every match's schedule starts its
// own handle numbering at 1, so each is shifted by the running handle
// count before being appended — otherwise two matches minting fresh nodes
// in the same call would collide on the same Handle.
func (r Rule) Delayed(eg *egraph.HashConsEGraph, parallel bool) *command.Schedule {
	matches := r.Search(eg, parallel)
	out := command.NewSchedule()
	var base command.Handle
	for _, m := range matches {
		s := r.Apply(m)
		shifted := s.Offset(base)
		out.Levels = append(out.Levels, shifted.Levels...)
		out.Unions = append(out.Unions, shifted.Unions...)
		base += s.HandleCount()
	}
	return out
}

// ValidateRules reports every duplicate rule name found in rules,
// combined via multierr.Append rather than failing on the first one — a
// caller assembling a rule set from several sources wants every collision
// reported in one pass, not a fix-one-rerun-find-the-next loop.
func ValidateRules(rules []Rule) error {
	seen := make(map[string]bool, len(rules))
	var errs error
	for _, r := range rules {
		if seen[r.Name] {
			errs = multierr.Append(errs, errors.Wrapf(ErrDuplicateName, "%q", r.Name))
			continue
		}
		seen[r.Name] = true
	}
	return errs
}
