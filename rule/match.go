package rule

import (
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/slot"
)

// Portable is a Match payload carrying its own e-class references, able to
// canonicalize itself under a new e-graph. A pattern.PatternMatch isn't
// Portable itself (it has no notion of "old" vs "new" graph) — a caller
// wanting caching across unions wraps one in a payload type implementing
// this.
type Portable interface {
	Port(old, new *egraph.HashConsEGraph) (Portable, bool)
}

// Match is a rule searcher's result: a var/slot binding rooted at a
// source class, plus an optional payload for searchers that need to carry
// more than bindings (e.g. a second e-class reference the applier needs
// but no pattern variable names).
type Match struct {
	Vars map[string]egraph.MixedTree
	Slots slot.SlotMap
	Source egraph.EClassRef
	Payload Portable
}

// Port canonicalizes m under new, a graph obtained from old by one or
// more unions: the source class and every e-class-ref-bearing var binding
// are re-resolved to their current root, and the payload (if any) is
// ported too. Port returns false if any referenced class no longer
// exists in new (the caching layer should then drop the stale record
// rather than reuse it). Used by MaximalRuleApplicationWithCaching to
// re-use matches found before a union without re-searching.
func (m Match) Port(old, new *egraph.HashConsEGraph) (Match, bool) {
	root, ok := new.Find(m.Source)
	if !ok {
		return Match{}, false
	}

	vars := make(map[string]egraph.MixedTree, len(m.Vars))
	for k, v := range m.Vars {
		pv, ok := portMixedTree(v, new)
		if !ok {
			return Match{}, false
		}
		vars[k] = pv
	}

	payload := m.Payload
	if payload != nil {
		p, ok := payload.Port(old, new)
		if !ok {
			return Match{}, false
		}
		payload = p
	}

	return Match{Vars: vars, Slots: m.Slots, Source: root.Ref, Payload: payload}, true
}

// portMixedTree re-canonicalizes every EClassCall leaf of t under new,
// leaving pattern-variable leaves and node structure untouched.
func portMixedTree(t egraph.MixedTree, new *egraph.HashConsEGraph) (egraph.MixedTree, bool) {
	if t.IsAtom {
		if !t.Atom.IsCall {
			return t, true
		}
		canon, ok := new.Canonicalize(t.Atom.Call)
		if !ok {
			return egraph.MixedTree{}, false
		}
		return egraph.MixedCall(canon), true
	}

	args := make([]egraph.MixedTree, len(t.Args))
	for i, a := range t.Args {
		pa, ok := portMixedTree(a, new)
		if !ok {
			return egraph.MixedTree{}, false
		}
		args[i] = pa
	}
	return egraph.MixedNode(t.Type, t.Defs, t.Uses, args), true
}
