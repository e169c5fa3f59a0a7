package saturate

import (
	"github.com/eqsat/slotted-egraph/analysis"
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/slot"
	"github.com/pkg/errors"
)

// ThenRebase extracts extractor's best tree for every class, builds a
// fresh e-graph from just those trees, and unions any two whose trees
// areEquivalent declares equal — trading accumulated e-graph bloat for a
// smaller graph the next iteration starts clean from.
func ThenRebase(extractor *analysis.Extractor, areEquivalent func(a, b egraph.Tree) bool) Strategy {
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		refs := eg.Classes()
		trees := make([]egraph.Tree, 0, len(refs))
		for _, ref := range refs {
			d, ok := eg.ClassData(ref)
			if !ok {
				continue
			}
			call := egraph.EClassCall{Ref: ref, Args: slot.Identity(d.Slots)}
			tree, _, err := extractor.Apply(eg, call)
			if err != nil {
				panic(errors.Wrapf(ErrExtractionFailed, "class %d", ref))
			}
			trees = append(trees, tree)
		}

		fresh := egraph.New()
		calls := make([]egraph.EClassCall, len(trees))
		for i, t := range trees {
			fresh, calls[i] = addTree(fresh, t)
		}

		var pairs [][2]egraph.EClassCall
		for i := 0; i < len(trees); i++ {
			for j := i + 1; j < len(trees); j++ {
				if areEquivalent(trees[i], trees[j]) {
					pairs = append(pairs, [2]egraph.EClassCall{calls[i], calls[j]})
				}
			}
		}

		merged := false
		if len(pairs) > 0 {
			var unionChanged bool
			fresh, unionChanged = fresh.UnionMany(pairs)
			merged = unionChanged
		}

		changed := merged || len(fresh.Classes()) != len(refs)
		return fresh, changed
	}
}

// addTree inserts t's nodes bottom-up into eg, sharing hash-cons hits
// exactly like any other egraph.Add sequence.
func addTree(eg *egraph.HashConsEGraph, t egraph.Tree) (*egraph.HashConsEGraph, egraph.EClassCall) {
	args := make([]egraph.EClassCall, len(t.Args))
	for i, a := range t.Args {
		var call egraph.EClassCall
		eg, call = addTree(eg, a)
		args[i] = call
	}
	return eg.Add(egraph.ENode{Type: t.Type, Defs: t.Defs, Uses: t.Uses, Args: args})
}

// RebaseBetweenIterations runs inner, rebases the result, and repeats
// until inner itself reports no further change — rebasing keeps the
// working e-graph small across iterations that would otherwise only
// ever grow.
func RebaseBetweenIterations(inner Strategy, extractor *analysis.Extractor, areEquivalent func(a, b egraph.Tree) bool) Strategy {
	rebase := ThenRebase(extractor, areEquivalent)
	return func(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
		current := eg
		changedOverall := false
		for {
			next, changed := inner(current)
			if !changed {
				return current, changedOverall
			}
			rebased, _ := rebase(next)
			current = rebased
			changedOverall = true
		}
	}
}
