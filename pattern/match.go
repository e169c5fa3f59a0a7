package pattern

import (
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/slot"
)

// PatternMatch is the result of running a CompiledPattern to a terminal
// state: the pattern variable bindings, the pattern-slot-to-concrete-slot
// binding, and the class the search was seeded from.
type PatternMatch struct {
	Vars map[string]egraph.MixedTree
	Slots slot.SlotMap
	Root egraph.EClassRef
}

// Merge unifies two matches — consistent if every pattern slot and pattern
// variable they both bind agrees — combining into one on success. Var
// agreement is checked structurally, without consulting an e-graph (a
// caller that needs canonicalization-aware equality should canonicalize
// both matches' bindings before calling Merge).
func (a PatternMatch) Merge(b PatternMatch) (PatternMatch, bool) {
	slots := a.Slots
	for _, k := range b.Slots.Keys().Slice() {
		v, _ := b.Slots.Lookup(k)
		if existing, ok := slots.Lookup(k); ok {
			if existing != v {
				return PatternMatch{}, false
			}
			continue
		}
		slots = setSlot(slots, k, v)
	}

	vars := make(map[string]egraph.MixedTree, len(a.Vars)+len(b.Vars))
	for k, v := range a.Vars {
		vars[k] = v
	}
	for k, v := range b.Vars {
		if existing, ok := vars[k]; ok {
			if !equalMixedTreeStruct(existing, v) {
				return PatternMatch{}, false
			}
			continue
		}
		vars[k] = v
	}

	return PatternMatch{Vars: vars, Slots: slots, Root: a.Root}, true
}

func equalMixedTreeStruct(a, b egraph.MixedTree) bool {
	if a.IsAtom != b.IsAtom {
		return false
	}
	if a.IsAtom {
		if a.Atom.IsCall != b.Atom.IsCall {
			return false
		}
		if a.Atom.IsCall {
			return a.Atom.Call.Ref == b.Atom.Call.Ref && a.Atom.Call.Args.Equal(b.Atom.Call.Args)
		}
		return a.Atom.Var == b.Atom.Var
	}
	if !a.Type.Equal(b.Type) || len(a.Args) != len(b.Args) {
		return false
	}
	if !equalSlotSlice(a.Defs, b.Defs) || !equalSlotSlice(a.Uses, b.Uses) {
		return false
	}
	for i := range a.Args {
		if !equalMixedTreeStruct(a.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}
