package pattern

import (
	"context"

	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/parallelmap"
	"github.com/eqsat/slotted-egraph/slot"
)

// Pattern is both a search template and a rewrite template: Compile walks
// it into a CompiledPattern, and ToApplier walks it again to instantiate a
// MixedTree from a match's bindings. A leaf is either a node pattern
// (Type/Defs/Uses/Args) or a pattern variable.
type Pattern struct {
	IsVar bool
	Var string

	Type NodeTypeOrNil
	Defs []slot.Slot
	Uses []slot.Slot
	Args []Pattern
}

// NodeTypeOrNil is egraph.NodeType, named here only so Pattern's zero value
// (a Var pattern) doesn't require a dummy NodeType.
type NodeTypeOrNil = egraph.NodeType

// Node builds a non-leaf Pattern matching/constructing a node of type t
// binding defs and referencing uses (both pattern slots, distinct from any
// concrete e-graph slot), with args as its sub-patterns.
func Node(t egraph.NodeType, defs, uses []slot.Slot, args...Pattern) Pattern {
	return Pattern{Type: t, Defs: defs, Uses: uses, Args: args}
}

// VarPattern builds a pattern-variable leaf.
func VarPattern(name string) Pattern { return Pattern{IsVar: true, Var: name} }

// Compile assigns registers to p's nodes in pre-order (register 0 is the
// seed the machine is run against) and emits the matching BindNode/BindVar
// instruction for each.
func (p Pattern) Compile() CompiledPattern {
	var prog CompiledPattern
	nextReg := 1
	var walk func(pat Pattern, reg int)
	walk = func(pat Pattern, reg int) {
		if pat.IsVar {
			prog = append(prog, BindVar{Register: reg, Var: pat.Var})
			return
		}
		prog = append(prog, BindNode{
				Register: reg,
				Type: pat.Type,
				DefSlots: pat.Defs,
				UseSlots: pat.Uses,
				ArgCount: len(pat.Args),
		})
		argRegs := make([]int, len(pat.Args))
		for i := range pat.Args {
			argRegs[i] = nextReg
			nextReg++
		}
		for i, a := range pat.Args {
			walk(a, argRegs[i])
		}
	}
	walk(p, 0)
	return prog
}

// ToSearcher returns a Searcher running p against every canonical class of
// an e-graph, seeding register 0 with that class each time.
func (p Pattern) ToSearcher() Searcher[PatternMatch] {
	prog := p.Compile()
	return func(eg *egraph.HashConsEGraph, parallel bool) []PatternMatch {
		classes := eg.Classes()
		runOne := func(ref egraph.EClassRef) ([]PatternMatch, error) {
			d, ok := eg.ClassData(ref)
			if !ok {
				return nil, nil
			}
			seed := egraph.EClassCall{Ref: ref, Args: slot.Identity(d.Slots)}
			var matches []PatternMatch
			run(prog, eg, seed, func(st MachineState) bool {
					matches = append(matches, PatternMatch{Vars: st.Vars, Slots: st.Slots, Root: ref})
					return true
			})
			return matches, nil
		}

		var m parallelmap.Map[egraph.EClassRef, []PatternMatch]
		if parallel {
			m = parallelmap.WorkStealing[egraph.EClassRef, []PatternMatch]{}
		} else {
			m = parallelmap.Sequential[egraph.EClassRef, []PatternMatch]{}
		}
		results, _ := m.Apply(context.Background(), classes, runOne)

		var out []PatternMatch
		for _, r := range results {
			out = append(out, r...)
		}
		return out
	}
}

// ToApplier returns a function instantiating p from a PatternMatch's
// bindings: bound vars/slots are substituted, and any of p's own Defs not
// already bound by the match mint a fresh concrete slot (a new binder the
// rewrite introduces).
func (p Pattern) ToApplier() func(PatternMatch) egraph.MixedTree {
	return func(m PatternMatch) egraph.MixedTree {
		return instantiate(p, m)
	}
}

func instantiate(p Pattern, m PatternMatch) egraph.MixedTree {
	if p.IsVar {
		if t, ok := m.Vars[p.Var]; ok {
			return t
		}
		return egraph.MixedVar(p.Var)
	}
	defs := make([]slot.Slot, len(p.Defs))
	for i, s := range p.Defs {
		if cs, ok := m.Slots.Lookup(s); ok {
			defs[i] = cs
		} else {
			defs[i] = slot.NewUnique()
		}
	}
	uses := make([]slot.Slot, len(p.Uses))
	for i, s := range p.Uses {
		if cs, ok := m.Slots.Lookup(s); ok {
			uses[i] = cs
		} else {
			uses[i] = slot.NewUnique()
		}
	}
	args := make([]egraph.MixedTree, len(p.Args))
	for i, a := range p.Args {
		args[i] = instantiate(a, m)
	}
	return egraph.MixedNode(p.Type, defs, uses, args)
}
