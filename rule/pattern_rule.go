package rule

import (
	"github.com/eqsat/slotted-egraph/command"
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/pattern"
	"github.com/eqsat/slotted-egraph/slot"
	"github.com/pkg/errors"
)

// ErrUnboundVariable is wrapped (per variable name) if a pattern's
// right-hand side still references an unbound variable once instantiated
// — a malformed rule (the left-hand side never bound it), not a runtime
// condition a caller can recover from.
var ErrUnboundVariable = errors.New("rule: right-hand side references an unbound variable")

// ErrSourceClassGone is wrapped (per class ref) if a match's source class
// no longer exists by the time its applier runs — a stale Match a caller
// forgot to Port across a union.
var ErrSourceClassGone = errors.New("rule: match's source class no longer exists")

func fromPatternMatch(pm pattern.PatternMatch) Match {
	return Match{Vars: pm.Vars, Slots: pm.Slots, Source: pm.Root}
}

// FromPatterns builds a reversible Rule rewriting lhs to rhs: matches of
// lhs become Match values, and applying one schedules rhs's
// instantiation (minting fresh classes level by level bottom-up) unioned
// with the match's source class. The reverse direction is just lhs and
// rhs swapped. reversibility is this package's main intended
// way to build one, pattern.Pattern being the structural searcher/applier
// pair it names.
func FromPatterns(name string, lhs, rhs pattern.Pattern, eg *egraph.HashConsEGraph) Rule {
	forward := ReversibleSearcher{
		Search: adaptSearcher(lhs),
		Reverse: adaptSearcher(rhs),
	}
	backward := ReversibleApplier{
		Apply: adaptApplier(rhs),
		Reverse: adaptApplier(lhs),
	}
	return FromReversible(name, forward, backward, eg)
}

func adaptSearcher(p pattern.Pattern) Searcher {
	s := p.ToSearcher()
	return func(eg *egraph.HashConsEGraph, parallel bool) []Match {
		pms := s(eg, parallel)
		out := make([]Match, len(pms))
		for i, pm := range pms {
			out[i] = fromPatternMatch(pm)
		}
		return out
	}
}

func adaptApplier(p pattern.Pattern) Applier {
	apply := p.ToApplier()
	return func(m Match, eg *egraph.HashConsEGraph) command.Schedule {
		tree := apply(pattern.PatternMatch{Vars: m.Vars, Slots: m.Slots, Root: m.Source})
		lb := &levelBuilder{byDepth: make(map[int][]pendingAdd)}
		root, _ := lb.convert(tree)

		s := command.NewSchedule()
		for depth := 1; depth <= lb.maxDepth; depth++ {
			s.AddLevel()
			for _, p := range lb.byDepth[depth] {
				s.Add(p.handle, p.node)
			}
		}

		d, ok := eg.ClassData(m.Source)
		if !ok {
			panic(errors.Wrapf(ErrSourceClassGone, "class %d", m.Source))
		}
		sourceCall := egraph.EClassCall{Ref: m.Source, Args: slot.Identity(d.Slots)}
		s.Union(root, command.Real(sourceCall))
		return *s
	}
}

type pendingAdd struct {
	handle command.Handle
	node command.ENodeSymbol
}

// levelBuilder walks a MixedTree bottom-up, assigning each freshly
// instantiated node a level equal to one more than its deepest argument's
// level, so Schedule.Run resolves every argument symbol before the
// level that references it runs.
type levelBuilder struct {
	byDepth map[int][]pendingAdd
	handle command.Handle
	maxDepth int
}

func (lb *levelBuilder) convert(t egraph.MixedTree) (command.Symbol, int) {
	if t.IsAtom {
		if t.Atom.IsCall {
			return command.Real(t.Atom.Call), 0
		}
		panic(errors.Wrapf(ErrUnboundVariable, "%q", t.Atom.Var))
	}

	args := make([]command.Symbol, len(t.Args))
	maxChildDepth := 0
	for i, a := range t.Args {
		sym, d := lb.convert(a)
		args[i] = sym
		if d > maxChildDepth {
			maxChildDepth = d
		}
	}

	depth := maxChildDepth + 1
	if depth > lb.maxDepth {
		lb.maxDepth = depth
	}
	lb.handle++
	h := lb.handle
	lb.byDepth[depth] = append(lb.byDepth[depth], pendingAdd{
			handle: h,
			node: command.ENodeSymbol{Type: t.Type, Defs: t.Defs, Uses: t.Uses, Args: args},
	})
	return command.Virtual(h), depth
}
