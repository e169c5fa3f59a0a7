package command

import (
	"fmt"

	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/slot"
	"github.com/pkg/errors"
)

// Handle names a not-yet-added class within a schedule, resolved to a real
// EClassCall once the level that adds it has run.
type Handle int64

// Symbol is either a class that already exists (Real) or a forward
// reference to one still pending within the same schedule (Virtual).
type Symbol struct {
	isReal bool
	real egraph.EClassCall
	virtual Handle
}

// Real wraps an already-resolved class, usable as an ENodeSymbol argument
// or union operand exactly as it stands (its own Args is the renaming
// that applies at whatever position it's plugged into).
func Real(call egraph.EClassCall) Symbol { return Symbol{isReal: true, real: call} }

// Virtual wraps a forward reference to a class some earlier level of the
// same schedule will add under handle h.
func Virtual(h Handle) Symbol { return Symbol{virtual: h} }

// ENodeSymbol is an egraph.ENode whose argument positions are symbols
// rather than resolved EClassCalls, so it can be built before the classes
// it refers to exist.
type ENodeSymbol struct {
	Type egraph.NodeType
	Defs []slot.Slot
	Uses []slot.Slot
	Args []Symbol
}

type levelAdd struct {
	Handle Handle
	Node ENodeSymbol
}

// Schedule is a sequence of addition levels — each level's nodes
// may reference handles minted by any earlier level, never its own or a
// later one — followed by a set of union pairs run once every level has
// landed. this is the deferred-application vocabulary rule
// search/apply builds against, so a rule can describe a whole rewrite
// (new nodes plus the union tying them to the match) without touching a
// real e-graph until Run.
type Schedule struct {
	Levels [][]levelAdd
	Unions [][2]Symbol
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule { return &Schedule{} }

// AddLevel opens a new (initially empty) addition level.
func (s *Schedule) AddLevel() *Schedule {
	s.Levels = append(s.Levels, nil)
	return s
}

// Add appends node to the current level (opening one first if the
// schedule has none yet), to be reified as handle once the schedule runs.
func (s *Schedule) Add(handle Handle, node ENodeSymbol) *Schedule {
	if len(s.Levels) == 0 {
		s.AddLevel()
	}
	last := len(s.Levels) - 1
	s.Levels[last] = append(s.Levels[last], levelAdd{Handle: handle, Node: node})
	return s
}

// Union schedules a and b to be merged after every level has run.
func (s *Schedule) Union(a, b Symbol) *Schedule {
	s.Unions = append(s.Unions, [2]Symbol{a, b})
	return s
}

// HandleCount returns the number of distinct handles s mints across all its
// levels — the smallest base a caller can pass to Offset on the next
// schedule it merges after s without any handle colliding with one of s's.
func (s *Schedule) HandleCount() Handle {
	var n Handle
	for _, level := range s.Levels {
		n += Handle(len(level))
	}
	return n
}

// Offset returns a copy of s with every handle — both level-add handles and
// Virtual symbol references, including those nested inside ENodeSymbol
// args — shifted by base. A caller merging several independently built
// schedules into one (each built by its own levelBuilder, each restarting
// its handle counter at 1) uses this to keep every schedule's handles
// distinct before concatenating their Levels/Unions, so Run never sees two
// level-adds claiming the same Handle.
func (s *Schedule) Offset(base Handle) *Schedule {
	if base == 0 {
		return s
	}
	out := &Schedule{
		Levels: make([][]levelAdd, len(s.Levels)),
		Unions: make([][2]Symbol, len(s.Unions)),
	}
	for i, level := range s.Levels {
		shifted := make([]levelAdd, len(level))
		for j, la := range level {
			shifted[j] = levelAdd{Handle: la.Handle + base, Node: offsetNode(la.Node, base)}
		}
		out.Levels[i] = shifted
	}
	for i, u := range s.Unions {
		out.Unions[i] = [2]Symbol{offsetSymbol(u[0], base), offsetSymbol(u[1], base)}
	}
	return out
}

func offsetNode(n ENodeSymbol, base Handle) ENodeSymbol {
	args := make([]Symbol, len(n.Args))
	for i, a := range n.Args {
		args[i] = offsetSymbol(a, base)
	}
	return ENodeSymbol{Type: n.Type, Defs: n.Defs, Uses: n.Uses, Args: args}
}

func offsetSymbol(sym Symbol, base Handle) Symbol {
	if sym.isReal {
		return sym
	}
	return Symbol{virtual: sym.virtual + base}
}

// Run resolves every level in order, adding its nodes via egraph.TryAddMany
// so hash-cons hits within and across levels are shared, then runs the
// accumulated unions. It returns the new e-graph and whether anything
// actually changed (a fresh class was minted, or some union had an effect).
// Run panics with ErrUnresolvedSymbol if a Virtual symbol references a
// handle no earlier level produced — that is a malformed schedule, not a
// recoverable runtime condition.
func (s *Schedule) Run(eg *egraph.HashConsEGraph) (*egraph.HashConsEGraph, bool) {
	reification := make(map[Handle]egraph.EClassCall)
	resolve := func(sym Symbol) egraph.EClassCall {
		if sym.isReal {
			return sym.real
		}
		call, ok := reification[sym.virtual]
		if !ok {
			panic(errors.Wrapf(ErrUnresolvedSymbol, "handle %d", sym.virtual))
		}
		return call
	}

	current := eg
	changed := false
	for _, level := range s.Levels {
		nodes := make([]egraph.ENode, len(level))
		for i, la := range level {
			args := make([]egraph.EClassCall, len(la.Node.Args))
			for j, sym := range la.Node.Args {
				args[j] = resolve(sym)
			}
			nodes[i] = egraph.ENode{
				Type: la.Node.Type,
				Defs: la.Node.Defs,
				Uses: la.Node.Uses,
				Args: args,
			}
		}

		newGraph, calls, grew := current.TryAddMany(nodes)
		current = newGraph
		if grew {
			changed = true
		}
		for i, la := range level {
			if _, dup := reification[la.Handle]; dup {
				panic(fmt.Sprintf("command: handle %d added twice", la.Handle))
			}
			reification[la.Handle] = calls[i]
		}
	}

	if len(s.Unions) > 0 {
		pairs := make([][2]egraph.EClassCall, len(s.Unions))
		for i, u := range s.Unions {
			pairs[i] = [2]egraph.EClassCall{resolve(u[0]), resolve(u[1])}
		}
		merged, unionChanged := current.UnionMany(pairs)
		current = merged
		if unionChanged {
			changed = true
		}
	}

	return current, changed
}
