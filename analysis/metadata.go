package analysis

import (
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/slot"
	"github.com/google/go-cmp/cmp"
)

// Analysis is a semilattice over per-class facts of type A:
//
// - Make assembles the fact a single shape node contributes, given the
// facts already computed for each of its arguments (in the same order
// as node.Args, each already renamed into the node's own shape slots —
// Metadata handles that renaming, so Make never needs to know a slot
// outside node.Defs/node.Uses).
// - Join combines two facts for the same class into one and must be
// associative, commutative, and idempotent — Metadata's fixpoint
// depends on Join tolerating any evaluation order and repetition.
// - Rename applies a slot substitution to a fact produced under one
// numbering, moving it into another (e.g. from a class's own public
// slots into an argument call site's slots, or vice versa).
type Analysis[A any] interface {
	Make(node egraph.ENode, argResults []A) A
	Join(a, b A) A
	Rename(result A, renaming slot.SlotMap) A
}

// Metadata stores one A per class, expressed in terms of that class's own
// public slots, and keeps it current via the worklist: seed
// every class from its nullary nodes, then whenever a class's value
// changes, recompute every class that has a node referencing it, joining
// the new contribution into what that class already holds.
type Metadata[A any] struct {
	an Analysis[A]
	data map[egraph.EClassRef]A
}

// New returns an empty Metadata driven by an. Call Compute (or Refine)
// before reading any result.
func New[A any](an Analysis[A]) *Metadata[A] {
	return &Metadata[A]{an: an, data: make(map[egraph.EClassRef]A)}
}

// Get returns the cached fact for ref, canonicalized against eg first so a
// stale or non-canonical ref still resolves.
func (m *Metadata[A]) Get(eg *egraph.HashConsEGraph, ref egraph.EClassRef) (A, bool) {
	call, ok := eg.Find(ref)
	if !ok {
		var zero A
		return zero, false
	}
	v, ok := m.data[call.Ref]
	if !ok {
		var zero A
		return zero, false
	}
	return m.an.Rename(v, call.Args), true
}

// Compute discards any cached results and recomputes every class in eg
// from scratch.
func (m *Metadata[A]) Compute(eg *egraph.HashConsEGraph) {
	m.data = make(map[egraph.EClassRef]A)
	m.fixpoint(eg, eg.Classes())
}

// Refine recomputes starting from changed — the classes a rebuild or an Add
// just touched — reusing everything already cached elsewhere. Incremental
// updates on add/union drive Metadata through this entry point rather than
// a full Compute.
func (m *Metadata[A]) Refine(eg *egraph.HashConsEGraph, changed []egraph.EClassRef) {
	if m.data == nil {
		m.data = make(map[egraph.EClassRef]A)
	}
	m.fixpoint(eg, changed)
}

// fixpoint drains a worklist seeded with seeds, recomputing each class's
// value from its own shape nodes and enqueueing its users whenever the
// value actually changes.
func (m *Metadata[A]) fixpoint(eg *egraph.HashConsEGraph, seeds []egraph.EClassRef) {
	queued := make(map[egraph.EClassRef]bool, len(seeds))
	queue := make([]egraph.EClassRef, 0, len(seeds))
	push := func(ref egraph.EClassRef) {
		if !queued[ref] {
			queued[ref] = true
			queue = append(queue, ref)
		}
	}
	for _, ref := range seeds {
		push(ref)
	}

	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		queued[ref] = false

		val, ok := m.evaluate(eg, ref)
		if !ok {
			continue
		}
		old, existed := m.data[ref]
		joined := val
		if existed {
			joined = m.an.Join(old, val)
		}
		if existed && cmp.Equal(old, joined) {
			continue
		}
		m.data[ref] = joined
		for _, owner := range eg.UserOwners(ref) {
			push(owner)
		}
	}
}

// evaluate folds Make across every shape node of ref's class, renaming each
// result through the node's argument calls and the node's own slot
// renaming so the returned fact is expressed in ref's class's own public
// slots. Nodes with an argument whose fact is not yet available are
// skipped. It returns ok == false when ref's class is unknown or when no
// node of the class has all its argument facts available, deferring ref
// until one has.
func (m *Metadata[A]) evaluate(eg *egraph.HashConsEGraph, ref egraph.EClassRef) (A, bool) {
	d, ok := eg.ClassData(ref)
	if !ok {
		var zero A
		return zero, false
	}
	shapes := eg.Nodes(egraph.EClassCall{Ref: ref, Args: slot.Identity(d.Slots)})

	var acc A
	have := false
	for _, sc := range shapes {
		node := sc.Shape
		argResults := make([]A, len(node.Args))
		ready := true
		for i, a := range node.Args {
			av, ok := m.data[a.Ref]
			if !ok {
				ready = false
				break
			}
			argResults[i] = m.an.Rename(av, a.Args)
		}
		if !ready {
			continue
		}
		val := m.an.Rename(m.an.Make(node, argResults), sc.Renaming)
		if !have {
			acc = val
			have = true
		} else {
			acc = m.an.Join(acc, val)
		}
	}
	if !have {
		var zero A
		return zero, false
	}
	return acc, true
}
