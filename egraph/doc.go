// Package egraph implements the slotted, hash-consed e-graph:
// the canonical e-node store, per-class e-class data (nodes, users,
// discovered slot symmetries, public slot set), and the add/union/rebuild
// operations that keep its invariants intact.
//
// The e-graph is a value: HashConsEGraph.Add and HashConsEGraph.UnionMany
// return a new graph rather than mutating the receiver in place, so a
// caller holding an older snapshot can keep using it safely while another
// goroutine builds on a newer one. Rebuild
// — the fixpoint that restores every invariant after a batch of unions — is
// sequential over its five interacting worklists (union,
// permutation-addition, slot-shrinking, node-repair, users-repair),
// including per-node canonicalization; it does not use parallelmap.
//
// Slot identifiers (package slot), permutation groups recording an
// e-class's discovered symmetries (package group), and the underlying
// slotted disjoint-set forest (package unionfind) are the three supporting
// packages this one builds on; see each for its own design notes.
package egraph
