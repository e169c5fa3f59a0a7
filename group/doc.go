// Package group implements PermutationGroup, a finite permutation group over
// slot.Slot values, represented as a stabilizer chain (Schreier-Sims).
//
// An e-class's permutation group records every renaming of its public slots
// under which the class's set of nodes is invariant — e.g. the class holding
// Mul(a, b) once Mul(?x,?y) <-> Mul(?y,?x) has been applied acquires the
// 2-element group {identity, (a b)}, and every further rewrite discovered
// for one ordering is automatically reflected in the other without the
// e-graph needing a second union.
//
// The representation follows a base point and an orbit
// transversal, together with a recursively stored subgroup over the
// stabilizer of the base point. Contains sifts a candidate permutation down
// the chain in O(|base|) lookups; Add extends the chain via Schreier's
// lemma and rebuilds the transversal to closure. AllPerms is provided for
// completeness (used by e-graph variant enumeration) but is exponential in
// the worst case and capped accordingly — see MaxEnumeration.
package group
