// Package analysis computes per-e-class semilattice facts over a
// HashConsEGraph snapshot: an Analysis[A] supplies Make/Join/Rename, and a
// Metadata[A] drives those three to a fixpoint over the graph's
// shape-node/user structure. Extraction — picking and materializing the
// cheapest tree per class under a user-supplied cost model — is built on
// top as the one analysis every caller needs, sharing a single comparator
// primitive rather than hand-rolling ordering logic per caller.
package analysis
