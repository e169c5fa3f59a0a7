// Package unionfind implements the slotted disjoint-set forest that backs
// e-class identity.
//
// An ordinary union-find maps a node to its root. This one maps a node to a
// Call[R] — a (root, renaming) pair — because merging two e-classes with
// different public slot sets requires remembering how the merged-away
// class's slots are renamed into the surviving class's slots. Find follows
// parent links composing renamings as it goes, so the Call[R] returned by
// Find(r) always carries the full renaming from r's original slots to the
// current root's public slots; path compression rewrites intermediate
// links to point directly at the root with the composed renaming, exactly
// as a classic union-find rewrites intermediate links to point at the root.
//
// Forest is generic over the reference type R so that it has no import
// dependency on package egraph (which in turn depends on Forest); egraph
// instantiates Forest[EClassRef].
package unionfind
