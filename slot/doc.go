// Package slot defines Slot, the opaque identifier for bound variables used
// throughout the slotted e-graph, together with SlotMap (mappings between
// slot sets) and SlotSet (immutable sorted sets of slots).
//
// A Slot comes in two flavors:
//
// - numbered — interned by integer; two numbered slots are equal iff
// their numbers are equal. Numbered slots are how patterns and shapes
// refer to "the first bound variable", "the second", and so on.
// - unique — minted fresh on every call to NewUnique; equal only to
// itself. Unique slots back the public slots of freshly created
// e-classes, so two classes never accidentally share identity.
//
// Slots are totally ordered (numbered < unique, then by number / creation
// sequence) so that SlotSet has one canonical sorted form and shape
// canonicalization ("pick the lexicographically least variant") is
// well-defined.
//
//	sNumbered := slot.Numbered(0)
//	sUnique := slot.NewUnique()
//	sNumbered.Less(sUnique) // true
package slot
