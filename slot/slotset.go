package slot

import (
	"sort"
	"strings"

	"golang.org/x/exp/slices"
)

// SlotSet is an immutable, sorted, deduplicated set of slots.
//
// Every constructor and every mutating-looking operation (Union, Intersect,
// Diff, Map) returns a new SlotSet and never modifies the receiver, so a
// SlotSet can be shared freely between e-classes without copying.
type SlotSet struct {
	s []Slot // sorted ascending, no duplicates
}

// Empty is the empty SlotSet, safe to use as a zero value.
var Empty = SlotSet{}

// NewSet builds a SlotSet from an arbitrary slice, sorting and deduplicating
// as needed. The input slice is never retained.
func NewSet(slots...Slot) SlotSet {
	if len(slots) == 0 {
		return Empty
	}
	cp := append([]Slot(nil), slots...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Less(cp[j]) })
	out := cp[:1]
	for _, s := range cp[1:] {
		if !out[len(out)-1].equal(s) {
			out = append(out, s)
		}
	}
	return SlotSet{s: out}
}

func (a Slot) equal(b Slot) bool { return a == b }

// Len returns the number of slots in the set.
func (ss SlotSet) Len() int { return len(ss.s) }

// Slice returns the set's slots in ascending canonical order. The returned
// slice must not be mutated by the caller.
func (ss SlotSet) Slice() []Slot { return ss.s }

// Contains reports whether s is a member of ss.
func (ss SlotSet) Contains(s Slot) bool {
	_, ok := slices.BinarySearchFunc(ss.s, s, func(a, b Slot) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	return ok
}

// Subset reports whether every slot in ss is also in other.
func (ss SlotSet) Subset(other SlotSet) bool {
	for _, s := range ss.s {
		if !other.Contains(s) {
			return false
		}
	}
	return true
}

// Equal reports whether ss and other contain exactly the same slots.
func (ss SlotSet) Equal(other SlotSet) bool {
	if len(ss.s) != len(other.s) {
		return false
	}
	for i := range ss.s {
		if ss.s[i] != other.s[i] {
			return false
		}
	}
	return true
}

// Union returns the sorted union of ss and other.
func (ss SlotSet) Union(other SlotSet) SlotSet {
	if len(other.s) == 0 {
		return ss
	}
	if len(ss.s) == 0 {
		return other
	}
	merged := make([]Slot, 0, len(ss.s)+len(other.s))
	i, j := 0, 0
	for i < len(ss.s) && j < len(other.s) {
		switch {
		case ss.s[i].Less(other.s[j]):
			merged = append(merged, ss.s[i])
			i++
		case other.s[j].Less(ss.s[i]):
			merged = append(merged, other.s[j])
			j++
		default:
			merged = append(merged, ss.s[i])
			i++
			j++
		}
	}
	merged = append(merged, ss.s[i:]...)
	merged = append(merged, other.s[j:]...)
	return SlotSet{s: merged}
}

// Intersect returns the sorted intersection of ss and other.
func (ss SlotSet) Intersect(other SlotSet) SlotSet {
	if len(ss.s) == 0 || len(other.s) == 0 {
		return Empty
	}
	var out []Slot
	i, j := 0, 0
	for i < len(ss.s) && j < len(other.s) {
		switch {
		case ss.s[i].Less(other.s[j]):
			i++
		case other.s[j].Less(ss.s[i]):
			j++
		default:
			out = append(out, ss.s[i])
			i++
			j++
		}
	}
	return SlotSet{s: out}
}

// Diff returns the slots in ss that are not in other (ss minus other).
func (ss SlotSet) Diff(other SlotSet) SlotSet {
	if len(other.s) == 0 {
		return ss
	}
	var out []Slot
	for _, s := range ss.s {
		if !other.Contains(s) {
			out = append(out, s)
		}
	}
	return SlotSet{s: out}
}

// Map applies f to every slot and rebuilds a SlotSet from the results.
// If f is the identity function on every element, the receiver itself is
// returned (copy-on-write), so callers can cheaply detect a no-op rename.
func (ss SlotSet) Map(f func(Slot) Slot) SlotSet {
	changed := false
	mapped := make([]Slot, len(ss.s))
	for i, s := range ss.s {
		mapped[i] = f(s)
		if mapped[i] != s {
			changed = true
		}
	}
	if !changed {
		return ss
	}
	return NewSet(mapped...)
}

// String renders the set as "{$0, $1, #3}".
func (ss SlotSet) String() string {
	parts := make([]string, len(ss.s))
	for i, s := range ss.s {
		parts[i] = s.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
