package slot

import (
	"fmt"
	"sync/atomic"
)

// uniqueID is the identity token backing a unique Slot. Only pointer
// identity matters; the int is purely a human-readable creation sequence
// number used by String/Less so output and ordering stay deterministic in
// tests and debugger output.
type uniqueID struct {
	seq int
}

// Slot is an opaque identifier for a bound variable (an alpha-conversion
// unit). The zero value is not a valid Slot; always construct one via
// Numbered or NewUnique.
//
// Slot is comparable: two Slot values obtained from Numbered with the same
// number compare equal; two Slot values obtained from distinct NewUnique
// calls never compare equal, even if their creation-sequence numbers
// coincide (identity, not value, is what is compared for unique slots).
type Slot struct {
	numbered bool
	n int
	unique *uniqueID
}

// uniqueSeq is a process-wide monotonic counter giving each unique slot the
// creation sequence number that String prints and Less orders by. It is
// advanced atomically, so concurrent NewUnique calls never share a number.
var uniqueSeq atomic.Int64

// Numbered returns the interned numbered slot for n. Numbered slots are how
// shapes and patterns name "the k-th bound variable in first-appearance
// order"; calling Numbered(n) twice with the same n yields equal slots.
func Numbered(n int) Slot {
	return Slot{numbered: true, n: n}
}

// NewUnique mints a fresh slot, distinct from every other slot ever
// created. Used for an e-class's public slots and for filling in gaps when
// a SlotMap's fresh composition needs a target that doesn't exist yet.
func NewUnique() Slot {
	return Slot{unique: &uniqueID{seq: int(uniqueSeq.Add(1))}}
}

// IsNumbered reports whether s is a numbered slot.
func (s Slot) IsNumbered() bool { return s.numbered }

// Equal reports whether s and o are the same slot. Exported so packages
// comparing generic analysis facts that embed Slot values (e.g. via
// go-cmp) can rely on it instead of reflecting into Slot's unexported
// fields.
func (s Slot) Equal(o Slot) bool { return s == o }

// Number returns the interned number of a numbered slot and true, or
// (0, false) if s is a unique slot.
func (s Slot) Number() (int, bool) {
	if s.numbered {
		return s.n, true
	}
	return 0, false
}

// Less gives Slot its total order: every numbered slot compares before
// every unique slot; numbered slots compare by number; unique slots compare
// by creation sequence.
func (s Slot) Less(o Slot) bool {
	if s.numbered != o.numbered {
		return s.numbered // numbered < unique
	}
	if s.numbered {
		return s.n < o.n
	}
	return s.unique.seq < o.unique.seq
}

// String renders a Slot for debugging: "$3" for numbered slot 3, "#7" for
// the unique slot with creation sequence 7.
func (s Slot) String() string {
	if s.numbered {
		return fmt.Sprintf("$%d", s.n)
	}
	return fmt.Sprintf("#%d", s.unique.seq)
}
