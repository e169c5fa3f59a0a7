package slot_test

import (
	"testing"

	"github.com/eqsat/slotted-egraph/slot"
	"github.com/stretchr/testify/assert"
)

func TestSlotSet_UnionCommutative(t *testing.T) {
	a := slot.NewSet(slot.Numbered(0), slot.Numbered(2))
	b := slot.NewSet(slot.Numbered(1), slot.Numbered(2))

	assert.True(t, a.Union(b).Equal(b.Union(a)), "union must be commutative")
}

func TestSlotSet_Laws(t *testing.T) {
	a := slot.NewSet(slot.Numbered(0), slot.Numbered(1), slot.Numbered(2))
	b := slot.NewSet(slot.Numbered(1), slot.Numbered(3))

	assert.True(t, a.Union(b).Intersect(a).Equal(a), "(a ∪ b) ∩ a == a")
	assert.Equal(t, 0, a.Diff(a).Len(), "a \\ a == ∅")

	identity := a.Map(func(s slot.Slot) slot.Slot { return s })
	assert.Equal(t, a.Slice(), identity.Slice(), "Map(identity) must be a copy-on-write no-op")
}

func TestSlotSet_Dedup(t *testing.T) {
	s := slot.NewSet(slot.Numbered(1), slot.Numbered(1), slot.Numbered(0))
	assert.Equal(t, 2, s.Len(), "duplicates collapse")
	assert.Equal(t, []slot.Slot{slot.Numbered(0), slot.Numbered(1)}, s.Slice())
}

func TestSlotSet_Subset(t *testing.T) {
	a := slot.NewSet(slot.Numbered(0))
	b := slot.NewSet(slot.Numbered(0), slot.Numbered(1))
	assert.True(t, a.Subset(b))
	assert.False(t, b.Subset(a))
}
