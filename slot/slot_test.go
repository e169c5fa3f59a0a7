package slot_test

import (
	"testing"

	"github.com/eqsat/slotted-egraph/slot"
	"github.com/stretchr/testify/assert"
)

func TestSlot_Ordering(t *testing.T) {
	n0 := slot.Numbered(0)
	n1 := slot.Numbered(1)
	u0 := slot.NewUnique()
	u1 := slot.NewUnique()

	assert.True(t, n0.Less(n1), "numbered slots order by number")
	assert.True(t, n1.Less(u0), "every numbered slot precedes every unique slot")
	assert.False(t, u0.Less(n0), "unique slot never precedes a numbered slot")
	assert.True(t, u0.Less(u1), "unique slots order by creation sequence")
}

func TestSlot_NumberedIdentity(t *testing.T) {
	a := slot.Numbered(7)
	b := slot.Numbered(7)
	assert.Equal(t, a, b, "Numbered is interned: equal numbers compare equal")
}

func TestSlot_UniqueIdentity(t *testing.T) {
	a := slot.NewUnique()
	b := slot.NewUnique()
	assert.NotEqual(t, a, b, "two distinct NewUnique calls never compare equal")
}
