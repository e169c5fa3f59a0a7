package egraph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eqsat/slotted-egraph/slot"
)

// toShape renames every slot occurrence in n — its definitions, its uses,
// and the slots appearing as the values of each argument's renaming — to a
// canonical sequence of numbered slots assigned in first-appearance order.
// It returns the shape and the renaming that maps shape slots back to n's
// original slots.
//
// toShape does not canonicalize n's argument refs through any union-find or
// pick among symmetric variants; callers (canonicalize, in egraph.go) are
// responsible for that before calling toShape, and for calling toShape once
// per candidate variant when choosing the lexicographically least one.
func toShape(n ENode) ShapeCall {
	next := 0
	assigned := make(map[slot.Slot]slot.Slot)
	renaming := make(map[slot.Slot]slot.Slot) // shape slot -> original slot

	assign := func(s slot.Slot) slot.Slot {
		if ns, ok := assigned[s]; ok {
			return ns
		}
		ns := slot.Numbered(next)
		next++
		assigned[s] = ns
		renaming[ns] = s
		return ns
	}

	defs := make([]slot.Slot, len(n.Defs))
	for i, s := range n.Defs {
		defs[i] = assign(s)
	}
	uses := make([]slot.Slot, len(n.Uses))
	for i, s := range n.Uses {
		uses[i] = assign(s)
	}
	args := make([]EClassCall, len(n.Args))
	for i, a := range n.Args {
		keys := a.Args.Keys().Slice() // sorted: a canonical per-class enumeration order
		pairs := make([][2]slot.Slot, 0, len(keys))
		for _, k := range keys {
			v, _ := a.Args.Lookup(k)
			pairs = append(pairs, [2]slot.Slot{k, assign(v)})
		}
		args[i] = EClassCall{Ref: a.Ref, Args: slot.NewSlotMap(pairs...)}
	}

	rn := make([][2]slot.Slot, 0, len(renaming))
	for k, v := range renaming {
		rn = append(rn, [2]slot.Slot{k, v})
	}

	return ShapeCall{
		Shape: ENode{Type: n.Type, Defs: defs, Uses: uses, Args: args},
		Renaming: slot.NewSlotMap(rn...),
	}
}

// shapeSlotSequence returns the flat sequence of numbered shape slots in
// the same first-appearance scan order toShape uses, for lexicographic
// comparison between compatible variants.
func shapeSlotSequence(shape ENode) []int {
	seq := make([]int, 0, len(shape.Defs)+len(shape.Uses)+4*len(shape.Args))
	push := func(s slot.Slot) {
		n, _ := s.Number()
		seq = append(seq, n)
	}
	for _, s := range shape.Defs {
		push(s)
	}
	for _, s := range shape.Uses {
		push(s)
	}
	for _, a := range shape.Args {
		for _, k := range a.Args.Keys().Slice() {
			v, _ := a.Args.Lookup(k)
			push(v)
		}
	}
	return seq
}

func lessSeq(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// shapeKey renders a shape ENode into a string usable as a hash-cons
// bucket/lookup key. It is a structural encoding, not a hash, so distinct
// shapes never collide (at the cost of a longer key than a fixed-width
// hash) — acceptable here since shapes are small, bounded-arity terms.
func shapeKey(n ENode) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("h%x/", n.Type.Hash()))
	writeSlots(&b, n.Defs)
	b.WriteByte('|')
	writeSlots(&b, n.Uses)
	b.WriteByte('|')
	for _, a := range n.Args {
		b.WriteString(strconv.FormatInt(int64(a.Ref), 10))
		b.WriteByte(':')
		keys := a.Args.Keys().Slice()
		vs := make([]slot.Slot, len(keys))
		for i, k := range keys {
			vs[i], _ = a.Args.Lookup(k)
		}
		writeSlots(&b, keys)
		b.WriteByte('=')
		writeSlots(&b, vs)
		b.WriteByte(';')
	}
	return b.String()
}

func writeSlots(b *strings.Builder, ss []slot.Slot) {
	for i, s := range ss {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.String())
	}
}
