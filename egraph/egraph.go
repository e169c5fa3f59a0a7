package egraph

import (
	"sort"

	"github.com/eqsat/slotted-egraph/group"
	"github.com/eqsat/slotted-egraph/slot"
	"github.com/eqsat/slotted-egraph/unionfind"
)

// variantFanoutCap bounds how many compatible-permutation variants
// canonicalize will try per argument position before giving up on finding a
// lexicographically smaller shape.
const variantFanoutCap = 256

// HashConsEGraph is the slotted, hash-consed e-graph. It is a
// value: Add and UnionMany return a new graph, never mutating the receiver.
type HashConsEGraph struct {
	uf *unionfind.Forest[EClassRef]
	hashCons map[string]EClassRef
	classData map[EClassRef]*EClassData
	nextRef EClassRef
}

// New returns an empty e-graph.
func New() *HashConsEGraph {
	return &HashConsEGraph{
		uf: unionfind.New[EClassRef](),
		hashCons: make(map[string]EClassRef),
		classData: make(map[EClassRef]*EClassData),
	}
}

// Emptied returns a fresh, empty e-graph — used by rebasing to
// start a new iteration from only the extracted root trees.
func (eg *HashConsEGraph) Emptied() *HashConsEGraph { return New() }

// clone performs the shallow, copy-on-write style clone every mutating
// entry point starts from: a fresh top-level struct sharing *EClassData
// pointers with eg. Nothing below this point may mutate a shared pointee
// directly — every mutating helper calls touch first, which replaces the
// entry in this graph's own classData map with a private copy before any
// field or nested map is written, so eg itself is never affected.
func (eg *HashConsEGraph) clone() *HashConsEGraph {
	out := &HashConsEGraph{
		uf: eg.uf.Clone(),
		hashCons: make(map[string]EClassRef, len(eg.hashCons)),
		classData: make(map[EClassRef]*EClassData, len(eg.classData)),
		nextRef: eg.nextRef,
	}
	for k, v := range eg.hashCons {
		out.hashCons[k] = v
	}
	for k, v := range eg.classData {
		out.classData[k] = v
	}
	return out
}

// touch ensures eg.classData[ref] is a copy private to eg (not shared with
// whatever graph eg was cloned from) and returns it, or nil if ref is
// unknown. Every mutation of an EClassData's fields or nested maps must go
// through a value returned by touch.
func (eg *HashConsEGraph) touch(ref EClassRef) *EClassData {
	d := eg.classData[ref]
	if d == nil {
		return nil
	}
	nd := &EClassData{
		Slots: d.Slots,
		Nodes: make(map[string]nodeEntry, len(d.Nodes)),
		Users: make(map[string]userEntry, len(d.Users)),
		Permutations: d.Permutations,
	}
	for k, v := range d.Nodes {
		nd.Nodes[k] = v
	}
	for k, v := range d.Users {
		nd.Users[k] = v
	}
	eg.classData[ref] = nd
	return nd
}

// Classes returns every canonical EClassRef currently in the graph.
func (eg *HashConsEGraph) Classes() []EClassRef {
	out := make([]EClassRef, 0, len(eg.classData))
	for ref := range eg.classData {
		if eg.uf.IsRoot(ref) {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether ref names a live class in this graph.
func (eg *HashConsEGraph) Contains(ref EClassRef) bool {
	call, ok := eg.uf.Find(ref)
	if !ok {
		return false
	}
	_, ok = eg.classData[call.Ref]
	return ok
}

// Find canonicalizes ref to a call against the current root, composing the
// union-find's stored renaming.
func (eg *HashConsEGraph) Find(ref EClassRef) (EClassCall, bool) {
	return eg.uf.Find(ref)
}

// Canonicalize rewrites call in terms of the current root of call.Ref,
// composing call.Args with the renaming returned by Find. Idempotence
// follows directly: canonicalizing an already-canonical call finds the
// same root and composes with the identity renaming Find returns for a
// root.
func (eg *HashConsEGraph) Canonicalize(call EClassCall) (EClassCall, bool) {
	root, ok := eg.uf.Find(call.Ref)
	if !ok {
		return EClassCall{}, false
	}
	return EClassCall{Ref: root.Ref, Args: call.Args.ComposeFresh(root.Args)}, true
}

// ClassData returns the EClassData for ref's canonical root.
func (eg *HashConsEGraph) ClassData(ref EClassRef) (*EClassData, bool) {
	root, ok := eg.uf.Find(ref)
	if !ok {
		return nil, false
	}
	d, ok := eg.classData[root.Ref]
	return d, ok
}

// Nodes returns every shape ENode stored at call's class, with call's
// renaming applied so the returned nodes are expressed in terms of slots
// visible at this call site.
func (eg *HashConsEGraph) Nodes(call EClassCall) []ShapeCall {
	d, ok := eg.ClassData(call.Ref)
	if !ok {
		return nil
	}
	out := make([]ShapeCall, 0, len(d.Nodes))
	for _, ne := range d.Nodes {
		rn := ne.renaming.ComposeFresh(call.Args)
		out = append(out, ShapeCall{Shape: ne.shape, Renaming: rn})
	}
	return out
}

// Users returns every shape ENode elsewhere in the graph that references
// ref's class. The class each such node belongs to is not included;
// UserOwners lists those classes. The renaming on each returned ShapeCall is that user node's own renaming
// within its own class, unaffected by ref's call-site args, since users
// are indexed by class identity, not by call.
func (eg *HashConsEGraph) Users(ref EClassRef) []ShapeCall {
	d, ok := eg.ClassData(ref)
	if !ok {
		return nil
	}
	out := make([]ShapeCall, 0, len(d.Users))
	for _, u := range d.Users {
		owner := eg.classData[u.class]
		if owner == nil {
			continue
		}
		ne, ok := owner.Nodes[shapeKey(u.shape)]
		if !ok {
			continue
		}
		out = append(out, ShapeCall{Shape: ne.shape, Renaming: ne.renaming})
	}
	return out
}

// UserOwners returns the distinct classes that currently have at least one
// shape node referencing ref. Analyses use this to drive their
// worklist-to-fixpoint recompute without
// needing the user nodes' contents, which Nodes already provides per class.
func (eg *HashConsEGraph) UserOwners(ref EClassRef) []EClassRef {
	d, ok := eg.ClassData(ref)
	if !ok {
		return nil
	}
	seen := make(map[EClassRef]struct{}, len(d.Users))
	var out []EClassRef
	for _, u := range d.Users {
		root, ok := eg.uf.Find(u.class)
		if !ok {
			continue
		}
		if _, dup := seen[root.Ref]; !dup {
			seen[root.Ref] = struct{}{}
			out = append(out, root.Ref)
		}
	}
	return out
}

// AreSame reports whether a and b, once canonicalized, name the same class
// via the same argument renaming.
func (eg *HashConsEGraph) AreSame(a, b EClassCall) bool {
	ca, ok := eg.Canonicalize(a)
	if !ok {
		return false
	}
	cb, ok := eg.Canonicalize(b)
	if !ok {
		return false
	}
	return ca.Ref == cb.Ref && ca.Args.Equal(cb.Args)
}

// canonicalizeArg canonicalizes a single argument call and then enumerates
// up to variantFanoutCap compatible variants of it (the call composed with
// each permutation in the argument class's symmetry group), returning them
// alongside the plain canonical call in position 0.
func (eg *HashConsEGraph) canonicalizeArg(call EClassCall) []EClassCall {
	canon, ok := eg.Canonicalize(call)
	if !ok {
		return []EClassCall{call}
	}
	data, ok := eg.classData[canon.Ref]
	if !ok {
		return []EClassCall{canon}
	}
	perms, err := data.Permutations.AllPermsBounded(variantFanoutCap)
	if err != nil || len(perms) <= 1 {
		return []EClassCall{canon}
	}
	out := make([]EClassCall, 0, len(perms))
	out = append(out, canon)
	for _, p := range perms {
		v := EClassCall{Ref: canon.Ref, Args: p.ComposeStrict(canon.Args)}
		if !v.Args.Equal(canon.Args) {
			out = append(out, v)
		}
	}
	return out
}

// canonicalizeNode canonicalizes every argument call, enumerates
// compatible variants by multiplying in each argument's permutation-group
// elements, and picks the variant whose shape's slot sequence is
// lexicographically least.
func (eg *HashConsEGraph) canonicalizeNode(n ENode) ShapeCall {
	variantsPerArg := make([][]EClassCall, len(n.Args))
	total := 1
	for i, a := range n.Args {
		variantsPerArg[i] = eg.canonicalizeArg(a)
		total *= len(variantsPerArg[i])
		if total > variantFanoutCap {
			// Truncate further growth deterministically: keep only the
			// first variant (the plain canonical one) for the remaining
			// argument positions once the cap is exceeded.
			for j := i + 1; j < len(n.Args); j++ {
				variantsPerArg[j] = variantsPerArg[j][:1]
			}
			break
		}
	}

	var best *ShapeCall
	var bestSeq []int
	combo := make([]EClassCall, len(n.Args))
	var recurse func(pos int)
	recurse = func(pos int) {
		if pos == len(n.Args) {
			candidate := ENode{Type: n.Type, Defs: n.Defs, Uses: n.Uses, Args: append([]EClassCall(nil), combo...)}
			sc := toShape(candidate)
			seq := shapeSlotSequence(sc.Shape)
			if best == nil || lessSeq(seq, bestSeq) {
				scCopy := sc
				best = &scCopy
				bestSeq = seq
			}
			return
		}
		for _, v := range variantsPerArg[pos] {
			combo[pos] = v
			recurse(pos + 1)
		}
	}
	recurse(0)
	return *best
}

// Add canonicalizes node and inserts it, returning the call naming the
// class it now belongs to. A hash-cons hit composes the
// stored renaming with the lookup's renaming; a miss mints a fresh
// EClassRef.
func (eg *HashConsEGraph) Add(node ENode) (*HashConsEGraph, EClassCall) {
	node.validate()
	out := eg.clone()
	call := out.add(node)
	return out, call
}

func (eg *HashConsEGraph) add(node ENode) EClassCall {
	sc := eg.canonicalizeNode(node)
	key := shapeKey(sc.Shape)
	if ref, ok := eg.hashCons[key]; ok {
		d := eg.classData[ref]
		stored := d.Nodes[key]
		// stored.renaming: shape slots -> class slots. sc.Renaming: shape
		// slots -> this call's original node slots. Compose stored with
		// sc's inverse... in practice callers want class-slots as function
		// of node's original slots, i.e. stored ∘ sc.Renaming^-1 is not
		// directly composable through ComposeStrict (wrong direction), so
		// build the args map key-by-key instead.
		args := make([][2]slot.Slot, 0, stored.renaming.Len())
		for _, shapeSlot := range stored.renaming.Keys().Slice() {
			classSlot, _ := stored.renaming.Lookup(shapeSlot)
			nodeSlot, _ := sc.Renaming.Lookup(shapeSlot)
			args = append(args, [2]slot.Slot{nodeSlot, classSlot})
		}
		return EClassCall{Ref: ref, Args: slot.NewSlotMap(args...)}
	}

	// Miss: mint a fresh class. Its public slots are the shape's slots
	// minus its definitions, mapped through a fresh bijection to fresh
	// unique slots. Refs are minted starting at 1, so the zero value of
	// EClassRef never names a live class.
	eg.nextRef++
	ref := eg.nextRef

	shapeDefs := slot.NewSet(sc.Shape.Defs...)
	shapeAll := sc.Renaming.Keys()
	publicShapeSlots := shapeAll.Diff(shapeDefs)

	toFresh := make([][2]slot.Slot, 0, publicShapeSlots.Len())
	classSlots := make([]slot.Slot, 0, publicShapeSlots.Len())
	for _, s := range publicShapeSlots.Slice() {
		fresh := slot.NewUnique()
		toFresh = append(toFresh, [2]slot.Slot{s, fresh})
		classSlots = append(classSlots, fresh)
	}
	shapeToClass := slot.NewSlotMap(toFresh...)

	data := newClassData(slot.NewSet(classSlots...))
	data.Nodes[key] = nodeEntry{shape: sc.Shape, renaming: shapeToClass}
	eg.classData[ref] = data
	eg.uf.NewClass(ref, data.Slots)
	eg.hashCons[key] = ref

	for _, argCall := range distinctArgRefs(sc.Shape.Args) {
		if ad := eg.touch(argCall); ad != nil {
			ad.Users[key] = userEntry{shape: sc.Shape, class: ref}
		}
	}

	eg.inferSelfSymmetries(ref, key)

	args := make([][2]slot.Slot, 0, shapeToClass.Len())
	for _, shapeSlot := range shapeToClass.Keys().Slice() {
		classSlot, _ := shapeToClass.Lookup(shapeSlot)
		nodeSlot, _ := sc.Renaming.Lookup(shapeSlot)
		args = append(args, [2]slot.Slot{nodeSlot, classSlot})
	}
	return EClassCall{Ref: ref, Args: slot.NewSlotMap(args...)}
}

func distinctArgRefs(args []EClassCall) []EClassRef {
	seen := make(map[EClassRef]struct{}, len(args))
	var out []EClassRef
	for _, a := range args {
		if _, ok := seen[a.Ref]; !ok {
			seen[a.Ref] = struct{}{}
			out = append(out, a.Ref)
		}
	}
	return out
}

// inferSelfSymmetries does the following: for a newly canonicalized node
// in class ref, enumerate compatible variants using children's
// permutations, and whenever a variant shares the node's own canonical
// shape, the composition of the two renamings is a self-symmetry of ref.
func (eg *HashConsEGraph) inferSelfSymmetries(ref EClassRef, key string) {
	d := eg.touch(ref)
	ne := d.Nodes[key]
	base := ne.shape

	variantsPerArg := make([][]EClassCall, len(base.Args))
	total := 1
	for i, a := range base.Args {
		variantsPerArg[i] = eg.canonicalizeArg(a)
		total *= len(variantsPerArg[i])
		if total > variantFanoutCap {
			for j := i + 1; j < len(base.Args); j++ {
				variantsPerArg[j] = variantsPerArg[j][:1]
			}
			break
		}
	}

	combo := make([]EClassCall, len(base.Args))
	var perms []slot.SlotMap
	var recurse func(pos int)
	recurse = func(pos int) {
		if pos == len(base.Args) {
			candidate := ENode{Type: base.Type, Defs: base.Defs, Uses: base.Uses, Args: append([]EClassCall(nil), combo...)}
			sc := toShape(candidate)
			if shapeKey(sc.Shape) != key {
				return
			}
			// ne.renaming maps base's public shape slots -> this class's
			// slots, and sc.Renaming maps the variant's shape slots (the
			// same numbered shape as base) -> base's shape slots, so
			// class -> shape -> base shape -> class is a candidate
			// self-permutation. A public slot the variant sends onto a
			// definition drops out, and the candidate is kept only if it
			// still covers every class slot.
			inv, ok := ne.renaming.Inverse()
			if !ok {
				return
			}
			p := inv.ComposePartial(sc.Renaming).ComposePartial(ne.renaming)
			if p.Keys().Equal(d.Slots) && p.IsPermutation() {
				perms = append(perms, p)
			}
			return
		}
		for _, v := range variantsPerArg[pos] {
			combo[pos] = v
			recurse(pos + 1)
		}
	}
	recurse(0)

	for _, p := range perms {
		d.Permutations = d.Permutations.Add(p)
	}
}
