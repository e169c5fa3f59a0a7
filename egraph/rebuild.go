package egraph

import (
	"github.com/eqsat/slotted-egraph/group"
	"github.com/eqsat/slotted-egraph/slot"
	"github.com/pkg/errors"
)

type permJob struct {
	class EClassRef
	perm slot.SlotMap
}

type shrinkJob struct {
	class EClassRef
	newSlots slot.SlotSet
}

// nodeJob names a shape node to repair: owner is the class it was stored
// at (pre-repair — it is re-resolved to its current root before use), and
// node is the node itself, exactly as stored (already a shape, i.e.
// self-numbered, so re-running canonicalizeNode on it is meaningful
// regardless of which class now owns it).
type nodeJob struct {
	owner EClassRef
	node ENode
}

// Union queues a single pair for unionMany's worklist-driven rebuild; a
// convenience wrapper over UnionMany for the common one-pair case.
func (eg *HashConsEGraph) Union(l, r EClassCall) (*HashConsEGraph, bool) {
	return eg.UnionMany([][2]EClassCall{{l, r}})
}

// UnionMany processes the five interacting worklists of to a
// fixpoint, returning a new e-graph with every invariant restored and
// whether any equivalence actually changed.
func (eg *HashConsEGraph) UnionMany(pairs [][2]EClassCall) (*HashConsEGraph, bool) {
	out := eg.clone()
	changed := out.rebuild(pairs)
	return out, changed
}

func (eg *HashConsEGraph) rebuild(pairs [][2]EClassCall) bool {
	changed := false
	unionWL := append([][2]EClassCall(nil), pairs...)
	var permWL []permJob
	var shrinkWL []shrinkJob
	var nodeRepairWL []nodeJob
	var usersRepairWL []EClassRef

	for len(unionWL) > 0 || len(permWL) > 0 || len(shrinkWL) > 0 || len(nodeRepairWL) > 0 || len(usersRepairWL) > 0 {
		switch {
		case len(unionWL) > 0:
			pair := unionWL[0]
			unionWL = unionWL[1:]
			if eg.unifyChecked(pair[0], pair[1], &unionWL, &permWL, &shrinkWL, &nodeRepairWL, &usersRepairWL) {
				changed = true
			}
		case len(permWL) > 0:
			job := permWL[0]
			permWL = permWL[1:]
			eg.addPermutation(job, &nodeRepairWL)
		case len(shrinkWL) > 0:
			job := shrinkWL[0]
			shrinkWL = shrinkWL[1:]
			eg.applyShrink(job, &nodeRepairWL)
		case len(nodeRepairWL) > 0:
			job := nodeRepairWL[0]
			nodeRepairWL = nodeRepairWL[1:]
			eg.repairNode(job, &unionWL, &shrinkWL)
		default:
			ref := usersRepairWL[0]
			usersRepairWL = usersRepairWL[1:]
			eg.repairUsers(ref)
		}
	}
	return changed
}

// preimage returns the keys of m whose image lies in vals.
func preimage(m slot.SlotMap, vals slot.SlotSet) slot.SlotSet {
	var out []slot.Slot
	for _, k := range m.Keys().Slice() {
		v, _ := m.Lookup(k)
		if vals.Contains(v) {
			out = append(out, k)
		}
	}
	return slot.NewSet(out...)
}

// invertOrIdentity inverts m if possible, or falls back to the identity
// over m's value set — used when building a shared-ambient-frame call out
// of a class-slots-to-shape-slots renaming that, in a malformed edge case,
// fails to be a bijection (not logged; the
// fallback keeps rebuild total instead of panicking on data that a prior
// repair step has already partially reconciled).
func invertOrIdentity(m slot.SlotMap) slot.SlotMap {
	if inv, ok := m.Inverse(); ok {
		return inv
	}
	return slot.Identity(m.Values())
}

// unifyChecked wraps unify, rewrapping any SlotMap-composition precondition
// panic (mismatched ambient frames on a malformed pair) with which two
// classes were being reconciled, before letting it propagate — the
// underlying sentinel (e.g. slot.ErrComposeMismatch) stays reachable via
// errors.Is/As through pkg/errors' Unwrap chain.
func (eg *HashConsEGraph) unifyChecked(
	l, r EClassCall,
	unionWL *[][2]EClassCall,
	permWL *[]permJob,
	shrinkWL *[]shrinkJob,
	nodeRepairWL *[]nodeJob,
	usersRepairWL *[]EClassRef,
) (result bool) {
	defer func() {
		if rec := recover(); rec != nil {
			if err, ok := rec.(error); ok {
				panic(errors.Wrapf(err, "egraph: rebuild failed unifying class %d and %d", l.Ref, r.Ref))
			}
			panic(rec)
		}
	}()
	return eg.unify(l, r, unionWL, permWL, shrinkWL, nodeRepairWL, usersRepairWL)
}

// unify dispatches a single union-worklist pair per shrink the
// larger side first if the pair's ambient slot images disagree, fold a
// same-class pair into a self-permutation, or merge two distinct classes.
func (eg *HashConsEGraph) unify(
	l, r EClassCall,
	unionWL *[][2]EClassCall,
	permWL *[]permJob,
	shrinkWL *[]shrinkJob,
	nodeRepairWL *[]nodeJob,
	usersRepairWL *[]EClassRef,
) bool {
	cl, ok := eg.Canonicalize(l)
	if !ok {
		return false
	}
	cr, ok := eg.Canonicalize(r)
	if !ok {
		return false
	}
	dl := eg.classData[cl.Ref]
	dr := eg.classData[cr.Ref]
	if dl == nil || dr == nil {
		return false
	}

	lAmbient := cl.Args.Values()
	rAmbient := cr.Args.Values()
	inter := lAmbient.Intersect(rAmbient)

	if !inter.Equal(lAmbient) || !inter.Equal(rAmbient) {
		if lAmbient.Len() >= rAmbient.Len() && !inter.Equal(lAmbient) {
			*shrinkWL = append(*shrinkWL, shrinkJob{class: cl.Ref, newSlots: preimage(cl.Args, inter)})
		} else if !inter.Equal(rAmbient) {
			*shrinkWL = append(*shrinkWL, shrinkJob{class: cr.Ref, newSlots: preimage(cr.Args, inter)})
		}
		*unionWL = append(*unionWL, [2]EClassCall{l, r})
		return false
	}

	if cl.Ref == cr.Ref {
		rInv, ok := cr.Args.Inverse()
		if !ok {
			return false
		}
		perm := cl.Args.ComposeStrict(rInv)
		if !perm.IsPermutation() || dl.Permutations.Contains(perm) {
			return false
		}
		*permWL = append(*permWL, permJob{class: cl.Ref, perm: perm})
		return true
	}

	dominant, subordinate := cl.Ref, cr.Ref
	domCall, subCall := cl, cr
	if len(dr.Nodes) > len(dl.Nodes) {
		dominant, subordinate = cr.Ref, cl.Ref
		domCall, subCall = cr, cl
	}
	domInv, ok := domCall.Args.Inverse()
	if !ok {
		return false
	}
	mergeMap := subCall.Args.ComposeStrict(domInv) // subordinate's public slots -> dominant's public slots

	eg.mergeInto(dominant, subordinate, mergeMap, nodeRepairWL, usersRepairWL)
	return true
}

// mergeInto retargets subordinate onto dominant in the union-find with
// mergeMap, translates subordinate's nodes/users/generators into dominant,
// and queues the repair worklists names.
func (eg *HashConsEGraph) mergeInto(
	dominant, subordinate EClassRef,
	mergeMap slot.SlotMap,
	nodeRepairWL *[]nodeJob,
	usersRepairWL *[]EClassRef,
) {
	domData := eg.touch(dominant)
	subData := eg.classData[subordinate] // read-only: never mutated, only deleted below

	eg.uf.Union(subordinate, dominant, mergeMap)

	for key, ne := range subData.Nodes {
		translated := ne.renaming.ComposeFresh(mergeMap)
		if _, exists := domData.Nodes[key]; !exists {
			domData.Nodes[key] = nodeEntry{shape: ne.shape, renaming: translated}
			eg.hashCons[key] = dominant
		}
		*nodeRepairWL = append(*nodeRepairWL, nodeJob{owner: dominant, node: ne.shape})
		for _, argRef := range distinctArgRefs(ne.shape.Args) {
			*usersRepairWL = append(*usersRepairWL, argRef)
		}
	}
	for key, u := range subData.Users {
		domData.Users[key] = userEntry{shape: u.shape, class: u.class}
		*nodeRepairWL = append(*nodeRepairWL, nodeJob{owner: u.class, node: u.shape})
	}
	for _, ne := range domData.Nodes {
		*nodeRepairWL = append(*nodeRepairWL, nodeJob{owner: dominant, node: ne.shape})
	}

	for _, gen := range subData.Permutations.Generators() {
		mergeInv, ok := mergeMap.Inverse()
		if !ok {
			continue
		}
		translated := mergeInv.ComposeStrict(gen).ComposeStrict(mergeMap)
		if translated.Keys().Equal(domData.Slots) && translated.IsPermutation() {
			domData.Permutations = domData.Permutations.Add(translated)
		}
	}

	delete(eg.classData, subordinate)
}

// addPermutation extends class's permutation group by perm; if the group
// actually grows, every node/user of the class is queued for repair since
// canonicalization may now pick a different compatible variant.
func (eg *HashConsEGraph) addPermutation(job permJob, nodeRepairWL *[]nodeJob) {
	root, ok := eg.uf.Find(job.class)
	if !ok {
		return
	}
	d := eg.touch(root.Ref)
	if d == nil {
		return
	}
	perm := job.perm.ComposeFresh(identityTranslate(root))
	before := d.Permutations.Size()
	d.Permutations = d.Permutations.Add(perm)
	if d.Permutations.Size() == before {
		return
	}
	for _, ne := range d.Nodes {
		*nodeRepairWL = append(*nodeRepairWL, nodeJob{owner: root.Ref, node: ne.shape})
	}
	for _, u := range d.Users {
		*nodeRepairWL = append(*nodeRepairWL, nodeJob{owner: u.class, node: u.shape})
	}
}

// identityTranslate returns the identity map over root's own slots, used
// only to keep addPermutation's ComposeFresh well-typed when job.perm was
// queued against a class ref that has since been path-compressed (root.Ref
// is already canonical by construction of the worklist, so this is a
// no-op composition in the common case).
func identityTranslate(root EClassCall) slot.SlotMap {
	return slot.Identity(root.Args.Values())
}

// applyShrink implements "shrinkSlots": inferred redundant
// slots are the union of the permutation-group orbits of the slots being
// dropped; generators that no longer act as permutations of the shrunk
// domain are discarded; nodes and users are queued for repair.
func (eg *HashConsEGraph) applyShrink(job shrinkJob, nodeRepairWL *[]nodeJob) {
	root, ok := eg.uf.Find(job.class)
	if !ok {
		return
	}
	ref := root.Ref
	d := eg.touch(ref)
	if d == nil {
		return
	}
	removed := d.Slots.Diff(job.newSlots)
	if removed.Len() == 0 {
		return
	}
	inferred := removed
	for _, s := range removed.Slice() {
		inferred = inferred.Union(d.Permutations.Orbit(s))
	}
	finalSlots := d.Slots.Diff(inferred)
	if finalSlots.Equal(d.Slots) {
		return
	}

	d.Slots = finalSlots
	eg.uf.ShrinkSlots(ref, finalSlots)

	newGroup := group.Trivial(finalSlots)
	for _, g := range d.Permutations.Generators() {
		restricted := g.Restrict(finalSlots)
		if restricted.Keys().Equal(finalSlots) && restricted.IsPermutation() {
			newGroup = newGroup.Add(restricted)
		}
	}
	d.Permutations = newGroup

	for _, ne := range d.Nodes {
		*nodeRepairWL = append(*nodeRepairWL, nodeJob{owner: ref, node: ne.shape})
	}
	for _, u := range d.Users {
		*nodeRepairWL = append(*nodeRepairWL, nodeJob{owner: u.class, node: u.shape})
	}
}

// repairNode implements "repairNode": re-canonicalize a stored
// shape node and handle the three possible outcomes.
func (eg *HashConsEGraph) repairNode(job nodeJob, unionWL *[][2]EClassCall, shrinkWL *[]shrinkJob) {
	ownerRoot, ok := eg.uf.Find(job.owner)
	if !ok {
		return
	}
	ownerRef := ownerRoot.Ref
	d := eg.touch(ownerRef)
	if d == nil {
		return
	}
	oldKey := shapeKey(job.node)
	old, exists := d.Nodes[oldKey]
	if !exists {
		return // already repaired or translated away by an earlier step
	}

	canon := eg.canonicalizeNode(job.node)
	newKey := shapeKey(canon.Shape)

	if newKey == oldKey {
		return // outcome 1: canonical form unchanged
	}

	if existingRef, ok := eg.hashCons[newKey]; ok && existingRef != ownerRef {
		// outcome 2: canonical form already lives elsewhere; queue a union
		// of the two owning classes, expressed in the shared "shape slots"
		// ambient frame both renamings are already defined over.
		existingData := eg.classData[existingRef]
		existingEntry := existingData.Nodes[newKey]
		l := EClassCall{Ref: ownerRef, Args: invertOrIdentity(old.renaming)}
		r := EClassCall{Ref: existingRef, Args: invertOrIdentity(existingEntry.renaming)}
		*unionWL = append(*unionWL, [2]EClassCall{l, r})
		return
	}

	// outcome 3: canonical form not present anywhere; rewrite in place.
	delete(d.Nodes, oldKey)
	delete(eg.hashCons, oldKey)
	d.Nodes[newKey] = nodeEntry{shape: canon.Shape, renaming: canon.Renaming}
	eg.hashCons[newKey] = ownerRef

	covered := canon.Renaming.Values()
	if !d.Slots.Subset(covered) {
		*shrinkWL = append(*shrinkWL, shrinkJob{class: ownerRef, newSlots: d.Slots.Intersect(covered)})
	}

	eg.inferSelfSymmetries(ownerRef, newKey)
}

// repairUsers implements "repairUsers": re-canonicalize every
// user's shape and replace the set if anything changed.
func (eg *HashConsEGraph) repairUsers(ref EClassRef) {
	root, ok := eg.uf.Find(ref)
	if !ok {
		return
	}
	d := eg.touch(root.Ref)
	if d == nil {
		return
	}
	newUsers := make(map[string]userEntry, len(d.Users))
	for _, u := range d.Users {
		ownerRoot, ok := eg.uf.Find(u.class)
		if !ok {
			continue
		}
		canon := eg.canonicalizeNode(u.shape)
		key := shapeKey(canon.Shape)
		newUsers[key] = userEntry{shape: canon.Shape, class: ownerRoot.Ref}
	}
	d.Users = newUsers
}

// TryAddMany adds every node in nodes (via Add, so hash-cons hits are
// shared) and returns the resulting graph, the call for each input node in
// order, and whether any addition introduced a fresh class.
func (eg *HashConsEGraph) TryAddMany(nodes []ENode) (*HashConsEGraph, []EClassCall, bool) {
	out := eg.clone()
	calls := make([]EClassCall, len(nodes))
	grew := false
	before := len(out.classData)
	for i, n := range nodes {
		n.validate()
		calls[i] = out.add(n)
	}
	if len(out.classData) != before {
		grew = true
	}
	return out, calls, grew
}
