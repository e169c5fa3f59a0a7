package group

import (
	"sort"

	"github.com/eqsat/slotted-egraph/slot"
)

// MaxEnumeration bounds AllPerms: groups larger than this are refused with
// a panic; AllPermsBounded takes the caller's own limit instead. Variant
// enumeration during canonicalization only ever needs small groups (slot
// symmetry groups rarely exceed a handful of elements in practice); this
// cap exists so a pathological rule set cannot make a single AllPerms call
// materialize an exponentially large group.
const MaxEnumeration = 4096

// Group is an immutable finite permutation group over a fixed slot domain,
// represented as a stabilizer chain. The zero value is not valid; use
// Trivial to construct the identity-only group over a domain.
type Group struct {
	domain slot.SlotSet

	hasBase bool
	base slot.Slot
	transversal map[slot.Slot]slot.SlotMap // orbit point -> generator mapping base to that point
	generators []slot.SlotMap // generators known at this level (for transversal rebuild)
	stabilizer *Group // stabilizer of base, recursively chained
}

// Trivial returns the identity-only group over domain.
func Trivial(domain slot.SlotSet) *Group {
	return &Group{domain: domain}
}

// Domain returns the slot set this group acts on.
func (g *Group) Domain() slot.SlotSet { return g.domain }

// Generators returns the base-level generating set actually stored (for
// diagnostics and for tryAddSet-style bulk extension); it is not the full
// group.
func (g *Group) Generators() []slot.SlotMap {
	return append([]slot.SlotMap(nil), g.generators...)
}

// identityOf returns the identity permutation over domain.
func identityOf(domain slot.SlotSet) slot.SlotMap {
	return slot.Identity(domain)
}

// Contains reports whether p is a member of the group, by sifting it down
// the stabilizer chain in O(|base|) lookups").
func (g *Group) Contains(p slot.SlotMap) bool {
	if !p.IsPermutation() || !p.Keys().Equal(g.domain) {
		return false
	}
	return g.sift(p)
}

func (g *Group) sift(p slot.SlotMap) bool {
	if !g.hasBase {
		return isIdentity(p, g.domain)
	}
	img := p.Apply(g.base)
	u, ok := g.transversal[img]
	if !ok {
		return false
	}
	uInv, _ := u.Inverse()
	// p followed by u^-1 sends base -> img -> base, so it fixes base;
	// recurse into the stabilizer.
	rest := p.ComposeStrict(uInv)
	return g.stabilizer.sift(rest)
}

func isIdentity(p slot.SlotMap, domain slot.SlotSet) bool {
	for _, s := range domain.Slice() {
		if p.Apply(s) != s {
			return false
		}
	}
	return true
}

// Add returns a new Group containing every element of g plus p and every
// product required to close the result under composition (Schreier's
// lemma). If p is already a member, g itself is returned unchanged.
func (g *Group) Add(p slot.SlotMap) *Group {
	if !p.Keys().Equal(g.domain) || !p.IsPermutation() {
		panic(ErrNotPermutation)
	}
	if g.Contains(p) {
		return g
	}
	gens := append(append([]slot.SlotMap(nil), g.generators...), p)
	return buildChain(g.domain, gens)
}

// AddAll folds Add over ps, returning the closed group.
func (g *Group) AddAll(ps []slot.SlotMap) *Group {
	cur := g
	for _, p := range ps {
		cur = cur.Add(p)
	}
	return cur
}

// buildChain constructs a full stabilizer chain from scratch given a
// generating set. Rebuilding from scratch on every Add keeps the
// implementation simple and is cheap in practice since slot-symmetry
// groups stay small (see MaxEnumeration).
func buildChain(domain slot.SlotSet, gens []slot.SlotMap) *Group {
	if len(gens) == 0 || domain.Len() == 0 {
		return &Group{domain: domain, generators: gens}
	}
	base := choosesBase(domain, gens)
	transversal, orbitGens := schreierOrbit(domain, base, gens)

	var stabGens []slot.SlotMap
	for x, ux := range transversal {
		for _, gen := range orbitGens {
			img := gen.Apply(x)
			uImg, ok := transversal[img]
			if !ok {
				continue
			}
			// Schreier generator: u_x * gen * u_{gen(x)}^-1, fixes base.
			sg := ux.ComposeStrict(gen).ComposeStrict(mustInverse(uImg))
			if !isIdentity(sg, domain) {
				stabGens = append(stabGens, sg)
			}
		}
	}
	stab := buildChain(domain, dedupPerms(stabGens))
	return &Group{
		domain: domain,
		hasBase: true,
		base: base,
		transversal: transversal,
		generators: gens,
		stabilizer: stab,
	}
}

func mustInverse(p slot.SlotMap) slot.SlotMap {
	inv, ok := p.Inverse()
	if !ok {
		panic(ErrNotPermutation)
	}
	return inv
}

// choosesBase picks a deterministic base point: the least slot (by Slot.Less)
// that some generator actually moves, so the chain terminates in as few
// levels as the generating set requires.
func choosesBase(domain slot.SlotSet, gens []slot.SlotMap) slot.Slot {
	slots := append([]slot.Slot(nil), domain.Slice()...)
	sort.Slice(slots, func(i, j int) bool { return slots[i].Less(slots[j]) })
	for _, s := range slots {
		for _, gen := range gens {
			if gen.Apply(s) != s {
				return s
			}
		}
	}
	return slots[0]
}

// schreierOrbit computes the orbit of base under gens via BFS, returning a
// transversal (orbit point -> group element mapping base to it) and the
// generator set used (gens itself, echoed back for the caller's schreier
// generator computation).
func schreierOrbit(domain slot.SlotSet, base slot.Slot, gens []slot.SlotMap) (map[slot.Slot]slot.SlotMap, []slot.SlotMap) {
	transversal := map[slot.Slot]slot.SlotMap{base: identityOf(domain)}
	queue := []slot.Slot{base}
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		ux := transversal[x]
		for _, gen := range gens {
			img := gen.Apply(x)
			if _, seen := transversal[img]; seen {
				continue
			}
			transversal[img] = ux.ComposeStrict(gen)
			queue = append(queue, img)
		}
	}
	return transversal, gens
}

func dedupPerms(ps []slot.SlotMap) []slot.SlotMap {
	var out []slot.SlotMap
	for _, p := range ps {
		dup := false
		for _, q := range out {
			if p.Equal(q) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// Orbit returns { p(s) | p ∈ group }, computed with the same Schreier BFS
// buildChain uses to find the base's orbit — here walked from s instead —
// rather than materializing every group element: the group is the closure
// of g.generators, so orbit membership only needs following those
// generators to a fixpoint, in time proportional to the orbit size instead
// of the group's full order.
func (g *Group) Orbit(s slot.Slot) slot.SlotSet {
	reached, _ := schreierOrbit(g.domain, s, g.generators)
	images := make([]slot.Slot, 0, len(reached))
	for x := range reached {
		images = append(images, x)
	}
	return slot.NewSet(images...)
}

// AllPerms enumerates every element of the group. It is exponential in the
// worst case (product of transversal sizes down the chain) and panics with
// ErrEnumerationTooLarge above MaxEnumeration; use AllPermsBounded for a
// non-panicking variant.
func (g *Group) AllPerms() []slot.SlotMap {
	perms, err := g.allPermsBounded(MaxEnumeration)
	if err != nil {
		panic(err)
	}
	return perms
}

// AllPermsBounded enumerates the group, returning ErrEnumerationTooLarge
// instead of panicking if the group exceeds limit.
func (g *Group) AllPermsBounded(limit int) ([]slot.SlotMap, error) {
	return g.allPermsBounded(limit)
}

func (g *Group) allPermsBounded(limit int) ([]slot.SlotMap, error) {
	if !g.hasBase {
		return []slot.SlotMap{identityOf(g.domain)}, nil
	}
	subPerms, err := g.stabilizer.allPermsBounded(limit)
	if err != nil {
		return nil, err
	}
	total := len(subPerms) * len(g.transversal)
	if total > limit {
		return nil, ErrEnumerationTooLarge
	}
	out := make([]slot.SlotMap, 0, total)
	for _, u := range g.transversal {
		for _, sp := range subPerms {
			out = append(out, u.ComposeStrict(sp))
		}
	}
	return out, nil
}

// Size returns the group's order (|transversal at each level| multiplied
// down the chain), computed without materializing AllPerms.
func (g *Group) Size() int {
	if !g.hasBase {
		return 1
	}
	return len(g.transversal) * g.stabilizer.Size()
}
