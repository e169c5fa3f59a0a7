package egraph

import (
	"github.com/eqsat/slotted-egraph/group"
	"github.com/eqsat/slotted-egraph/slot"
	"github.com/eqsat/slotted-egraph/unionfind"
)

// NodeType is the external contract a host program supplies for its IR
// vocabulary: equality, hashing, a total order (used to break
// ties deterministically during canonicalization and extraction), and the
// number of leading arguments that are "type" arguments rather than "value"
// arguments (used by analyses that need to treat the two differently).
type NodeType interface {
	Equal(other NodeType) bool
	Hash() uint64
	Less(other NodeType) bool
	TypeArgCount() int
}

// EClassRef is an opaque, arena-style identity for an e-class within some
// HashConsEGraph snapshot. The
// zero value is never a valid reference; refs are minted starting at 1.
type EClassRef int64

// EClassCall pairs a class reference with the renaming from that class's
// public slots to the slots visible at this call site. It is the
// unionfind package's generic Call instantiated on EClassRef.
type EClassCall = unionfind.Call[EClassRef]

// ENode is the tuple (nodeType, definitions, uses, args) of a node within
// an e-class. Definitions are slots the node binds locally and does not
// expose to parents; uses are slots the node references that are defined
// elsewhere (by one of its own definitions, or by an argument's public
// slots).
type ENode struct {
	Type NodeType
	Defs []slot.Slot
	Uses []slot.Slot
	Args []EClassCall
}

// validate panics with the appropriate precondition-violation sentinel if n
// is structurally ill-formed: a duplicated definition, or a slot that is
// simultaneously bound (Defs) and referenced as free (Uses) at the same
// node, are both core bugs, not recoverable conditions.
func (n ENode) validate() {
	seen := make(map[slot.Slot]struct{}, len(n.Defs))
	for _, d := range n.Defs {
		if _, dup := seen[d]; dup {
			panic(ErrDuplicateDefinition)
		}
		seen[d] = struct{}{}
	}
	for _, u := range n.Uses {
		if _, bound := seen[u]; bound {
			panic(ErrUsesNotCovered)
		}
	}
}

// ShapeCall decomposes a node into its canonical shape (a node whose slot
// occurrences have been renamed to numbered slots in first-appearance
// order) and the renaming that maps shape slots back to the original
// node's slots.
type ShapeCall struct {
	Shape ENode
	Renaming slot.SlotMap
}

// EClassData is the per-canonical-class record HashConsEGraph maintains:
// the class's public slot set, its shape nodes (each with the
// renaming from shape slots to this class's slots), the set of shape nodes
// elsewhere that reference this class, and the permutation group recording
// the class's discovered slot symmetries.
type EClassData struct {
	Slots slot.SlotSet
	Nodes map[string]nodeEntry
	Users map[string]userEntry
	Permutations *group.Group
}

type nodeEntry struct {
	shape ENode
	renaming slot.SlotMap // shape slots -> this class's slots
}

type userEntry struct {
	shape ENode
	class EClassRef
}

func newClassData(slots slot.SlotSet) *EClassData {
	return &EClassData{
		Slots: slots,
		Nodes: make(map[string]nodeEntry),
		Users: make(map[string]userEntry),
		Permutations: group.Trivial(slots),
	}
}

// Tree is a pure expression tree: the fully materialized result of
// extraction, with no remaining reference into any e-graph.
type Tree struct {
	Type NodeType
	Defs []slot.Slot
	Uses []slot.Slot
	Args []Tree
}

// MixedTreeAtom is a MixedTree leaf carrying either a concrete EClassCall or
// a pattern variable name, rather than a fully expanded subtree.
type MixedTreeAtom struct {
	Call EClassCall
	IsCall bool
	Var string
}

// MixedTree is MixedTree: a Tree whose leaves may be either
// ordinary Nodes or Atoms. Exactly one of Atom or (Type set) is populated.
type MixedTree struct {
	IsAtom bool
	Atom MixedTreeAtom

	Type NodeType
	Defs []slot.Slot
	Uses []slot.Slot
	Args []MixedTree
}

// MixedNode builds a non-leaf MixedTree.
func MixedNode(t NodeType, defs, uses []slot.Slot, args []MixedTree) MixedTree {
	return MixedTree{Type: t, Defs: defs, Uses: uses, Args: args}
}

// MixedCall builds a MixedTree leaf referencing a concrete e-class call.
func MixedCall(call EClassCall) MixedTree {
	return MixedTree{IsAtom: true, Atom: MixedTreeAtom{Call: call, IsCall: true}}
}

// MixedVar builds a MixedTree leaf referencing a pattern variable.
func MixedVar(name string) MixedTree {
	return MixedTree{IsAtom: true, Atom: MixedTreeAtom{Var: name}}
}
