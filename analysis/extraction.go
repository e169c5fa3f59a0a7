package analysis

import (
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/rng"
	"github.com/eqsat/slotted-egraph/slot"
)

// Candidate is the per-class fact an extraction Analysis computes: the
// cheapest tree found so far for a class, under whatever cost metric the
// Extractor was built with, expressed in that class's own public slots
// until Extractor.Apply renames it to a call site.
type Candidate struct {
	Tree egraph.Tree
	Cost int
}

// CostFn assembles the cost a node contributes given the already-computed
// costs of its arguments (in node.Args order). Smallest and Shallowest are
// the two the package ships; callers needing a different metric (e.g.
// weighting specific NodeTypes) supply their own.
type CostFn func(node egraph.ENode, argCosts []int) int

// SizeCost counts total node count — the metric behind Smallest.
func SizeCost(_ egraph.ENode, argCosts []int) int {
	total := 1
	for _, c := range argCosts {
		total += c
	}
	return total
}

// DepthCost counts tree height — the metric behind Shallowest.
func DepthCost(_ egraph.ENode, argCosts []int) int {
	max := 0
	for _, c := range argCosts {
		if c > max {
			max = c
		}
	}
	return max + 1
}

// extractionAnalysis is the Analysis[Candidate] every Extractor runs: Make
// assembles a candidate tree and its cost from a node's argument
// candidates, Join keeps the lexicographically least under
// compareCandidates" with the tree's own structure standing in for
// the final SlotMap tie-break once fully materialized).
type extractionAnalysis struct {
	costFn CostFn
}

func (ex extractionAnalysis) Make(node egraph.ENode, argResults []Candidate) Candidate {
	args := make([]egraph.Tree, len(argResults))
	argCosts := make([]int, len(argResults))
	for i, ar := range argResults {
		args[i] = ar.Tree
		argCosts[i] = ar.Cost
	}
	return Candidate{
		Tree: egraph.Tree{Type: node.Type, Defs: node.Defs, Uses: node.Uses, Args: args},
		Cost: ex.costFn(node, argCosts),
	}
}

func (extractionAnalysis) Join(a, b Candidate) Candidate {
	if compareCandidates(a, b) <= 0 {
		return a
	}
	return b
}

func (extractionAnalysis) Rename(c Candidate, sm slot.SlotMap) Candidate {
	return Candidate{Tree: renameTree(c.Tree, sm), Cost: c.Cost}
}

var compareCandidates = rng.Lexicographic(
	func(a, b Candidate) int { return rng.OrderedCompare(a.Cost, b.Cost) },
	func(a, b Candidate) int { return rng.OrderedCompare(treeSize(a.Tree), treeSize(b.Tree)) },
	func(a, b Candidate) int { return rng.OrderedCompare(treeDepth(a.Tree), treeDepth(b.Tree)) },
	func(a, b Candidate) int { return compareTree(a.Tree, b.Tree) },
)

func treeSize(t egraph.Tree) int {
	n := 1
	for _, a := range t.Args {
		n += treeSize(a)
	}
	return n
}

func treeDepth(t egraph.Tree) int {
	max := 0
	for _, a := range t.Args {
		if d := treeDepth(a); d > max {
			max = d
		}
	}
	return max + 1
}

// compareTree breaks ties between equal-cost, equal-size, equal-depth
// candidates by nodeType, then definitions, then uses, then recursing into
// args — the args comparison is where two otherwise-identical trees built
// from differently-slotted children finally diverge, giving a node's
// argument SlotMap its role in the shape-ordering tie-break.
func compareTree(a, b egraph.Tree) int {
	switch {
	case a.Type.Less(b.Type):
		return -1
	case b.Type.Less(a.Type):
		return 1
	}
	if c := compareSlots(a.Defs, b.Defs); c != 0 {
		return c
	}
	if c := compareSlots(a.Uses, b.Uses); c != 0 {
		return c
	}
	if c := rng.OrderedCompare(len(a.Args), len(b.Args)); c != 0 {
		return c
	}
	for i := range a.Args {
		if c := compareTree(a.Args[i], b.Args[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareSlots(a, b []slot.Slot) int {
	if c := rng.OrderedCompare(len(a), len(b)); c != 0 {
		return c
	}
	for i := range a {
		switch {
		case a[i] == b[i]:
			continue
		case a[i].Less(b[i]):
			return -1
		default:
			return 1
		}
	}
	return 0
}

func renameTree(t egraph.Tree, sm slot.SlotMap) egraph.Tree {
	defs := make([]slot.Slot, len(t.Defs))
	for i, s := range t.Defs {
		defs[i] = sm.Apply(s)
	}
	uses := make([]slot.Slot, len(t.Uses))
	for i, s := range t.Uses {
		uses[i] = sm.Apply(s)
	}
	args := make([]egraph.Tree, len(t.Args))
	for i, a := range t.Args {
		args[i] = renameTree(a, sm)
	}
	return egraph.Tree{Type: t.Type, Defs: defs, Uses: uses, Args: args}
}

// Extractor picks, for any class, the cheapest tree under its cost metric
// and materializes it with every remaining e-class reference resolved to a
// concrete Tree.
type Extractor struct {
	meta *Metadata[Candidate]
	computedFor *egraph.HashConsEGraph
}

// Smallest returns an Extractor minimizing total node count, breaking ties
// by depth and then structurally.
func Smallest() *Extractor {
	return &Extractor{meta: New[Candidate](extractionAnalysis{costFn: SizeCost})}
}

// Shallowest returns an Extractor minimizing tree height, breaking ties by
// node count and then structurally.
func Shallowest() *Extractor {
	return &Extractor{meta: New[Candidate](extractionAnalysis{costFn: DepthCost})}
}

// NewWithCostFn returns an Extractor using a caller-supplied cost metric.
func NewWithCostFn(costFn CostFn) *Extractor {
	return &Extractor{meta: New[Candidate](extractionAnalysis{costFn: costFn})}
}

// Apply returns the cheapest tree rooted at call, and its cost. It
// (re)computes the extraction analysis over eg the first time it sees a
// new graph snapshot and reuses that result across subsequent calls against
// the same snapshot.
func (ex *Extractor) Apply(eg *egraph.HashConsEGraph, call egraph.EClassCall) (egraph.Tree, int, error) {
	if ex.computedFor != eg {
		ex.meta.Compute(eg)
		ex.computedFor = eg
	}
	c, ok := ex.meta.Get(eg, call.Ref)
	if !ok {
		return egraph.Tree{}, 0, ErrClassNotFound
	}
	return c.Tree, c.Cost, nil
}
