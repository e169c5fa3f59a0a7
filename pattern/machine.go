package pattern

import (
	"github.com/eqsat/slotted-egraph/egraph"
	"github.com/eqsat/slotted-egraph/slot"
)

// Instruction is one step of a CompiledPattern.
type Instruction interface{ isInstruction }

// BindNode matches a shape ENode at Register against Type/DefSlots/UseSlots
// (pattern slots, unified injectively with whatever the state's slot
// binding map already holds) and, on a match, appends ArgCount fresh
// registers holding the node's own arguments.
type BindNode struct {
	Register int
	Type egraph.NodeType
	DefSlots []slot.Slot
	UseSlots []slot.Slot
	ArgCount int
}

func (BindNode) isInstruction() {}

// BindVar binds pattern variable Var to the MixedTree currently sitting at
// Register. If Var is already bound, the new occurrence must be
// structurally equal (up to e-graph canonicalization for class-call
// leaves) to the existing binding.
type BindVar struct {
	Register int
	Var string
}

func (BindVar) isInstruction() {}

// Compare requires Reg1 and Reg2 to canonicalize to the same class —
// available for callers hand-assembling a CompiledPattern that needs to
// unify two independently bound registers directly; Pattern.Compile() itself
// never emits one, since repeated pattern-variable occurrences are already
// enforced by BindVar's own equality check.
type Compare struct {
	Reg1, Reg2 int
}

func (Compare) isInstruction() {}

// CompiledPattern is the instruction sequence Pattern.Compile() produces.
type CompiledPattern []Instruction

// MachineState is the pattern machine's register file, variable bindings,
// pattern-slot-to-concrete-slot bindings, and the shape nodes bound along
// the way.
type MachineState struct {
	Registers []egraph.EClassCall
	Vars map[string]egraph.MixedTree
	Slots slot.SlotMap
	Bound []egraph.ENode
}

func initialState(seed egraph.EClassCall) MachineState {
	return MachineState{
		Registers: []egraph.EClassCall{seed},
		Vars: make(map[string]egraph.MixedTree),
	}
}

func setSlot(sm slot.SlotMap, k, v slot.Slot) slot.SlotMap {
	pairs := make([][2]slot.Slot, 0, sm.Len()+1)
	for _, key := range sm.Keys().Slice() {
		val, _ := sm.Lookup(key)
		pairs = append(pairs, [2]slot.Slot{key, val})
	}
	pairs = append(pairs, [2]slot.Slot{k, v})
	return slot.NewSlotMap(pairs...)
}

type frame struct {
	state MachineState
	pc int
}

// run drives prog against eg starting from seed via an explicit stack of
// partial states, invoking cont on every
// terminal (fully executed) state. cont returning false unwinds the whole
// search immediately rather than just the current branch.
func run(prog CompiledPattern, eg *egraph.HashConsEGraph, seed egraph.EClassCall, cont func(MachineState) bool) {
	stack := []frame{{state: initialState(seed), pc: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.pc == len(prog) {
			if !cont(f.state) {
				return
			}
			continue
		}

		switch ins := prog[f.pc].(type) {
		case BindNode:
			if ins.Register >= len(f.state.Registers) {
				panic(ErrRegisterOutOfRange)
			}
			reg := f.state.Registers[ins.Register]
			for _, sc := range eg.Nodes(reg) {
				if ns, ok := tryBindNode(f.state, sc, ins); ok {
					stack = append(stack, frame{state: ns, pc: f.pc + 1})
				}
			}
		case BindVar:
			if ins.Register >= len(f.state.Registers) {
				panic(ErrRegisterOutOfRange)
			}
			if ns, ok := tryBindVar(f.state, ins, eg); ok {
				stack = append(stack, frame{state: ns, pc: f.pc + 1})
			}
		case Compare:
			if ins.Reg1 >= len(f.state.Registers) || ins.Reg2 >= len(f.state.Registers) {
				panic(ErrRegisterOutOfRange)
			}
			if eg.AreSame(f.state.Registers[ins.Reg1], f.state.Registers[ins.Reg2]) {
				stack = append(stack, frame{state: f.state, pc: f.pc + 1})
			}
		}
	}
}

// tryBindNode attempts to match sc against ins, extending state on success.
func tryBindNode(state MachineState, sc egraph.ShapeCall, ins BindNode) (MachineState, bool) {
	if !sc.Shape.Type.Equal(ins.Type) {
		return state, false
	}
	if len(sc.Shape.Defs) != len(ins.DefSlots) || len(sc.Shape.Uses) != len(ins.UseSlots) || len(sc.Shape.Args) != ins.ArgCount {
		return state, false
	}

	slots := state.Slots
	bind := func(patternSlot, concreteSlot slot.Slot) bool {
		if existing, ok := slots.Lookup(patternSlot); ok {
			return existing == concreteSlot
		}
		for _, k := range slots.Keys().Slice() {
			if v, _ := slots.Lookup(k); v == concreteSlot {
				return false // injectivity: concreteSlot already claimed by a different pattern slot
			}
		}
		slots = setSlot(slots, patternSlot, concreteSlot)
		return true
	}

	for i, ps := range ins.DefSlots {
		if !bind(ps, sc.Renaming.Apply(sc.Shape.Defs[i])) {
			return state, false
		}
	}
	for i, ps := range ins.UseSlots {
		if !bind(ps, sc.Renaming.Apply(sc.Shape.Uses[i])) {
			return state, false
		}
	}

	newRegs := append([]egraph.EClassCall(nil), state.Registers...)
	for _, a := range sc.Shape.Args {
		newRegs = append(newRegs, egraph.EClassCall{Ref: a.Ref, Args: a.Args.ComposeStrict(sc.Renaming)})
	}

	ns := state
	ns.Registers = newRegs
	ns.Slots = slots
	ns.Bound = append(append([]egraph.ENode(nil), state.Bound...), sc.Shape)
	return ns, true
}

func tryBindVar(state MachineState, ins BindVar, eg *egraph.HashConsEGraph) (MachineState, bool) {
	reg := state.Registers[ins.Register]
	tree := egraph.MixedCall(reg)

	if existing, ok := state.Vars[ins.Var]; ok {
		return state, structurallyEqual(existing, tree, eg)
	}

	vars := make(map[string]egraph.MixedTree, len(state.Vars)+1)
	for k, v := range state.Vars {
		vars[k] = v
	}
	vars[ins.Var] = tree

	ns := state
	ns.Vars = vars
	return ns, true
}

// structurallyEqual compares two MixedTree leaves/nodes, resolving class
// references through eg.AreSame so alpha-equivalent calls compare equal.
func structurallyEqual(a, b egraph.MixedTree, eg *egraph.HashConsEGraph) bool {
	if a.IsAtom != b.IsAtom {
		return false
	}
	if a.IsAtom {
		if a.Atom.IsCall != b.Atom.IsCall {
			return false
		}
		if a.Atom.IsCall {
			return eg.AreSame(a.Atom.Call, b.Atom.Call)
		}
		return a.Atom.Var == b.Atom.Var
	}
	if !a.Type.Equal(b.Type) || len(a.Args) != len(b.Args) {
		return false
	}
	if !equalSlotSlice(a.Defs, b.Defs) || !equalSlotSlice(a.Uses, b.Uses) {
		return false
	}
	for i := range a.Args {
		if !structurallyEqual(a.Args[i], b.Args[i], eg) {
			return false
		}
	}
	return true
}

func equalSlotSlice(a, b []slot.Slot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
