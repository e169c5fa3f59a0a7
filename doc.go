// Package egraph root module (slotted-egraph) implements equality
// saturation over slotted e-graphs: e-graphs whose e-nodes carry
// explicit slot bindings, so that binder-aware languages (lambda
// calculus, let, quantifiers) can be represented and rewritten without
// separately tracking free-variable capture.
//
// The implementation is split across:
//
//	slot/        - Slot identifiers and SlotMap renamings
//	group/       - permutation groups over slots (symmetry of e-nodes)
//	unionfind/   - disjoint-set forest over e-classes, slot-renaming aware
//	egraph/      - HashConsEGraph: e-nodes, e-classes, add/union/rebuild
//	pattern/     - pattern search and instantiation against an e-graph
//	command/     - deferred-application schedules (Symbol, Schedule)
//	rule/        - rewrite rules built from searchers/appliers, reversible
//	saturate/    - iteration policies and combinators driving a rule set
//	analysis/    - per-class fixpoint metadata and tree extraction
//	parallelmap/ - bounded-concurrency fan-out helper shared across the above
//	rng/         - splittable PRNG and sampling distributions used by
//	               stochastic saturation policies
package egraph
