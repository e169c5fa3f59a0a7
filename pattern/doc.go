// Package pattern implements the compiled pattern machine: a
// Pattern tree compiles to a CompiledPattern instruction sequence, which
// runs against a MachineState via an explicit stack rather than recursion
// — avoiding native call stack growth per branch on deep patterns. The
// generic Searcher combinators (Filter, Map, AndThen, FlatMap, Product,
// Merge) let callers build multi-phase searches without hand-rolling the
// plumbing each time.
package pattern
