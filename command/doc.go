// Package command implements deferred-application schedules: a
// Schedule batches additions across dependency levels and a
// trailing set of unions, addressed by symbolic handles so a caller can
// build the whole DAG before any of it touches a real e-graph. Running a
// schedule resolves each level's symbols to concrete classes via
// egraph.TryAddMany, in order, then runs the unions.
package command
