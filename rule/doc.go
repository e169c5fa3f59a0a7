// Package rule implements rewrite rules: a Rule pairs a
// Searcher producing Matches against an e-graph with an Applier turning
// each Match into a command.Schedule. Structural pattern-to-pattern rules
// can additionally be reversed (TryReverse) by swapping searcher and
// applier roles.
package rule
