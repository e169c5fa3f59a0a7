// Package saturate implements saturation strategies: a
// Strategy takes an e-graph and returns the next e-graph plus whether
// anything changed. Combinators (RepeatUntilStable, WithIterationLimit,
// WithTimeout, ThenApply,...) compose strategies; policies
// (MaximalRuleApplication, BackoffRuleApplication,
// StochasticRuleApplication) turn a rule set into one iteration's worth
// of search-and-apply.
package saturate
