// Package: unionfind
//
// errors.go — sentinel errors for the unionfind package.
package unionfind

import "errors"

// ErrUnknownRef is the error Union panics with when child or parent was
// never registered via NewClass. Find does not use it: it reports an
// unknown ref by returning false, since a caller legitimately holding a
// stale ref from a prior snapshot is not a core bug.
var ErrUnknownRef = errors.New("unionfind: unknown class reference")

// ErrUnionDomainMismatch indicates Union was called with a map whose key
// set does not equal the child's public slots, or whose value set is not a
// subset of the parent's public slots. This
// is a precondition violation: callers (only the egraph package's rebuild
// logic calls Union) are expected to have validated it already.
var ErrUnionDomainMismatch = errors.New("unionfind: union map does not respect child/parent slot sets")
