// Package: egraph
//
// errors.go — sentinel errors for the egraph package.
//
// Error policy follows the rest of this module: sentinels only, branch with
// errors.Is, never string-wrap at the definition site or wrapped error; rule-application failure ->
// wrapped with (ruleName, snapshot, cause) one layer up, in package rule).
package egraph

import "errors"

// ErrUnknownClass names the condition of an EClassRef this graph has never
// produced. Canonicalize, Nodes and Users report that condition through
// their own results (false, or an empty slice) rather than by returning
// this error or panicking, since holding a stale ref from a prior
// snapshot is an ordinary, expected condition once e-graphs are values.
var ErrUnknownClass = errors.New("egraph: unknown class reference")

// ErrDuplicateDefinition indicates an ENode was constructed with the same
// slot appearing twice in Defs. Precondition violation: panics.
var ErrDuplicateDefinition = errors.New("egraph: duplicate slot in node definitions")

// ErrUsesNotCovered indicates a node's uses overlap its own definitions —
// a slot cannot be simultaneously bound by this node and referenced as
// free at the same node. Precondition violation: panics.
var ErrUsesNotCovered = errors.New("egraph: node uses a slot it also defines")

// ErrRenamingIncomplete names the condition of a shape's renaming that does
// not cover every slot in its class's public slot set. Rebuild's repair
// paths do not return or panic with it: on detecting the condition they
// queue a slot shrink and recover.
var ErrRenamingIncomplete = errors.New("egraph: shape renaming does not cover the class's public slots")
