// Package: group
//
// errors.go — sentinel errors for the group package.
package group

import "errors"

// ErrNotPermutation indicates a SlotMap passed to Add/Contains is not a
// permutation of the group's domain.
var ErrNotPermutation = errors.New("group: map is not a permutation of the group's domain")

// ErrEnumerationTooLarge indicates a group larger than the enumeration
// limit was asked to be materialized: AllPerms panics with it above
// MaxEnumeration, and AllPermsBounded returns it above the caller's limit.
var ErrEnumerationTooLarge = errors.New("group: refusing to enumerate a group above the size cap")
