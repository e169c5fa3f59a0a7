// Package: slot
//
// errors.go — sentinel errors for the slot package.
//
// Error policy (explicit and strict, matching the rest of this module):
// - Only sentinel variables (package-level) are exposed.
// - Callers MUST use errors.Is(err, ErrX) to branch on semantics.
// - Sentinels are NEVER wrapped with formatted strings at definition site.
package slot

import "errors"

// ErrNotBijection indicates Inverse was called on a SlotMap whose value set
// does not have the same cardinality as its key set, so no well-defined
// inverse mapping exists.
var ErrNotBijection = errors.New("slot: map is not a bijection")

// ErrComposeMismatch indicates ComposeStrict was called with a receiver
// whose value set does not equal the argument's key set exactly.
var ErrComposeMismatch = errors.New("slot: strict composition requires matching key/value sets")

// ErrDuplicateSlot indicates a SlotSet constructor received the same slot
// twice where the call site requires distinct slots (e.g. ENode
// definitions, which must not repeat).
var ErrDuplicateSlot = errors.New("slot: duplicate slot where distinct slots are required")
