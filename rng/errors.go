package rng

import "errors"

// ErrInvalidProbability indicates NewShiftedGeometric was called with p
// outside (0, 1]. Precondition violation: panics.
var ErrInvalidProbability = errors.New("rng: shifted-geometric probability must be in (0, 1]")
