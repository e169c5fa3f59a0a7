package parallelmap

import "errors"

// ErrCanceled is returned by a Cancelable-wrapped Map's Apply/ProcessBlocks
// once its CancellationToken has been canceled, either before the call
// started or partway through a batch. Not found/failure-class: returned,
// never panicked.
var ErrCanceled = errors.New("parallelmap: canceled")

// ErrInvalidBlockSize indicates ProcessBlocks was called with blockSize
// <= 0. Precondition violation: panics.
var ErrInvalidBlockSize = errors.New("parallelmap: blockSize must be positive")
