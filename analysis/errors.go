package analysis

import "errors"

// ErrClassNotFound indicates a query named a class absent from the
// metadata's cached results or from the backing e-graph. Not found/failure
// class: returned, never panicked.
var ErrClassNotFound = errors.New("analysis: class not found")
