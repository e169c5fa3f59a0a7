package saturate

import "github.com/pkg/errors"

// ErrExtractionFailed is wrapped (per class ref) when ThenRebase can't
// extract a tree for a class it's trying to carry into the fresh graph.
var ErrExtractionFailed = errors.New("saturate: extraction failed during rebase")
