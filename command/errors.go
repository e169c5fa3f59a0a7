package command

import "github.com/pkg/errors"

// ErrUnresolvedSymbol is the error Schedule.Run panics with (wrapped with
// the offending handle) when it encounters a Virtual symbol whose handle
// was never added at an earlier level.
var ErrUnresolvedSymbol = errors.New("command: symbol resolves to no class")
