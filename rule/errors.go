package rule

import "github.com/pkg/errors"

// ErrDuplicateName is wrapped (per offending name) by ValidateRules.
var ErrDuplicateName = errors.New("rule: duplicate rule name")
