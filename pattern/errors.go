package pattern

import "errors"

// ErrRegisterOutOfRange indicates an Instruction names a register index the
// current MachineState hasn't allocated yet. Precondition violation on a
// malformed CompiledPattern: panics.
var ErrRegisterOutOfRange = errors.New("pattern: register out of range")
