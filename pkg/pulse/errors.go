package pulse

import "errors"

// ErrBudgetExceeded is returned (or panicked, depending on the configured
// mode) when the storm budget's effect-run limit is exceeded. This
// indicates an amplification bug: effects cascading into more effect runs
// than the window allows.
var ErrBudgetExceeded = errors.New("pulse: storm budget exceeded")

// ErrTypeMismatch is wrapped by SetAny when the provided value is not
// assignable to the signal's value type.
var ErrTypeMismatch = errors.New("pulse: value type mismatch")
