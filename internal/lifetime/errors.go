package lifetime

import (
	"errors"
	"fmt"
)

// LifetimeViolationError reports a borrow that would outlive its origin's
// scope. Recoverable: the caller forces TakeOwnership for the binding and
// re-propagates, surfacing a diagnostic either way.
type LifetimeViolationError struct {
	Function string
	Binding  string
	Reason   string
}

// Error implements the error interface.
func (e *LifetimeViolationError) Error() string {
	return fmt.Sprintf("lifetime violation in %s: binding %q %s", e.Function, e.Binding, e.Reason)
}

// IsLifetimeViolation reports whether err is (or wraps) a
// LifetimeViolationError.
func IsLifetimeViolation(err error) bool {
	var lv *LifetimeViolationError
	return errors.As(err, &lv)
}
