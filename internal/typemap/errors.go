package typemap

import (
	"errors"
	"fmt"
)

// UnsupportedTypeError reports a source type with no target mapping under
// the active configuration. Function-scoped: the orchestrator drops the
// function and keeps its siblings.
type UnsupportedTypeError struct {
	// Source is the canonical rendering of the offending source type.
	Source string
	Reason string
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type %q: %s", e.Source, e.Reason)
}

// IsUnsupportedType reports whether err is (or wraps) an
// UnsupportedTypeError.
func IsUnsupportedType(err error) bool {
	var ue *UnsupportedTypeError
	return errors.As(err, &ue)
}
