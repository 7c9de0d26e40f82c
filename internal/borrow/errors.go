package borrow

import (
	"errors"
	"fmt"

	"github.com/ferrule-dev/ferrule/internal/annotations"
)

// OwnershipConflictError reports an explicit per-binding annotation that
// contradicts observed usage. Function-scoped: the orchestrator drops the
// function and keeps its siblings.
type OwnershipConflictError struct {
	Function   string
	Binding    string
	Annotation annotations.Ownership
	Reason     string
}

// Error implements the error interface.
func (e *OwnershipConflictError) Error() string {
	return fmt.Sprintf("ownership conflict in %s: binding %q annotated %q but %s",
		e.Function, e.Binding, e.Annotation, e.Reason)
}

// IsOwnershipConflict reports whether err is (or wraps) an
// OwnershipConflictError.
func IsOwnershipConflict(err error) bool {
	var oc *OwnershipConflictError
	return errors.As(err, &oc)
}
