package stdmap

import (
	"errors"
	"fmt"
)

// UnmappedCallError reports a library call with no known target
// equivalent. Function-scoped: the orchestrator drops the calling
// function and keeps its siblings.
type UnmappedCallError struct {
	Function string
	Call     string
}

// Error implements the error interface.
func (e *UnmappedCallError) Error() string {
	return fmt.Sprintf("unmapped call in %s: %q has no target equivalent", e.Function, e.Call)
}

// IsUnmappedCall reports whether err is (or wraps) an UnmappedCallError.
func IsUnmappedCall(err error) bool {
	var uc *UnmappedCallError
	return errors.As(err, &uc)
}
