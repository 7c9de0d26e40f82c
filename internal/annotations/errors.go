package annotations

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// ScopeKind identifies which level of the document an error refers to.
type ScopeKind string

const (
	ScopeModule   ScopeKind = "module"
	ScopeFunction ScopeKind = "function"
	ScopeBinding  ScopeKind = "binding"
)

// ValidationError reports a malformed or conflicting annotation document.
// Module-scoped validation errors are module-fatal; function- and
// binding-scoped errors drop only that scope.
type ValidationError struct {
	Scope     ScopeKind
	ScopeName string // function or binding name, empty at module scope
	Key       string
	Value     string
	Message   string
	Pos       token.Pos
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	loc := string(e.Scope)
	if e.ScopeName != "" {
		loc = fmt.Sprintf("%s %q", e.Scope, e.ScopeName)
	}
	msg := fmt.Sprintf("annotation %s: key %q: %s", loc, e.Key, e.Message)
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), msg)
	}
	return msg
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func unknownKey(scope ScopeKind, scopeName, key string, pos token.Pos) *ValidationError {
	return &ValidationError{
		Scope:     scope,
		ScopeName: scopeName,
		Key:       key,
		Message:   "unknown annotation key",
		Pos:       pos,
	}
}

func invalidValue(scope ScopeKind, scopeName, key, value string, allowed []string, pos token.Pos) *ValidationError {
	return &ValidationError{
		Scope:     scope,
		ScopeName: scopeName,
		Key:       key,
		Value:     value,
		Message:   fmt.Sprintf("invalid value %q: must be one of %v", value, allowed),
		Pos:       pos,
	}
}
