// Package diag models the structured diagnostics the pipeline emits
// alongside generated output: severity, scope, a stable code, and the
// offending construct. Diagnostics never abort sibling functions; the
// orchestrator collects the union and the CLI renders it.
package diag

import (
	"fmt"
	"sort"
)

// Severity grades a diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Stable diagnostic codes, one per error kind.
const (
	CodeUnsupportedType   = "unsupported_type"
	CodeOwnershipConflict = "ownership_conflict"
	CodeLifetimeFallback  = "lifetime_fallback"
	CodeUnmappedCall      = "unmapped_call"
	CodeAnnotationInvalid = "annotation_invalid"
)

// Diagnostic is one finding. Scope is the function name, or "module" for
// module-level findings.
type Diagnostic struct {
	Severity  Severity
	Scope     string
	Code      string
	Message   string
	Construct string // offending construct rendering, may be empty
}

// String renders one line without color.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s[%s] %s: %s", d.Severity, d.Code, d.Scope, d.Message)
	if d.Construct != "" {
		s += fmt.Sprintf(" (%s)", d.Construct)
	}
	return s
}

// Sort orders diagnostics deterministically: scope, then code, then
// message. Emission order must not depend on worker completion order.
func Sort(diags []Diagnostic) {
	sort.Slice(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}

// CountErrors reports how many diagnostics are error-severity.
func CountErrors(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == Error {
			n++
		}
	}
	return n
}
