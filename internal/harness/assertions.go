package harness

import (
	"fmt"
	"strings"

	"github.com/ferrule-dev/ferrule/internal/pipeline"
)

// AssertionError is returned when a scenario expectation fails. It
// includes the diagnostics so a failure is debuggable from the message
// alone.
type AssertionError struct {
	Scenario string
	Expected string
	Actual   string
	Result   *pipeline.Result
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario %s: assertion failed\n", e.Scenario)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Result.Diagnostics) > 0 {
		buf.WriteString("\nDiagnostics:\n")
		for _, d := range e.Result.Diagnostics {
			fmt.Fprintf(&buf, "  %s\n", d)
		}
	}
	return buf.String()
}

func checkExpectation(scenario *Scenario, result *pipeline.Result) error {
	included := map[string]bool{}
	for _, r := range result.Reports {
		included[r.Name] = r.Included
	}

	for _, name := range scenario.Expect.Included {
		if !included[name] {
			return &AssertionError{
				Scenario: scenario.Name,
				Expected: fmt.Sprintf("function %s included in output", name),
				Actual:   describeFunction(result, name),
				Result:   result,
			}
		}
	}
	for _, name := range scenario.Expect.Excluded {
		if included[name] {
			return &AssertionError{
				Scenario: scenario.Name,
				Expected: fmt.Sprintf("function %s excluded from output", name),
				Actual:   "function was included",
				Result:   result,
			}
		}
	}

	for _, want := range scenario.Expect.Diagnostics {
		if !hasDiagnostic(result, want) {
			return &AssertionError{
				Scenario: scenario.Name,
				Expected: fmt.Sprintf("diagnostic severity=%s scope=%s code=%s", want.Severity, want.Scope, want.Code),
				Actual:   fmt.Sprintf("%d diagnostics, none matching", len(result.Diagnostics)),
				Result:   result,
			}
		}
	}
	return nil
}

func describeFunction(result *pipeline.Result, name string) string {
	for _, r := range result.Reports {
		if r.Name == name {
			return "function was excluded"
		}
	}
	return "function not present in module"
}

func hasDiagnostic(result *pipeline.Result, want DiagAssertion) bool {
	for _, d := range result.Diagnostics {
		if want.Severity != "" && d.Severity.String() != want.Severity {
			continue
		}
		if want.Scope != "" && d.Scope != want.Scope {
			continue
		}
		if want.Code != "" && d.Code != want.Code {
			continue
		}
		return true
	}
	return false
}
