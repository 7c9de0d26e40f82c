package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: the inputs of a run and the
// expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden
	// file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Module is the path to the IR module JSON, relative to the scenario
	// file.
	Module string `yaml:"module"`

	// Annotations is an optional path to a CUE annotation document.
	Annotations string `yaml:"annotations,omitempty"`

	// Overlay is an optional path to a stdlib mapping overlay.
	Overlay string `yaml:"overlay,omitempty"`

	// Expect holds outcome assertions.
	Expect Expectation `yaml:"expect,omitempty"`

	// dir is the scenario file's directory, for resolving relative paths.
	dir string
}

// Expectation asserts on a run's outcome.
type Expectation struct {
	// Included lists functions that must appear in the output.
	Included []string `yaml:"included,omitempty"`

	// Excluded lists functions that must have been dropped.
	Excluded []string `yaml:"excluded,omitempty"`

	// Diagnostics lists findings that must be present.
	Diagnostics []DiagAssertion `yaml:"diagnostics,omitempty"`
}

// DiagAssertion matches one expected diagnostic. Empty fields match
// anything.
type DiagAssertion struct {
	Severity string `yaml:"severity,omitempty"`
	Scope    string `yaml:"scope,omitempty"`
	Code     string `yaml:"code,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	if s.Module == "" {
		return nil, fmt.Errorf("scenario %s: missing module", path)
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

// resolve joins a scenario-relative path with the scenario directory.
func (s *Scenario) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dir, path)
}
