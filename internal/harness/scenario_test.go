package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
name: demo
description: "demo scenario"
module: mod.json
annotations: ann.cue
expect:
  included: [a, b]
  diagnostics:
    - severity: warning
      code: lifetime_fallback
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)
	require.Equal(t, "demo", s.Name)
	require.Equal(t, []string{"a", "b"}, s.Expect.Included)
	require.Equal(t, "lifetime_fallback", s.Expect.Diagnostics[0].Code)

	// Relative paths resolve against the scenario directory.
	require.Equal(t, filepath.Join(filepath.Dir(path), "mod.json"), s.resolve(s.Module))
}

func TestLoadScenarioMissingName(t *testing.T) {
	path := writeScenario(t, "module: mod.json\n")
	_, err := LoadScenario(path)
	require.ErrorContains(t, err, "missing name")
}

func TestLoadScenarioMissingModule(t *testing.T) {
	path := writeScenario(t, "name: demo\n")
	_, err := LoadScenario(path)
	require.ErrorContains(t, err, "missing module")
}

func TestRunFailedExpectationIsAssertionError(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/sum_scaled.yaml")
	require.NoError(t, err)
	scenario.Expect.Included = append(scenario.Expect.Included, "not_there")

	_, err = Run(scenario)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	require.Contains(t, ae.Error(), "not_there")
}
