package harness

import (
	"fmt"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// RunWithGolden executes a scenario and compares the generated source
// against testdata/golden/{scenario.Name}.golden.rs.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden.rs"),
	)
	g.Assert(t, scenario.Name, []byte(result.Source))
	return nil
}

// DiffGolden renders a unified text diff between the recorded golden file
// and the given source. Empty when they match. Used to explain mismatches
// outside the test runner.
func DiffGolden(name, source string) (string, error) {
	path := fmt.Sprintf("testdata/golden/%s.golden.rs", name)
	want, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read golden %s: %w", path, err)
	}
	if string(want) == source {
		return "", nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(want), source, false)
	dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs), nil
}
