package harness

import (
	"context"
	"fmt"
	"os"

	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/ir"
	"github.com/ferrule-dev/ferrule/internal/pipeline"
	"github.com/ferrule-dev/ferrule/internal/stdmap"
)

// Run executes a scenario: load inputs, run the pipeline, check the
// expectation. The returned result carries the generated source for
// golden comparison.
func Run(scenario *Scenario) (*pipeline.Result, error) {
	data, err := os.ReadFile(scenario.resolve(scenario.Module))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: read module: %w", scenario.Name, err)
	}
	module, err := ir.DecodeModule(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: decode module: %w", scenario.Name, err)
	}

	cfg := annotations.NewConfig()
	if scenario.Annotations != "" {
		cfg, err = annotations.LoadFile(scenario.resolve(scenario.Annotations))
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}

	table, err := stdmap.Default()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	if scenario.Overlay != "" {
		if err := table.ApplyOverlayFile(scenario.resolve(scenario.Overlay)); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}

	runner, err := pipeline.New(module, cfg, table, pipeline.Options{})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	result, err := runner.Run(context.Background())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	if err := checkExpectation(scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}
