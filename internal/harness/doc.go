// Package harness provides conformance testing for transpilation runs.
//
// The harness loads an IR module and its annotation document, executes a
// full pipeline run, validates assertions about the outcome, and compares
// the generated source against a golden file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	module: path/to/module.json
//	annotations: path/to/annotations.cue
//	overlay: path/to/stdlib_overlay.yaml
//	expect:
//	  included:
//	    - scale
//	  excluded:
//	    - dial
//	  diagnostics:
//	    - severity: error
//	      scope: dial
//	      code: unmapped_call
//
// Paths are relative to the scenario file. The annotations and overlay
// entries are optional; defaults apply when omitted.
//
// # Deterministic Testing
//
// A run's output depends only on the module and its configuration, so a
// scenario's generated source is compared byte for byte against
// testdata/golden/{name}.golden.rs. Regenerate golden files with:
//
//	go test ./internal/harness -update
package harness
