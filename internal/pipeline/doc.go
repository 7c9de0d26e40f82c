// Package pipeline drives a full transpilation run: per-function usage
// analysis, ownership resolution, lifetime propagation, string planning,
// and code generation, followed by deterministic module assembly.
//
// Functions are analyzed concurrently. Results are collected in IR
// declaration order, so the emitted source and the diagnostic list never
// depend on scheduling.
package pipeline
