// Package annotations models the transpilation directives attached to a
// source module. The option vocabulary is fixed and closed: unknown keys or
// invalid values are rejected before the pipeline runs, naming the
// offending key and scope.
//
// Annotation documents are CUE; they are compiled through the CUE SDK's Go
// API (not a CLI subprocess). The resulting Config is read-only for every
// core component - the pipeline never mutates it.
package annotations
