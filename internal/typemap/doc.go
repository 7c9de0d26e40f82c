// Package typemap maps source types onto target (Rust) types under a
// per-module configuration: integer width, string strategy, and the
// dynamic fallback policy. Unions become generated tagged enums; a type
// with no mapping fails with an UnsupportedTypeError that the orchestrator
// turns into a function-scoped diagnostic.
//
// Mapping is pure and memoized: results are cached in an LRU keyed by the
// canonical source-type rendering, which is stable and injective.
package typemap
