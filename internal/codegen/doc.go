// Package codegen emits target (Rust) source from analyzed IR. A
// recursive-descent orchestrator delegates per syntactic category to
// sub-generators (expression, statement, signature, type declaration,
// error wrapper, import list) that share one read-only generation context
// per function: resolved ownership strategies, lifetimes, string plans,
// usage profiles, and the symbol table.
//
// Output is deterministic: identical IR and configuration produce
// byte-identical source. Nothing iterates a map without sorting first. A
// function whose body contains an unmapped construct is excluded with a
// diagnostic; its siblings are unaffected.
package codegen
