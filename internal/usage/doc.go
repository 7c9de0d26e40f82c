// Package usage builds per-binding usage profiles in a single pass over a
// function body. Profiles are conservative unions across branches: any
// access in any branch sets the corresponding flag for the remainder of
// analysis, so no fixpoint iteration is needed. Lambda bodies contribute
// moved/escapes flags to captured outer bindings.
//
// The package also derives function properties (purity, termination,
// panic-freedom) consumed by directive conditions and doc metadata.
package usage
