// Package lifetime assigns a lifetime to every borrowed binding. A scope
// stack mirrors control-flow nesting (function body, branch arms, loop
// bodies); a borrow's lifetime is the innermost scope containing both its
// origin and every use. A borrow that would outlive its origin's scope is
// a violation; the caller re-resolves that binding with TakeOwnership
// forced, so propagation always terminates with a valid result.
package lifetime
