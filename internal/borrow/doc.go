// Package borrow selects one ownership strategy per binding from its usage
// profile and any explicit annotation. The decision order is first-match:
// explicit intent always overrides inference, and safety-relevant flags
// (mutation, escape) are checked before convenience flags. An explicit
// annotation that contradicts observed usage is an ownership conflict and
// drops the function, never silently degrades.
package borrow
