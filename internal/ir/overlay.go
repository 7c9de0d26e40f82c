package ir

// NOTE: Overlay types are produced by the analysis passes, one overlay per
// pass. A pass never edits a previous pass's overlay in place; the pipeline
// re-runs a pass with changed inputs instead (lifetime fallback).

// UsageProfile records how a binding is accessed within one function.
// Built once by the usage analyzer, immutable afterward.
type UsageProfile struct {
	// Reads counts plain read accesses.
	Reads int
	// Mutated is set by reassignment, augmented assignment, index/attr
	// stores, or known-mutating method calls.
	Mutated bool
	// Moved is set when the binding is passed to a call that consumes it.
	Moved bool
	// Escapes is set when the binding is returned or captured by a lambda
	// that leaves the function.
	Escapes bool
	// Stored is set when the binding is stored into a longer-lived
	// container (global, field of an escaping value).
	Stored bool
	// UsedInLoop is set when any access happens inside a loop body.
	UsedInLoop bool
}

// OwnershipStrategy is the chosen target representation for one binding.
// Exactly one strategy per binding.
type OwnershipStrategy int

const (
	// TakeOwnership passes/holds the value by move.
	TakeOwnership OwnershipStrategy = iota
	// BorrowImmutable passes a shared reference.
	BorrowImmutable
	// BorrowMutable passes an exclusive mutable reference.
	BorrowMutable
	// SharedOwnership wraps the value in a reference-counted cell.
	SharedOwnership
	// CopyOnWrite defers the owned/borrowed decision to runtime (Cow).
	CopyOnWrite
)

// String implements fmt.Stringer.
func (s OwnershipStrategy) String() string {
	switch s {
	case TakeOwnership:
		return "take_ownership"
	case BorrowImmutable:
		return "borrow_immutable"
	case BorrowMutable:
		return "borrow_mutable"
	case SharedOwnership:
		return "shared_ownership"
	case CopyOnWrite:
		return "copy_on_write"
	default:
		return "unknown"
	}
}

// ScopeID identifies one lexical scope within a function. Scope 0 is the
// function body; nested branch arms and loop bodies get increasing IDs in
// visit order, so IDs are deterministic for a given IR.
type ScopeID int

// FunctionScope is the outermost scope of every function body.
const FunctionScope ScopeID = 0

// Lifetime tags a borrowed binding with the innermost scope containing both
// its origin and every use. Invariant: a borrow's lifetime never outlives
// its origin's enclosing scope; violations force TakeOwnership.
type Lifetime struct {
	// Name is the emitted lifetime parameter ("'a", "'b", ...).
	Name string
	// Scope is the scope the borrow is valid for.
	Scope ScopeID
}

// StringPlanKind selects the allocation strategy for one string-producing
// expression.
type StringPlanKind int

const (
	// StaticLiteralReference emits &'static str.
	StaticLiteralReference StringPlanKind = iota
	// InternedConstant references a named const shared by all uses of the
	// same literal (more than 3 occurrences in one function body).
	InternedConstant
	// OwnedAllocation emits String.
	OwnedAllocation
	// FlexibleOwnership emits Cow<'static, str>.
	FlexibleOwnership
)

// String implements fmt.Stringer.
func (k StringPlanKind) String() string {
	switch k {
	case StaticLiteralReference:
		return "static_literal"
	case InternedConstant:
		return "interned_constant"
	case OwnedAllocation:
		return "owned_allocation"
	case FlexibleOwnership:
		return "flexible_ownership"
	default:
		return "unknown"
	}
}

// StringPlan is the resolved plan for one literal or binding.
type StringPlan struct {
	Kind StringPlanKind
	// ConstName is the interned constant's emitted name; set only when
	// Kind is InternedConstant.
	ConstName string
}
