package borrow

import (
	"sort"

	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/ir"
)

// Resolver applies the ownership decision order under one function's
// effective annotations.
type Resolver struct {
	eff annotations.Effective
}

// NewResolver returns a Resolver for the given effective annotations.
func NewResolver(eff annotations.Effective) *Resolver {
	return &Resolver{eff: eff}
}

// ResolveFunction resolves every binding of the function: parameters in
// declaration order first, then locals in name order. The first conflict
// aborts the function.
func (r *Resolver) ResolveFunction(fn *ir.Function, profiles map[string]ir.UsageProfile) (map[string]ir.OwnershipStrategy, error) {
	out := make(map[string]ir.OwnershipStrategy, len(profiles))

	paramTypes := make(map[string]ir.SourceType, len(fn.Params))
	for _, p := range fn.Params {
		paramTypes[p.Name] = p.Type
		strategy, err := r.Resolve(fn.Name, p.Name, profiles[p.Name], p.Type)
		if err != nil {
			return nil, err
		}
		out[p.Name] = strategy
	}

	locals := make([]string, 0, len(profiles))
	for name := range profiles {
		if _, isParam := paramTypes[name]; !isParam {
			locals = append(locals, name)
		}
	}
	sort.Strings(locals)
	for _, name := range locals {
		strategy, err := r.Resolve(fn.Name, name, profiles[name], nil)
		if err != nil {
			return nil, err
		}
		out[name] = strategy
	}
	return out, nil
}

// Resolve picks the strategy for one binding. First match wins.
func (r *Resolver) Resolve(fnName, binding string, prof ir.UsageProfile, declared ir.SourceType) (ir.OwnershipStrategy, error) {
	// 1. Explicit annotation wins, validated against usage.
	if own, ok := r.eff.Ownership[binding]; ok {
		return r.applyAnnotation(fnName, binding, own, prof)
	}

	// 2. Consumed by a call and never seen again: hand it over.
	if prof.Moved && !prof.Escapes {
		return ir.TakeOwnership, nil
	}

	// 3. Mutation needs exclusivity; mutation of longer-lived state needs
	// shared ownership instead.
	if prof.Mutated {
		if prof.Stored {
			return ir.SharedOwnership, nil
		}
		return ir.BorrowMutable, nil
	}

	// 4. Stored into a longer-lived container.
	if prof.Stored {
		return ir.SharedOwnership, nil
	}

	// 5. Returned unchanged.
	if prof.Escapes {
		if isTextual(declared) && r.eff.StringStrategy == annotations.StringFlexible {
			return ir.CopyOnWrite, nil
		}
		return ir.TakeOwnership, nil
	}

	// Copyable scalars pass by value even when read-only.
	if isCopyable(declared) {
		return ir.TakeOwnership, nil
	}

	// 6. Read-only, non-escaping.
	return ir.BorrowImmutable, nil
}

func (r *Resolver) applyAnnotation(fnName, binding string, own annotations.Ownership, prof ir.UsageProfile) (ir.OwnershipStrategy, error) {
	conflict := func(reason string) (ir.OwnershipStrategy, error) {
		return 0, &OwnershipConflictError{
			Function:   fnName,
			Binding:    binding,
			Annotation: own,
			Reason:     reason,
		}
	}

	switch own {
	case annotations.OwnershipOwned:
		return ir.TakeOwnership, nil

	case annotations.OwnershipBorrowed:
		if prof.Mutated {
			return conflict("usage shows mutation")
		}
		if prof.Moved {
			return conflict("usage shows a consuming call")
		}
		if prof.Escapes || prof.Stored {
			return conflict("usage shows the value outliving the call")
		}
		return ir.BorrowImmutable, nil

	case annotations.OwnershipBorrowedMut:
		if prof.Moved {
			return conflict("usage shows a consuming call")
		}
		if prof.Escapes || prof.Stored {
			return conflict("usage shows the value outliving the call")
		}
		return ir.BorrowMutable, nil

	case annotations.OwnershipShared:
		return ir.SharedOwnership, nil

	case annotations.OwnershipCow:
		if prof.Mutated {
			return conflict("usage shows mutation")
		}
		return ir.CopyOnWrite, nil

	default:
		return conflict("unrecognized ownership annotation")
	}
}

func isTextual(t ir.SourceType) bool {
	_, ok := t.(ir.StrType)
	return ok
}

// isCopyable reports whether a declared type is a cheap scalar.
func isCopyable(t ir.SourceType) bool {
	switch t.(type) {
	case ir.IntType, ir.FloatType, ir.BoolType, ir.NoneType:
		return true
	default:
		return false
	}
}
