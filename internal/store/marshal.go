package store

import (
	"encoding/json"
	"fmt"

	"github.com/ferrule-dev/ferrule/internal/diag"
	"github.com/ferrule-dev/ferrule/internal/ir"
)

// marshalStrategies serializes a strategy map to canonical JSON per
// RFC 8785. Canonical form keeps rows byte-comparable across runs.
func marshalStrategies(strategies map[string]ir.OwnershipStrategy) (string, error) {
	m := make(map[string]any, len(strategies))
	for name, s := range strategies {
		m[name] = s.String()
	}
	b, err := ir.MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("marshal strategies: %w", err)
	}
	return string(b), nil
}

func unmarshalStrategies(raw string) (map[string]ir.OwnershipStrategy, error) {
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("unmarshal strategies: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[string]ir.OwnershipStrategy, len(m))
	for name, s := range m {
		strategy, err := parseStrategy(s)
		if err != nil {
			return nil, fmt.Errorf("unmarshal strategies: binding %s: %w", name, err)
		}
		out[name] = strategy
	}
	return out, nil
}

func marshalLifetimes(lifetimes map[string]ir.Lifetime) (string, error) {
	m := make(map[string]any, len(lifetimes))
	for name, lt := range lifetimes {
		m[name] = map[string]any{"name": lt.Name, "scope": int(lt.Scope)}
	}
	b, err := ir.MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("marshal lifetimes: %w", err)
	}
	return string(b), nil
}

func unmarshalLifetimes(raw string) (map[string]ir.Lifetime, error) {
	var m map[string]struct {
		Name  string `json:"name"`
		Scope int    `json:"scope"`
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("unmarshal lifetimes: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[string]ir.Lifetime, len(m))
	for name, lt := range m {
		out[name] = ir.Lifetime{Name: lt.Name, Scope: ir.ScopeID(lt.Scope)}
	}
	return out, nil
}

func parseStrategy(s string) (ir.OwnershipStrategy, error) {
	switch s {
	case "take_ownership":
		return ir.TakeOwnership, nil
	case "borrow_immutable":
		return ir.BorrowImmutable, nil
	case "borrow_mutable":
		return ir.BorrowMutable, nil
	case "shared_ownership":
		return ir.SharedOwnership, nil
	case "copy_on_write":
		return ir.CopyOnWrite, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", s)
	}
}

func parseConfidence(s string) ir.Confidence {
	switch s {
	case "proven":
		return ir.ConfidenceProven
	case "likely":
		return ir.ConfidenceLikely
	default:
		return ir.ConfidenceUnknown
	}
}

func parseSeverity(s string) diag.Severity {
	switch s {
	case "error":
		return diag.Error
	case "warning":
		return diag.Warning
	default:
		return diag.Info
	}
}
