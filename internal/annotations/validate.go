package annotations

import (
	"fmt"
	"sort"
	"strings"

	"cuelang.org/go/cue/token"
)

// Validate checks every scope of a compiled configuration: module first,
// then functions in name order. The first error found is returned.
// Per-key vocabulary checks on CUE input already happened during
// compile; this pass re-checks option values so configs assembled in
// code get the same guarantees, and catches combinations that are
// individually legal but jointly contradictory.
func Validate(cfg *Config) error {
	if err := ValidateModule(cfg); err != nil {
		return err
	}
	names := make([]string, 0, len(cfg.Functions))
	for name := range cfg.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ValidateFunction(cfg, name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateModule checks module-scope options. A module-scope failure is
// the only validation error that aborts a whole run; function- and
// binding-scoped errors drop just their function.
func ValidateModule(cfg *Config) error {
	mc := cfg.Module
	fields := []struct {
		key   string
		value string
	}{
		{"int_width", string(mc.IntWidth)},
		{"string_strategy", string(mc.StringStrategy)},
		{"safety_level", string(mc.SafetyLevel)},
		{"bounds_checking", string(mc.BoundsChecking)},
		{"panic_behavior", string(mc.PanicBehavior)},
		{"fallback", string(mc.Fallback)},
		{"global_strategy", string(mc.GlobalStrategy)},
		{"thread_safety", string(mc.ThreadSafety)},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if !allowedValue(moduleOptionValues[f.key], f.value) {
			return invalidValue(ScopeModule, "", f.key, f.value, moduleOptionValues[f.key], token.NoPos)
		}
	}
	return nil
}

// ValidateFunction checks one function's options against the vocabulary
// and the cross-option rules. Unannotated functions always pass.
func ValidateFunction(cfg *Config, name string) error {
	fc, ok := cfg.Functions[name]
	if !ok {
		return nil
	}
	eff := cfg.ForFunction(name)

	fields := []struct {
		key   string
		value string
	}{
		{"string_strategy", string(fc.StringStrategy)},
		{"safety_level", string(fc.SafetyLevel)},
		{"bounds_checking", string(fc.BoundsChecking)},
		{"panic_behavior", string(fc.PanicBehavior)},
		{"fallback", string(fc.Fallback)},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if !allowedValue(functionOptionValues[f.key], f.value) {
			return invalidValue(ScopeFunction, name, f.key, f.value, functionOptionValues[f.key], token.NoPos)
		}
	}

	for _, binding := range sortedBindings(fc.Ownership) {
		own := fc.Ownership[binding]
		if !allowedValue(ownershipValues, string(own)) {
			return invalidValue(ScopeBinding, name+"."+binding, "ownership", string(own), ownershipValues, token.NoPos)
		}
		// Cow defers the owned/borrowed decision to runtime, which only
		// exists under the flexible string strategy.
		if own == OwnershipCow && eff.StringStrategy != StringFlexible {
			return &ValidationError{
				Scope:     ScopeBinding,
				ScopeName: name + "." + binding,
				Key:       "ownership",
				Value:     string(own),
				Message: fmt.Sprintf("cow override requires string_strategy %q, effective strategy is %q",
					StringFlexible, eff.StringStrategy),
				Pos: token.NoPos,
			}
		}
	}

	for _, d := range fc.Directives {
		if !strings.HasPrefix(d.Text, "#[") || !strings.HasSuffix(d.Text, "]") {
			return &ValidationError{
				Scope:     ScopeFunction,
				ScopeName: name,
				Key:       "directives",
				Value:     d.Text,
				Message:   "directive text must be an attribute of the form #[...]",
				Pos:       token.NoPos,
			}
		}
		if eff.SafetyLevel == SafetySafe && strings.Contains(d.Text, "unsafe") {
			return &ValidationError{
				Scope:     ScopeFunction,
				ScopeName: name,
				Key:       "directives",
				Value:     d.Text,
				Message:   "unsafe directive under safety_level \"safe\"",
				Pos:       token.NoPos,
			}
		}
	}
	return nil
}

func allowedValue(allowed []string, v string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// sortedBindings returns override binding names in name order so the
// first reported conflict is deterministic.
func sortedBindings(m map[string]Ownership) []string {
	bindings := make([]string, 0, len(m))
	for b := range m {
		bindings = append(bindings, b)
	}
	sort.Strings(bindings)
	return bindings
}
