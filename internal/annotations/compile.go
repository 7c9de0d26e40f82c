package annotations

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Option vocabulary. The sets are closed: a key or value outside them is a
// validation error naming the offending key and scope.
var (
	moduleOptionValues = map[string][]string{
		"int_width":       {"i32", "i64", "isize"},
		"string_strategy": {"conservative", "infer_borrowing", "flexible"},
		"safety_level":    {"safe", "unsafe_allowed"},
		"bounds_checking": {"explicit", "implicit"},
		"panic_behavior":  {"propagate", "return_error"},
		"fallback":        {"forbid", "permissive"},
		"global_strategy": {"once_cell", "lazy_static"},
		"thread_safety":   {"required", "not_required"},
	}

	functionOptionValues = map[string][]string{
		"string_strategy": moduleOptionValues["string_strategy"],
		"safety_level":    moduleOptionValues["safety_level"],
		"bounds_checking": moduleOptionValues["bounds_checking"],
		"panic_behavior":  moduleOptionValues["panic_behavior"],
		"fallback":        moduleOptionValues["fallback"],
	}

	ownershipValues = []string{"owned", "borrowed", "borrowed_mut", "shared", "cow"}
)

// LoadFile reads and compiles a CUE annotation document from disk.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read annotations: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return Compile(v)
}

// Compile parses a CUE value into a Config. Uses the CUE SDK's Go API
// directly (not a CLI subprocess). Unknown keys and out-of-vocabulary
// values fail here; cross-option consistency is checked per scope by
// Validate, ValidateModule, and ValidateFunction so callers can drop a
// single function instead of the whole document.
//
// The expected document shape:
//
//	module: {
//		int_width:       "i64"
//		string_strategy: "flexible"
//	}
//	function: total: {
//		ownership: items: "borrowed"
//		directives: [{text: "#[inline]", when: "pure"}]
//	}
func Compile(v cue.Value) (*Config, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := NewConfig()

	moduleVal := v.LookupPath(cue.ParsePath("module"))
	if moduleVal.Exists() {
		if err := compileModuleScope(moduleVal, &cfg.Module); err != nil {
			return nil, err
		}
	}

	fnVal := v.LookupPath(cue.ParsePath("function"))
	if fnVal.Exists() {
		iter, err := fnVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			name := iter.Selector().Unquoted()
			fc, err := compileFunctionScope(name, iter.Value())
			if err != nil {
				return nil, err
			}
			cfg.Functions[name] = fc
		}
	}

	return cfg, nil
}

func compileModuleScope(v cue.Value, mc *ModuleConfig) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		key := iter.Selector().Unquoted()
		allowed, ok := moduleOptionValues[key]
		if !ok {
			return unknownKey(ScopeModule, "", key, iter.Value().Pos())
		}
		val, err := stringOption(ScopeModule, "", key, allowed, iter.Value())
		if err != nil {
			return err
		}
		switch key {
		case "int_width":
			mc.IntWidth = IntWidth(val)
		case "string_strategy":
			mc.StringStrategy = StringStrategy(val)
		case "safety_level":
			mc.SafetyLevel = SafetyLevel(val)
		case "bounds_checking":
			mc.BoundsChecking = BoundsChecking(val)
		case "panic_behavior":
			mc.PanicBehavior = PanicBehavior(val)
		case "fallback":
			mc.Fallback = FallbackPolicy(val)
		case "global_strategy":
			mc.GlobalStrategy = GlobalStrategy(val)
		case "thread_safety":
			mc.ThreadSafety = ThreadSafety(val)
		}
	}
	return nil
}

func compileFunctionScope(name string, v cue.Value) (FunctionConfig, error) {
	fc := FunctionConfig{}

	iter, err := v.Fields()
	if err != nil {
		return fc, formatCUEError(err)
	}
	for iter.Next() {
		key := iter.Selector().Unquoted()
		switch key {
		case "ownership":
			own, err := compileOwnership(name, iter.Value())
			if err != nil {
				return fc, err
			}
			fc.Ownership = own

		case "directives":
			dirs, err := compileDirectives(name, iter.Value())
			if err != nil {
				return fc, err
			}
			fc.Directives = dirs

		default:
			allowed, ok := functionOptionValues[key]
			if !ok {
				return fc, unknownKey(ScopeFunction, name, key, iter.Value().Pos())
			}
			val, err := stringOption(ScopeFunction, name, key, allowed, iter.Value())
			if err != nil {
				return fc, err
			}
			switch key {
			case "string_strategy":
				fc.StringStrategy = StringStrategy(val)
			case "safety_level":
				fc.SafetyLevel = SafetyLevel(val)
			case "bounds_checking":
				fc.BoundsChecking = BoundsChecking(val)
			case "panic_behavior":
				fc.PanicBehavior = PanicBehavior(val)
			case "fallback":
				fc.Fallback = FallbackPolicy(val)
			}
		}
	}
	return fc, nil
}

func compileOwnership(fnName string, v cue.Value) (map[string]Ownership, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	own := make(map[string]Ownership)
	for iter.Next() {
		binding := iter.Selector().Unquoted()
		val, err := stringOption(ScopeBinding, fnName+"."+binding, "ownership", ownershipValues, iter.Value())
		if err != nil {
			return nil, err
		}
		own[binding] = Ownership(val)
	}
	return own, nil
}

// compileDirectives accepts a list of strings or {text, when} objects.
// Order is preserved: directives are injected in declaration order.
func compileDirectives(fnName string, v cue.Value) ([]Directive, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var dirs []Directive
	for iter.Next() {
		item := iter.Value()

		if text, err := item.String(); err == nil {
			dirs = append(dirs, Directive{Text: text})
			continue
		}

		textVal := item.LookupPath(cue.ParsePath("text"))
		if !textVal.Exists() {
			return nil, &ValidationError{
				Scope:     ScopeFunction,
				ScopeName: fnName,
				Key:       "directives",
				Message:   "directive must be a string or an object with a text field",
				Pos:       item.Pos(),
			}
		}
		text, err := textVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		d := Directive{Text: text}

		whenVal := item.LookupPath(cue.ParsePath("when"))
		if whenVal.Exists() {
			when, err := whenVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			if _, err := CompileWhen(when); err != nil {
				return nil, &ValidationError{
					Scope:     ScopeFunction,
					ScopeName: fnName,
					Key:       "directives",
					Value:     when,
					Message:   fmt.Sprintf("invalid when condition: %v", err),
					Pos:       whenVal.Pos(),
				}
			}
			d.When = when
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

func stringOption(scope ScopeKind, scopeName, key string, allowed []string, v cue.Value) (string, error) {
	s, err := v.String()
	if err != nil {
		return "", &ValidationError{
			Scope:     scope,
			ScopeName: scopeName,
			Key:       key,
			Message:   "value must be a string",
			Pos:       v.Pos(),
		}
	}
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", invalidValue(scope, scopeName, key, s, allowed, v.Pos())
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	pos := token.NoPos
	if len(positions) > 0 {
		pos = positions[0]
	}
	return &ValidationError{
		Scope:   ScopeModule,
		Key:     "cue",
		Message: firstErr.Error(),
		Pos:     pos,
	}
}
