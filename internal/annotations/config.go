package annotations

// Ownership is an explicit per-binding ownership override. Explicit intent
// always wins over inference, but it is validated against observed usage:
// an override that contradicts the usage profile is an OwnershipConflict.
type Ownership string

const (
	OwnershipOwned       Ownership = "owned"
	OwnershipBorrowed    Ownership = "borrowed"
	OwnershipBorrowedMut Ownership = "borrowed_mut"
	OwnershipShared      Ownership = "shared"
	OwnershipCow         Ownership = "cow"
)

// StringStrategy selects how textual values are allocated.
type StringStrategy string

const (
	// StringConservative owns every string (safe, allocates).
	StringConservative StringStrategy = "conservative"
	// StringInferBorrowing borrows read-only strings where analysis allows.
	StringInferBorrowing StringStrategy = "infer_borrowing"
	// StringFlexible plans Cow for pass-through strings.
	StringFlexible StringStrategy = "flexible"
)

// SafetyLevel permits or forbids unchecked operations in output.
type SafetyLevel string

const (
	SafetySafe          SafetyLevel = "safe"
	SafetyUnsafeAllowed SafetyLevel = "unsafe_allowed"
)

// BoundsChecking selects how indexing is emitted.
type BoundsChecking string

const (
	// BoundsExplicit emits .get() with explicit handling.
	BoundsExplicit BoundsChecking = "explicit"
	// BoundsImplicit emits plain indexing (panics on violation).
	BoundsImplicit BoundsChecking = "implicit"
)

// PanicBehavior selects how fallible operations surface failures.
type PanicBehavior string

const (
	// PanicPropagate lets generated code panic.
	PanicPropagate PanicBehavior = "propagate"
	// PanicReturnError wraps the function in a Result return.
	PanicReturnError PanicBehavior = "return_error"
)

// FallbackPolicy decides whether unmapped dynamic constructs may degrade
// to the dynamic target type instead of excluding the function.
type FallbackPolicy string

const (
	FallbackForbid     FallbackPolicy = "forbid"
	FallbackPermissive FallbackPolicy = "permissive"
)

// GlobalStrategy selects the emission for module-level mutable state.
type GlobalStrategy string

const (
	GlobalOnceCell   GlobalStrategy = "once_cell"
	GlobalLazyStatic GlobalStrategy = "lazy_static"
)

// ThreadSafety decides whether shared values need Sync wrappers.
type ThreadSafety string

const (
	ThreadSafetyRequired    ThreadSafety = "required"
	ThreadSafetyNotRequired ThreadSafety = "not_required"
)

// IntWidth selects the target integer width.
type IntWidth string

const (
	IntWidthI32   IntWidth = "i32"
	IntWidthI64   IntWidth = "i64"
	IntWidthISize IntWidth = "isize"
)

// Directive is one caller-specified output attribute, injected verbatim
// after the doc comment and before the signature, in declaration order.
// When is an optional expr condition over derived function properties;
// the directive is skipped when the condition evaluates false.
type Directive struct {
	Text string
	When string
}

// ModuleConfig holds module-scoped options. Every field has a default;
// function scopes inherit unset options from here.
type ModuleConfig struct {
	IntWidth       IntWidth
	StringStrategy StringStrategy
	SafetyLevel    SafetyLevel
	BoundsChecking BoundsChecking
	PanicBehavior  PanicBehavior
	Fallback       FallbackPolicy
	GlobalStrategy GlobalStrategy
	ThreadSafety   ThreadSafety
}

// FunctionConfig holds function-scoped overrides. Zero values mean
// "inherit from module scope".
type FunctionConfig struct {
	Ownership      map[string]Ownership // binding name -> override
	StringStrategy StringStrategy
	SafetyLevel    SafetyLevel
	BoundsChecking BoundsChecking
	PanicBehavior  PanicBehavior
	Fallback       FallbackPolicy
	Directives     []Directive
}

// Config is the full annotation configuration for one module.
// Consumed read-only by every core component.
type Config struct {
	Module    ModuleConfig
	Functions map[string]FunctionConfig
}

// Effective is the flattened option set for one function after scope
// resolution (function overrides module).
type Effective struct {
	IntWidth       IntWidth
	StringStrategy StringStrategy
	SafetyLevel    SafetyLevel
	BoundsChecking BoundsChecking
	PanicBehavior  PanicBehavior
	Fallback       FallbackPolicy
	GlobalStrategy GlobalStrategy
	ThreadSafety   ThreadSafety
	Ownership      map[string]Ownership
	Directives     []Directive
}

// Default returns the module-level defaults applied when a document omits
// an option.
func Default() ModuleConfig {
	return ModuleConfig{
		IntWidth:       IntWidthI64,
		StringStrategy: StringConservative,
		SafetyLevel:    SafetySafe,
		BoundsChecking: BoundsImplicit,
		PanicBehavior:  PanicPropagate,
		Fallback:       FallbackForbid,
		GlobalStrategy: GlobalOnceCell,
		ThreadSafety:   ThreadSafetyNotRequired,
	}
}

// NewConfig returns a Config with defaults and no function overrides.
func NewConfig() *Config {
	return &Config{Module: Default(), Functions: map[string]FunctionConfig{}}
}

// ForFunction resolves the effective options for the named function.
func (c *Config) ForFunction(name string) Effective {
	eff := Effective{
		IntWidth:       c.Module.IntWidth,
		StringStrategy: c.Module.StringStrategy,
		SafetyLevel:    c.Module.SafetyLevel,
		BoundsChecking: c.Module.BoundsChecking,
		PanicBehavior:  c.Module.PanicBehavior,
		Fallback:       c.Module.Fallback,
		GlobalStrategy: c.Module.GlobalStrategy,
		ThreadSafety:   c.Module.ThreadSafety,
	}
	fc, ok := c.Functions[name]
	if !ok {
		return eff
	}
	if fc.StringStrategy != "" {
		eff.StringStrategy = fc.StringStrategy
	}
	if fc.SafetyLevel != "" {
		eff.SafetyLevel = fc.SafetyLevel
	}
	if fc.BoundsChecking != "" {
		eff.BoundsChecking = fc.BoundsChecking
	}
	if fc.PanicBehavior != "" {
		eff.PanicBehavior = fc.PanicBehavior
	}
	if fc.Fallback != "" {
		eff.Fallback = fc.Fallback
	}
	eff.Ownership = fc.Ownership
	eff.Directives = fc.Directives
	return eff
}

// EncodeMap renders the config as a plain map for ConfigHash. Function
// names key the function section, so identical documents hash identically.
func (c *Config) EncodeMap() map[string]any {
	out := map[string]any{
		"module": map[string]any{
			"int_width":       string(c.Module.IntWidth),
			"string_strategy": string(c.Module.StringStrategy),
			"safety_level":    string(c.Module.SafetyLevel),
			"bounds_checking": string(c.Module.BoundsChecking),
			"panic_behavior":  string(c.Module.PanicBehavior),
			"fallback":        string(c.Module.Fallback),
			"global_strategy": string(c.Module.GlobalStrategy),
			"thread_safety":   string(c.Module.ThreadSafety),
		},
	}
	if len(c.Functions) == 0 {
		return out
	}
	fns := make(map[string]any, len(c.Functions))
	for name, fc := range c.Functions {
		entry := map[string]any{}
		if fc.StringStrategy != "" {
			entry["string_strategy"] = string(fc.StringStrategy)
		}
		if fc.SafetyLevel != "" {
			entry["safety_level"] = string(fc.SafetyLevel)
		}
		if fc.BoundsChecking != "" {
			entry["bounds_checking"] = string(fc.BoundsChecking)
		}
		if fc.PanicBehavior != "" {
			entry["panic_behavior"] = string(fc.PanicBehavior)
		}
		if fc.Fallback != "" {
			entry["fallback"] = string(fc.Fallback)
		}
		if len(fc.Ownership) > 0 {
			own := make(map[string]any, len(fc.Ownership))
			for binding, o := range fc.Ownership {
				own[binding] = string(o)
			}
			entry["ownership"] = own
		}
		if len(fc.Directives) > 0 {
			dirs := make([]any, len(fc.Directives))
			for i, d := range fc.Directives {
				dm := map[string]any{"text": d.Text}
				if d.When != "" {
					dm["when"] = d.When
				}
				dirs[i] = dm
			}
			entry["directives"] = dirs
		}
		fns[name] = entry
	}
	out["functions"] = fns
	return out
}
