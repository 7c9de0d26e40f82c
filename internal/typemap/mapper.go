package typemap

import (
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/ir"
)

// cacheSize bounds the memoization cache. Source modules rarely exceed a
// few dozen distinct type spellings.
const cacheSize = 256

// Options fixes the mapping configuration for one Mapper. The zero value
// is not valid; use the annotation defaults via OptionsFrom.
type Options struct {
	IntWidth annotations.IntWidth
	Strings  annotations.StringStrategy
	Fallback annotations.FallbackPolicy
}

// OptionsFrom extracts the mapper configuration from effective
// annotations.
func OptionsFrom(eff annotations.Effective) Options {
	return Options{
		IntWidth: eff.IntWidth,
		Strings:  eff.StringStrategy,
		Fallback: eff.Fallback,
	}
}

// Mapper maps source types to target types. Safe for concurrent use; the
// per-function pipeline workers share one instance per configuration.
type Mapper struct {
	opts  Options
	cache *lru.Cache[string, RustType]
	reg   *enumRegistry
}

// enumRegistry collects union enums across every mapper derived from one
// base, so a union declared once emits once even when functions override
// mapping options.
type enumRegistry struct {
	mu    sync.Mutex
	enums map[string]Enum
	order []string
}

// New returns a Mapper for the given options.
func New(opts Options) (*Mapper, error) {
	cache, err := lru.New[string, RustType](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("typemap cache: %w", err)
	}
	return &Mapper{
		opts:  opts,
		cache: cache,
		reg:   &enumRegistry{enums: map[string]Enum{}},
	}, nil
}

// ForOptions returns a mapper for the given options that shares this
// mapper's enum registry. Function-scoped overrides derive their mapper
// here so per-function renderings differ while union declarations stay
// deduplicated at module level. Identical options return the receiver.
func (m *Mapper) ForOptions(opts Options) (*Mapper, error) {
	if opts == m.opts {
		return m, nil
	}
	cache, err := lru.New[string, RustType](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("typemap cache: %w", err)
	}
	return &Mapper{opts: opts, cache: cache, reg: m.reg}, nil
}

// Map resolves a source type to its target type. A nil source type means
// the declaration was omitted and is treated as dynamic.
func (m *Mapper) Map(t ir.SourceType) (RustType, error) {
	if t == nil {
		t = ir.DynamicType{}
	}
	key := t.String()
	if cached, ok := m.cache.Get(key); ok {
		return cached, nil
	}

	mapped, err := m.mapType(t)
	if err != nil {
		return nil, err
	}
	m.cache.Add(key, mapped)
	return mapped, nil
}

// GeneratedEnums returns every enum synthesized for a union type so far,
// across all mappers sharing this registry, sorted by name for
// deterministic declaration order.
func (m *Mapper) GeneratedEnums() []Enum {
	m.reg.mu.Lock()
	defer m.reg.mu.Unlock()
	names := append([]string(nil), m.reg.order...)
	sort.Strings(names)
	out := make([]Enum, len(names))
	for i, n := range names {
		out[i] = m.reg.enums[n]
	}
	return out
}

func (m *Mapper) mapType(t ir.SourceType) (RustType, error) {
	switch v := t.(type) {
	case ir.IntType:
		switch m.opts.IntWidth {
		case annotations.IntWidthI32:
			return I32, nil
		case annotations.IntWidthISize:
			return ISize, nil
		default:
			return I64, nil
		}

	case ir.FloatType:
		return F64, nil

	case ir.BoolType:
		return Bool, nil

	case ir.NoneType:
		return Unit{}, nil

	case ir.StrType:
		// Borrowing under infer_borrowing is decided per binding by the
		// borrowing resolver; the bare type stays owned.
		if m.opts.Strings == annotations.StringFlexible {
			return CowStr{}, nil
		}
		return OwnedString{}, nil

	case ir.ListType:
		elem, err := m.Map(v.Elem)
		if err != nil {
			return nil, err
		}
		return Vec{Elem: elem}, nil

	case ir.DictType:
		key, err := m.Map(v.Key)
		if err != nil {
			return nil, err
		}
		val, err := m.Map(v.Value)
		if err != nil {
			return nil, err
		}
		return HashMap{Key: key, Value: val}, nil

	case ir.SetType:
		elem, err := m.Map(v.Elem)
		if err != nil {
			return nil, err
		}
		return HashSet{Elem: elem}, nil

	case ir.TupleType:
		elems := make([]RustType, len(v.Elems))
		for i, e := range v.Elems {
			mapped, err := m.Map(e)
			if err != nil {
				return nil, err
			}
			elems[i] = mapped
		}
		return Tuple{Elems: elems}, nil

	case ir.OptionalType:
		inner, err := m.Map(v.Inner)
		if err != nil {
			return nil, err
		}
		return Option{Inner: inner}, nil

	case ir.UnionType:
		return m.mapUnion(v)

	case ir.CustomType:
		return Named{Name: v.Name}, nil

	case ir.DynamicType:
		if m.opts.Fallback == annotations.FallbackPermissive {
			return Named{Name: "serde_json::Value"}, nil
		}
		return nil, &UnsupportedTypeError{
			Source: v.String(),
			Reason: "fallback policy forbids dynamic values",
		}

	default:
		return nil, &UnsupportedTypeError{
			Source: t.String(),
			Reason: "no target mapping exists",
		}
	}
}

// mapUnion maps a union to Option when it is a two-way union with none,
// and to a generated tagged enum otherwise. The enum name is derived from
// the variant names so identical unions share one declaration.
func (m *Mapper) mapUnion(u ir.UnionType) (RustType, error) {
	if len(u.Alts) == 2 {
		if other, ok := nonNoneAlt(u.Alts); ok {
			inner, err := m.Map(other)
			if err != nil {
				return nil, err
			}
			return Option{Inner: inner}, nil
		}
	}

	variants := make([]EnumVariant, len(u.Alts))
	name := ""
	for i, alt := range u.Alts {
		mapped, err := m.Map(alt)
		if err != nil {
			return nil, err
		}
		vn := variantName(alt, i)
		variants[i] = EnumVariant{Name: vn, Type: mapped}
		if i > 0 {
			name += "Or"
		}
		name += vn
	}

	enum := Enum{Name: name, Variants: variants}
	m.reg.mu.Lock()
	if _, seen := m.reg.enums[name]; !seen {
		m.reg.enums[name] = enum
		m.reg.order = append(m.reg.order, name)
	}
	m.reg.mu.Unlock()
	return enum, nil
}

func nonNoneAlt(alts []ir.SourceType) (ir.SourceType, bool) {
	var other ir.SourceType
	sawNone := false
	for _, a := range alts {
		if _, isNone := a.(ir.NoneType); isNone {
			sawNone = true
		} else {
			other = a
		}
	}
	return other, sawNone && other != nil
}

func variantName(t ir.SourceType, idx int) string {
	switch t.(type) {
	case ir.IntType:
		return "Integer"
	case ir.FloatType:
		return "Float"
	case ir.StrType:
		return "Text"
	case ir.BoolType:
		return "Boolean"
	case ir.NoneType:
		return "None"
	default:
		if ct, ok := t.(ir.CustomType); ok {
			return ct.Name
		}
		return fmt.Sprintf("Variant%d", idx)
	}
}
