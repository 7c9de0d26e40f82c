package typemap

import (
	"fmt"
	"strings"
)

// RustType is a sealed interface over the closed set of target types.
// Render produces the exact spelling emitted into generated source.
type RustType interface {
	rustType() // Sealed - only these types implement it

	Render() string
}

// Primitive is a scalar target type spelled exactly as rendered.
type Primitive string

const (
	Bool  Primitive = "bool"
	I32   Primitive = "i32"
	I64   Primitive = "i64"
	ISize Primitive = "isize"
	U8    Primitive = "u8"
	F64   Primitive = "f64"
)

func (Primitive) rustType()        {}
func (p Primitive) Render() string { return string(p) }

// Unit is the empty tuple type.
type Unit struct{}

func (Unit) rustType()      {}
func (Unit) Render() string { return "()" }

// OwnedString is the owned, growable string.
type OwnedString struct{}

func (OwnedString) rustType()      {}
func (OwnedString) Render() string { return "String" }

// StrRef is a borrowed string slice, optionally lifetime-qualified.
type StrRef struct {
	Lifetime string // "'a"; empty for elided
}

func (StrRef) rustType() {}
func (t StrRef) Render() string {
	if t.Lifetime == "" {
		return "&str"
	}
	return fmt.Sprintf("&%s str", t.Lifetime)
}

// CowStr is a clone-on-write string. The lifetime defaults to 'static.
type CowStr struct {
	Lifetime string
}

func (CowStr) rustType() {}
func (t CowStr) Render() string {
	lt := t.Lifetime
	if lt == "" {
		lt = "'static"
	}
	return fmt.Sprintf("Cow<%s, str>", lt)
}

// Vec is the growable sequence.
type Vec struct {
	Elem RustType
}

func (Vec) rustType()        {}
func (t Vec) Render() string { return fmt.Sprintf("Vec<%s>", t.Elem.Render()) }

// HashMap is the hash mapping.
type HashMap struct {
	Key   RustType
	Value RustType
}

func (HashMap) rustType() {}
func (t HashMap) Render() string {
	return fmt.Sprintf("HashMap<%s, %s>", t.Key.Render(), t.Value.Render())
}

// HashSet is the hash set.
type HashSet struct {
	Elem RustType
}

func (HashSet) rustType()        {}
func (t HashSet) Render() string { return fmt.Sprintf("HashSet<%s>", t.Elem.Render()) }

// Option is the nullable wrapper.
type Option struct {
	Inner RustType
}

func (Option) rustType()        {}
func (t Option) Render() string { return fmt.Sprintf("Option<%s>", t.Inner.Render()) }

// Result pairs a success type with an error type.
type Result struct {
	Ok  RustType
	Err RustType
}

func (Result) rustType() {}
func (t Result) Render() string {
	return fmt.Sprintf("Result<%s, %s>", t.Ok.Render(), t.Err.Render())
}

// Ref is a reference, optionally mutable and lifetime-qualified.
type Ref struct {
	Lifetime string // "'a"; empty for elided
	Mut      bool
	Inner    RustType
}

func (Ref) rustType() {}
func (t Ref) Render() string {
	var b strings.Builder
	b.WriteByte('&')
	if t.Lifetime != "" {
		b.WriteString(t.Lifetime)
		b.WriteByte(' ')
	}
	if t.Mut {
		b.WriteString("mut ")
	}
	b.WriteString(t.Inner.Render())
	return b.String()
}

// Tuple is a fixed-arity heterogeneous sequence.
type Tuple struct {
	Elems []RustType
}

func (Tuple) rustType() {}
func (t Tuple) Render() string {
	if len(t.Elems) == 0 {
		return "()"
	}
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.Render()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// Named references a user-declared or path-qualified type by spelling.
type Named struct {
	Name string
}

func (Named) rustType()        {}
func (t Named) Render() string { return t.Name }

// EnumVariant is one alternative of a generated tagged enum.
type EnumVariant struct {
	Name string
	Type RustType
}

// Enum is a tagged enum generated for a union type. Render spells only the
// name; the declaration itself is emitted by the type-declaration
// sub-generator.
type Enum struct {
	Name     string
	Variants []EnumVariant
}

func (Enum) rustType()        {}
func (t Enum) Render() string { return t.Name }

// Shared is a reference-counted interior-mutability cell. ThreadSafe
// selects Arc<Mutex<T>> over Rc<RefCell<T>>.
type Shared struct {
	Inner      RustType
	ThreadSafe bool
}

func (Shared) rustType() {}
func (t Shared) Render() string {
	if t.ThreadSafe {
		return fmt.Sprintf("Arc<Mutex<%s>>", t.Inner.Render())
	}
	return fmt.Sprintf("Rc<RefCell<%s>>", t.Inner.Render())
}

// CollectImports accumulates the use-paths a rendered type requires into
// the given set. The import sub-generator sorts the union per module.
func CollectImports(t RustType, into map[string]struct{}) {
	switch v := t.(type) {
	case HashMap:
		into["std::collections::HashMap"] = struct{}{}
		CollectImports(v.Key, into)
		CollectImports(v.Value, into)
	case HashSet:
		into["std::collections::HashSet"] = struct{}{}
		CollectImports(v.Elem, into)
	case CowStr:
		into["std::borrow::Cow"] = struct{}{}
	case Vec:
		CollectImports(v.Elem, into)
	case Option:
		CollectImports(v.Inner, into)
	case Result:
		CollectImports(v.Ok, into)
		CollectImports(v.Err, into)
	case Ref:
		CollectImports(v.Inner, into)
	case Tuple:
		for _, e := range v.Elems {
			CollectImports(e, into)
		}
	case Enum:
		for _, ev := range v.Variants {
			CollectImports(ev.Type, into)
		}
	case Shared:
		if v.ThreadSafe {
			into["std::sync::Arc"] = struct{}{}
			into["std::sync::Mutex"] = struct{}{}
		} else {
			into["std::rc::Rc"] = struct{}{}
			into["std::cell::RefCell"] = struct{}{}
		}
		CollectImports(v.Inner, into)
	}
}
