package ir

import (
	"fmt"
	"strings"
)

// SourceType is a sealed interface over the closed set of source-language
// types. Fully dynamic constructs are represented by DynamicType, never by
// reflection or open-ended variants.
type SourceType interface {
	srcType() // Sealed - only these types implement it

	// String renders the canonical spelling ("list[int]", "str | none").
	// The rendering is the memoization key for the type mapper, so it must
	// be stable and injective over the variant set.
	String() string
}

// IntType is the arbitrary-precision source integer.
type IntType struct{}

func (IntType) srcType()       {}
func (IntType) String() string { return "int" }

// FloatType is the source float.
type FloatType struct{}

func (FloatType) srcType()       {}
func (FloatType) String() string { return "float" }

// StrType is the source string.
type StrType struct{}

func (StrType) srcType()       {}
func (StrType) String() string { return "str" }

// BoolType is the source boolean.
type BoolType struct{}

func (BoolType) srcType()       {}
func (BoolType) String() string { return "bool" }

// NoneType is the source null/unit type.
type NoneType struct{}

func (NoneType) srcType()       {}
func (NoneType) String() string { return "none" }

// ListType is a homogeneous growable sequence.
type ListType struct {
	Elem SourceType
}

func (ListType) srcType() {}
func (t ListType) String() string {
	return fmt.Sprintf("list[%s]", typeStringOrDynamic(t.Elem))
}

// DictType is a key/value mapping.
type DictType struct {
	Key   SourceType
	Value SourceType
}

func (DictType) srcType() {}
func (t DictType) String() string {
	return fmt.Sprintf("dict[%s, %s]", typeStringOrDynamic(t.Key), typeStringOrDynamic(t.Value))
}

// SetType is an unordered unique collection.
type SetType struct {
	Elem SourceType
}

func (SetType) srcType() {}
func (t SetType) String() string {
	return fmt.Sprintf("set[%s]", typeStringOrDynamic(t.Elem))
}

// TupleType is a fixed-arity heterogeneous sequence.
type TupleType struct {
	Elems []SourceType
}

func (TupleType) srcType() {}
func (t TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = typeStringOrDynamic(e)
	}
	return fmt.Sprintf("tuple[%s]", strings.Join(parts, ", "))
}

// OptionalType is a nullable wrapper around Inner.
type OptionalType struct {
	Inner SourceType
}

func (OptionalType) srcType() {}
func (t OptionalType) String() string {
	return fmt.Sprintf("optional[%s]", typeStringOrDynamic(t.Inner))
}

// UnionType is a closed set of alternatives.
type UnionType struct {
	Alts []SourceType
}

func (UnionType) srcType() {}
func (t UnionType) String() string {
	parts := make([]string, len(t.Alts))
	for i, a := range t.Alts {
		parts[i] = typeStringOrDynamic(a)
	}
	return strings.Join(parts, " | ")
}

// CustomType names a user-defined class or type alias.
type CustomType struct {
	Name string
}

func (CustomType) srcType()         {}
func (t CustomType) String() string { return t.Name }

// DynamicType is the explicit fallback for unannotated or truly dynamic
// values. Whether it maps to a target type at all is decided by the
// module-level fallback policy.
type DynamicType struct{}

func (DynamicType) srcType()       {}
func (DynamicType) String() string { return "dynamic" }

// typeStringOrDynamic guards against nil element types from partially
// annotated sources.
func typeStringOrDynamic(t SourceType) string {
	if t == nil {
		return DynamicType{}.String()
	}
	return t.String()
}
