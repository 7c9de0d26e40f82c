package typemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/ir"
)

func defaultMapper(t *testing.T) *Mapper {
	t.Helper()
	m, err := New(OptionsFrom(annotations.NewConfig().ForFunction("f")))
	require.NoError(t, err)
	return m
}

func TestMapPrimitives(t *testing.T) {
	m := defaultMapper(t)

	cases := []struct {
		src  ir.SourceType
		want string
	}{
		{ir.IntType{}, "i64"},
		{ir.FloatType{}, "f64"},
		{ir.BoolType{}, "bool"},
		{ir.StrType{}, "String"},
		{ir.NoneType{}, "()"},
	}
	for _, tc := range cases {
		got, err := m.Map(tc.src)
		require.NoError(t, err, tc.src.String())
		assert.Equal(t, tc.want, got.Render(), tc.src.String())
	}
}

func TestMapIntWidth(t *testing.T) {
	for width, want := range map[annotations.IntWidth]string{
		annotations.IntWidthI32:   "i32",
		annotations.IntWidthI64:   "i64",
		annotations.IntWidthISize: "isize",
	} {
		m, err := New(Options{IntWidth: width})
		require.NoError(t, err)
		got, err := m.Map(ir.IntType{})
		require.NoError(t, err)
		assert.Equal(t, want, got.Render())
	}
}

func TestMapFlexibleStringsUseCow(t *testing.T) {
	m, err := New(Options{Strings: annotations.StringFlexible})
	require.NoError(t, err)

	got, err := m.Map(ir.StrType{})
	require.NoError(t, err)
	assert.Equal(t, "Cow<'static, str>", got.Render())
}

func TestMapCollections(t *testing.T) {
	m := defaultMapper(t)

	cases := []struct {
		src  ir.SourceType
		want string
	}{
		{ir.ListType{Elem: ir.IntType{}}, "Vec<i64>"},
		{ir.DictType{Key: ir.StrType{}, Value: ir.IntType{}}, "HashMap<String, i64>"},
		{ir.SetType{Elem: ir.StrType{}}, "HashSet<String>"},
		{ir.TupleType{Elems: []ir.SourceType{ir.IntType{}, ir.StrType{}}}, "(i64, String)"},
		{ir.TupleType{}, "()"},
		{ir.OptionalType{Inner: ir.IntType{}}, "Option<i64>"},
		{ir.ListType{Elem: ir.ListType{Elem: ir.BoolType{}}}, "Vec<Vec<bool>>"},
	}
	for _, tc := range cases {
		got, err := m.Map(tc.src)
		require.NoError(t, err, tc.src.String())
		assert.Equal(t, tc.want, got.Render(), tc.src.String())
	}
}

func TestMapCustomType(t *testing.T) {
	m := defaultMapper(t)
	got, err := m.Map(ir.CustomType{Name: "Point"})
	require.NoError(t, err)
	assert.Equal(t, "Point", got.Render())
}

func TestMapDynamicForbidden(t *testing.T) {
	m := defaultMapper(t)

	_, err := m.Map(ir.DynamicType{})
	require.Error(t, err)
	assert.True(t, IsUnsupportedType(err))

	// Undeclared types behave like dynamic ones.
	_, err = m.Map(nil)
	require.Error(t, err)
	assert.True(t, IsUnsupportedType(err))

	// The error surfaces through nested types too.
	_, err = m.Map(ir.ListType{Elem: ir.DynamicType{}})
	assert.True(t, IsUnsupportedType(err))
}

func TestMapDynamicPermissive(t *testing.T) {
	m, err := New(Options{Fallback: annotations.FallbackPermissive})
	require.NoError(t, err)

	got, err := m.Map(ir.DynamicType{})
	require.NoError(t, err)
	assert.Equal(t, "serde_json::Value", got.Render())
}

func TestMapUnionOfTwoWithNoneIsOption(t *testing.T) {
	m := defaultMapper(t)

	got, err := m.Map(ir.UnionType{Alts: []ir.SourceType{ir.StrType{}, ir.NoneType{}}})
	require.NoError(t, err)
	assert.Equal(t, "Option<String>", got.Render())
	assert.Empty(t, m.GeneratedEnums())
}

func TestMapUnionGeneratesEnum(t *testing.T) {
	m := defaultMapper(t)

	got, err := m.Map(ir.UnionType{Alts: []ir.SourceType{ir.IntType{}, ir.StrType{}}})
	require.NoError(t, err)
	assert.Equal(t, "IntegerOrText", got.Render())

	enums := m.GeneratedEnums()
	require.Len(t, enums, 1)
	assert.Equal(t, "IntegerOrText", enums[0].Name)
	require.Len(t, enums[0].Variants, 2)
	assert.Equal(t, "Integer", enums[0].Variants[0].Name)
	assert.Equal(t, "i64", enums[0].Variants[0].Type.Render())
	assert.Equal(t, "Text", enums[0].Variants[1].Name)

	// Mapping the same union again does not duplicate the declaration.
	_, err = m.Map(ir.UnionType{Alts: []ir.SourceType{ir.IntType{}, ir.StrType{}}})
	require.NoError(t, err)
	assert.Len(t, m.GeneratedEnums(), 1)
}

func TestForOptionsSameOptionsReturnsReceiver(t *testing.T) {
	m := defaultMapper(t)
	same, err := m.ForOptions(OptionsFrom(annotations.NewConfig().ForFunction("f")))
	require.NoError(t, err)
	assert.Same(t, m, same)
}

func TestForOptionsAppliesItsOwnOptions(t *testing.T) {
	base := defaultMapper(t)
	derived, err := base.ForOptions(Options{
		IntWidth: annotations.IntWidthI32,
		Strings:  annotations.StringFlexible,
	})
	require.NoError(t, err)

	got, err := derived.Map(ir.StrType{})
	require.NoError(t, err)
	assert.Equal(t, "Cow<'static, str>", got.Render())

	got, err = derived.Map(ir.IntType{})
	require.NoError(t, err)
	assert.Equal(t, "i32", got.Render())

	// The base mapper is unaffected.
	got, err = base.Map(ir.StrType{})
	require.NoError(t, err)
	assert.Equal(t, "String", got.Render())
}

func TestForOptionsSharesEnumRegistry(t *testing.T) {
	base := defaultMapper(t)
	derived, err := base.ForOptions(Options{Strings: annotations.StringFlexible})
	require.NoError(t, err)

	_, err = derived.Map(ir.UnionType{Alts: []ir.SourceType{ir.IntType{}, ir.BoolType{}}})
	require.NoError(t, err)

	// Enums registered through a derived mapper show up at module level.
	enums := base.GeneratedEnums()
	require.Len(t, enums, 1)
	assert.Equal(t, "IntegerOrBoolean", enums[0].Name)
}

func TestMapMemoizes(t *testing.T) {
	m := defaultMapper(t)

	first, err := m.Map(ir.ListType{Elem: ir.IntType{}})
	require.NoError(t, err)
	second, err := m.Map(ir.ListType{Elem: ir.IntType{}})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCollectImports(t *testing.T) {
	got := map[string]struct{}{}
	CollectImports(HashMap{Key: OwnedString{}, Value: CowStr{}}, got)
	CollectImports(Shared{Inner: Vec{Elem: I64}, ThreadSafe: true}, got)

	for _, want := range []string{
		"std::collections::HashMap",
		"std::borrow::Cow",
		"std::sync::Arc",
		"std::sync::Mutex",
	} {
		_, ok := got[want]
		assert.True(t, ok, want)
	}
}

func TestRenderReferenceForms(t *testing.T) {
	assert.Equal(t, "&str", StrRef{}.Render())
	assert.Equal(t, "&'a str", StrRef{Lifetime: "'a"}.Render())
	assert.Equal(t, "&'a mut Vec<i64>", Ref{Lifetime: "'a", Mut: true, Inner: Vec{Elem: I64}}.Render())
	assert.Equal(t, "&String", Ref{Inner: OwnedString{}}.Render())
	assert.Equal(t, "Rc<RefCell<Vec<i64>>>", Shared{Inner: Vec{Elem: I64}}.Render())
	assert.Equal(t, "Arc<Mutex<i64>>", Shared{Inner: I64, ThreadSafe: true}.Render())
	assert.Equal(t, "Result<i64, String>", Result{Ok: I64, Err: OwnedString{}}.Render())
}
