package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleModuleJSON = `{
	"name": "inventory",
	"functions": [
		{
			"name": "count_len",
			"params": [{"name": "label", "type": {"kind": "str"}}],
			"ret": {"kind": "int"},
			"docstring": "Return the label length.",
			"body": [
				{"kind": "return", "value": {
					"kind": "call", "func": "len",
					"args": [{"kind": "name", "ident": "label"}]
				}}
			]
		},
		{
			"name": "total",
			"params": [{"name": "items", "type": {"kind": "list", "elem": {"kind": "int"}}}],
			"ret": {"kind": "int"},
			"body": [
				{"kind": "assign", "target": "acc", "value": {"kind": "int", "value": 0}},
				{"kind": "for", "target": "item", "iter": {"kind": "name", "ident": "items"}, "body": [
					{"kind": "aug_assign", "target": "acc", "op": "+", "value": {"kind": "name", "ident": "item"}}
				]},
				{"kind": "return", "value": {"kind": "name", "ident": "acc"}}
			]
		}
	],
	"types": [
		{"name": "Point", "fields": [
			{"name": "x", "type": {"kind": "int"}},
			{"name": "y", "type": {"kind": "int"}}
		]}
	],
	"globals": [
		{"name": "counter", "type": {"kind": "int"}, "init": {"kind": "int", "value": 0}}
	]
}`

func TestDecodeModule(t *testing.T) {
	m, err := DecodeModule([]byte(sampleModuleJSON))
	require.NoError(t, err)

	assert.Equal(t, "inventory", m.Name)
	require.Len(t, m.Functions, 2)
	require.Len(t, m.Types, 1)
	require.Len(t, m.Globals, 1)

	fn := m.FindFunction("count_len")
	require.NotNil(t, fn)
	assert.Equal(t, "Return the label length.", fn.Docstring)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "str", fn.Params[0].Type.String())
	assert.Equal(t, "int", fn.Ret.String())

	ret, ok := fn.Body[0].(*ReturnStmt)
	require.True(t, ok)
	call, ok := ret.Value.(*CallExpr)
	require.True(t, ok)
	assert.Equal(t, "len", call.Func)
}

func TestDecodeModuleRejectsSuppliedProperties(t *testing.T) {
	doc := `{
		"name": "m",
		"functions": [{
			"name": "f", "params": [], "body": [],
			"properties": {"pure": true}
		}]
	}`
	_, err := DecodeModule([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "derived")
}

func TestDecodeModuleRejectsUnknownStmtKind(t *testing.T) {
	doc := `{
		"name": "m",
		"functions": [{
			"name": "f", "params": [],
			"body": [{"kind": "goto", "label": "x"}]
		}]
	}`
	_, err := DecodeModule([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown statement kind "goto"`)
}

func TestDecodeModuleRejectsFloatLiteralWithoutLexeme(t *testing.T) {
	doc := `{
		"name": "m",
		"functions": [{
			"name": "f", "params": [],
			"body": [{"kind": "return", "value": {"kind": "float"}}]
		}]
	}`
	_, err := DecodeModule([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lexeme")
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	m, err := DecodeModule([]byte(sampleModuleJSON))
	require.NoError(t, err)

	first, err := MarshalCanonical(EncodeModule(m))
	require.NoError(t, err)

	// Decode the encoded form again: canonical output must be identical.
	reencoded, err := MarshalCanonical(EncodeModule(m))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(reencoded))
}

func TestDecodeSourceTypeUnionRequiresTwoAlts(t *testing.T) {
	_, err := DecodeSourceType([]byte(`{"kind": "union", "alts": [{"kind": "int"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least two")
}

func TestSourceTypeStringRenderings(t *testing.T) {
	cases := []struct {
		typ  SourceType
		want string
	}{
		{IntType{}, "int"},
		{ListType{Elem: IntType{}}, "list[int]"},
		{DictType{Key: StrType{}, Value: DynamicType{}}, "dict[str, dynamic]"},
		{OptionalType{Inner: StrType{}}, "optional[str]"},
		{UnionType{Alts: []SourceType{IntType{}, StrType{}}}, "int | str"},
		{TupleType{Elems: []SourceType{IntType{}, BoolType{}}}, "tuple[int, bool]"},
		{CustomType{Name: "Point"}, "Point"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.typ.String())
	}
}
