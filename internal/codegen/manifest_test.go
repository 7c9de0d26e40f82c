package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/ir"
)

func TestManifestStub(t *testing.T) {
	m := &ir.Module{
		Name: "str-tools",
		Globals: []ir.GlobalVar{
			{Name: "counter", Type: ir.IntType{}, Init: intLit(0)},
		},
	}
	g := newTestGenerator(t, m, annotations.Default())

	manifest, err := g.Manifest(nil)
	require.NoError(t, err)

	want := `[package]
name = "str_tools"
version = "0.1.0"
edition = "2021"

[dependencies]
once_cell = "1"
`
	require.Equal(t, want, manifest)
}

func TestManifestLazyStaticCrate(t *testing.T) {
	m := &ir.Module{
		Name: "calc",
		Globals: []ir.GlobalVar{
			{Name: "counter", Type: ir.IntType{}, Init: intLit(0)},
		},
	}
	mod := annotations.Default()
	mod.GlobalStrategy = annotations.GlobalLazyStatic
	g := newTestGenerator(t, m, mod)

	manifest, err := g.Manifest(nil)
	require.NoError(t, err)
	require.Contains(t, manifest, `lazy_static = "1.4"`)
	require.NotContains(t, manifest, "once_cell")
}

func TestManifestNoExternalCrates(t *testing.T) {
	m := &ir.Module{Name: "calc"}
	g := newTestGenerator(t, m, annotations.Default())

	manifest, err := g.Manifest([]FunctionResult{
		{Name: "f", Imports: []string{"std::collections::HashMap"}},
	})
	require.NoError(t, err)
	require.Contains(t, manifest, `name = "calc"`)
	require.NotContains(t, manifest, "HashMap")
	require.NotContains(t, manifest, "std =")
}
