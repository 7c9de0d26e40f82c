package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/diag"
	"github.com/ferrule-dev/ferrule/internal/ir"
)

func testModule() *ir.Module {
	scale := &ir.Function{
		Name: "scale",
		Params: []ir.Param{
			{Name: "xs", Type: ir.ListType{Elem: ir.IntType{}}},
			{Name: "factor", Type: ir.IntType{}},
		},
		Ret: ir.IntType{},
		Body: []ir.Stmt{
			&ir.AssignStmt{Target: "total", Value: &ir.LiteralExpr{Value: ir.IntLit(0)}},
			&ir.ForStmt{
				Target: "x",
				Iter:   &ir.NameExpr{Ident: "xs"},
				Body: []ir.Stmt{
					&ir.AugAssignStmt{Target: "total", Op: ir.OpAdd, Value: &ir.BinaryExpr{
						Op:    ir.OpMul,
						Left:  &ir.NameExpr{Ident: "x"},
						Right: &ir.NameExpr{Ident: "factor"},
					}},
				},
			},
			&ir.ReturnStmt{Value: &ir.NameExpr{Ident: "total"}},
		},
	}
	return &ir.Module{Name: "calc", Functions: []*ir.Function{scale}}
}

func TestRunProducesDeterministicSource(t *testing.T) {
	m := testModule()
	r, err := New(m, nil, nil, Options{Workers: 4})
	require.NoError(t, err)

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	second, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, first.Source, second.Source)
	require.Equal(t, first.Manifest, second.Manifest)
	require.Contains(t, first.Manifest, `name = "calc"`)
	require.Equal(t, first.ModuleHash, second.ModuleHash)
	require.Equal(t, first.ConfigHash, second.ConfigHash)
	require.NotEqual(t, first.RunID, second.RunID)
	require.Empty(t, first.Diagnostics)

	require.Len(t, first.Reports, 1)
	require.True(t, first.Reports[0].Included)
	require.Equal(t, ir.BorrowImmutable, first.Reports[0].Strategies["xs"])
	require.Contains(t, first.Source, "pub fn scale<'a>(xs: &'a Vec<i64>, factor: i64) -> i64")
}

func TestRunExcludesFailedFunctionOnly(t *testing.T) {
	m := testModule()
	m.Functions = append(m.Functions, &ir.Function{
		Name: "dial",
		Body: []ir.Stmt{
			&ir.ExprStmt{X: &ir.CallExpr{Func: "socket.create_connection"}},
		},
	})

	r, err := New(m, nil, nil, Options{})
	require.NoError(t, err)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Contains(t, res.Source, "pub fn scale")
	require.NotContains(t, res.Source, "pub fn dial")

	require.Len(t, res.Reports, 2)
	require.True(t, res.Reports[0].Included)
	require.False(t, res.Reports[1].Included)

	require.Equal(t, 1, diag.CountErrors(res.Diagnostics))
	require.Equal(t, diag.CodeUnmappedCall, res.Diagnostics[0].Code)
	require.Equal(t, "dial", res.Diagnostics[0].Scope)
}

func TestRunLifetimeFallbackKeepsFunction(t *testing.T) {
	fn := &ir.Function{
		Name:   "maybe_greet",
		Params: []ir.Param{{Name: "flag", Type: ir.BoolType{}}},
		Body: []ir.Stmt{
			&ir.IfStmt{
				Cond: &ir.NameExpr{Ident: "flag"},
				Then: []ir.Stmt{
					&ir.AssignStmt{Target: "msg", Value: &ir.LiteralExpr{Value: ir.StrLit("hi")}},
				},
			},
			&ir.ExprStmt{X: &ir.CallExpr{Func: "print", Args: []ir.Expr{&ir.NameExpr{Ident: "msg"}}}},
		},
	}
	m := &ir.Module{Name: "greet", Functions: []*ir.Function{fn}}

	r, err := New(m, nil, nil, Options{})
	require.NoError(t, err)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Reports, 1)
	require.True(t, res.Reports[0].Included)
	require.Equal(t, ir.TakeOwnership, res.Reports[0].Strategies["msg"])

	require.Equal(t, 0, diag.CountErrors(res.Diagnostics))
	require.Len(t, res.Diagnostics, 1)
	require.Equal(t, diag.Warning, res.Diagnostics[0].Severity)
	require.Equal(t, diag.CodeLifetimeFallback, res.Diagnostics[0].Code)
	require.Equal(t, "msg", res.Diagnostics[0].Construct)
}

func TestRunModuleScopeConfigIsFatal(t *testing.T) {
	cfg := annotations.NewConfig()
	cfg.Module.IntWidth = "i128"

	r, err := New(testModule(), cfg, nil, Options{})
	require.NoError(t, err)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Empty(t, res.Source)
	require.Empty(t, res.Reports)
	require.Equal(t, 1, diag.CountErrors(res.Diagnostics))
	require.Equal(t, diag.CodeAnnotationInvalid, res.Diagnostics[0].Code)
	require.Equal(t, "module", res.Diagnostics[0].Scope)
}

func TestRunFunctionScopeConfigDropsOnlyThatFunction(t *testing.T) {
	m := testModule()
	m.Functions = append(m.Functions, &ir.Function{
		Name:   "ident",
		Params: []ir.Param{{Name: "n", Type: ir.IntType{}}},
		Ret:    ir.IntType{},
		Body:   []ir.Stmt{&ir.ReturnStmt{Value: &ir.NameExpr{Ident: "n"}}},
	})
	cfg := annotations.NewConfig()
	cfg.Functions["scale"] = annotations.FunctionConfig{
		Directives: []annotations.Directive{{Text: "not an attribute"}},
	}

	r, err := New(m, cfg, nil, Options{})
	require.NoError(t, err)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Contains(t, res.Source, "pub fn ident")
	require.NotContains(t, res.Source, "pub fn scale")

	require.Len(t, res.Reports, 2)
	require.False(t, res.Reports[0].Included)
	require.True(t, res.Reports[1].Included)

	require.Equal(t, 1, diag.CountErrors(res.Diagnostics))
	require.Equal(t, diag.CodeAnnotationInvalid, res.Diagnostics[0].Code)
	require.Equal(t, "scale", res.Diagnostics[0].Scope)
}

func TestRunFunctionScopedStringStrategy(t *testing.T) {
	fn := &ir.Function{
		Name:   "echo",
		Params: []ir.Param{{Name: "s", Type: ir.StrType{}}},
		Ret:    ir.StrType{},
		Body:   []ir.Stmt{&ir.ReturnStmt{Value: &ir.NameExpr{Ident: "s"}}},
	}
	m := &ir.Module{Name: "text", Functions: []*ir.Function{fn}}
	cfg := annotations.NewConfig()
	cfg.Functions["echo"] = annotations.FunctionConfig{
		StringStrategy: annotations.StringFlexible,
	}

	r, err := New(m, cfg, nil, Options{})
	require.NoError(t, err)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Reports, 1)
	require.True(t, res.Reports[0].Included)
	require.Equal(t, ir.CopyOnWrite, res.Reports[0].Strategies["s"])

	// Parameter and return renderings both follow the scoped strategy.
	require.Contains(t, res.Source, "pub fn echo(s: Cow<'static, str>) -> Cow<'static, str>")
	require.Contains(t, res.Source, "use std::borrow::Cow;")
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := New(testModule(), nil, nil, Options{})
	require.NoError(t, err)
	_, err = r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
