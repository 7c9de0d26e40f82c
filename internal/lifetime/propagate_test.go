package lifetime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferrule-dev/ferrule/internal/ir"
)

func TestPropagateBorrowedParams(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Params: []ir.Param{
			{Name: "a", Type: ir.StrType{}},
			{Name: "b", Type: ir.ListType{Elem: ir.IntType{}}},
		},
		Body: []ir.Stmt{
			&ir.ReturnStmt{Value: &ir.CallExpr{Func: "len", Args: []ir.Expr{&ir.NameExpr{Ident: "a"}}}},
		},
	}
	strategies := map[string]ir.OwnershipStrategy{
		"a": ir.BorrowImmutable,
		"b": ir.BorrowMutable,
	}

	lifetimes, err := Propagate(fn, strategies)
	require.NoError(t, err)

	assert.Equal(t, ir.Lifetime{Name: "'a", Scope: ir.FunctionScope}, lifetimes["a"])
	assert.Equal(t, ir.Lifetime{Name: "'b", Scope: ir.FunctionScope}, lifetimes["b"])
}

func TestPropagateSkipsOwnedBindings(t *testing.T) {
	fn := &ir.Function{
		Name:   "f",
		Params: []ir.Param{{Name: "s", Type: ir.StrType{}}},
	}
	lifetimes, err := Propagate(fn, map[string]ir.OwnershipStrategy{"s": ir.TakeOwnership})
	require.NoError(t, err)
	assert.Empty(t, lifetimes)
}

func TestPropagateNamesAreDeterministic(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Params: []ir.Param{
			{Name: "z", Type: ir.StrType{}},
			{Name: "a", Type: ir.StrType{}},
		},
	}
	strategies := map[string]ir.OwnershipStrategy{
		"z": ir.BorrowImmutable,
		"a": ir.BorrowImmutable,
	}

	lifetimes, err := Propagate(fn, strategies)
	require.NoError(t, err)

	// Parameter order, not name order.
	assert.Equal(t, "'a", lifetimes["z"].Name)
	assert.Equal(t, "'b", lifetimes["a"].Name)
}

func TestPropagateBranchLocalUsedInsideBranch(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Body: []ir.Stmt{
			&ir.IfStmt{
				Cond: &ir.LiteralExpr{Value: ir.BoolLit(true)},
				Then: []ir.Stmt{
					&ir.AssignStmt{Target: "tmp", Value: &ir.LiteralExpr{Value: ir.StrLit("x")}},
					&ir.ExprStmt{X: &ir.CallExpr{Func: "print", Args: []ir.Expr{&ir.NameExpr{Ident: "tmp"}}}},
				},
			},
		},
	}
	lifetimes, err := Propagate(fn, map[string]ir.OwnershipStrategy{"tmp": ir.BorrowImmutable})
	require.NoError(t, err)

	lt := lifetimes["tmp"]
	assert.Equal(t, "'a", lt.Name)
	assert.NotEqual(t, ir.FunctionScope, lt.Scope, "origin is the branch scope")
}

func TestPropagateReturnedBranchLocalViolates(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Body: []ir.Stmt{
			&ir.IfStmt{
				Cond: &ir.LiteralExpr{Value: ir.BoolLit(true)},
				Then: []ir.Stmt{
					&ir.AssignStmt{Target: "tmp", Value: &ir.LiteralExpr{Value: ir.StrLit("x")}},
					&ir.ReturnStmt{Value: &ir.NameExpr{Ident: "tmp"}},
				},
			},
		},
	}
	_, err := Propagate(fn, map[string]ir.OwnershipStrategy{"tmp": ir.BorrowImmutable})
	require.Error(t, err)
	assert.True(t, IsLifetimeViolation(err))

	var lv *LifetimeViolationError
	require.ErrorAs(t, err, &lv)
	assert.Equal(t, "tmp", lv.Binding)
}

func TestPropagateUseAfterBranchViolates(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Body: []ir.Stmt{
			&ir.IfStmt{
				Cond: &ir.LiteralExpr{Value: ir.BoolLit(true)},
				Then: []ir.Stmt{
					&ir.AssignStmt{Target: "tmp", Value: &ir.LiteralExpr{Value: ir.StrLit("x")}},
				},
			},
			&ir.ExprStmt{X: &ir.CallExpr{Func: "print", Args: []ir.Expr{&ir.NameExpr{Ident: "tmp"}}}},
		},
	}
	_, err := Propagate(fn, map[string]ir.OwnershipStrategy{"tmp": ir.BorrowImmutable})
	assert.True(t, IsLifetimeViolation(err))
}

func TestPropagateViolationRecoversWithForcedOwnership(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Body: []ir.Stmt{
			&ir.IfStmt{
				Cond: &ir.LiteralExpr{Value: ir.BoolLit(true)},
				Then: []ir.Stmt{
					&ir.AssignStmt{Target: "tmp", Value: &ir.LiteralExpr{Value: ir.StrLit("x")}},
					&ir.ReturnStmt{Value: &ir.NameExpr{Ident: "tmp"}},
				},
			},
		},
	}
	strategies := map[string]ir.OwnershipStrategy{"tmp": ir.BorrowImmutable}

	_, err := Propagate(fn, strategies)
	var lv *LifetimeViolationError
	require.ErrorAs(t, err, &lv)

	// The caller's recovery loop: force ownership and re-propagate.
	strategies[lv.Binding] = ir.TakeOwnership
	lifetimes, err := Propagate(fn, strategies)
	require.NoError(t, err)
	assert.Empty(t, lifetimes)
}

func TestPropagateLoopVariable(t *testing.T) {
	fn := &ir.Function{
		Name:   "f",
		Params: []ir.Param{{Name: "items", Type: ir.ListType{Elem: ir.StrType{}}}},
		Body: []ir.Stmt{
			&ir.ForStmt{
				Target: "x",
				Iter:   &ir.NameExpr{Ident: "items"},
				Body: []ir.Stmt{
					&ir.ExprStmt{X: &ir.CallExpr{Func: "print", Args: []ir.Expr{&ir.NameExpr{Ident: "x"}}}},
				},
			},
		},
	}
	strategies := map[string]ir.OwnershipStrategy{
		"items": ir.BorrowImmutable,
		"x":     ir.BorrowImmutable,
	}
	lifetimes, err := Propagate(fn, strategies)
	require.NoError(t, err)

	assert.Equal(t, ir.FunctionScope, lifetimes["items"].Scope)
	assert.NotEqual(t, ir.FunctionScope, lifetimes["x"].Scope)
}
