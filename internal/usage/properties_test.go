package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ferrule-dev/ferrule/internal/ir"
)

func TestDerivePureProvenFunction(t *testing.T) {
	f := fn([]ir.Param{listParam("items")},
		&ir.AssignStmt{Target: "acc", Value: &ir.LiteralExpr{Value: ir.IntLit(0)}},
		&ir.ForStmt{
			Target: "x",
			Iter:   &ir.NameExpr{Ident: "items"},
			Body: []ir.Stmt{
				&ir.AugAssignStmt{Target: "acc", Op: ir.OpAdd, Value: &ir.NameExpr{Ident: "x"}},
			},
		},
		&ir.ReturnStmt{Value: &ir.NameExpr{Ident: "acc"}},
	)
	props := DeriveProperties(nil, f)

	assert.True(t, props.Pure)
	assert.Equal(t, ir.ConfidenceProven, props.Termination)
	assert.Equal(t, ir.ConfidenceProven, props.PanicFree)
}

func TestDeriveWhileTrueIsUnknownTermination(t *testing.T) {
	f := fn(nil,
		&ir.WhileStmt{
			Cond: &ir.LiteralExpr{Value: ir.BoolLit(true)},
			Body: []ir.Stmt{&ir.BreakStmt{}},
		},
	)
	props := DeriveProperties(nil, f)
	assert.Equal(t, ir.ConfidenceUnknown, props.Termination)
}

func TestDeriveConditionalWhileIsLikelyTermination(t *testing.T) {
	f := fn([]ir.Param{{Name: "n", Type: ir.IntType{}}},
		&ir.WhileStmt{
			Cond: &ir.BinaryExpr{
				Op:    ir.OpGt,
				Left:  &ir.NameExpr{Ident: "n"},
				Right: &ir.LiteralExpr{Value: ir.IntLit(0)},
			},
			Body: []ir.Stmt{
				&ir.AugAssignStmt{Target: "n", Op: ir.OpSub, Value: &ir.LiteralExpr{Value: ir.IntLit(1)}},
			},
		},
	)
	props := DeriveProperties(nil, f)
	assert.Equal(t, ir.ConfidenceLikely, props.Termination)
}

func TestDeriveDivisionBreaksPanicFreedom(t *testing.T) {
	f := fn([]ir.Param{{Name: "a", Type: ir.IntType{}}, {Name: "b", Type: ir.IntType{}}},
		&ir.ReturnStmt{Value: &ir.BinaryExpr{
			Op:    ir.OpDiv,
			Left:  &ir.NameExpr{Ident: "a"},
			Right: &ir.NameExpr{Ident: "b"},
		}},
	)
	props := DeriveProperties(nil, f)
	assert.Equal(t, ir.ConfidenceUnknown, props.PanicFree)
}

func TestDeriveIndexingBreaksPanicFreedom(t *testing.T) {
	f := fn([]ir.Param{listParam("items")},
		&ir.ReturnStmt{Value: &ir.IndexExpr{
			Base:  &ir.NameExpr{Ident: "items"},
			Index: &ir.LiteralExpr{Value: ir.IntLit(0)},
		}},
	)
	props := DeriveProperties(nil, f)
	assert.Equal(t, ir.ConfidenceUnknown, props.PanicFree)
}

func TestDeriveRaiseBreaksPurity(t *testing.T) {
	f := fn(nil,
		&ir.RaiseStmt{Exc: &ir.LiteralExpr{Value: ir.StrLit("boom")}},
	)
	props := DeriveProperties(nil, f)
	assert.False(t, props.Pure)
	assert.Equal(t, ir.ConfidenceUnknown, props.PanicFree)
}

func TestDeriveUnknownCallDowngrades(t *testing.T) {
	f := fn(nil,
		&ir.ExprStmt{X: &ir.CallExpr{Func: "helper"}},
	)
	props := DeriveProperties(nil, f)
	assert.False(t, props.Pure)
	assert.Equal(t, ir.ConfidenceLikely, props.PanicFree)
}

func TestDeriveGlobalWriteBreaksPurity(t *testing.T) {
	m := &ir.Module{Globals: []ir.GlobalVar{{Name: "counter", Type: ir.IntType{}}}}
	f := fn(nil,
		&ir.AugAssignStmt{Target: "counter", Op: ir.OpAdd, Value: &ir.LiteralExpr{Value: ir.IntLit(1)}},
	)
	props := DeriveProperties(m, f)
	assert.False(t, props.Pure)
}

func TestDeriveMutatingLocalStaysPure(t *testing.T) {
	f := fn(nil,
		&ir.AssignStmt{Target: "tmp", Value: &ir.ListExpr{}},
		&ir.ExprStmt{X: &ir.MethodCallExpr{
			Recv:   &ir.NameExpr{Ident: "tmp"},
			Method: "append",
			Args:   []ir.Expr{&ir.LiteralExpr{Value: ir.IntLit(1)}},
		}},
	)
	props := DeriveProperties(nil, f)
	assert.True(t, props.Pure)
}
