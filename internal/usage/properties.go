package usage

import (
	"github.com/ferrule-dev/ferrule/internal/ir"
)

// pureCalls have no observable side effects.
var pureCalls = map[string]bool{
	"len":    true,
	"str":    true,
	"repr":   true,
	"abs":    true,
	"min":    true,
	"max":    true,
	"sum":    true,
	"sorted": true,
}

// DeriveProperties infers purity, termination, and panic-freedom for one
// function body. Results are conservative: an unknown call downgrades
// rather than assumes.
func DeriveProperties(m *ir.Module, fn *ir.Function) ir.FunctionProperties {
	d := &deriver{
		globals: map[string]bool{},
		params:  map[string]bool{},
		props: ir.FunctionProperties{
			Pure:        true,
			Termination: ir.ConfidenceProven,
			PanicFree:   ir.ConfidenceProven,
		},
	}
	if m != nil {
		for _, g := range m.Globals {
			d.globals[g.Name] = true
		}
	}
	for _, p := range fn.Params {
		d.params[p.Name] = true
	}
	d.stmts(fn.Body)
	if d.sawUnknownCall {
		d.props.Pure = false
		if d.props.PanicFree == ir.ConfidenceProven {
			d.props.PanicFree = ir.ConfidenceLikely
		}
	}
	return d.props
}

type deriver struct {
	globals        map[string]bool
	params         map[string]bool
	props          ir.FunctionProperties
	sawUnknownCall bool
}

func (d *deriver) stmts(body []ir.Stmt) {
	for _, s := range body {
		d.stmt(s)
	}
}

func (d *deriver) stmt(s ir.Stmt) {
	switch v := s.(type) {
	case *ir.AssignStmt:
		if d.globals[v.Target] {
			d.props.Pure = false
		}
		if v.Index != nil {
			d.expr(v.Index)
		}
		d.expr(v.Value)

	case *ir.AugAssignStmt:
		if d.globals[v.Target] {
			d.props.Pure = false
		}
		d.binOp(v.Op)
		d.expr(v.Value)

	case *ir.ReturnStmt:
		if v.Value != nil {
			d.expr(v.Value)
		}

	case *ir.ExprStmt:
		d.expr(v.X)

	case *ir.IfStmt:
		d.expr(v.Cond)
		d.stmts(v.Then)
		d.stmts(v.Else)

	case *ir.WhileStmt:
		// While loops carry no structural termination guarantee. A constant
		// true condition means the loop only exits through break.
		if isTrueLiteral(v.Cond) {
			d.props.Termination = ir.ConfidenceUnknown
		} else if d.props.Termination == ir.ConfidenceProven {
			d.props.Termination = ir.ConfidenceLikely
		}
		d.expr(v.Cond)
		d.stmts(v.Body)

	case *ir.ForStmt:
		// Iteration over a finite value terminates by construction.
		d.expr(v.Iter)
		d.stmts(v.Body)

	case *ir.RaiseStmt:
		d.props.Pure = false
		d.props.PanicFree = ir.ConfidenceUnknown
		if v.Exc != nil {
			d.expr(v.Exc)
		}

	case *ir.BreakStmt, *ir.ContinueStmt, *ir.PassStmt:
	}
}

func (d *deriver) expr(e ir.Expr) {
	switch v := e.(type) {
	case *ir.NameExpr, *ir.LiteralExpr:

	case *ir.BinaryExpr:
		d.binOp(v.Op)
		d.expr(v.Left)
		d.expr(v.Right)

	case *ir.UnaryExpr:
		d.expr(v.Operand)

	case *ir.CallExpr:
		if !pureCalls[v.Func] {
			d.sawUnknownCall = true
		}
		for _, arg := range v.Args {
			d.expr(arg)
		}

	case *ir.MethodCallExpr:
		// Mutating a parameter or global is an observable effect.
		if mutatingMethods[v.Method] {
			if recv, ok := v.Recv.(*ir.NameExpr); ok {
				if d.params[recv.Ident] || d.globals[recv.Ident] {
					d.props.Pure = false
				}
			}
		}
		d.expr(v.Recv)
		for _, arg := range v.Args {
			d.expr(arg)
		}

	case *ir.AttrExpr:
		d.expr(v.Base)

	case *ir.IndexExpr:
		d.props.PanicFree = ir.ConfidenceUnknown
		d.expr(v.Base)
		d.expr(v.Index)

	case *ir.ListExpr:
		for _, el := range v.Elems {
			d.expr(el)
		}

	case *ir.TupleExpr:
		for _, el := range v.Elems {
			d.expr(el)
		}

	case *ir.DictExpr:
		for _, item := range v.Items {
			d.expr(item.Key)
			d.expr(item.Value)
		}

	case *ir.LambdaExpr:
		d.expr(v.Body)
	}
}

// binOp downgrades panic-freedom for operators that can trap.
func (d *deriver) binOp(op ir.BinOp) {
	switch op {
	case ir.OpDiv, ir.OpFloorDiv, ir.OpMod:
		d.props.PanicFree = ir.ConfidenceUnknown
	}
}

func isTrueLiteral(e ir.Expr) bool {
	lit, ok := e.(*ir.LiteralExpr)
	if !ok {
		return false
	}
	b, ok := lit.Value.(ir.BoolLit)
	return ok && bool(b)
}
