package codegen

import (
	"fmt"
	"strings"

	"github.com/ferrule-dev/ferrule/internal/ir"
)

// bodyGen tracks which locals have been declared so far while emitting a
// function body. Everything else comes from the read-only genContext.
type bodyGen struct {
	ctx      *genContext
	declared map[string]bool
}

func newBodyGen(ctx *genContext) *bodyGen {
	bg := &bodyGen{ctx: ctx, declared: map[string]bool{}}
	for _, p := range ctx.Fn.Params {
		bg.declared[p.Name] = true
	}
	return bg
}

// genBody renders a statement list at the given indent depth.
func (bg *bodyGen) genBody(b *strings.Builder, body []ir.Stmt, depth int) error {
	for _, s := range body {
		if err := bg.genStmt(b, s, depth); err != nil {
			return err
		}
	}
	return nil
}

func (bg *bodyGen) genStmt(b *strings.Builder, s ir.Stmt, depth int) error {
	ctx := bg.ctx
	pad := strings.Repeat("    ", depth)

	switch v := s.(type) {
	case *ir.AssignStmt:
		return bg.genAssign(b, v, pad)

	case *ir.AugAssignStmt:
		return bg.genAugAssign(b, v, pad)

	case *ir.ReturnStmt:
		return bg.genReturn(b, v, pad)

	case *ir.ExprStmt:
		expr, err := ctx.genExpr(v.X)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "%s%s;\n", pad, expr)
		return nil

	case *ir.IfStmt:
		cond, err := ctx.genExpr(v.Cond)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "%sif %s {\n", pad, cond)
		if err := bg.genBody(b, v.Then, depth+1); err != nil {
			return err
		}
		if len(v.Else) > 0 {
			fmt.Fprintf(b, "%s} else {\n", pad)
			if err := bg.genBody(b, v.Else, depth+1); err != nil {
				return err
			}
		}
		fmt.Fprintf(b, "%s}\n", pad)
		return nil

	case *ir.WhileStmt:
		if isLiteralTrue(v.Cond) {
			fmt.Fprintf(b, "%sloop {\n", pad)
		} else {
			cond, err := ctx.genExpr(v.Cond)
			if err != nil {
				return err
			}
			fmt.Fprintf(b, "%swhile %s {\n", pad, cond)
		}
		if err := bg.genBody(b, v.Body, depth+1); err != nil {
			return err
		}
		fmt.Fprintf(b, "%s}\n", pad)
		return nil

	case *ir.ForStmt:
		iter, err := bg.genIterable(v.Iter)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "%sfor %s in %s {\n", pad, v.Target, iter)
		bg.declared[v.Target] = true
		if err := bg.genBody(b, v.Body, depth+1); err != nil {
			return err
		}
		fmt.Fprintf(b, "%s}\n", pad)
		return nil

	case *ir.BreakStmt:
		fmt.Fprintf(b, "%sbreak;\n", pad)
		return nil

	case *ir.ContinueStmt:
		fmt.Fprintf(b, "%scontinue;\n", pad)
		return nil

	case *ir.PassStmt:
		return nil

	case *ir.RaiseStmt:
		return bg.genRaise(b, v, pad)

	default:
		return fmt.Errorf("unknown statement %T", s)
	}
}

func (bg *bodyGen) genAssign(b *strings.Builder, v *ir.AssignStmt, pad string) error {
	ctx := bg.ctx
	value, err := ctx.genExpr(v.Value)
	if err != nil {
		return err
	}

	switch {
	case v.Index != nil:
		index, err := ctx.genExpr(v.Index)
		if err != nil {
			return err
		}
		base := bg.mutableBase(v.Target)
		if ctx.isMapBinding(&ir.NameExpr{Ident: v.Target}) {
			fmt.Fprintf(b, "%s%s.insert(%s, %s);\n", pad, base, index, value)
		} else {
			fmt.Fprintf(b, "%s%s[%s as usize] = %s;\n", pad, base, index, value)
		}
		return nil

	case v.Attr != "":
		fmt.Fprintf(b, "%s%s.%s = %s;\n", pad, bg.mutableBase(v.Target), v.Attr, value)
		return nil

	case ctx.isGlobal(v.Target):
		fmt.Fprintf(b, "%s*%s.lock().unwrap() = %s;\n", pad, globalConstName(v.Target), value)
		return nil

	case !bg.declared[v.Target]:
		bg.declared[v.Target] = true
		mut := ""
		if ctx.Profiles[v.Target].Mutated {
			mut = "mut "
		}
		if v.Decl != nil {
			mapped, err := ctx.mapper.Map(v.Decl)
			if err != nil {
				return err
			}
			fmt.Fprintf(b, "%slet %s%s: %s = %s;\n", pad, mut, v.Target, mapped.Render(), value)
		} else {
			fmt.Fprintf(b, "%slet %s%s = %s;\n", pad, mut, v.Target, value)
		}
		return nil

	default:
		fmt.Fprintf(b, "%s%s = %s;\n", pad, v.Target, value)
		return nil
	}
}

func (bg *bodyGen) genAugAssign(b *strings.Builder, v *ir.AugAssignStmt, pad string) error {
	ctx := bg.ctx
	value, err := ctx.genExpr(v.Value)
	if err != nil {
		return err
	}

	target := v.Target
	switch {
	case ctx.isGlobal(v.Target):
		target = fmt.Sprintf("*%s.lock().unwrap()", globalConstName(v.Target))
	case ctx.isShared(v.Target):
		if ctx.threadSafe() {
			target = fmt.Sprintf("*%s.lock().unwrap()", v.Target)
		} else {
			target = fmt.Sprintf("*%s.borrow_mut()", v.Target)
		}
	}

	switch v.Op {
	case ir.OpDiv, ir.OpFloorDiv, ir.OpMod:
		if ctx.wrapErrors && !ctx.isFloat(v.Value) {
			checked := "checked_div"
			if v.Op == ir.OpMod {
				checked = "checked_rem"
			}
			fmt.Fprintf(b, "%s%s = %s.%s(%s).ok_or(%s::DivisionByZero)?;\n",
				pad, target, target, checked, value, errTypeName)
			return nil
		}
	}
	fmt.Fprintf(b, "%s%s %s= %s;\n", pad, target, v.Op, value)
	return nil
}

func (bg *bodyGen) genReturn(b *strings.Builder, v *ir.ReturnStmt, pad string) error {
	ctx := bg.ctx
	if v.Value == nil {
		if ctx.wrapErrors {
			fmt.Fprintf(b, "%sreturn Ok(());\n", pad)
		} else {
			fmt.Fprintf(b, "%sreturn;\n", pad)
		}
		return nil
	}
	value, err := ctx.genExpr(v.Value)
	if err != nil {
		return err
	}
	if ctx.wrapErrors {
		fmt.Fprintf(b, "%sreturn Ok(%s);\n", pad, value)
	} else {
		fmt.Fprintf(b, "%sreturn %s;\n", pad, value)
	}
	return nil
}

func (bg *bodyGen) genRaise(b *strings.Builder, v *ir.RaiseStmt, pad string) error {
	ctx := bg.ctx
	rendered := `"runtime error"`
	if v.Exc != nil {
		expr, err := ctx.genExpr(v.Exc)
		if err != nil {
			return err
		}
		rendered = expr
	}
	if ctx.wrapErrors {
		fmt.Fprintf(b, "%sreturn Err(%s::Runtime(%s.to_string()));\n", pad, errTypeName, rendered)
	} else {
		fmt.Fprintf(b, "%spanic!(\"{}\", %s);\n", pad, rendered)
	}
	return nil
}

// genIterable renders a for-loop source: range calls become range
// expressions, borrowed bindings iterate by reference.
func (bg *bodyGen) genIterable(e ir.Expr) (string, error) {
	ctx := bg.ctx

	if call, ok := e.(*ir.CallExpr); ok && call.Func == "range" {
		args, err := ctx.genExprList(call.Args)
		if err != nil {
			return "", err
		}
		switch len(args) {
		case 1:
			return fmt.Sprintf("0..%s", args[0]), nil
		case 2:
			return fmt.Sprintf("%s..%s", args[0], args[1]), nil
		case 3:
			return fmt.Sprintf("(%s..%s).step_by(%s as usize)", args[0], args[1], args[2]), nil
		}
	}

	if name, ok := e.(*ir.NameExpr); ok {
		switch ctx.strategy(name.Ident) {
		case ir.BorrowImmutable:
			return fmt.Sprintf("%s.iter()", name.Ident), nil
		case ir.BorrowMutable:
			return fmt.Sprintf("%s.iter_mut()", name.Ident), nil
		case ir.SharedOwnership:
			if ctx.threadSafe() {
				return fmt.Sprintf("%s.lock().unwrap().iter()", name.Ident), nil
			}
			return fmt.Sprintf("%s.borrow().iter()", name.Ident), nil
		}
	}
	return ctx.genExpr(e)
}

// mutableBase renders the target of an in-place store.
func (bg *bodyGen) mutableBase(name string) string {
	ctx := bg.ctx
	if ctx.isGlobal(name) {
		return fmt.Sprintf("%s.lock().unwrap()", globalConstName(name))
	}
	if ctx.isShared(name) {
		if ctx.threadSafe() {
			return fmt.Sprintf("%s.lock().unwrap()", name)
		}
		return fmt.Sprintf("%s.borrow_mut()", name)
	}
	return name
}

func isLiteralTrue(e ir.Expr) bool {
	lit, ok := e.(*ir.LiteralExpr)
	if !ok {
		return false
	}
	bv, ok := lit.Value.(ir.BoolLit)
	return ok && bool(bv)
}
