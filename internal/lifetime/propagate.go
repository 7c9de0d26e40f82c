package lifetime

import (
	"fmt"
	"sort"

	"github.com/ferrule-dev/ferrule/internal/ir"
)

// Propagate assigns lifetimes to every borrowed binding of the function.
// Non-borrowed strategies need no lifetime and are skipped. The first
// violation is returned as a *LifetimeViolationError; the caller forces
// TakeOwnership for that binding and calls Propagate again.
func Propagate(fn *ir.Function, strategies map[string]ir.OwnershipStrategy) (map[string]ir.Lifetime, error) {
	w := &walker{
		parents: []ir.ScopeID{ir.FunctionScope},
		origins: map[string]ir.ScopeID{},
		uses:    map[string][]ir.ScopeID{},
	}
	for _, p := range fn.Params {
		w.origins[p.Name] = ir.FunctionScope
	}
	w.stmts(fn.Body, ir.FunctionScope)

	out := map[string]ir.Lifetime{}
	next := 0
	for _, name := range borrowedOrder(fn, strategies) {
		origin, known := w.origins[name]
		if !known {
			origin = ir.FunctionScope
		}
		for _, use := range w.uses[name] {
			if !w.within(use, origin) {
				return nil, &LifetimeViolationError{
					Function: fn.Name,
					Binding:  name,
					Reason:   "is borrowed from a scope it outlives",
				}
			}
		}
		out[name] = ir.Lifetime{Name: lifetimeName(next), Scope: origin}
		next++
	}
	return out, nil
}

// borrowedOrder lists borrowed bindings deterministically: parameters in
// declaration order, then locals in name order.
func borrowedOrder(fn *ir.Function, strategies map[string]ir.OwnershipStrategy) []string {
	borrowed := func(name string) bool {
		s, ok := strategies[name]
		return ok && (s == ir.BorrowImmutable || s == ir.BorrowMutable)
	}

	var names []string
	isParam := map[string]bool{}
	for _, p := range fn.Params {
		isParam[p.Name] = true
		if borrowed(p.Name) {
			names = append(names, p.Name)
		}
	}
	var locals []string
	for name := range strategies {
		if !isParam[name] && borrowed(name) {
			locals = append(locals, name)
		}
	}
	sort.Strings(locals)
	return append(names, locals...)
}

// lifetimeName spells the i-th lifetime parameter: 'a, 'b, ..., 'z, then
// numbered beyond that.
func lifetimeName(i int) string {
	if i < 26 {
		return fmt.Sprintf("'%c", 'a'+i)
	}
	return fmt.Sprintf("'l%d", i-25)
}

// walker builds the scope tree and records binding origins and uses.
// Scope IDs increase in visit order, so they are deterministic for a
// given IR.
type walker struct {
	parents []ir.ScopeID // index = scope ID, value = parent
	origins map[string]ir.ScopeID
	uses    map[string][]ir.ScopeID
}

func (w *walker) newScope(parent ir.ScopeID) ir.ScopeID {
	id := ir.ScopeID(len(w.parents))
	w.parents = append(w.parents, parent)
	return id
}

// within reports whether scope is inside the subtree rooted at root.
func (w *walker) within(scope, root ir.ScopeID) bool {
	for {
		if scope == root {
			return true
		}
		if scope == ir.FunctionScope {
			return false
		}
		scope = w.parents[scope]
	}
}

func (w *walker) declare(name string, scope ir.ScopeID) {
	if _, ok := w.origins[name]; !ok {
		w.origins[name] = scope
	}
}

func (w *walker) use(name string, scope ir.ScopeID) {
	w.uses[name] = append(w.uses[name], scope)
}

func (w *walker) stmts(body []ir.Stmt, scope ir.ScopeID) {
	for _, s := range body {
		w.stmt(s, scope)
	}
}

func (w *walker) stmt(s ir.Stmt, scope ir.ScopeID) {
	switch v := s.(type) {
	case *ir.AssignStmt:
		w.expr(v.Value, scope)
		if v.Index != nil {
			w.expr(v.Index, scope)
			w.use(v.Target, scope)
		} else if v.Attr != "" {
			w.use(v.Target, scope)
		} else {
			w.declare(v.Target, scope)
			w.use(v.Target, scope)
		}

	case *ir.AugAssignStmt:
		w.use(v.Target, scope)
		w.expr(v.Value, scope)

	case *ir.ReturnStmt:
		if v.Value != nil {
			w.expr(v.Value, scope)
			// The returned value leaves to the caller, so every name in it
			// is also a use at function scope.
			w.returnUses(v.Value)
		}

	case *ir.ExprStmt:
		w.expr(v.X, scope)

	case *ir.IfStmt:
		w.expr(v.Cond, scope)
		w.stmts(v.Then, w.newScope(scope))
		if len(v.Else) > 0 {
			w.stmts(v.Else, w.newScope(scope))
		}

	case *ir.WhileStmt:
		w.expr(v.Cond, scope)
		w.stmts(v.Body, w.newScope(scope))

	case *ir.ForStmt:
		w.expr(v.Iter, scope)
		body := w.newScope(scope)
		w.declare(v.Target, body)
		w.stmts(v.Body, body)

	case *ir.RaiseStmt:
		if v.Exc != nil {
			w.expr(v.Exc, scope)
		}

	case *ir.BreakStmt, *ir.ContinueStmt, *ir.PassStmt:
	}
}

func (w *walker) expr(e ir.Expr, scope ir.ScopeID) {
	switch v := e.(type) {
	case *ir.NameExpr:
		w.use(v.Ident, scope)
	case *ir.LiteralExpr:
	case *ir.BinaryExpr:
		w.expr(v.Left, scope)
		w.expr(v.Right, scope)
	case *ir.UnaryExpr:
		w.expr(v.Operand, scope)
	case *ir.CallExpr:
		for _, arg := range v.Args {
			w.expr(arg, scope)
		}
	case *ir.MethodCallExpr:
		w.expr(v.Recv, scope)
		for _, arg := range v.Args {
			w.expr(arg, scope)
		}
	case *ir.AttrExpr:
		w.expr(v.Base, scope)
	case *ir.IndexExpr:
		w.expr(v.Base, scope)
		w.expr(v.Index, scope)
	case *ir.ListExpr:
		for _, el := range v.Elems {
			w.expr(el, scope)
		}
	case *ir.TupleExpr:
		for _, el := range v.Elems {
			w.expr(el, scope)
		}
	case *ir.DictExpr:
		for _, item := range v.Items {
			w.expr(item.Key, scope)
			w.expr(item.Value, scope)
		}
	case *ir.LambdaExpr:
		w.expr(v.Body, scope)
	}
}

// returnUses marks every name in a returned expression as used at
// function scope.
func (w *walker) returnUses(e ir.Expr) {
	switch v := e.(type) {
	case *ir.NameExpr:
		w.use(v.Ident, ir.FunctionScope)
	case *ir.BinaryExpr:
		w.returnUses(v.Left)
		w.returnUses(v.Right)
	case *ir.UnaryExpr:
		w.returnUses(v.Operand)
	case *ir.ListExpr:
		for _, el := range v.Elems {
			w.returnUses(el)
		}
	case *ir.TupleExpr:
		for _, el := range v.Elems {
			w.returnUses(el)
		}
	case *ir.DictExpr:
		for _, item := range v.Items {
			w.returnUses(item.Value)
		}
	case *ir.IndexExpr:
		w.returnUses(v.Base)
	case *ir.AttrExpr:
		w.returnUses(v.Base)
	}
}
