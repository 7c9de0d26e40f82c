package usage

import (
	"github.com/ferrule-dev/ferrule/internal/ir"
)

// borrowingCalls take their arguments by reference in the target; an
// argument passed to one is a plain read.
var borrowingCalls = map[string]bool{
	"len":        true,
	"str":        true,
	"repr":       true,
	"format":     true,
	"print":      true,
	"isinstance": true,
	"abs":        true,
	"min":        true,
	"max":        true,
	"sum":        true,
	"sorted":     true,
}

// mutatingMethods mutate their receiver in place.
var mutatingMethods = map[string]bool{
	"append":  true,
	"extend":  true,
	"insert":  true,
	"remove":  true,
	"pop":     true,
	"sort":    true,
	"clear":   true,
	"add":     true,
	"update":  true,
	"discard": true,
}

// Analyze walks the function body once and returns the usage profile for
// every parameter and local binding. Module globals are consulted to
// classify stores into longer-lived state.
func Analyze(m *ir.Module, fn *ir.Function) map[string]ir.UsageProfile {
	a := &analyzer{
		profiles: map[string]*ir.UsageProfile{},
		globals:  map[string]bool{},
	}
	if m != nil {
		for _, g := range m.Globals {
			a.globals[g.Name] = true
		}
	}
	for _, p := range fn.Params {
		a.declare(p.Name)
	}
	a.stmts(fn.Body)

	out := make(map[string]ir.UsageProfile, len(a.profiles))
	for name, p := range a.profiles {
		out[name] = *p
	}
	return out
}

type analyzer struct {
	profiles  map[string]*ir.UsageProfile
	globals   map[string]bool
	loopDepth int
}

func (a *analyzer) declare(name string) {
	if _, ok := a.profiles[name]; !ok {
		a.profiles[name] = &ir.UsageProfile{}
	}
}

// touch returns the profile for a tracked binding, also marking loop use.
// Names that are not local bindings (globals, other functions) return nil.
func (a *analyzer) touch(name string) *ir.UsageProfile {
	p, ok := a.profiles[name]
	if !ok {
		return nil
	}
	if a.loopDepth > 0 {
		p.UsedInLoop = true
	}
	return p
}

func (a *analyzer) read(name string) {
	if p := a.touch(name); p != nil {
		p.Reads++
	}
}

func (a *analyzer) mutate(name string) {
	if p := a.touch(name); p != nil {
		p.Mutated = true
	}
}

func (a *analyzer) move(name string) {
	if p := a.touch(name); p != nil {
		p.Moved = true
	}
}

func (a *analyzer) escape(name string) {
	if p := a.touch(name); p != nil {
		p.Escapes = true
	}
}

func (a *analyzer) store(name string) {
	if p := a.touch(name); p != nil {
		p.Stored = true
	}
}

func (a *analyzer) stmts(body []ir.Stmt) {
	for _, s := range body {
		a.stmt(s)
	}
}

func (a *analyzer) stmt(s ir.Stmt) {
	switch v := s.(type) {
	case *ir.AssignStmt:
		a.assign(v)

	case *ir.AugAssignStmt:
		// x += e reads and rewrites x.
		a.read(v.Target)
		a.mutate(v.Target)
		a.expr(v.Value)

	case *ir.ReturnStmt:
		if v.Value != nil {
			a.expr(v.Value)
			a.markEscaping(v.Value)
		}

	case *ir.ExprStmt:
		a.expr(v.X)

	case *ir.IfStmt:
		a.expr(v.Cond)
		a.stmts(v.Then)
		a.stmts(v.Else)

	case *ir.WhileStmt:
		a.expr(v.Cond)
		a.loopDepth++
		a.stmts(v.Body)
		a.loopDepth--

	case *ir.ForStmt:
		a.expr(v.Iter)
		a.loopDepth++
		a.declare(v.Target)
		a.stmts(v.Body)
		a.loopDepth--

	case *ir.RaiseStmt:
		if v.Exc != nil {
			a.expr(v.Exc)
		}

	case *ir.BreakStmt, *ir.ContinueStmt, *ir.PassStmt:
	}
}

func (a *analyzer) assign(s *ir.AssignStmt) {
	a.expr(s.Value)

	switch {
	case s.Index != nil:
		// target[i] = v mutates the container; v is stored into it.
		a.expr(s.Index)
		a.mutate(s.Target)
		if a.globals[s.Target] {
			a.markStored(s.Value)
		}

	case s.Attr != "":
		a.mutate(s.Target)
		if a.globals[s.Target] {
			a.markStored(s.Value)
		}

	case a.globals[s.Target]:
		// Rebinding a global stores the value beyond the function.
		a.markStored(s.Value)

	default:
		if _, tracked := a.profiles[s.Target]; tracked {
			a.mutate(s.Target)
		} else {
			a.declare(s.Target)
		}
	}
}

func (a *analyzer) expr(e ir.Expr) {
	switch v := e.(type) {
	case *ir.NameExpr:
		a.read(v.Ident)

	case *ir.LiteralExpr:

	case *ir.BinaryExpr:
		a.expr(v.Left)
		a.expr(v.Right)

	case *ir.UnaryExpr:
		a.expr(v.Operand)

	case *ir.CallExpr:
		a.call(v)

	case *ir.MethodCallExpr:
		a.methodCall(v)

	case *ir.AttrExpr:
		a.expr(v.Base)

	case *ir.IndexExpr:
		a.expr(v.Base)
		a.expr(v.Index)

	case *ir.ListExpr:
		for _, el := range v.Elems {
			a.expr(el)
		}

	case *ir.TupleExpr:
		for _, el := range v.Elems {
			a.expr(el)
		}

	case *ir.DictExpr:
		for _, item := range v.Items {
			a.expr(item.Key)
			a.expr(item.Value)
		}

	case *ir.LambdaExpr:
		a.lambda(v)
	}
}

func (a *analyzer) call(c *ir.CallExpr) {
	borrowing := borrowingCalls[c.Func]
	for _, arg := range c.Args {
		a.expr(arg)
		if borrowing {
			continue
		}
		// Unknown callees are assumed to consume their arguments.
		if name, ok := arg.(*ir.NameExpr); ok {
			a.move(name.Ident)
		}
	}
}

func (a *analyzer) methodCall(c *ir.MethodCallExpr) {
	a.expr(c.Recv)
	if mutatingMethods[c.Method] {
		if recv, ok := c.Recv.(*ir.NameExpr); ok {
			a.mutate(recv.Ident)
		}
	}
	for _, arg := range c.Args {
		a.expr(arg)
		// Container-inserting methods take their arguments by value.
		if mutatingMethods[c.Method] {
			if name, ok := arg.(*ir.NameExpr); ok {
				a.move(name.Ident)
			}
		}
	}
}

// lambda marks captured outer bindings. Lambda parameters shadow outer
// names for the duration of the body walk.
func (a *analyzer) lambda(l *ir.LambdaExpr) {
	shadowed := map[string]*ir.UsageProfile{}
	for _, p := range l.Params {
		if prof, ok := a.profiles[p]; ok {
			shadowed[p] = prof
			delete(a.profiles, p)
		}
	}

	captured := map[string]bool{}
	a.collectNames(l.Body, captured)

	for name := range captured {
		if _, tracked := a.profiles[name]; tracked {
			a.read(name)
			a.move(name)
			a.escape(name)
		}
	}

	for name, prof := range shadowed {
		a.profiles[name] = prof
	}
}

// markEscaping flags names that leave the function through a return value,
// including names nested in returned collection literals.
func (a *analyzer) markEscaping(e ir.Expr) {
	switch v := e.(type) {
	case *ir.NameExpr:
		a.escape(v.Ident)
	case *ir.ListExpr:
		for _, el := range v.Elems {
			a.markEscaping(el)
		}
	case *ir.TupleExpr:
		for _, el := range v.Elems {
			a.markEscaping(el)
		}
	case *ir.DictExpr:
		for _, item := range v.Items {
			a.markEscaping(item.Value)
		}
	}
}

// markStored flags names whose value ends up in longer-lived state.
func (a *analyzer) markStored(e ir.Expr) {
	switch v := e.(type) {
	case *ir.NameExpr:
		a.store(v.Ident)
	case *ir.ListExpr:
		for _, el := range v.Elems {
			a.markStored(el)
		}
	case *ir.TupleExpr:
		for _, el := range v.Elems {
			a.markStored(el)
		}
	case *ir.DictExpr:
		for _, item := range v.Items {
			a.markStored(item.Value)
		}
	}
}

// collectNames gathers every name referenced in an expression tree.
func (a *analyzer) collectNames(e ir.Expr, into map[string]bool) {
	switch v := e.(type) {
	case *ir.NameExpr:
		into[v.Ident] = true
	case *ir.BinaryExpr:
		a.collectNames(v.Left, into)
		a.collectNames(v.Right, into)
	case *ir.UnaryExpr:
		a.collectNames(v.Operand, into)
	case *ir.CallExpr:
		for _, arg := range v.Args {
			a.collectNames(arg, into)
		}
	case *ir.MethodCallExpr:
		a.collectNames(v.Recv, into)
		for _, arg := range v.Args {
			a.collectNames(arg, into)
		}
	case *ir.AttrExpr:
		a.collectNames(v.Base, into)
	case *ir.IndexExpr:
		a.collectNames(v.Base, into)
		a.collectNames(v.Index, into)
	case *ir.ListExpr:
		for _, el := range v.Elems {
			a.collectNames(el, into)
		}
	case *ir.TupleExpr:
		for _, el := range v.Elems {
			a.collectNames(el, into)
		}
	case *ir.DictExpr:
		for _, item := range v.Items {
			a.collectNames(item.Key, into)
			a.collectNames(item.Value, into)
		}
	case *ir.LambdaExpr:
		inner := map[string]bool{}
		a.collectNames(v.Body, inner)
		for _, p := range v.Params {
			delete(inner, p)
		}
		for name := range inner {
			into[name] = true
		}
	}
}
