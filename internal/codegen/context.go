package codegen

import (
	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/ir"
	"github.com/ferrule-dev/ferrule/internal/strplan"
	"github.com/ferrule-dev/ferrule/internal/stdmap"
	"github.com/ferrule-dev/ferrule/internal/typemap"
)

// FunctionAnalysis bundles the per-function pass results the generator
// consumes. All fields are read-only during generation.
type FunctionAnalysis struct {
	Fn         *ir.Function
	Eff        annotations.Effective
	Props      ir.FunctionProperties
	Profiles   map[string]ir.UsageProfile
	Strategies map[string]ir.OwnershipStrategy
	Lifetimes  map[string]ir.Lifetime
	Plans      *strplan.Plans
}

// genContext is the shared read-only state for one function's
// sub-generators. Built once per function, never mutated afterward except
// for the import accumulator.
type genContext struct {
	FunctionAnalysis

	module *ir.Module
	mapper *typemap.Mapper
	table  *stdmap.Table

	// wrapErrors is true under panic_behavior=return_error: fallible
	// operations propagate with ? instead of panicking.
	wrapErrors bool

	// declaredTypes indexes the module's user type names.
	declaredTypes map[string]bool
	// globalTypes indexes module globals by name.
	globalTypes map[string]ir.SourceType
	// paramTypes indexes declared parameter types.
	paramTypes map[string]ir.SourceType
	// localTypes indexes declared local binding types (explicit only).
	localTypes map[string]ir.SourceType

	// imports accumulates required use-paths for this function.
	imports map[string]struct{}
}

func newGenContext(m *ir.Module, a FunctionAnalysis, mapper *typemap.Mapper, table *stdmap.Table) *genContext {
	ctx := &genContext{
		FunctionAnalysis: a,
		module:           m,
		mapper:           mapper,
		table:            table,
		wrapErrors:       a.Eff.PanicBehavior == annotations.PanicReturnError,
		declaredTypes:    map[string]bool{},
		globalTypes:      map[string]ir.SourceType{},
		paramTypes:       map[string]ir.SourceType{},
		localTypes:       map[string]ir.SourceType{},
		imports:          map[string]struct{}{},
	}
	if m != nil {
		for _, td := range m.Types {
			ctx.declaredTypes[td.Name] = true
		}
		for _, g := range m.Globals {
			ctx.globalTypes[g.Name] = g.Type
		}
	}
	for _, p := range a.Fn.Params {
		ctx.paramTypes[p.Name] = p.Type
	}
	collectLocalTypes(a.Fn.Body, ctx.localTypes)
	return ctx
}

func collectLocalTypes(body []ir.Stmt, into map[string]ir.SourceType) {
	for _, s := range body {
		switch v := s.(type) {
		case *ir.AssignStmt:
			if v.Decl != nil && v.Index == nil && v.Attr == "" {
				if _, seen := into[v.Target]; !seen {
					into[v.Target] = v.Decl
				}
			}
		case *ir.IfStmt:
			collectLocalTypes(v.Then, into)
			collectLocalTypes(v.Else, into)
		case *ir.WhileStmt:
			collectLocalTypes(v.Body, into)
		case *ir.ForStmt:
			collectLocalTypes(v.Body, into)
		}
	}
}

// declaredType returns the declared source type for a binding, checking
// parameters, explicit locals, then globals.
func (ctx *genContext) declaredType(name string) (ir.SourceType, bool) {
	if t, ok := ctx.paramTypes[name]; ok && t != nil {
		return t, true
	}
	if t, ok := ctx.localTypes[name]; ok && t != nil {
		return t, true
	}
	if t, ok := ctx.globalTypes[name]; ok && t != nil {
		return t, true
	}
	return nil, false
}

// strategy returns the resolved ownership strategy for a binding,
// defaulting to TakeOwnership for untracked names.
func (ctx *genContext) strategy(name string) ir.OwnershipStrategy {
	if s, ok := ctx.Strategies[name]; ok {
		return s
	}
	return ir.TakeOwnership
}

func (ctx *genContext) isGlobal(name string) bool {
	_, ok := ctx.globalTypes[name]
	return ok
}

func (ctx *genContext) isShared(name string) bool {
	return ctx.strategy(name) == ir.SharedOwnership
}

func (ctx *genContext) threadSafe() bool {
	return ctx.Eff.ThreadSafety == annotations.ThreadSafetyRequired
}

func (ctx *genContext) boundsExplicit() bool {
	return ctx.Eff.BoundsChecking == annotations.BoundsExplicit
}

// intSpelling is the target integer type under the active width.
func (ctx *genContext) intSpelling() string {
	switch ctx.Eff.IntWidth {
	case annotations.IntWidthI32:
		return "i32"
	case annotations.IntWidthISize:
		return "isize"
	default:
		return "i64"
	}
}

func (ctx *genContext) addImport(path string) {
	if path != "" {
		ctx.imports[path] = struct{}{}
	}
}

// isFloat reports whether an expression is known to be float-typed. Used
// to choose plain division over checked integer division.
func (ctx *genContext) isFloat(e ir.Expr) bool {
	switch v := e.(type) {
	case *ir.LiteralExpr:
		_, ok := v.Value.(ir.FloatLit)
		return ok
	case *ir.NameExpr:
		t, ok := ctx.declaredType(v.Ident)
		if !ok {
			return false
		}
		_, isFloat := t.(ir.FloatType)
		return isFloat
	case *ir.BinaryExpr:
		return ctx.isFloat(v.Left) || ctx.isFloat(v.Right)
	case *ir.UnaryExpr:
		return ctx.isFloat(v.Operand)
	default:
		return false
	}
}

// isMapBinding reports whether a name is declared as a dictionary.
func (ctx *genContext) isMapBinding(e ir.Expr) bool {
	name, ok := e.(*ir.NameExpr)
	if !ok {
		return false
	}
	t, ok := ctx.declaredType(name.Ident)
	if !ok {
		return false
	}
	_, isDict := t.(ir.DictType)
	return isDict
}
