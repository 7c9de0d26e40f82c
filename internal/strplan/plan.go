package strplan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ferrule-dev/ferrule/internal/ir"
)

// internThreshold is the occurrence count beyond which a literal is
// promoted to a named constant.
const internThreshold = 3

// Constant is one interned literal declaration.
type Constant struct {
	Name  string
	Value string
}

// Plans holds the resolved string plans for one function.
type Plans struct {
	literals  map[string]ir.StringPlan
	bindings  map[string]ir.StringPlan
	constants []Constant
}

// Literal returns the plan for a string literal by content.
func (p *Plans) Literal(s string) ir.StringPlan {
	if plan, ok := p.literals[s]; ok {
		return plan
	}
	return ir.StringPlan{Kind: ir.StaticLiteralReference}
}

// Binding returns the plan for a named binding, if any.
func (p *Plans) Binding(name string) (ir.StringPlan, bool) {
	plan, ok := p.bindings[name]
	return plan, ok
}

// Constants returns the interned constant declarations sorted by name for
// deterministic emission.
func (p *Plans) Constants() []Constant {
	return p.constants
}

// Plan walks one function body and resolves every string plan.
func Plan(fn *ir.Function, strategies map[string]ir.OwnershipStrategy) *Plans {
	c := &counter{
		counts:   map[string]int{},
		consumed: map[string]bool{},
	}
	c.stmts(fn.Body)

	p := &Plans{
		literals: map[string]ir.StringPlan{},
		bindings: map[string]ir.StringPlan{},
	}

	// Interned constants first; name collisions are disambiguated in
	// sorted value order so output is stable.
	var interned []string
	for s, n := range c.counts {
		if n > internThreshold {
			interned = append(interned, s)
		}
	}
	sort.Strings(interned)

	byBase := map[string][]string{}
	for _, s := range interned {
		base := constBaseName(s)
		byBase[base] = append(byBase[base], s)
	}
	for base, values := range byBase {
		for i, s := range values {
			name := base
			if i > 0 {
				name = fmt.Sprintf("%s_%d", base, i+1)
			}
			p.literals[s] = ir.StringPlan{Kind: ir.InternedConstant, ConstName: name}
			p.constants = append(p.constants, Constant{Name: name, Value: s})
		}
	}
	sort.Slice(p.constants, func(i, j int) bool { return p.constants[i].Name < p.constants[j].Name })

	for s := range c.counts {
		if _, done := p.literals[s]; done {
			continue
		}
		if c.consumed[s] {
			p.literals[s] = ir.StringPlan{Kind: ir.OwnedAllocation}
		} else {
			p.literals[s] = ir.StringPlan{Kind: ir.StaticLiteralReference}
		}
	}

	for name, strategy := range strategies {
		if strategy == ir.CopyOnWrite {
			p.bindings[name] = ir.StringPlan{Kind: ir.FlexibleOwnership}
		}
	}
	return p
}

// constBaseName derives a constant name from literal content the way a
// human would: uppercase alphanumerics, everything else an underscore.
func constBaseName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 32)
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "STR_EMPTY"
	}
	return "STR_" + b.String()
}

// counter tallies literal occurrences and marks literals that feed
// concatenation or in-place updates, which must allocate.
type counter struct {
	counts   map[string]int
	consumed map[string]bool
}

func (c *counter) stmts(body []ir.Stmt) {
	for _, s := range body {
		c.stmt(s)
	}
}

func (c *counter) stmt(s ir.Stmt) {
	switch v := s.(type) {
	case *ir.AssignStmt:
		if v.Index != nil {
			c.expr(v.Index)
		}
		c.expr(v.Value)
	case *ir.AugAssignStmt:
		c.markConsumed(v.Value)
		c.expr(v.Value)
	case *ir.ReturnStmt:
		if v.Value != nil {
			c.expr(v.Value)
		}
	case *ir.ExprStmt:
		c.expr(v.X)
	case *ir.IfStmt:
		c.expr(v.Cond)
		c.stmts(v.Then)
		c.stmts(v.Else)
	case *ir.WhileStmt:
		c.expr(v.Cond)
		c.stmts(v.Body)
	case *ir.ForStmt:
		c.expr(v.Iter)
		c.stmts(v.Body)
	case *ir.RaiseStmt:
		if v.Exc != nil {
			c.expr(v.Exc)
		}
	case *ir.BreakStmt, *ir.ContinueStmt, *ir.PassStmt:
	}
}

func (c *counter) expr(e ir.Expr) {
	switch v := e.(type) {
	case *ir.LiteralExpr:
		if s, ok := v.Value.(ir.StrLit); ok {
			c.counts[string(s)]++
		}
	case *ir.BinaryExpr:
		if v.Op == ir.OpAdd {
			c.markConsumed(v.Left)
			c.markConsumed(v.Right)
		}
		c.expr(v.Left)
		c.expr(v.Right)
	case *ir.UnaryExpr:
		c.expr(v.Operand)
	case *ir.CallExpr:
		for _, arg := range v.Args {
			c.expr(arg)
		}
	case *ir.MethodCallExpr:
		c.expr(v.Recv)
		for _, arg := range v.Args {
			c.expr(arg)
		}
	case *ir.AttrExpr:
		c.expr(v.Base)
	case *ir.IndexExpr:
		c.expr(v.Base)
		c.expr(v.Index)
	case *ir.ListExpr:
		for _, el := range v.Elems {
			c.expr(el)
		}
	case *ir.TupleExpr:
		for _, el := range v.Elems {
			c.expr(el)
		}
	case *ir.DictExpr:
		for _, item := range v.Items {
			c.expr(item.Key)
			c.expr(item.Value)
		}
	case *ir.LambdaExpr:
		c.expr(v.Body)
	}
}

func (c *counter) markConsumed(e ir.Expr) {
	if lit, ok := e.(*ir.LiteralExpr); ok {
		if s, ok := lit.Value.(ir.StrLit); ok {
			c.consumed[string(s)] = true
		}
	}
}
