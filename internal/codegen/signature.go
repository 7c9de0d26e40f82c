package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/ir"
	"github.com/ferrule-dev/ferrule/internal/typemap"
)

// genFunction renders one complete function: interned constants, doc
// comment, directives, signature, and body.
func (ctx *genContext) genFunction() (string, error) {
	var b strings.Builder

	if ctx.Plans != nil {
		for _, c := range ctx.Plans.Constants() {
			fmt.Fprintf(&b, "const %s: &'static str = %s;\n", c.Name, quoteRust(c.Value))
		}
		if len(ctx.Plans.Constants()) > 0 {
			b.WriteByte('\n')
		}
	}

	ctx.genDocComment(&b)
	if err := ctx.genDirectives(&b); err != nil {
		return "", err
	}

	sig, err := ctx.genSignature()
	if err != nil {
		return "", err
	}
	b.WriteString(sig)
	b.WriteString(" {\n")

	bg := newBodyGen(ctx)
	if err := bg.genBody(&b, ctx.Fn.Body, 1); err != nil {
		return "", err
	}
	if ctx.wrapErrors && ctx.Fn.Ret == nil && !endsWithExit(ctx.Fn.Body) {
		b.WriteString("    Ok(())\n")
	}
	b.WriteString("}\n")
	return b.String(), nil
}

func (ctx *genContext) genDocComment(b *strings.Builder) {
	if ctx.Fn.Docstring != "" {
		for _, line := range strings.Split(strings.TrimRight(ctx.Fn.Docstring, "\n"), "\n") {
			if line == "" {
				b.WriteString("///\n")
			} else {
				fmt.Fprintf(b, "/// %s\n", line)
			}
		}
		b.WriteString("///\n")
	}
	fmt.Fprintf(b, "/// Properties: pure=%t; termination=%s; panic_free=%s\n",
		ctx.Props.Pure, ctx.Props.Termination, ctx.Props.PanicFree)
}

// genDirectives injects caller-specified attributes in declaration order,
// after the doc comment and before the signature. Conditional directives
// are skipped when their condition does not hold for the derived
// properties.
func (ctx *genContext) genDirectives(b *strings.Builder) error {
	for _, d := range ctx.Eff.Directives {
		ok, err := annotations.EvalWhen(d.When, ctx.Props)
		if err != nil {
			return fmt.Errorf("directive %q: %w", d.Text, err)
		}
		if ok {
			fmt.Fprintf(b, "%s\n", d.Text)
		}
	}
	return nil
}

func (ctx *genContext) genSignature() (string, error) {
	var params []string
	lifetimes := map[string]bool{}

	for _, p := range ctx.Fn.Params {
		rendered, lts, err := ctx.genParam(p)
		if err != nil {
			return "", err
		}
		params = append(params, rendered)
		for _, lt := range lts {
			lifetimes[lt] = true
		}
	}

	generics := ""
	if len(lifetimes) > 0 {
		names := make([]string, 0, len(lifetimes))
		for lt := range lifetimes {
			names = append(names, lt)
		}
		sort.Strings(names)
		generics = "<" + strings.Join(names, ", ") + ">"
	}

	ret, err := ctx.genReturnType()
	if err != nil {
		return "", err
	}

	sig := fmt.Sprintf("pub fn %s%s(%s)", ctx.Fn.Name, generics, strings.Join(params, ", "))
	if ret != "" {
		sig += " -> " + ret
	}
	return sig, nil
}

// genParam renders one parameter under its resolved ownership strategy
// and returns any lifetime names the rendering introduced.
func (ctx *genContext) genParam(p ir.Param) (string, []string, error) {
	mapped, err := ctx.mapper.Map(p.Type)
	if err != nil {
		return "", nil, err
	}

	lt := ""
	if l, ok := ctx.Lifetimes[p.Name]; ok {
		lt = l.Name
	}

	var t typemap.RustType
	var lts []string
	name := p.Name

	switch ctx.strategy(p.Name) {
	case ir.BorrowImmutable:
		if _, isStr := p.Type.(ir.StrType); isStr {
			t = typemap.StrRef{Lifetime: lt}
		} else {
			t = typemap.Ref{Lifetime: lt, Inner: mapped}
		}
		if lt != "" {
			lts = append(lts, lt)
		}

	case ir.BorrowMutable:
		t = typemap.Ref{Lifetime: lt, Mut: true, Inner: mapped}
		if lt != "" {
			lts = append(lts, lt)
		}

	case ir.SharedOwnership:
		t = typemap.Shared{Inner: mapped, ThreadSafe: ctx.threadSafe()}

	case ir.CopyOnWrite:
		if _, isStr := p.Type.(ir.StrType); isStr {
			t = typemap.CowStr{}
		} else {
			t = mapped
		}

	default: // TakeOwnership
		t = mapped
		if ctx.Profiles[p.Name].Mutated {
			name = "mut " + name
		}
	}

	typemap.CollectImports(t, ctx.imports)
	return fmt.Sprintf("%s: %s", name, t.Render()), lts, nil
}

func (ctx *genContext) genReturnType() (string, error) {
	inner := "()"
	if ctx.Fn.Ret != nil {
		mapped, err := ctx.mapper.Map(ctx.Fn.Ret)
		if err != nil {
			return "", err
		}
		typemap.CollectImports(mapped, ctx.imports)
		inner = mapped.Render()
	}

	if ctx.wrapErrors {
		return fmt.Sprintf("Result<%s, %s>", inner, errTypeName), nil
	}
	if inner == "()" {
		return "", nil
	}
	return inner, nil
}

// endsWithExit reports whether the body's last statement already leaves
// the function.
func endsWithExit(body []ir.Stmt) bool {
	if len(body) == 0 {
		return false
	}
	switch body[len(body)-1].(type) {
	case *ir.ReturnStmt, *ir.RaiseStmt:
		return true
	default:
		return false
	}
}
