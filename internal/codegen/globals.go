package codegen

import (
	"fmt"
	"strings"

	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/ir"
	"github.com/ferrule-dev/ferrule/internal/typemap"
)

// globalConstName is the emitted name of a module-level singleton.
func globalConstName(name string) string {
	return strings.ToUpper(name)
}

// genGlobals renders every module global as a lazily-initialized static
// behind a Mutex, in declaration order. The initialization idiom follows
// the global_strategy annotation. Returns the rendered block and the
// imports it requires.
func genGlobals(m *ir.Module, mod annotations.ModuleConfig, mapper *typemap.Mapper, imports map[string]struct{}) (string, error) {
	if len(m.Globals) == 0 {
		return "", nil
	}

	ctx := newGenContext(m, FunctionAnalysis{
		Fn:  &ir.Function{Name: "__globals__"},
		Eff: annotations.Effective{IntWidth: mod.IntWidth, StringStrategy: mod.StringStrategy},
	}, mapper, nil)

	var b strings.Builder
	useLazyStatic := mod.GlobalStrategy == annotations.GlobalLazyStatic

	if useLazyStatic {
		imports["lazy_static::lazy_static"] = struct{}{}
		b.WriteString("lazy_static! {\n")
	} else {
		imports["once_cell::sync::Lazy"] = struct{}{}
	}
	imports["std::sync::Mutex"] = struct{}{}

	for _, g := range m.Globals {
		mapped, err := mapper.Map(g.Type)
		if err != nil {
			return "", err
		}
		typemap.CollectImports(mapped, imports)

		init := "Default::default()"
		if g.Init != nil {
			init, err = ctx.genExpr(g.Init)
			if err != nil {
				return "", err
			}
		}

		if useLazyStatic {
			fmt.Fprintf(&b, "    static ref %s: Mutex<%s> = Mutex::new(%s);\n",
				globalConstName(g.Name), mapped.Render(), init)
		} else {
			fmt.Fprintf(&b, "static %s: Lazy<Mutex<%s>> = Lazy::new(|| Mutex::new(%s));\n",
				globalConstName(g.Name), mapped.Render(), init)
		}
	}

	if useLazyStatic {
		b.WriteString("}\n")
	}

	for k := range ctx.imports {
		imports[k] = struct{}{}
	}
	return b.String(), nil
}
