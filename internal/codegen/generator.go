package codegen

import (
	"fmt"
	"strings"

	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/ir"
	"github.com/ferrule-dev/ferrule/internal/stdmap"
	"github.com/ferrule-dev/ferrule/internal/typemap"
)

// Generator renders a module. Function is safe for concurrent use; each
// call builds its own context and touches nothing shared except the type
// mapper, which synchronizes internally.
type Generator struct {
	module *ir.Module
	mapper *typemap.Mapper
	table  *stdmap.Table
	mod    annotations.ModuleConfig
}

func New(m *ir.Module, mapper *typemap.Mapper, table *stdmap.Table, mod annotations.ModuleConfig) *Generator {
	return &Generator{module: m, mapper: mapper, table: table, mod: mod}
}

// FunctionResult is one rendered function plus the imports it needs.
type FunctionResult struct {
	Name       string
	Source     string
	Imports    []string
	WrapErrors bool
}

// Function renders one function from its analysis results. A failure
// here excludes only this function from the module output. Type mapping
// follows the function's effective options, so scoped overrides like
// string_strategy change parameter and return renderings together.
func (g *Generator) Function(a FunctionAnalysis) (FunctionResult, error) {
	mapper, err := g.mapper.ForOptions(typemap.OptionsFrom(a.Eff))
	if err != nil {
		return FunctionResult{}, fmt.Errorf("function %s: %w", a.Fn.Name, err)
	}
	ctx := newGenContext(g.module, a, mapper, g.table)
	src, err := ctx.genFunction()
	if err != nil {
		return FunctionResult{}, fmt.Errorf("function %s: %w", a.Fn.Name, err)
	}

	imports := make([]string, 0, len(ctx.imports))
	for p := range ctx.imports {
		imports = append(imports, p)
	}
	return FunctionResult{
		Name:       a.Fn.Name,
		Source:     src,
		Imports:    imports,
		WrapErrors: ctx.wrapErrors,
	}, nil
}

// Assemble stitches rendered functions into the final module source in a
// fixed section order: header, imports, user types, union enums, globals,
// error type, then functions in IR declaration order. Functions missing
// from results (excluded by diagnostics) are skipped.
func (g *Generator) Assemble(results []FunctionResult) (string, error) {
	imports := map[string]struct{}{}
	wrapAny := false
	byName := make(map[string]FunctionResult, len(results))
	for _, r := range results {
		byName[r.Name] = r
		for _, p := range r.Imports {
			imports[p] = struct{}{}
		}
		if r.WrapErrors {
			wrapAny = true
		}
	}

	types, err := genTypeDecls(g.module, g.mapper, imports)
	if err != nil {
		return "", err
	}
	globals, err := genGlobals(g.module, g.mod, g.mapper, imports)
	if err != nil {
		return "", err
	}
	enums := genUnionEnums(g.mapper)

	var sections []string
	sections = append(sections, fmt.Sprintf("// Generated by ferrule %s from module %q. Do not edit.",
		ir.TranspilerVersion, g.module.Name))

	if uses := renderImports(imports); uses != "" {
		sections = append(sections, strings.TrimRight(uses, "\n"))
	}
	if types != "" {
		sections = append(sections, strings.TrimRight(types, "\n"))
	}
	if enums != "" {
		sections = append(sections, strings.TrimRight(enums, "\n"))
	}
	if globals != "" {
		sections = append(sections, strings.TrimRight(globals, "\n"))
	}
	if wrapAny {
		sections = append(sections, strings.TrimRight(genErrorEnum(), "\n"))
	}

	for _, fn := range g.module.Functions {
		r, ok := byName[fn.Name]
		if !ok {
			continue
		}
		sections = append(sections, strings.TrimRight(r.Source, "\n"))
	}

	return strings.Join(sections, "\n\n") + "\n", nil
}
