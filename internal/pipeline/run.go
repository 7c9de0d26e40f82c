package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/borrow"
	"github.com/ferrule-dev/ferrule/internal/codegen"
	"github.com/ferrule-dev/ferrule/internal/diag"
	"github.com/ferrule-dev/ferrule/internal/ir"
	"github.com/ferrule-dev/ferrule/internal/lifetime"
	"github.com/ferrule-dev/ferrule/internal/stdmap"
	"github.com/ferrule-dev/ferrule/internal/strplan"
	"github.com/ferrule-dev/ferrule/internal/typemap"
	"github.com/ferrule-dev/ferrule/internal/usage"
)

// Options tunes a run.
type Options struct {
	// Workers caps concurrent function analyses. Zero means GOMAXPROCS.
	Workers int
}

// Runner executes transpilation runs for one module and configuration.
type Runner struct {
	module *ir.Module
	cfg    *annotations.Config
	table  *stdmap.Table
	opts   Options
}

// FunctionReport records what the pipeline decided for one function.
// Excluded functions keep their analysis results so the caller can
// explain why they were dropped.
type FunctionReport struct {
	Name       string
	Included   bool
	Properties ir.FunctionProperties
	Strategies map[string]ir.OwnershipStrategy
	Lifetimes  map[string]ir.Lifetime
}

// Result is one completed run. Runs sharing (ModuleHash, ConfigHash)
// produce byte-identical Source.
type Result struct {
	RunID       string
	Module      string
	ModuleHash  string
	ConfigHash  string
	Source      string
	Manifest    string // Cargo manifest stub for the generated crate
	Reports     []FunctionReport
	Diagnostics []diag.Diagnostic
}

// New builds a runner. A nil config gets the defaults; a nil table gets
// the embedded one.
func New(m *ir.Module, cfg *annotations.Config, table *stdmap.Table, opts Options) (*Runner, error) {
	if m == nil {
		return nil, errors.New("pipeline: nil module")
	}
	if cfg == nil {
		cfg = annotations.NewConfig()
	}
	if table == nil {
		t, err := stdmap.Default()
		if err != nil {
			return nil, err
		}
		table = t
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{module: m, cfg: cfg, table: table, opts: opts}, nil
}

// Run transpiles the module. Per-function failures become diagnostics
// and exclude only that function. Only a module-scope configuration
// failure aborts the whole module; function- and binding-scoped
// annotation errors drop just the function they name.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	moduleHash, err := ir.ModuleHash(r.module)
	if err != nil {
		return nil, err
	}
	configHash, err := ir.ConfigHash(r.cfg.EncodeMap())
	if err != nil {
		return nil, err
	}
	res := &Result{
		RunID:      uuid.NewString(),
		Module:     r.module.Name,
		ModuleHash: moduleHash,
		ConfigHash: configHash,
	}

	if err := annotations.ValidateModule(r.cfg); err != nil {
		res.Diagnostics = append(res.Diagnostics, diag.Diagnostic{
			Severity: diag.Error,
			Scope:    "module",
			Code:     diag.CodeAnnotationInvalid,
			Message:  err.Error(),
		})
		return res, nil
	}

	mapper, err := typemap.New(typemap.OptionsFrom(r.cfg.ForFunction("")))
	if err != nil {
		return nil, err
	}
	gen := codegen.New(r.module, mapper, r.table, r.cfg.Module)

	type slot struct {
		report FunctionReport
		out    codegen.FunctionResult
		diags  []diag.Diagnostic
	}
	slots := make([]slot, len(r.module.Functions))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.opts.Workers)
	for i, fn := range r.module.Functions {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, fn *ir.Function) {
			defer wg.Done()
			defer func() { <-sem }()
			report, out, diags := r.runFunction(fn, gen)
			slots[i] = slot{report: report, out: out, diags: diags}
		}(i, fn)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rendered []codegen.FunctionResult
	for _, s := range slots {
		if s.report.Name == "" {
			continue
		}
		res.Reports = append(res.Reports, s.report)
		res.Diagnostics = append(res.Diagnostics, s.diags...)
		if s.report.Included {
			rendered = append(rendered, s.out)
		}
	}

	source, err := gen.Assemble(rendered)
	if err != nil {
		return nil, fmt.Errorf("assemble module %s: %w", r.module.Name, err)
	}
	res.Source = source
	manifest, err := gen.Manifest(rendered)
	if err != nil {
		return nil, fmt.Errorf("manifest for module %s: %w", r.module.Name, err)
	}
	res.Manifest = manifest
	diag.Sort(res.Diagnostics)
	return res, nil
}

// runFunction runs the analysis passes for one function. Failures come
// back as diagnostics, never as errors: one bad function must not take
// its siblings down.
func (r *Runner) runFunction(fn *ir.Function, gen *codegen.Generator) (FunctionReport, codegen.FunctionResult, []diag.Diagnostic) {
	report := FunctionReport{Name: fn.Name}
	var diags []diag.Diagnostic

	if err := annotations.ValidateFunction(r.cfg, fn.Name); err != nil {
		diags = append(diags, classify(fn.Name, err))
		return report, codegen.FunctionResult{}, diags
	}

	eff := r.cfg.ForFunction(fn.Name)
	profiles := usage.Analyze(r.module, fn)
	props := usage.DeriveProperties(r.module, fn)
	fn.Properties = props
	report.Properties = props

	strategies, err := borrow.NewResolver(eff).ResolveFunction(fn, profiles)
	if err != nil {
		diags = append(diags, classify(fn.Name, err))
		return report, codegen.FunctionResult{}, diags
	}

	lifetimes, fallbacks, err := propagateWithFallback(fn, strategies)
	if err != nil {
		diags = append(diags, classify(fn.Name, err))
		return report, codegen.FunctionResult{}, diags
	}
	for _, binding := range fallbacks {
		diags = append(diags, diag.Diagnostic{
			Severity:  diag.Warning,
			Scope:     fn.Name,
			Code:      diag.CodeLifetimeFallback,
			Message:   "borrow does not outlive its use; binding takes ownership instead",
			Construct: binding,
		})
	}
	report.Strategies = strategies
	report.Lifetimes = lifetimes

	out, err := gen.Function(codegen.FunctionAnalysis{
		Fn:         fn,
		Eff:        eff,
		Props:      props,
		Profiles:   profiles,
		Strategies: strategies,
		Lifetimes:  lifetimes,
		Plans:      strplan.Plan(fn, strategies),
	})
	if err != nil {
		diags = append(diags, classify(fn.Name, err))
		return report, codegen.FunctionResult{}, diags
	}

	report.Included = true
	return report, out, diags
}

// propagateWithFallback retries lifetime propagation, forcing the
// violating binding to take ownership each round. Each retry removes one
// borrowed binding, so the loop terminates.
func propagateWithFallback(fn *ir.Function, strategies map[string]ir.OwnershipStrategy) (map[string]ir.Lifetime, []string, error) {
	var fallbacks []string
	for {
		lifetimes, err := lifetime.Propagate(fn, strategies)
		if err == nil {
			return lifetimes, fallbacks, nil
		}
		var lv *lifetime.LifetimeViolationError
		if !errors.As(err, &lv) {
			return nil, nil, err
		}
		strategies[lv.Binding] = ir.TakeOwnership
		fallbacks = append(fallbacks, lv.Binding)
	}
}
