package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ferrule-dev/ferrule/internal/diag"
	"github.com/ferrule-dev/ferrule/internal/pipeline"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	Annotations string
	Overlay     string
	Workers     int
}

// InspectResult is the JSON payload of an inspect run.
type InspectResult struct {
	Module      string               `json:"module"`
	ModuleHash  string               `json:"module_hash"`
	ConfigHash  string               `json:"config_hash"`
	Functions   []FunctionReportJSON `json:"functions"`
	Diagnostics []DiagnosticJSON     `json:"diagnostics,omitempty"`
}

// FunctionReportJSON is the wire shape of one function report.
type FunctionReportJSON struct {
	Name        string            `json:"name"`
	Included    bool              `json:"included"`
	Pure        bool              `json:"pure"`
	Termination string            `json:"termination"`
	PanicFree   string            `json:"panic_free"`
	Strategies  map[string]string `json:"strategies,omitempty"`
	Lifetimes   map[string]string `json:"lifetimes,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <module.json>",
		Short: "Run analysis and show per-function decisions without emitting",
		Long: `Run type mapping, ownership and lifetime inference for every
function and print the resulting decisions. No Rust source is written;
use this to understand why a binding was borrowed or moved before
committing to annotations.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Annotations, "annotations", "a", "", "CUE annotation document")
	cmd.Flags().StringVar(&opts.Overlay, "overlay", "", "stdlib mapping overlay (YAML)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent function analyses (0 = all cores)")

	return cmd
}

func runInspect(rootOpts *RootOptions, opts *InspectOptions, modulePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	inputs, err := LoadInputs(modulePath, opts.Annotations, opts.Overlay)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	runner, err := pipeline.New(inputs.Module, inputs.Config, inputs.Table, pipeline.Options{Workers: opts.Workers})
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	result, err := runner.Run(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	if rootOpts.Format == "json" {
		payload := InspectResult{
			Module:      result.Module,
			ModuleHash:  result.ModuleHash,
			ConfigHash:  result.ConfigHash,
			Diagnostics: diagnosticsJSON(result.Diagnostics),
		}
		for _, r := range result.Reports {
			payload.Functions = append(payload.Functions, functionReportJSON(r))
		}
		if err := formatter.Success(payload); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "module %s\n", result.Module)
		renderFunctionReports(cmd, result)
		renderer := diag.NewRenderer(formatter.GetErrWriter())
		if err := renderer.Render(result.Diagnostics); err != nil {
			return err
		}
	}

	if diag.CountErrors(result.Diagnostics) > 0 {
		return NewExitError(ExitFailure, "analysis completed with errors")
	}
	return nil
}

func functionReportJSON(r pipeline.FunctionReport) FunctionReportJSON {
	out := FunctionReportJSON{
		Name:        r.Name,
		Included:    r.Included,
		Pure:        r.Properties.Pure,
		Termination: r.Properties.Termination.String(),
		PanicFree:   r.Properties.PanicFree.String(),
	}
	if len(r.Strategies) > 0 {
		out.Strategies = make(map[string]string, len(r.Strategies))
		for name, s := range r.Strategies {
			out.Strategies[name] = s.String()
		}
	}
	if len(r.Lifetimes) > 0 {
		out.Lifetimes = make(map[string]string, len(r.Lifetimes))
		for name, lt := range r.Lifetimes {
			out.Lifetimes[name] = lt.Name
		}
	}
	return out
}

func renderFunctionReports(cmd *cobra.Command, result *pipeline.Result) {
	w := cmd.OutOrStdout()
	for _, r := range result.Reports {
		status := "included"
		if !r.Included {
			status = "excluded"
		}
		fmt.Fprintf(w, "\n%s (%s)\n", r.Name, status)
		fmt.Fprintf(w, "  pure=%t termination=%s panic_free=%s\n",
			r.Properties.Pure, r.Properties.Termination, r.Properties.PanicFree)
		for _, name := range sortedKeys(r.Strategies) {
			line := fmt.Sprintf("  %s: %s", name, r.Strategies[name])
			if lt, ok := r.Lifetimes[name]; ok {
				line += fmt.Sprintf(" (%s)", lt.Name)
			}
			fmt.Fprintln(w, line)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
