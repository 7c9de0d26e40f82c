package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ferrule-dev/ferrule/internal/diag"
	"github.com/ferrule-dev/ferrule/internal/pipeline"
	"github.com/ferrule-dev/ferrule/internal/store"
)

// TranspileOptions holds flags for the transpile command.
type TranspileOptions struct {
	Annotations string
	Overlay     string
	Out         string
	Manifest    string
	Stdout      bool
	Workers     int
	DB          string
}

// TranspileResult is the JSON payload of a successful transpile.
type TranspileResult struct {
	RunID       string           `json:"run_id"`
	Module      string           `json:"module"`
	ModuleHash  string           `json:"module_hash"`
	ConfigHash  string           `json:"config_hash"`
	Out         string           `json:"out,omitempty"`
	Included    []string         `json:"included"`
	Excluded    []string         `json:"excluded,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics,omitempty"`
}

// DiagnosticJSON is the wire shape of one diagnostic.
type DiagnosticJSON struct {
	Severity  string `json:"severity"`
	Scope     string `json:"scope"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Construct string `json:"construct,omitempty"`
}

func diagnosticsJSON(diags []diag.Diagnostic) []DiagnosticJSON {
	if len(diags) == 0 {
		return nil
	}
	out := make([]DiagnosticJSON, len(diags))
	for i, d := range diags {
		out[i] = DiagnosticJSON{
			Severity:  d.Severity.String(),
			Scope:     d.Scope,
			Code:      d.Code,
			Message:   d.Message,
			Construct: d.Construct,
		}
	}
	return out
}

// NewTranspileCommand creates the transpile command.
func NewTranspileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranspileOptions{}

	cmd := &cobra.Command{
		Use:   "transpile <module.json>",
		Short: "Transpile an IR module to Rust source",
		Long: `Transpile a parsed IR module to Rust source.

Runs type mapping, ownership and lifetime inference, and string planning
per function, then assembles deterministic output. Functions that cannot
be transpiled are excluded with diagnostics; their siblings still emit.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranspile(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Annotations, "annotations", "a", "", "CUE annotation document")
	cmd.Flags().StringVar(&opts.Overlay, "overlay", "", "stdlib mapping overlay (YAML)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output path (default: module path with .rs)")
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "also write a Cargo manifest stub to this path")
	cmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "write generated source to stdout")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent function analyses (0 = all cores)")
	cmd.Flags().StringVar(&opts.DB, "db", os.Getenv("FERRULE_DB"), "run history database path")

	return cmd
}

func runTranspile(rootOpts *RootOptions, opts *TranspileOptions, modulePath string, cmd *cobra.Command) error {
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
	formatter.VerboseLog("Loaded module %s (%d functions)", inputs.Module.Name, len(inputs.Module.Functions))

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

	if opts.DB != "" {
		if err := recordRun(cmd.Context(), opts.DB, result); err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
		formatter.VerboseLog("Recorded run %s in %s", result.RunID, opts.DB)
	}

	out := ""
	if result.Source != "" {
		if opts.Stdout {
			fmt.Fprint(cmd.OutOrStdout(), result.Source)
		} else {
			out = opts.Out
			if out == "" {
				out = defaultOutputPath(modulePath)
			}
			if err := os.WriteFile(out, []byte(result.Source), 0o644); err != nil {
				_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("cannot write %s", out), errDetail(err))
				return NewExitError(ExitCommandError, err.Error())
			}
		}
	}

	if opts.Manifest != "" && result.Manifest != "" {
		if err := os.WriteFile(opts.Manifest, []byte(result.Manifest), 0o644); err != nil {
			_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("cannot write %s", opts.Manifest), errDetail(err))
			return NewExitError(ExitCommandError, err.Error())
		}
		formatter.VerboseLog("Wrote manifest %s", opts.Manifest)
	}

	if rootOpts.Format == "json" {
		payload := TranspileResult{
			RunID:       result.RunID,
			Module:      result.Module,
			ModuleHash:  result.ModuleHash,
			ConfigHash:  result.ConfigHash,
			Out:         out,
			Diagnostics: diagnosticsJSON(result.Diagnostics),
		}
		for _, r := range result.Reports {
			if r.Included {
				payload.Included = append(payload.Included, r.Name)
			} else {
				payload.Excluded = append(payload.Excluded, r.Name)
			}
		}
		if err := formatter.Success(payload); err != nil {
			return err
		}
	} else {
		renderer := diag.NewRenderer(formatter.GetErrWriter())
		if err := renderer.Render(result.Diagnostics); err != nil {
			return err
		}
		if out != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (run %s)\n", out, result.RunID)
		}
	}

	if diag.CountErrors(result.Diagnostics) > 0 {
		return NewExitError(ExitFailure, "transpilation completed with errors")
	}
	return nil
}

func recordRun(ctx context.Context, dbPath string, result *pipeline.Result) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	if ctx == nil {
		ctx = context.Background()
	}
	return s.WriteRun(ctx, result)
}
