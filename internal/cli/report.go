package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ferrule-dev/ferrule/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	DB     string
	Module string
	Limit  int
	Source bool
}

// RunSummaryJSON is the wire shape of one recorded run.
type RunSummaryJSON struct {
	RunID      string `json:"run_id"`
	Module     string `json:"module"`
	ModuleHash string `json:"module_hash"`
	ConfigHash string `json:"config_hash"`
	CreatedAt  string `json:"created_at"`
	Errors     int    `json:"errors"`
	Warnings   int    `json:"warnings"`
}

// RunDetailJSON is the wire shape of a single-run report.
type RunDetailJSON struct {
	RunID       string               `json:"run_id"`
	Module      string               `json:"module"`
	ModuleHash  string               `json:"module_hash"`
	ConfigHash  string               `json:"config_hash"`
	Functions   []FunctionReportJSON `json:"functions"`
	Diagnostics []DiagnosticJSON     `json:"diagnostics,omitempty"`
	Source      string               `json:"source,omitempty"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Show recorded runs from the history database",
		Long: `Show recorded runs from the history database. Without a run
ID the most recent runs are listed; with one, that run's per-function
decisions and diagnostics are shown.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runReportShow(rootOpts, opts, args[0], cmd)
			}
			return runReportList(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", os.Getenv("FERRULE_DB"), "run history database path")
	cmd.Flags().StringVar(&opts.Module, "module", "", "filter listed runs by module name")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list")
	cmd.Flags().BoolVar(&opts.Source, "source", false, "include generated source when showing a run")

	return cmd
}

func openReportStore(formatter *OutputFormatter, opts *ReportOptions) (*store.Store, error) {
	if opts.DB == "" {
		_ = formatter.Error(ErrCodeStore, "no database: set --db or FERRULE_DB", nil)
		return nil, NewExitError(ExitCommandError, "no database configured")
	}
	s, err := store.Open(opts.DB)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("cannot open %s", opts.DB), errDetail(err))
		return nil, NewExitError(ExitCommandError, err.Error())
	}
	return s, nil
}

func runReportList(rootOpts *RootOptions, opts *ReportOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	s, err := openReportStore(formatter, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	summaries, err := s.ListRuns(cmd.Context(), opts.Module, opts.Limit)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	if rootOpts.Format == "json" {
		payload := make([]RunSummaryJSON, len(summaries))
		for i, sum := range summaries {
			payload[i] = RunSummaryJSON(sum)
		}
		return formatter.Success(payload)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
		return nil
	}
	for _, sum := range summaries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  errors=%d warnings=%d\n",
			sum.RunID, sum.CreatedAt, sum.Module, sum.Errors, sum.Warnings)
	}
	return nil
}

func runReportShow(rootOpts *RootOptions, opts *ReportOptions, runID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	s, err := openReportStore(formatter, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.ReadRun(cmd.Context(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("run %s not found", runID), nil)
		return NewExitError(ExitCommandError, "run not found")
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	if rootOpts.Format == "json" {
		payload := RunDetailJSON{
			RunID:       result.RunID,
			Module:      result.Module,
			ModuleHash:  result.ModuleHash,
			ConfigHash:  result.ConfigHash,
			Diagnostics: diagnosticsJSON(result.Diagnostics),
		}
		for _, r := range result.Reports {
			payload.Functions = append(payload.Functions, functionReportJSON(r))
		}
		if opts.Source {
			payload.Source = result.Source
		}
		return formatter.Success(payload)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s\n", result.RunID)
	fmt.Fprintf(cmd.OutOrStdout(), "module %s (hash %s, config %s)\n",
		result.Module, result.ModuleHash, result.ConfigHash)
	renderFunctionReports(cmd, result)
	if len(result.Diagnostics) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		for _, d := range result.Diagnostics {
			fmt.Fprintln(cmd.OutOrStdout(), d.String())
		}
	}
	if opts.Source && result.Source != "" {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), result.Source)
	}
	return nil
}
