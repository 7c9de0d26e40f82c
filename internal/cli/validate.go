package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ferrule-dev/ferrule/internal/annotations"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool             `json:"valid"`
	Errors []ValidationItem `json:"errors,omitempty"`
}

// ValidationItem is one validation finding.
type ValidationItem struct {
	Scope   string `json:"scope"`
	Name    string `json:"name,omitempty"`
	Key     string `json:"key,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <annotations.cue>",
		Short: "Validate an annotation document without transpiling",
		Long: `Validate a CUE annotation document against the closed option
vocabulary and the cross-option rules. Faster than a full transpile for
editing feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateAnnotations(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidateAnnotations(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := annotations.LoadFile(path)
	if err != nil {
		return outputValidationFailure(formatter, err)
	}
	if err := annotations.Validate(cfg); err != nil {
		return outputValidationFailure(formatter, err)
	}

	if opts.Format == "json" {
		if err := formatter.Success(ValidationResult{Valid: true}); err != nil {
			return err
		}
		return nil
	}
	return formatter.Success("annotations valid")
}

func outputValidationFailure(formatter *OutputFormatter, err error) error {
	item := ValidationItem{Message: err.Error()}
	var ve *annotations.ValidationError
	if errors.As(err, &ve) {
		item = ValidationItem{
			Scope:   string(ve.Scope),
			Name:    ve.ScopeName,
			Key:     ve.Key,
			Value:   ve.Value,
			Message: ve.Message,
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(ValidationResult{Valid: false, Errors: []ValidationItem{item}}); err != nil {
			return err
		}
	} else {
		_ = formatter.Error(ErrCodeAnnotations, err.Error(), nil)
	}
	return NewExitError(ExitFailure, "annotations invalid")
}
