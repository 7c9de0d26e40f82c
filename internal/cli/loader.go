package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/ir"
	"github.com/ferrule-dev/ferrule/internal/stdmap"
)

// Error codes surfaced in CLI output.
const (
	ErrCodeGeneric     = "E000"
	ErrCodeModuleRead  = "E001"
	ErrCodeModuleParse = "E002"
	ErrCodeAnnotations = "E003"
	ErrCodeOverlay     = "E004"
	ErrCodeStore       = "E005"
)

// LoadError is a load failure with a stable code for formatted output.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Inputs bundles the loaded inputs of one run.
type Inputs struct {
	Module *ir.Module
	Config *annotations.Config
	Table  *stdmap.Table
}

// LoadInputs reads the module JSON plus optional annotations and stdlib
// overlay. Empty paths fall back to defaults.
func LoadInputs(modulePath, annotationsPath, overlayPath string) (*Inputs, error) {
	data, err := os.ReadFile(modulePath)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeModuleRead, Message: fmt.Sprintf("cannot read module %s", modulePath), Err: err}
	}
	module, err := ir.DecodeModule(data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeModuleParse, Message: fmt.Sprintf("cannot parse module %s", modulePath), Err: err}
	}

	cfg := annotations.NewConfig()
	if annotationsPath != "" {
		cfg, err = annotations.LoadFile(annotationsPath)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeAnnotations, Message: fmt.Sprintf("cannot load annotations %s", annotationsPath), Err: err}
		}
	}

	table, err := stdmap.Default()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "cannot load stdlib mapping table", Err: err}
	}
	if overlayPath != "" {
		if err := table.ApplyOverlayFile(overlayPath); err != nil {
			return nil, &LoadError{Code: ErrCodeOverlay, Message: fmt.Sprintf("cannot apply overlay %s", overlayPath), Err: err}
		}
	}

	return &Inputs{Module: module, Config: cfg, Table: table}, nil
}

// outputLoadError renders a load failure and maps it to a command error
// exit code.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, errDetail(loadErr.Err))
		return NewExitError(ExitCommandError, loadErr.Message)
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return NewExitError(ExitCommandError, err.Error())
}

func errDetail(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}

// defaultOutputPath derives the generated file path from the module
// input: sum.json -> sum.rs.
func defaultOutputPath(modulePath string) string {
	base := modulePath[:len(modulePath)-len(filepath.Ext(modulePath))]
	return base + ".rs"
}
