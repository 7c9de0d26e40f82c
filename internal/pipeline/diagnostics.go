package pipeline

import (
	"errors"

	"github.com/ferrule-dev/ferrule/internal/annotations"
	"github.com/ferrule-dev/ferrule/internal/borrow"
	"github.com/ferrule-dev/ferrule/internal/diag"
	"github.com/ferrule-dev/ferrule/internal/stdmap"
	"github.com/ferrule-dev/ferrule/internal/typemap"
)

// classify turns a pass failure into the diagnostic that excludes the
// function from the module output.
func classify(scope string, err error) diag.Diagnostic {
	d := diag.Diagnostic{
		Severity: diag.Error,
		Scope:    scope,
		Message:  err.Error(),
	}

	var ut *typemap.UnsupportedTypeError
	var oc *borrow.OwnershipConflictError
	var uc *stdmap.UnmappedCallError
	var av *annotations.ValidationError

	switch {
	case errors.As(err, &ut):
		d.Code = diag.CodeUnsupportedType
		d.Construct = ut.Source
	case errors.As(err, &oc):
		d.Code = diag.CodeOwnershipConflict
		d.Construct = oc.Binding
	case errors.As(err, &uc):
		d.Code = diag.CodeUnmappedCall
		d.Construct = uc.Call
	case errors.As(err, &av):
		d.Code = diag.CodeAnnotationInvalid
	default:
		d.Code = diag.CodeUnsupportedType
	}
	return d
}
