package annotations

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ferrule-dev/ferrule/internal/ir"
)

// whenEnv is the environment a directive condition evaluates against.
// Only derived function properties are visible; conditions cannot reach
// into the IR or the config.
func whenEnv(props ir.FunctionProperties) map[string]any {
	return map[string]any{
		"pure":        props.Pure,
		"terminates":  props.Termination == ir.ConfidenceProven,
		"panic_free":  props.PanicFree == ir.ConfidenceProven,
		"termination": props.Termination.String(),
	}
}

// CompileWhen compiles a directive condition. The condition must evaluate
// to a boolean.
func CompileWhen(src string) (*vm.Program, error) {
	return expr.Compile(src, expr.Env(whenEnv(ir.FunctionProperties{})), expr.AsBool())
}

// EvalWhen reports whether the condition holds for the given derived
// properties. An empty condition always holds.
func EvalWhen(src string, props ir.FunctionProperties) (bool, error) {
	if src == "" {
		return true, nil
	}
	prog, err := CompileWhen(src)
	if err != nil {
		return false, fmt.Errorf("compile when condition %q: %w", src, err)
	}
	out, err := expr.Run(prog, whenEnv(props))
	if err != nil {
		return false, fmt.Errorf("eval when condition %q: %w", src, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("when condition %q: result is %T, want bool", src, out)
	}
	return ok, nil
}
