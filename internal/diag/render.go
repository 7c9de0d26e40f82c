package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Renderer writes diagnostics as one line each, colorized when the
// destination is a terminal.
type Renderer struct {
	out      io.Writer
	colorize bool

	severityColor map[Severity]func(format string, a ...any) string
}

// NewRenderer auto-detects whether out is a terminal.
func NewRenderer(out io.Writer) *Renderer {
	colorize := false
	if f, ok := out.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd())
	}
	return NewRendererColor(out, colorize)
}

// NewRendererColor forces color on or off.
func NewRendererColor(out io.Writer, colorize bool) *Renderer {
	return &Renderer{
		out:      out,
		colorize: colorize,
		severityColor: map[Severity]func(string, ...any) string{
			Error:   color.RedString,
			Warning: color.YellowString,
			Info:    color.CyanString,
		},
	}
}

// Render writes every diagnostic in the given order.
func (r *Renderer) Render(diags []Diagnostic) error {
	for _, d := range diags {
		head := fmt.Sprintf("%s[%s]", d.Severity, d.Code)
		if r.colorize {
			head = r.severityColor[d.Severity]("%s", head)
		}
		line := fmt.Sprintf("%s %s: %s", head, d.Scope, d.Message)
		if d.Construct != "" {
			line += fmt.Sprintf(" (%s)", d.Construct)
		}
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return err
		}
	}
	return nil
}
