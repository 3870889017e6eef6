package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/mesh-intelligence/tagindex/internal/scanner"
)

// diagnosticPrinter renders scanner diagnostics as
// "pos: severity: subject: message", coloring the severity.
type diagnosticPrinter struct {
	w      io.Writer
	colors map[scanner.Severity]*color.Color
}

func newDiagnosticPrinter(w io.Writer, noColor bool) *diagnosticPrinter {
	p := &diagnosticPrinter{
		w: w,
		colors: map[scanner.Severity]*color.Color{
			scanner.SeverityError:   color.New(color.FgRed, color.Bold),
			scanner.SeverityWarning: color.New(color.FgYellow, color.Bold),
			scanner.SeverityNote:    color.New(color.FgCyan),
		},
	}
	if noColor {
		for _, c := range p.colors {
			c.DisableColor()
		}
	}
	return p
}

// Report implements scanner.Reporter.
func (p *diagnosticPrinter) Report(d scanner.Diagnostic) {
	if d.Pos.IsValid() {
		fmt.Fprintf(p.w, "%s: ", d.Pos)
	}
	p.colors[d.Severity].Fprintf(p.w, "%s:", d.Severity)
	if d.Subject != "" {
		fmt.Fprintf(p.w, " %s:", d.Subject)
	}
	fmt.Fprintf(p.w, " %s\n", d.Message)
}

// teeReporter forwards each diagnostic to every reporter in order.
type teeReporter []scanner.Reporter

func (t teeReporter) Report(d scanner.Diagnostic) {
	for _, r := range t {
		r.Report(d)
	}
}
