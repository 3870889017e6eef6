package scanner

import (
	"fmt"
	"go/token"
)

// Severity grades a diagnostic.
type Severity int

// Diagnostic severities.
const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

// String returns "note", "warning" or "error".
func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// Diagnostic is one message raised while scanning. Pos is the zero position
// when the message has no source location, as for partition I/O failures.
type Diagnostic struct {
	Severity Severity
	Pos      token.Position
	Subject  string // marker name or element identity
	Message  string
}

// String renders the diagnostic in compiler style.
func (d Diagnostic) String() string {
	prefix := ""
	if d.Pos.IsValid() {
		prefix = d.Pos.String() + ": "
	}
	if d.Subject == "" {
		return fmt.Sprintf("%s%s: %s", prefix, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s%s: %s: %s", prefix, d.Severity, d.Subject, d.Message)
}

// Reporter receives diagnostics as they are raised.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

// Report implements Reporter.
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Collector keeps every diagnostic in order.
type Collector struct {
	Diagnostics []Diagnostic
}

// Report implements Reporter.
func (c *Collector) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// HasErrors reports whether any error-level diagnostic was collected.
func (c *Collector) HasErrors() bool {
	for _, d := range c.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-level diagnostics.
func (c *Collector) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Diagnostics {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}
