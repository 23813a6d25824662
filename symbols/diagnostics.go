package symbols

import "fmt"

// DiagnosticSeverity describes how much a diagnostic affects the completeness of the model.
type DiagnosticSeverity string

const (
	// DiagnosticSeverityWarning marks an entity that was skipped or could not be fully resolved.
	DiagnosticSeverityWarning DiagnosticSeverity = "warning"
	// DiagnosticSeverityInfo marks a correction that was applied successfully.
	DiagnosticSeverityInfo DiagnosticSeverity = "info"
)

// Diagnostic records a non-fatal problem encountered while building the model.
type Diagnostic struct {
	Severity DiagnosticSeverity

	// Source is the source name the diagnostic relates to.
	Source string

	// Contract is the contract name the diagnostic relates to, if any.
	Contract string

	Message string
}

// String returns the diagnostic as `severity: source:contract: message`.
func (d Diagnostic) String() string {
	location := d.Source
	if d.Contract != "" {
		location += ":" + d.Contract
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, location, d.Message)
}

// Diagnostics is the list of diagnostics accumulated during a build.
type Diagnostics []Diagnostic

// Warnings returns only the warning-level diagnostics.
func (d Diagnostics) Warnings() Diagnostics {
	warnings := make(Diagnostics, 0)
	for _, diagnostic := range d {
		if diagnostic.Severity == DiagnosticSeverityWarning {
			warnings = append(warnings, diagnostic)
		}
	}
	return warnings
}
