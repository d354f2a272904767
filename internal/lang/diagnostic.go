package lang

import (
	"fmt"
	"sort"
)

// Severity is the kind of a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Icon returns the single character gutter badge for the severity.
func (s Severity) Icon() string {
	switch s {
	case SeverityError:
		return "E"
	case SeverityWarning:
		return "W"
	default:
		return "?"
	}
}

// Diagnostic is one validation issue. Line and Column are zero-based.
type Diagnostic struct {
	Severity Severity
	Line     int
	Column   int
	Message  string
}

// String formats the diagnostic with a one-based location.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Line+1, d.Column+1, d.Severity, d.Message)
}

// Symbol is a function or other named declaration reported by validation.
type Symbol struct {
	Name string
	Line int
}

// ValidationResult is the diagnostics snapshot of one parse of a document.
type ValidationResult struct {
	Functions []Symbol
	Errors    []Diagnostic
	Warnings  []Diagnostic
}

// Empty reports whether the result carries nothing at all.
func (r ValidationResult) Empty() bool {
	return len(r.Functions) == 0 && len(r.Errors) == 0 && len(r.Warnings) == 0
}

// Clone returns a deep copy of the result.
func (r ValidationResult) Clone() ValidationResult {
	out := ValidationResult{}
	if r.Functions != nil {
		out.Functions = append([]Symbol(nil), r.Functions...)
	}
	if r.Errors != nil {
		out.Errors = append([]Diagnostic(nil), r.Errors...)
	}
	if r.Warnings != nil {
		out.Warnings = append([]Diagnostic(nil), r.Warnings...)
	}
	return out
}

// DiagnosticsAt returns the errors then warnings reported on line.
func (r ValidationResult) DiagnosticsAt(line int) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Errors {
		if d.Line == line {
			out = append(out, d)
		}
	}
	for _, d := range r.Warnings {
		if d.Line == line {
			out = append(out, d)
		}
	}
	return out
}

// Lines maps every line carrying a diagnostic to its most severe severity.
func (r ValidationResult) Lines() map[int]Severity {
	lines := make(map[int]Severity)
	for _, d := range r.Warnings {
		lines[d.Line] = SeverityWarning
	}
	for _, d := range r.Errors {
		lines[d.Line] = SeverityError
	}
	return lines
}

// SortedDiagnostics returns errors and warnings ordered by position.
func (r ValidationResult) SortedDiagnostics() []Diagnostic {
	out := make([]Diagnostic, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out
}
