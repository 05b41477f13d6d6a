package unitable

import (
	"fmt"
	"strings"
)

// Warning describes a non-fatal issue encountered during processing.
// Operations that return warnings still produced usable results; the
// warnings indicate where those results may be incomplete.
type Warning struct {
	// Source names the input the warning relates to, if any.
	Source string

	// Message describes the issue.
	Message string
}

// String returns the warning as a single line.
func (w Warning) String() string {
	if w.Source != "" {
		return fmt.Sprintf("%s: %s", w.Source, w.Message)
	}
	return w.Message
}

// FormatWarnings formats warnings as a newline-separated string.
// Returns an empty string when there are no warnings.
//
// Example:
//
//	tables, warnings, err := unitable.Open("report.xlsx").Tables()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", unitable.FormatWarnings(warnings))
//	}
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}

	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
