package unitable

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// ReportFormat selects the output format of Analysis.Render.
type ReportFormat int

const (
	// ReportText renders a human-readable report. Color is applied when
	// the output is a terminal.
	ReportText ReportFormat = iota
	// ReportMarkdown renders the report as Markdown, with each table as a
	// Markdown table.
	ReportMarkdown
	// ReportJSON renders the report as a JSON document.
	ReportJSON
)

// ParseReportFormat converts a format name ("text", "markdown", or "json")
// to a ReportFormat.
func ParseReportFormat(name string) (ReportFormat, error) {
	switch strings.ToLower(name) {
	case "text":
		return ReportText, nil
	case "markdown", "md":
		return ReportMarkdown, nil
	case "json":
		return ReportJSON, nil
	default:
		return ReportText, fmt.Errorf("unknown report format %q", name)
	}
}

// Render formats the analysis for display.
//
// Example:
//
//	out, err := analysis.Render(unitable.ReportMarkdown)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out)
func (a *Analysis) Render(f ReportFormat) (string, error) {
	switch f {
	case ReportText:
		return a.renderText(), nil
	case ReportMarkdown:
		return a.renderMarkdown(), nil
	case ReportJSON:
		return a.renderJSON()
	default:
		return "", fmt.Errorf("unknown report format %d", f)
	}
}

func (a *Analysis) renderText() string {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.Bold)
	skip := color.New(color.FgRed)
	warn := color.New(color.FgYellow)

	var sb strings.Builder

	sb.WriteString(title.Sprintf("Analysis %s", a.RunID))
	sb.WriteString("\n")
	if a.Dir != "" {
		fmt.Fprintf(&sb, "%s %s (pattern %s)\n", label.Sprint("Scanned:"), a.Dir, a.Pattern)
	}
	fmt.Fprintf(&sb, "%s %s\n", label.Sprint("Duration:"), a.Duration.Round(time.Millisecond))

	sb.WriteString("\n")
	sb.WriteString(label.Sprint("Sources:"))
	sb.WriteString("\n")
	for _, src := range a.Sources {
		if src.Err != nil {
			fmt.Fprintf(&sb, "  %s %s: %v\n", skip.Sprint("skipped"), src.Name, src.Err)
			continue
		}
		fmt.Fprintf(&sb, "  %s (%s): %d tables\n", src.Name, src.Format, src.Tables)
	}

	sb.WriteString("\n")
	sb.WriteString(label.Sprint("Tables:"))
	sb.WriteString("\n")
	for _, tbl := range a.Tables {
		fmt.Fprintf(&sb, "  %s rows %d-%d: %d columns, %d data rows\n",
			tbl.Source, tbl.StartRow, tbl.EndRow, tbl.ColCount(), tbl.RowCount())
	}

	if len(a.Mapping) > 0 {
		sb.WriteString("\n")
		sb.WriteString(label.Sprint("Canonical columns:"))
		sb.WriteString("\n")
		groups := a.Mapping.Groups()
		for _, canonical := range sortedKeys(groups) {
			fmt.Fprintf(&sb, "  %s <- %s\n", canonical, strings.Join(groups[canonical], ", "))
		}
		fmt.Fprintf(&sb, "%s %d\n", label.Sprint("Headers renamed:"), a.Renamed)
	}

	if len(a.Warnings) > 0 {
		sb.WriteString("\n")
		sb.WriteString(warn.Sprint("Warnings:"))
		sb.WriteString("\n")
		for _, w := range a.Warnings {
			fmt.Fprintf(&sb, "  %s\n", w.String())
		}
	}

	return sb.String()
}

func (a *Analysis) renderMarkdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Analysis %s\n\n", a.RunID)
	if a.Dir != "" {
		fmt.Fprintf(&sb, "Scanned `%s` with pattern `%s`.\n\n", a.Dir, a.Pattern)
	}

	sb.WriteString("## Sources\n\n")
	sb.WriteString("| Source | Format | Tables | Status |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, src := range a.Sources {
		status := "ok"
		if src.Err != nil {
			status = fmt.Sprintf("skipped: %v", src.Err)
		}
		fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n", src.Name, src.Format, src.Tables, status)
	}
	sb.WriteString("\n")

	for _, tbl := range a.Tables {
		fmt.Fprintf(&sb, "## %s rows %d-%d\n\n", tbl.Source, tbl.StartRow, tbl.EndRow)
		sb.WriteString(tbl.ToMarkdown())
		sb.WriteString("\n")
	}

	if len(a.Mapping) > 0 {
		sb.WriteString("## Canonical columns\n\n")
		sb.WriteString("| Canonical | Original labels |\n")
		sb.WriteString("|---|---|\n")
		groups := a.Mapping.Groups()
		for _, canonical := range sortedKeys(groups) {
			fmt.Fprintf(&sb, "| %s | %s |\n", canonical, strings.Join(groups[canonical], ", "))
		}
		sb.WriteString("\n")
	}

	if len(a.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range a.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w.String())
		}
	}

	return sb.String()
}

// JSON view types. Tables are flattened to strings so the output is stable
// and consumable without knowledge of the cell model.
type analysisJSON struct {
	RunID    string            `json:"run_id"`
	Dir      string            `json:"dir,omitempty"`
	Pattern  string            `json:"pattern,omitempty"`
	Duration string            `json:"duration"`
	Sources  []sourceJSON      `json:"sources"`
	Tables   []tableJSON       `json:"tables"`
	Mapping  map[string]string `json:"mapping"`
	Renamed  int               `json:"renamed"`
	Warnings []string          `json:"warnings,omitempty"`
}

type sourceJSON struct {
	Name   string `json:"name"`
	Format string `json:"format,omitempty"`
	Tables int    `json:"tables"`
	Error  string `json:"error,omitempty"`
}

type tableJSON struct {
	Source   string     `json:"source"`
	StartRow int        `json:"start_row"`
	EndRow   int        `json:"end_row"`
	Header   []string   `json:"header"`
	Rows     [][]string `json:"rows"`
}

func (a *Analysis) renderJSON() (string, error) {
	out := analysisJSON{
		RunID:    a.RunID,
		Dir:      a.Dir,
		Pattern:  a.Pattern,
		Duration: a.Duration.String(),
		Sources:  make([]sourceJSON, 0, len(a.Sources)),
		Tables:   make([]tableJSON, 0, len(a.Tables)),
		Mapping:  a.Mapping,
		Renamed:  a.Renamed,
	}
	if out.Mapping == nil {
		out.Mapping = map[string]string{}
	}

	for _, src := range a.Sources {
		sj := sourceJSON{Name: src.Name, Format: src.Format, Tables: src.Tables}
		if src.Err != nil {
			sj.Error = src.Err.Error()
		}
		out.Sources = append(out.Sources, sj)
	}

	for _, tbl := range a.Tables {
		tj := tableJSON{
			Source:   tbl.Source,
			StartRow: tbl.StartRow,
			EndRow:   tbl.EndRow,
			Header:   tbl.Header.Strings(),
			Rows:     make([][]string, 0, len(tbl.Data)),
		}
		for _, row := range tbl.Data {
			tj.Rows = append(tj.Rows, row.Strings())
		}
		out.Tables = append(out.Tables, tj)
	}

	for _, w := range a.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	return string(data), nil
}

// sortedKeys returns the keys of m in sorted order.
func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
