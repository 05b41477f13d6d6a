package unitable

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/tsawler/unitable/match"
	"github.com/tsawler/unitable/model"
)

const staffCSV = `Name,DOB
Alice,1990-01-05
Bob,1985-11-30
`

const payrollCSV = `Name,Date of Birth,Salary
Carol,1971-03-12,50000
Dan,1969-07-22,62000
`

func TestAnalyzeDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_payroll.csv", payrollCSV)
	writeFile(t, dir, "a_staff.csv", staffCSV)
	writeFile(t, dir, "notes.txt", "not a table\n")

	analysis, err := AnalyzeDirectory(context.Background(), dir, "*.csv")
	if err != nil {
		t.Fatalf("AnalyzeDirectory() error: %v", err)
	}

	if analysis.RunID == "" {
		t.Error("expected a run ID")
	}
	if analysis.Dir != dir || analysis.Pattern != "*.csv" {
		t.Errorf("Dir/Pattern = %q/%q", analysis.Dir, analysis.Pattern)
	}
	if analysis.Duration <= 0 {
		t.Error("expected positive duration")
	}

	// Sources are reported in sorted path order regardless of completion order.
	if len(analysis.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(analysis.Sources))
	}
	if !strings.HasSuffix(analysis.Sources[0].Name, "a_staff.csv") {
		t.Errorf("first source = %q", analysis.Sources[0].Name)
	}
	if !strings.HasSuffix(analysis.Sources[1].Name, "b_payroll.csv") {
		t.Errorf("second source = %q", analysis.Sources[1].Name)
	}

	if len(analysis.Tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(analysis.Tables))
	}
	if !strings.HasSuffix(analysis.Tables[0].Source, "a_staff.csv") {
		t.Errorf("tables out of discovery order: %q first", analysis.Tables[0].Source)
	}
}

func TestAnalyzeDirectoryDefaultPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_staff.csv", staffCSV)

	analysis, err := AnalyzeDirectory(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("AnalyzeDirectory() error: %v", err)
	}

	// The default pattern only matches workbooks.
	if analysis.Pattern != "*.xlsx" {
		t.Errorf("Pattern = %q, want %q", analysis.Pattern, "*.xlsx")
	}
	if len(analysis.Sources) != 0 {
		t.Errorf("got %d sources, want 0", len(analysis.Sources))
	}
	if len(analysis.Mapping) != 0 {
		t.Errorf("Mapping = %v, want empty", analysis.Mapping)
	}
}

func TestAnalyzeFilesSkipsFailedSource(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "a_staff.csv", staffCSV)

	analysis, err := AnalyzeFiles(context.Background(), []string{good, "missing.csv"})
	if err != nil {
		t.Fatalf("AnalyzeFiles() error: %v", err)
	}

	if len(analysis.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(analysis.Sources))
	}
	if analysis.Sources[0].Err != nil {
		t.Errorf("good source reported error: %v", analysis.Sources[0].Err)
	}
	if analysis.Sources[1].Err == nil {
		t.Error("missing source should report an error")
	}
	if len(analysis.Tables) != 1 {
		t.Errorf("got %d tables, want 1", len(analysis.Tables))
	}

	found := false
	for _, w := range analysis.Warnings {
		if strings.Contains(w.Message, "skipped") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a skip warning, got %v", analysis.Warnings)
	}
}

func TestAnalyzeCanonicalizesAcrossSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_staff.csv", staffCSV)
	writeFile(t, dir, "b_payroll.csv", payrollCSV)

	var calls int
	var gotLabels []string
	matcher := match.Func(func(ctx context.Context, labels []string) (model.Mapping, error) {
		calls++
		gotLabels = labels
		return model.Mapping{
			"DOB":           "date_of_birth",
			"Date of Birth": "date_of_birth",
		}, nil
	})

	analysis, err := AnalyzeDirectory(context.Background(), dir, "*.csv", WithMatcher(matcher))
	if err != nil {
		t.Fatalf("AnalyzeDirectory() error: %v", err)
	}

	// One call covering the labels of every source.
	if calls != 1 {
		t.Errorf("matcher called %d times, want 1", calls)
	}
	joined := strings.Join(gotLabels, "|")
	for _, label := range []string{"DOB", "Date of Birth", "Name", "Salary"} {
		if !strings.Contains(joined, label) {
			t.Errorf("matcher labels missing %q: %v", label, gotLabels)
		}
	}

	// Both sources' headers are renamed.
	for _, tbl := range analysis.Tables {
		for _, label := range tbl.Labels() {
			if label == "DOB" || label == "Date of Birth" {
				t.Errorf("table %s still has raw label %q", tbl.Source, label)
			}
		}
	}
	if analysis.Renamed != 2 {
		t.Errorf("Renamed = %d, want 2", analysis.Renamed)
	}
	if len(analysis.Mapping.Groups()["date_of_birth"]) != 2 {
		t.Errorf("Groups() = %v", analysis.Mapping.Groups())
	}
}

func TestAnalyzeMatcherFailureSoftFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_staff.csv", staffCSV)

	matcher := match.Func(func(ctx context.Context, labels []string) (model.Mapping, error) {
		return nil, fmt.Errorf("rate limited")
	})

	analysis, err := AnalyzeDirectory(context.Background(), dir, "*.csv", WithMatcher(matcher))
	if err != nil {
		t.Fatalf("matcher failure should not fail analysis: %v", err)
	}

	if len(analysis.Mapping) != 0 {
		t.Errorf("Mapping = %v, want empty", analysis.Mapping)
	}
	if analysis.Renamed != 0 {
		t.Errorf("Renamed = %d, want 0", analysis.Renamed)
	}
	if len(analysis.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(analysis.Tables))
	}
	if got := analysis.Tables[0].Labels()[1]; got != "DOB" {
		t.Errorf("header = %q, want unchanged %q", got, "DOB")
	}

	found := false
	for _, w := range analysis.Warnings {
		if strings.Contains(w.Message, "column matching failed") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a matching warning, got %v", analysis.Warnings)
	}
}

func TestAnalyzeSources(t *testing.T) {
	sources := []Source{
		&memorySource{name: "staff", rows: grid(
			[]string{"Name", "DOB"},
			[]string{"Alice", "1990-01-05"},
			[]string{"Bob", "1985-11-30"},
		)},
		&memorySource{name: "payroll", rows: grid(
			[]string{"Name", "Salary"},
			[]string{"Carol", "50000"},
			[]string{"Dan", "62000"},
		)},
	}

	analysis, err := AnalyzeSources(context.Background(), sources)
	if err != nil {
		t.Fatalf("AnalyzeSources() error: %v", err)
	}

	if len(analysis.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(analysis.Sources))
	}
	if analysis.Sources[0].Name != "staff" || analysis.Sources[1].Name != "payroll" {
		t.Errorf("sources out of order: %v", analysis.Sources)
	}
	if len(analysis.Tables) != 2 {
		t.Errorf("got %d tables, want 2", len(analysis.Tables))
	}
}

func TestAnalyzeParallelKeepsDiscoveryOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("file%d.csv", i)
		content := fmt.Sprintf("Col%d,Val\na,1\nb,2\n", i)
		paths = append(paths, writeFile(t, dir, name, content))
	}

	analysis, err := AnalyzeFiles(context.Background(), paths, WithParallelism(3))
	if err != nil {
		t.Fatalf("AnalyzeFiles() error: %v", err)
	}

	if len(analysis.Tables) != 8 {
		t.Fatalf("got %d tables, want 8", len(analysis.Tables))
	}
	for i, tbl := range analysis.Tables {
		if want := fmt.Sprintf("Col%d", i); tbl.Labels()[0] != want {
			t.Errorf("table %d has label %q, want %q", i, tbl.Labels()[0], want)
		}
	}
}

func TestAnalyzeObserver(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_staff.csv", staffCSV)
	writeFile(t, dir, "b_payroll.csv", payrollCSV)

	var mu sync.Mutex
	counts := map[EventKind]int{}
	observer := func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		counts[ev.Kind]++
	}

	matcher := match.Func(func(ctx context.Context, labels []string) (model.Mapping, error) {
		return model.Mapping{"DOB": "date_of_birth"}, nil
	})

	_, err := AnalyzeDirectory(context.Background(), dir, "*.csv",
		WithMatcher(matcher), WithObserver(observer), WithParallelism(2))
	if err != nil {
		t.Fatalf("AnalyzeDirectory() error: %v", err)
	}

	if counts[EventSourceOpened] != 2 {
		t.Errorf("source_opened = %d, want 2", counts[EventSourceOpened])
	}
	if counts[EventTableFound] != 2 {
		t.Errorf("table_found = %d, want 2", counts[EventTableFound])
	}
	if counts[EventLabelsCollected] != 1 || counts[EventMatcherCalled] != 1 || counts[EventMappingApplied] != 1 {
		t.Errorf("cross-source events = %v", counts)
	}
}

func TestAnalyzeContextCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_staff.csv", staffCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AnalyzeDirectory(ctx, dir, "*.csv")
	if err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestRenderText(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_staff.csv", staffCSV)

	matcher := match.Func(func(ctx context.Context, labels []string) (model.Mapping, error) {
		return model.Mapping{"DOB": "date_of_birth"}, nil
	})

	analysis, err := AnalyzeDirectory(context.Background(), dir, "*.csv", WithMatcher(matcher))
	if err != nil {
		t.Fatalf("AnalyzeDirectory() error: %v", err)
	}

	out, err := analysis.Render(ReportText)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	for _, want := range []string{analysis.RunID, "a_staff.csv", "date_of_birth"} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_staff.csv", staffCSV)

	analysis, err := AnalyzeDirectory(context.Background(), dir, "*.csv")
	if err != nil {
		t.Fatalf("AnalyzeDirectory() error: %v", err)
	}

	out, err := analysis.Render(ReportMarkdown)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(out, "| Name | DOB |") {
		t.Errorf("markdown report missing table header:\n%s", out)
	}
	if !strings.Contains(out, "## Sources") {
		t.Errorf("markdown report missing sources section:\n%s", out)
	}
}

func TestRenderJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_staff.csv", staffCSV)

	analysis, err := AnalyzeDirectory(context.Background(), dir, "*.csv")
	if err != nil {
		t.Fatalf("AnalyzeDirectory() error: %v", err)
	}

	out, err := analysis.Render(ReportJSON)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	var decoded struct {
		RunID   string            `json:"run_id"`
		Mapping map[string]string `json:"mapping"`
		Tables  []struct {
			Source string     `json:"source"`
			Header []string   `json:"header"`
			Rows   [][]string `json:"rows"`
		} `json:"tables"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v\n%s", err, out)
	}
	if decoded.RunID != analysis.RunID {
		t.Errorf("run_id = %q, want %q", decoded.RunID, analysis.RunID)
	}
	if decoded.Mapping == nil {
		t.Error("mapping should render as an object, not null")
	}
	if len(decoded.Tables) != 1 || len(decoded.Tables[0].Rows) != 2 {
		t.Errorf("tables = %+v", decoded.Tables)
	}
}

func TestParseReportFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    ReportFormat
		wantErr bool
	}{
		{"text", ReportText, false},
		{"markdown", ReportMarkdown, false},
		{"md", ReportMarkdown, false},
		{"JSON", ReportJSON, false},
		{"yaml", ReportText, true},
	}

	for _, tt := range tests {
		got, err := ParseReportFormat(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseReportFormat(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseReportFormat(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
