package htmldoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const twoTableHTML = `<!DOCTYPE html>
<html>
<head><title>Report</title><style>td { padding: 2px; }</style></head>
<body>
<h1>Staff</h1>
<table>
<thead><tr><th>Name</th><th>DOB</th></tr></thead>
<tbody>
<tr><td>Alice</td><td>1990-01-05</td></tr>
<tr><td>Bob</td><td>1985-11-30</td></tr>
</tbody>
</table>
<p>Second block.</p>
<table>
<tr><th>Dept</th><th>Headcount</th><th>Budget</th></tr>
<tr><td>Sales</td><td>12</td><td>30000</td></tr>
<tr><td>Ops</td><td>7</td><td>18500</td></tr>
</table>
</body>
</html>`

func writeFixture(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "report.html")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestOpenAndRows(t *testing.T) {
	path := writeFixture(t, twoTableHTML)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer r.Close()

	if r.Name() != path {
		t.Errorf("Name() = %q, want %q", r.Name(), path)
	}

	rows, err := r.Rows()
	if err != nil {
		t.Fatalf("Rows() error: %v", err)
	}

	// 3 rows from the first table, 1 blank separator, 3 from the second.
	if len(rows) != 7 {
		t.Fatalf("got %d rows, want 7", len(rows))
	}
	if !rows[3].IsEmpty() {
		t.Errorf("row 3 should be the blank separator, got %v", rows[3].Strings())
	}
	if got := rows[0].Strings(); got[0] != "Name" || got[1] != "DOB" {
		t.Errorf("first header = %v, want [Name DOB ...]", got)
	}
	if got := rows[4].Strings(); got[0] != "Dept" || got[2] != "Budget" {
		t.Errorf("second header = %v, want [Dept Headcount Budget]", got)
	}
}

func TestRowsPadsToWidestTable(t *testing.T) {
	path := writeFixture(t, twoTableHTML)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer r.Close()

	rows, err := r.Rows()
	if err != nil {
		t.Fatalf("Rows() error: %v", err)
	}

	// The second table has three columns, so every emitted row is padded
	// to width three except the zero-length separator.
	for i, row := range rows {
		if i == 3 {
			continue
		}
		if len(row) != 3 {
			t.Errorf("row %d has width %d, want 3", i, len(row))
		}
	}
	// Padding cells on the two-column table are empty.
	if !rows[1][2].IsEmpty() {
		t.Errorf("padding cell should be empty, got %q", rows[1][2].String())
	}
}

func TestRowsTypesCells(t *testing.T) {
	path := writeFixture(t, twoTableHTML)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer r.Close()

	rows, err := r.Rows()
	if err != nil {
		t.Fatalf("Rows() error: %v", err)
	}

	cell := rows[5][1] // Sales headcount
	if cell.Number != 12 {
		t.Errorf("headcount Number = %v, want 12", cell.Number)
	}
	if cell.String() != "12" {
		t.Errorf("headcount String() = %q, want %q", cell.String(), "12")
	}
}

func TestRowsSkipsScriptContent(t *testing.T) {
	doc := `<table>
<tr><th>Label</th></tr>
<tr><td>visible<script>hidden()</script></td></tr>
<tr><td>also visible</td></tr>
</table>`

	r, err := OpenReader(strings.NewReader(doc), "inline.html")
	if err != nil {
		t.Fatalf("OpenReader() error: %v", err)
	}

	rows, err := r.Rows()
	if err != nil {
		t.Fatalf("Rows() error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if got := rows[1][0].String(); got != "visible" {
		t.Errorf("cell = %q, want %q", got, "visible")
	}
}

func TestRowsNestedTableNotDuplicated(t *testing.T) {
	doc := `<table>
<tr><th>Outer</th></tr>
<tr><td><table><tr><td>Inner</td></tr></table></td></tr>
</table>`

	r, err := OpenReader(strings.NewReader(doc), "nested.html")
	if err != nil {
		t.Fatalf("OpenReader() error: %v", err)
	}

	rows, err := r.Rows()
	if err != nil {
		t.Fatalf("Rows() error: %v", err)
	}

	// The outer table is collected whole and the walk does not descend
	// into it again, so the inner table appears once, as cell text.
	inner := 0
	for _, row := range rows {
		for _, cell := range row {
			if strings.Contains(cell.String(), "Inner") {
				inner++
			}
		}
	}
	if inner != 1 {
		t.Errorf("inner table text appears %d times, want 1", inner)
	}
}

func TestRowsNoTables(t *testing.T) {
	r, err := OpenReader(strings.NewReader("<p>no tables here</p>"), "empty.html")
	if err != nil {
		t.Fatalf("OpenReader() error: %v", err)
	}

	rows, err := r.Rows()
	if err != nil {
		t.Fatalf("Rows() error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestRowsBreakTagBecomesNewline(t *testing.T) {
	doc := `<table><tr><td>line one<br>line two</td></tr><tr><td>x</td></tr><tr><td>y</td></tr></table>`

	r, err := OpenReader(strings.NewReader(doc), "br.html")
	if err != nil {
		t.Fatalf("OpenReader() error: %v", err)
	}

	rows, err := r.Rows()
	if err != nil {
		t.Fatalf("Rows() error: %v", err)
	}
	if got := rows[0][0].String(); got != "line one\nline two" {
		t.Errorf("cell = %q, want %q", got, "line one\nline two")
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.html"))
	if err == nil {
		t.Fatal("expected error opening missing file")
	}
}
