package model

import (
	"strings"
	"testing"
	"time"
)

// ============================================================================
// Cell Tests
// ============================================================================

func TestCellIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want bool
	}{
		{"zero value", Cell{}, true},
		{"text", NewText("hello"), false},
		{"whitespace text", NewText("   "), true},
		{"tab and newline text", NewText("\t\n"), true},
		{"number zero", NewNumber(0), false},
		{"number", NewNumber(3.5), false},
		{"bool false", NewBool(false), false},
		{"date", NewDate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCellString(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"empty", Cell{}, ""},
		{"text", NewText("Name"), "Name"},
		{"integral number", NewNumber(42), "42"},
		{"decimal number", NewNumber(3.14), "3.14"},
		{"bool true", NewBool(true), "TRUE"},
		{"bool false", NewBool(false), "FALSE"},
		{"date", NewDate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), "2024-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Kind
	}{
		{"empty", "", KindEmpty},
		{"whitespace", "   ", KindEmpty},
		{"integer", "42", KindNumber},
		{"float", "3.14", KindNumber},
		{"negative", "-7", KindNumber},
		{"bool upper", "TRUE", KindBool},
		{"bool lower", "false", KindBool},
		{"text", "Employee Name", KindText},
		{"mixed alphanumeric", "42a", KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCell(tt.raw).Kind; got != tt.want {
				t.Errorf("ParseCell(%q).Kind = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseCellPreservesText(t *testing.T) {
	c := ParseCell("007")
	if c.Kind != KindNumber {
		t.Fatalf("Kind = %v, want KindNumber", c.Kind)
	}
	if c.String() != "007" {
		t.Errorf("String() = %q, want %q", c.String(), "007")
	}
}

// ============================================================================
// Row Tests
// ============================================================================

func TestRowIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want bool
	}{
		{"nil row", nil, true},
		{"zero-length row", Row{}, true},
		{"all empty cells", Row{{}, {}, {}}, true},
		{"whitespace cells", Row{NewText(" "), NewText("\t")}, true},
		{"one non-empty cell", Row{{}, NewText("x"), {}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRowFromStrings(t *testing.T) {
	row := RowFromStrings([]string{"Name", "42", ""})
	if len(row) != 3 {
		t.Fatalf("len = %d, want 3", len(row))
	}
	if row[0].Kind != KindText || row[1].Kind != KindNumber || row[2].Kind != KindEmpty {
		t.Errorf("kinds = %v, %v, %v, want text, number, empty", row[0].Kind, row[1].Kind, row[2].Kind)
	}
	if got := row.Strings(); got[0] != "Name" || got[1] != "42" || got[2] != "" {
		t.Errorf("Strings() = %v", got)
	}
}

// ============================================================================
// Table Tests
// ============================================================================

func testTable() *Table {
	return NewTable(1, 3,
		RowFromStrings([]string{"DOB", "Salary"}),
		[]Row{
			RowFromStrings([]string{"1990-01-01", "50000"}),
			RowFromStrings([]string{"1985-06-15", "60000"}),
		})
}

func TestTableCounts(t *testing.T) {
	table := testTable()
	if table.RowCount() != 2 {
		t.Errorf("RowCount() = %d, want 2", table.RowCount())
	}
	if table.ColCount() != 2 {
		t.Errorf("ColCount() = %d, want 2", table.ColCount())
	}
}

func TestTableLabels(t *testing.T) {
	table := testTable()
	labels := table.Labels()
	if len(labels) != 2 || labels[0] != "DOB" || labels[1] != "Salary" {
		t.Errorf("Labels() = %v, want [DOB Salary]", labels)
	}
}

func TestTableRenameColumns(t *testing.T) {
	table := testTable()
	n := table.RenameColumns(Mapping{"DOB": "date_of_birth"})
	if n != 1 {
		t.Errorf("RenameColumns() = %d, want 1", n)
	}
	labels := table.Labels()
	if labels[0] != "date_of_birth" || labels[1] != "Salary" {
		t.Errorf("Labels() after rename = %v", labels)
	}
}

func TestTableRenameColumnsEmptyMapping(t *testing.T) {
	table := testTable()
	before := table.Labels()
	if n := table.RenameColumns(Mapping{}); n != 0 {
		t.Errorf("RenameColumns(empty) = %d, want 0", n)
	}
	after := table.Labels()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("label %d changed: %q -> %q", i, before[i], after[i])
		}
	}
}

func TestTableRenameColumnsAllowsDuplicates(t *testing.T) {
	table := NewTable(1, 4,
		RowFromStrings([]string{"DOB", "Birth Date"}),
		[]Row{
			RowFromStrings([]string{"a", "b"}),
			RowFromStrings([]string{"c", "d"}),
		})
	n := table.RenameColumns(Mapping{
		"DOB":        "date_of_birth",
		"Birth Date": "date_of_birth",
	})
	if n != 2 {
		t.Errorf("RenameColumns() = %d, want 2", n)
	}
	labels := table.Labels()
	if labels[0] != "date_of_birth" || labels[1] != "date_of_birth" {
		t.Errorf("Labels() = %v, want both date_of_birth", labels)
	}
}

func TestTableToMarkdown(t *testing.T) {
	table := testTable()
	md := table.ToMarkdown()

	lines := strings.Split(strings.TrimRight(md, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), md)
	}
	if lines[0] != "| DOB | Salary |" {
		t.Errorf("header line = %q", lines[0])
	}
	if lines[1] != "|---|---|" {
		t.Errorf("separator line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "1990-01-01") {
		t.Errorf("first data line = %q", lines[2])
	}
}

func TestTableToCSV(t *testing.T) {
	table := NewTable(1, 3,
		RowFromStrings([]string{"Name", "Notes"}),
		[]Row{
			{NewText("Smith, Jane"), NewText(`said "hi"`)},
			{NewText("Brown"), NewText("ok")},
		})
	csv := table.ToCSV()

	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), csv)
	}
	if lines[0] != "Name,Notes" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != `"Smith, Jane","said ""hi"""` {
		t.Errorf("quoted line = %q", lines[1])
	}
}

// ============================================================================
// Mapping Tests
// ============================================================================

func TestMappingCanonical(t *testing.T) {
	m := Mapping{"DOB": "date_of_birth"}

	if c, ok := m.Canonical("DOB"); !ok || c != "date_of_birth" {
		t.Errorf("Canonical(DOB) = %q, %v", c, ok)
	}
	if _, ok := m.Canonical("Salary"); ok {
		t.Error("Canonical(Salary) should not be present")
	}
}

func TestMappingGroups(t *testing.T) {
	m := Mapping{
		"DOB":           "date_of_birth",
		"Birth Date":    "date_of_birth",
		"Date of Birth": "date_of_birth",
		"EE Only":       "employee_only",
	}

	groups := m.Groups()
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	dob := groups["date_of_birth"]
	if len(dob) != 3 {
		t.Fatalf("date_of_birth group has %d labels, want 3", len(dob))
	}
	// Sorted order.
	if dob[0] != "Birth Date" || dob[1] != "DOB" || dob[2] != "Date of Birth" {
		t.Errorf("group order = %v", dob)
	}
}
