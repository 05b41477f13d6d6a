package model

import (
	"strings"
)

// Table represents one blank-row-delimited region of a grid.
//
// Header is the first row of the contiguous non-empty block; its grid index
// is StartRow-1. Data covers grid rows [StartRow, EndRow) and always contains
// at least the segmenter's minimum number of rows (two by default). A Table
// is created once by the segmenter and is immutable afterwards except for
// header rewriting via RenameColumns.
type Table struct {
	Source   string // name of the originating grid source, set by the orchestrator
	StartRow int
	EndRow   int
	Header   Row
	Data     []Row
}

// NewTable creates a table region. The segmenter is the only intended caller.
func NewTable(startRow, endRow int, header Row, data []Row) *Table {
	return &Table{
		StartRow: startRow,
		EndRow:   endRow,
		Header:   header,
		Data:     data,
	}
}

// RowCount returns the number of data rows, excluding the header.
func (t *Table) RowCount() int {
	return len(t.Data)
}

// ColCount returns the number of header columns.
func (t *Table) ColCount() int {
	return len(t.Header)
}

// Labels returns the textual form of every header cell, in column order.
func (t *Table) Labels() []string {
	return t.Header.Strings()
}

// RenameColumns rewrites header labels present in the mapping to their
// canonical form and returns the number of labels replaced. Labels absent
// from the mapping are left untouched; duplicates a rename may introduce
// are allowed and not deduplicated.
func (t *Table) RenameColumns(m Mapping) int {
	renamed := 0
	for i, cell := range t.Header {
		if canonical, ok := m[cell.String()]; ok {
			t.Header[i] = NewText(canonical)
			renamed++
		}
	}
	return renamed
}

// ToMarkdown converts the table to markdown format.
func (t *Table) ToMarkdown() string {
	if len(t.Header) == 0 {
		return ""
	}

	var sb strings.Builder

	writeRow := func(row Row) {
		for j, cell := range row {
			sb.WriteString("| ")
			sb.WriteString(strings.ReplaceAll(cell.String(), "\n", " "))
			sb.WriteString(" ")
			if j == len(row)-1 {
				sb.WriteString("|")
			}
		}
		sb.WriteString("\n")
	}

	writeRow(t.Header)

	for j := range t.Header {
		sb.WriteString("|---")
		if j == len(t.Header)-1 {
			sb.WriteString("|")
		}
	}
	sb.WriteString("\n")

	for _, row := range t.Data {
		writeRow(row)
	}

	return sb.String()
}

// ToCSV converts the table to CSV format, header row first.
func (t *Table) ToCSV() string {
	var sb strings.Builder

	writeRow := func(row Row) {
		for j, cell := range row {
			text := cell.String()
			if strings.ContainsAny(text, ",\"\n") {
				text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
			}
			sb.WriteString(text)
			if j < len(row)-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}

	writeRow(t.Header)
	for _, row := range t.Data {
		writeRow(row)
	}

	return sb.String()
}
