package model

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies the scalar type held by a Cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindBool
	KindDate
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Cell is one scalar grid value. The zero value is the empty cell.
//
// Text holds the textual form as it appeared in the source when one is
// available; String falls back to rendering the typed value otherwise.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Bool   bool
	Time   time.Time
}

// NewText creates a text cell.
func NewText(s string) Cell {
	return Cell{Kind: KindText, Text: s}
}

// NewNumber creates a number cell.
func NewNumber(f float64) Cell {
	return Cell{Kind: KindNumber, Number: f}
}

// NewBool creates a boolean cell.
func NewBool(b bool) Cell {
	return Cell{Kind: KindBool, Bool: b}
}

// NewDate creates a date cell.
func NewDate(t time.Time) Cell {
	return Cell{Kind: KindDate, Time: t}
}

// ParseCell converts raw source text into a typed cell. Whitespace-only text
// becomes the empty cell, numeric text a number cell, TRUE/FALSE a boolean
// cell, and anything else a text cell. The original text is preserved.
func ParseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Kind: KindNumber, Text: raw, Number: f}
	}
	switch strings.ToUpper(trimmed) {
	case "TRUE":
		return Cell{Kind: KindBool, Text: raw, Bool: true}
	case "FALSE":
		return Cell{Kind: KindBool, Text: raw, Bool: false}
	}
	return Cell{Kind: KindText, Text: raw}
}

// String returns the textual form of the cell. The source text wins when
// present; typed values render in a minimal canonical form otherwise.
func (c Cell) String() string {
	if c.Text != "" {
		return c.Text
	}
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindDate:
		return c.Time.Format("2006-01-02")
	default:
		return ""
	}
}

// IsEmpty reports whether the cell is absent or whether its trimmed textual
// form is the empty string.
func (c Cell) IsEmpty() bool {
	if c.Kind == KindEmpty {
		return true
	}
	return strings.TrimSpace(c.String()) == ""
}

// Row is an ordered sequence of cells.
type Row []Cell

// RowFromStrings builds a row by parsing each string with ParseCell.
func RowFromStrings(values []string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = ParseCell(v)
	}
	return row
}

// IsEmpty reports whether every cell in the row is empty. A zero-length row
// is empty.
func (r Row) IsEmpty() bool {
	for _, c := range r {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Strings returns the textual form of every cell in the row.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}
