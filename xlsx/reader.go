// Package xlsx reads one worksheet of an XLSX workbook as a grid of cells.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/unitable/model"
)

// Reader provides access to XLSX workbook content as grid rows.
type Reader struct {
	file  *excelize.File
	name  string
	sheet string // empty means the first sheet
}

// Option configures a Reader.
type Option func(*Reader)

// WithSheet selects the worksheet to read. The default is the workbook's
// first sheet.
func WithSheet(name string) Option {
	return func(r *Reader) { r.sheet = name }
}

// Open opens an XLSX file for reading.
func Open(filename string, opts ...Option) (*Reader, error) {
	f, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	return newReader(f, filename, opts), nil
}

// OpenReader reads an XLSX workbook from r. The name is used for reporting
// only.
func OpenReader(r io.Reader, name string, opts ...Option) (*Reader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	return newReader(f, name, opts), nil
}

func newReader(f *excelize.File, name string, opts []Option) *Reader {
	r := &Reader{file: f, name: name}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close releases the underlying workbook.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Name returns the name the reader was opened with.
func (r *Reader) Name() string {
	return r.name
}

// Sheets returns the workbook's sheet names in workbook order.
func (r *Reader) Sheets() []string {
	return r.file.GetSheetList()
}

// Rows reads the selected sheet as grid rows. Cells arrive as their
// formatted text and are typed with model.ParseCell; rows are padded to the
// sheet's widest row so the grid is rectangular. Interior blank rows are
// preserved, which is what lets the segmenter find table boundaries.
func (r *Reader) Rows() ([]model.Row, error) {
	sheet := r.sheet
	if sheet == "" {
		sheets := r.file.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", r.name)
		}
		sheet = sheets[0]
	}

	raw, err := r.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	width := 0
	for _, row := range raw {
		if len(row) > width {
			width = len(row)
		}
	}

	rows := make([]model.Row, len(raw))
	for i, rawRow := range raw {
		row := make(model.Row, width)
		for j, value := range rawRow {
			row[j] = model.ParseCell(value)
		}
		rows[i] = row
	}
	return rows, nil
}
