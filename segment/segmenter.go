// Package segment partitions a row-major grid of cell values into rectangular
// table regions. Tables are delimited by blank rows: a region starts at the
// first non-empty row after a boundary, uses that row as its header, and runs
// until the next blank row or the end of the grid. Regions with fewer data
// rows than the minimum are dropped.
package segment

import (
	"github.com/tsawler/unitable/model"
)

// Segmenter scans grids for blank-row-delimited table regions.
type Segmenter struct {
	// Minimum number of data rows (beyond the header) a region must have
	// to be emitted as a table
	MinDataRows int
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithMinDataRows sets the minimum number of data rows a region needs.
// Values below 1 are ignored.
func WithMinDataRows(n int) Option {
	return func(s *Segmenter) {
		if n >= 1 {
			s.MinDataRows = n
		}
	}
}

// New creates a segmenter with default settings.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		MinDataRows: 2, // header plus at least two data rows
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment scans rows top to bottom and returns every table region found, in
// order of appearance. It is a pure function of its input: no side effects,
// deterministic, and the input rows are not modified. Emitted tables alias
// the input rows rather than copying them.
//
// A row is blank when every cell in it is empty; a zero-length row is blank.
// For each emitted table, StartRow is the grid index of the first data row
// (the header sits at StartRow-1) and EndRow is the index of the terminating
// blank row, or len(rows) when the grid ends the region.
func (s *Segmenter) Segment(rows []model.Row) []*model.Table {
	var tables []*model.Table

	start := -1 // index of the row that will become the current region's header
	for idx, row := range rows {
		if row.IsEmpty() {
			if start >= 0 {
				if t := s.close(rows, start, idx); t != nil {
					tables = append(tables, t)
				}
				start = -1
			}
			continue
		}
		if start < 0 {
			start = idx
		}
	}

	if start >= 0 {
		if t := s.close(rows, start, len(rows)); t != nil {
			tables = append(tables, t)
		}
	}

	return tables
}

// close finalizes the region spanning [start, end). It returns nil when the
// region fails the minimum-size filter; undersized regions are dropped
// silently rather than reported as errors.
func (s *Segmenter) close(rows []model.Row, start, end int) *model.Table {
	data := rows[start+1 : end]
	if len(data) < s.MinDataRows {
		return nil
	}
	return model.NewTable(start+1, end, rows[start], data)
}
