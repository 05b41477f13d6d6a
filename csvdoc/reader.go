// Package csvdoc reads delimiter-separated text files as grids of cells.
package csvdoc

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tsawler/unitable/model"
)

// Reader provides access to CSV content as grid rows.
type Reader struct {
	name      string
	src       io.Reader
	file      *os.File // set when we own the handle
	delimiter rune
	encoding  encoding.Encoding
}

// Option configures a Reader.
type Option func(*Reader)

// WithDelimiter sets the field delimiter. The default is a comma.
func WithDelimiter(d rune) Option {
	return func(r *Reader) { r.delimiter = d }
}

// WithEncoding decodes the input from a legacy character encoding, for
// example charmap.Windows1252 for older spreadsheet exports. The default
// treats the input as UTF-8 and strips a leading byte order mark.
func WithEncoding(enc encoding.Encoding) Option {
	return func(r *Reader) { r.encoding = enc }
}

// Open opens a CSV file for reading.
func Open(filename string, opts ...Option) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	r := newReader(f, filename, opts)
	r.file = f
	return r, nil
}

// OpenReader reads CSV content from r. The name is used for reporting only.
func OpenReader(src io.Reader, name string, opts ...Option) (*Reader, error) {
	return newReader(src, name, opts), nil
}

func newReader(src io.Reader, name string, opts []Option) *Reader {
	r := &Reader{
		name:      name,
		src:       src,
		delimiter: ',',
		encoding:  unicode.UTF8BOM,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close releases the file handle when the reader owns one.
func (r *Reader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// Name returns the name the reader was opened with.
func (r *Reader) Name() string {
	return r.name
}

// Rows reads the remaining input as grid rows in a single pass. Records are
// typed with model.ParseCell and padded to the widest record so the grid is
// rectangular. Bare blank lines, which encoding/csv silently skips, are
// restored as empty rows so blank-row table boundaries and row indexes
// survive the trip through the parser.
func (r *Reader) Rows() ([]model.Row, error) {
	cr := csv.NewReader(transform.NewReader(r.src, r.encoding.NewDecoder()))
	cr.Comma = r.delimiter
	cr.FieldsPerRecord = -1

	var records [][]string
	var blanks []int // number of blank lines immediately before each record

	nextLine := 1 // line the next record should start on if no lines were skipped
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", r.name, err)
		}

		line, _ := cr.FieldPos(0)
		gap := line - nextLine
		if gap < 0 {
			gap = 0
		}
		blanks = append(blanks, gap)
		records = append(records, record)

		nextLine = line + recordSpan(record)
	}

	width := 0
	for _, record := range records {
		if len(record) > width {
			width = len(record)
		}
	}

	var rows []model.Row
	for i, record := range records {
		for j := 0; j < blanks[i]; j++ {
			rows = append(rows, model.Row{})
		}
		row := make(model.Row, width)
		for j, field := range record {
			row[j] = model.ParseCell(field)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// recordSpan returns how many input lines a record covered. Quoted fields
// may contain newlines; the csv parser normalizes \r\n inside quotes to \n.
func recordSpan(record []string) int {
	span := 1
	for _, field := range record {
		span += strings.Count(field, "\n")
	}
	return span
}
