// Package unitable provides a fluent API for extracting tables from
// spreadsheet, CSV, HTML, and scanned-image sources, and for canonicalizing
// column labels across them.
//
// Basic usage:
//
//	tables, warnings, err := unitable.Open("report.xlsx").Tables()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", unitable.FormatWarnings(warnings))
//	}
//
// With options:
//
//	tables, _, err := unitable.Open("report.xlsx").
//	    Sheet("Q3").
//	    MinDataRows(3).
//	    Tables()
//
// With column canonicalization:
//
//	matcher, err := match.NewOpenAI()
//	if err != nil {
//	    // handle error
//	}
//	tables, mapping, _, err := unitable.Open("report.xlsx").
//	    WithMatcher(matcher).
//	    Canonical(context.Background())
//
// For advanced use cases, the lower-level xlsx, csvdoc, htmldoc, segment,
// and canon packages are also available.
package unitable

import (
	"io"

	"github.com/tsawler/unitable/model"
)

// Open opens a source file and returns an Extractor for fluent configuration.
// The file format is determined by extension, falling back to content
// sniffing when the extension is not recognized. The returned Extractor must
// be closed when done, either explicitly via Close() or implicitly when
// calling a terminal operation like Tables().
//
// Example:
//
//	tables, warnings, err := unitable.Open("report.xlsx").Tables()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader creates an Extractor from an io.Reader. The content is read
// into memory and its format determined by sniffing. The name is used for
// reporting only.
//
// Example:
//
//	tables, warnings, err := unitable.FromReader(resp.Body, "report.xlsx").Tables()
func FromReader(r io.Reader, name string) *Extractor {
	data, err := io.ReadAll(r)
	return &Extractor{
		filename: name,
		data:     data,
		options:  defaultOptions(),
		err:      err,
	}
}

// FromSource creates an Extractor from an already-opened Source.
// This is useful when you need more control over the source lifecycle.
// Note: The caller is responsible for closing the source.
//
// Example:
//
//	r, err := xlsx.Open("report.xlsx")
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	tables, warnings, err := unitable.FromSource(r).Tables()
func FromSource(src Source) *Extractor {
	return &Extractor{
		filename:     src.Name(),
		source:       src,
		ownsSource:   false,
		sourceOpened: true,
		options:      defaultOptions(),
	}
}

// FromRows creates an Extractor over an in-memory grid of rows.
// The name is used for reporting only.
//
// Example:
//
//	rows := []model.Row{
//	    model.RowFromStrings([]string{"Name", "DOB"}),
//	    model.RowFromStrings([]string{"Alice", "1990-01-05"}),
//	    model.RowFromStrings([]string{"Bob", "1985-11-30"}),
//	}
//	tables, _, err := unitable.FromRows("inline", rows).Tables()
func FromRows(name string, rows []model.Row) *Extractor {
	return &Extractor{
		filename: name,
		rows:     rows,
		options:  defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	sheets := unitable.Must(unitable.Open("report.xlsx").Sheets())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustTables is a helper that wraps a call to Tables() or Rows() and panics
// if the error is non-nil. It discards warnings and returns just the value.
// It is intended for use in scripts or tests where error handling would be cumbersome.
//
// Example:
//
//	tables := unitable.MustTables(unitable.Open("report.xlsx").Tables())
func MustTables[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
