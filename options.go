package unitable

import (
	"golang.org/x/text/encoding"

	"github.com/tsawler/unitable/match"
)

// ExtractOptions holds configuration for table extraction.
type ExtractOptions struct {
	// XLSX sheet selection (empty means first sheet)
	sheet string

	// CSV dialect
	delimiter rune
	encoding  encoding.Encoding // nil means UTF-8

	// Segmentation
	minDataRows int

	// OCR
	ocrLanguage string

	// Canonicalization
	matcher match.Matcher

	// Observability
	observer Observer
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		sheet:       "",
		delimiter:   ',',
		encoding:    nil,
		minDataRows: 2, // header plus at least two data rows
		ocrLanguage: "",
		matcher:     nil,
		observer:    nil,
	}
}

// clone creates a copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	return ExtractOptions{
		sheet:       o.sheet,
		delimiter:   o.delimiter,
		encoding:    o.encoding,
		minDataRows: o.minDataRows,
		ocrLanguage: o.ocrLanguage,
		matcher:     o.matcher,
		observer:    o.observer,
	}
}
