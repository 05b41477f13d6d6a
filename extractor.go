package unitable

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/tsawler/unitable/canon"
	"github.com/tsawler/unitable/csvdoc"
	"github.com/tsawler/unitable/format"
	"github.com/tsawler/unitable/htmldoc"
	"github.com/tsawler/unitable/match"
	"github.com/tsawler/unitable/model"
	"github.com/tsawler/unitable/ocr"
	"github.com/tsawler/unitable/segment"
	"github.com/tsawler/unitable/xlsx"
)

// ErrUnsupportedFormat is returned when a source's format cannot be
// determined or no reader exists for it.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// Source provides rows of cells from an open input. The readers in the
// xlsx, csvdoc, and htmldoc packages satisfy it.
type Source interface {
	// Name identifies the source for reporting.
	Name() string

	// Rows returns every row of the source in order, including blank rows.
	Rows() ([]model.Row, error)

	// Close releases resources associated with the source.
	Close() error
}

// memorySource serves rows already held in memory.
type memorySource struct {
	name string
	rows []model.Row
}

func (s *memorySource) Name() string               { return s.name }
func (s *memorySource) Rows() ([]model.Row, error) { return s.rows, nil }
func (s *memorySource) Close() error               { return nil }

// Extractor provides a fluent interface for extracting tables from XLSX,
// CSV, HTML, and image sources.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	format   format.Format
	data     []byte      // in-memory content from FromReader
	rows     []model.Row // direct grid from FromRows

	source       Source
	ownsSource   bool // true if we opened the source and should close it
	sourceOpened bool // true if the source has been opened

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error

	// Warnings accumulated during processing
	warnings []Warning
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	newExt := &Extractor{
		filename:     e.filename,
		format:       e.format,
		data:         e.data,
		rows:         e.rows,
		source:       e.source,
		ownsSource:   e.ownsSource,
		sourceOpened: e.sourceOpened,
		options:      e.options.clone(),
		err:          e.err,
		warnings:     append([]Warning(nil), e.warnings...),
	}
	return newExt
}

// ensureSource opens the source if not already open.
func (e *Extractor) ensureSource() error {
	if e.sourceOpened {
		return nil
	}

	if e.rows != nil {
		e.source = &memorySource{name: e.filename, rows: e.rows}
		e.ownsSource = true
		e.sourceOpened = true
		return nil
	}

	if e.data != nil {
		return e.openData()
	}

	if e.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	f := format.Detect(e.filename)
	if f == format.Unknown {
		// No recognized extension. Read the file and sniff its content.
		data, err := os.ReadFile(e.filename)
		if err != nil {
			return fmt.Errorf("failed to open source: %w", err)
		}
		e.data = data
		return e.openData()
	}

	return e.openFile(f)
}

// openFile opens the named file with the reader for its format.
func (e *Extractor) openFile(f format.Format) error {
	e.format = f

	switch {
	case f == format.XLSX:
		var opts []xlsx.Option
		if e.options.sheet != "" {
			opts = append(opts, xlsx.WithSheet(e.options.sheet))
		}
		r, err := xlsx.Open(e.filename, opts...)
		if err != nil {
			return fmt.Errorf("failed to open XLSX: %w", err)
		}
		e.source = r

	case f == format.CSV:
		opts := []csvdoc.Option{csvdoc.WithDelimiter(e.csvDelimiter())}
		if e.options.encoding != nil {
			opts = append(opts, csvdoc.WithEncoding(e.options.encoding))
		}
		r, err := csvdoc.Open(e.filename, opts...)
		if err != nil {
			return fmt.Errorf("failed to open CSV: %w", err)
		}
		e.source = r

	case f == format.HTML:
		r, err := htmldoc.Open(e.filename)
		if err != nil {
			return fmt.Errorf("failed to open HTML: %w", err)
		}
		e.source = r

	case f.IsImage():
		data, err := os.ReadFile(e.filename)
		if err != nil {
			return fmt.Errorf("failed to open image: %w", err)
		}
		return e.openImage(data)

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, e.filename)
	}

	e.ownsSource = true
	e.sourceOpened = true
	return nil
}

// openData opens the in-memory content, sniffing its format first.
func (e *Extractor) openData() error {
	f, err := format.DetectFromReader(bytes.NewReader(e.data), int64(len(e.data)))
	if err != nil {
		return fmt.Errorf("detecting format: %w", err)
	}

	// Content sniffing cannot recognize CSV; fall back to the filename
	// extension for formats without magic bytes.
	if f == format.Unknown {
		f = format.Detect(e.filename)
	}
	e.format = f

	name := e.filename
	if name == "" {
		name = "reader"
	}

	switch {
	case f == format.XLSX:
		var opts []xlsx.Option
		if e.options.sheet != "" {
			opts = append(opts, xlsx.WithSheet(e.options.sheet))
		}
		r, err := xlsx.OpenReader(bytes.NewReader(e.data), name, opts...)
		if err != nil {
			return fmt.Errorf("failed to open XLSX: %w", err)
		}
		e.source = r

	case f == format.CSV:
		opts := []csvdoc.Option{csvdoc.WithDelimiter(e.csvDelimiter())}
		if e.options.encoding != nil {
			opts = append(opts, csvdoc.WithEncoding(e.options.encoding))
		}
		r, err := csvdoc.OpenReader(bytes.NewReader(e.data), name, opts...)
		if err != nil {
			return fmt.Errorf("failed to open CSV: %w", err)
		}
		e.source = r

	case f == format.HTML:
		r, err := htmldoc.OpenReader(bytes.NewReader(e.data), name)
		if err != nil {
			return fmt.Errorf("failed to open HTML: %w", err)
		}
		e.source = r

	case f.IsImage():
		return e.openImage(e.data)

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	e.ownsSource = true
	e.sourceOpened = true
	return nil
}

// openImage runs OCR over image data and serves the recognized rows.
func (e *Extractor) openImage(data []byte) error {
	client, err := ocr.New()
	if err != nil {
		return fmt.Errorf("opening image source: %w", err)
	}
	defer client.Close()

	if e.options.ocrLanguage != "" {
		if err := client.SetLanguage(e.options.ocrLanguage); err != nil {
			return fmt.Errorf("setting OCR language: %w", err)
		}
	}

	rows, err := client.RecognizeRows(data)
	if err != nil {
		return fmt.Errorf("recognizing image: %w", err)
	}

	name := e.filename
	if name == "" {
		name = "image"
	}
	e.source = &memorySource{name: name, rows: rows}
	e.ownsSource = true
	e.sourceOpened = true
	return nil
}

// csvDelimiter returns the delimiter to use for CSV sources. Files with a
// .tsv extension default to tab unless a delimiter was set explicitly.
func (e *Extractor) csvDelimiter() rune {
	if e.options.delimiter != ',' {
		return e.options.delimiter
	}
	if strings.EqualFold(filepath.Ext(e.filename), ".tsv") {
		return '\t'
	}
	return ','
}

// sourceName returns the best available name for the source.
func (e *Extractor) sourceName() string {
	if e.source != nil {
		return e.source.Name()
	}
	if e.filename == "" && e.data != nil {
		return "reader"
	}
	return e.filename
}

// Close releases resources associated with the Extractor.
// It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if e.ownsSource && e.source != nil {
		err := e.source.Close()
		e.source = nil
		e.ownsSource = false
		return err
	}
	return nil
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Sheet selects the named worksheet of an XLSX source. By default the first
// sheet is read. Has no effect on other formats.
//
// Example:
//
//	tables, _, err := unitable.Open("report.xlsx").Sheet("Q3").Tables()
func (e *Extractor) Sheet(name string) *Extractor {
	newExt := e.clone()
	newExt.options.sheet = name
	return newExt
}

// MinDataRows sets the minimum number of data rows (rows below the header)
// a region must have to be kept as a table. The default is 2. Values below
// 1 are ignored.
//
// Example:
//
//	tables, _, err := unitable.Open("report.xlsx").MinDataRows(3).Tables()
func (e *Extractor) MinDataRows(n int) *Extractor {
	newExt := e.clone()
	if n >= 1 {
		newExt.options.minDataRows = n
	}
	return newExt
}

// Delimiter sets the field delimiter for CSV sources. The default is a
// comma, or a tab for files with a .tsv extension.
//
// Example:
//
//	tables, _, err := unitable.Open("data.csv").Delimiter(';').Tables()
func (e *Extractor) Delimiter(d rune) *Extractor {
	newExt := e.clone()
	newExt.options.delimiter = d
	return newExt
}

// Encoding sets the character encoding for CSV sources. The default is
// UTF-8 with an optional byte order mark.
//
// Example:
//
//	tables, _, err := unitable.Open("legacy.csv").
//	    Encoding(charmap.Windows1252).
//	    Tables()
func (e *Extractor) Encoding(enc encoding.Encoding) *Extractor {
	newExt := e.clone()
	newExt.options.encoding = enc
	return newExt
}

// WithOCR sets the recognition language for image sources, as a "+"
// separated list of Tesseract language codes (e.g. "eng+fra"). Image
// sources are read via OCR whether or not this is called; the option only
// overrides the default language.
//
// Example:
//
//	tables, _, err := unitable.Open("scan.png").WithOCR("eng").Tables()
func (e *Extractor) WithOCR(lang string) *Extractor {
	newExt := e.clone()
	newExt.options.ocrLanguage = lang
	return newExt
}

// WithMatcher sets the semantic matcher used by Canonical to group column
// labels. Without a matcher, Canonical returns an empty mapping and leaves
// headers unchanged.
//
// Example:
//
//	matcher, err := match.NewOpenAI()
//	if err != nil {
//	    // handle error
//	}
//	tables, mapping, _, err := unitable.Open("report.xlsx").
//	    WithMatcher(matcher).
//	    Canonical(ctx)
func (e *Extractor) WithMatcher(m match.Matcher) *Extractor {
	newExt := e.clone()
	newExt.options.matcher = m
	return newExt
}

// WithObserver registers a callback that receives progress events during
// terminal operations.
//
// Example:
//
//	tables, _, err := unitable.Open("report.xlsx").
//	    WithObserver(func(ev unitable.Event) { log.Println(ev.Kind, ev.Detail) }).
//	    Tables()
func (e *Extractor) WithObserver(fn Observer) *Extractor {
	newExt := e.clone()
	newExt.options.observer = fn
	return newExt
}

// Sheets returns the sheet names of an XLSX source.
// Note: This does NOT close the source, allowing further operations.
//
// Example:
//
//	ext := unitable.Open("report.xlsx")
//	defer ext.Close()
//	sheets, err := ext.Sheets()
func (e *Extractor) Sheets() ([]string, error) {
	if e.err != nil {
		return nil, e.err
	}

	if err := e.ensureSource(); err != nil {
		return nil, err
	}

	type sheetLister interface {
		Sheets() []string
	}
	if sl, ok := e.source.(sheetLister); ok {
		return sl.Sheets(), nil
	}
	return nil, fmt.Errorf("%s source has no sheets", e.format)
}

// ============================================================================
// Terminal Operations (execute extraction and return results)
// ============================================================================

// Rows reads and returns every row of the source, including blank rows.
// This is a terminal operation that closes the underlying source.
//
// Returns the rows, any warnings encountered during processing, and an
// error if reading failed.
//
// Example:
//
//	rows, warnings, err := unitable.Open("report.xlsx").Rows()
func (e *Extractor) Rows() ([]model.Row, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}

	if err := e.ensureSource(); err != nil {
		return nil, nil, err
	}
	defer e.Close()

	rows, err := e.source.Rows()
	if err != nil {
		return nil, e.warnings, fmt.Errorf("reading rows: %w", err)
	}

	e.options.emit(Event{
		Kind:   EventSourceOpened,
		Source: e.source.Name(),
		Detail: e.format.String(),
		Count:  len(rows),
	})

	return rows, e.warnings, nil
}

// Tables reads the source and partitions its rows into tables. Regions of
// consecutive non-blank rows are split on blank rows; each region's first
// row becomes the table header and the rest its data rows. Regions with
// fewer data rows than the configured minimum are dropped.
// This is a terminal operation that closes the underlying source.
//
// Returns the tables, any warnings encountered during processing, and an
// error if extraction failed. Warnings indicate non-fatal issues (e.g.
// content dropped by the minimum-size rule) where extraction succeeded but
// results may be incomplete.
//
// Example:
//
//	tables, warnings, err := unitable.Open("report.xlsx").Tables()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", unitable.FormatWarnings(warnings))
//	}
func (e *Extractor) Tables() ([]*model.Table, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}

	if err := e.ensureSource(); err != nil {
		return nil, nil, err
	}
	defer e.Close()

	name := e.source.Name()

	rows, err := e.source.Rows()
	if err != nil {
		return nil, e.warnings, fmt.Errorf("reading rows: %w", err)
	}

	e.options.emit(Event{
		Kind:   EventSourceOpened,
		Source: name,
		Detail: e.format.String(),
		Count:  len(rows),
	})

	seg := segment.New(segment.WithMinDataRows(e.options.minDataRows))
	tables := seg.Segment(rows)

	for _, tbl := range tables {
		tbl.Source = name
		e.options.emit(Event{
			Kind:   EventTableFound,
			Source: name,
			Detail: fmt.Sprintf("rows %d-%d", tbl.StartRow, tbl.EndRow),
			Count:  tbl.RowCount(),
		})
	}

	e.checkDroppedRows(name, rows, tables)

	return tables, e.warnings, nil
}

// Canonical reads the source, partitions its rows into tables, and applies
// semantic column canonicalization using the configured matcher. Matcher
// failures are reported as warnings and leave all headers unchanged; the
// tables themselves are still returned.
// This is a terminal operation that closes the underlying source.
//
// Example:
//
//	tables, mapping, warnings, err := unitable.Open("report.xlsx").
//	    WithMatcher(matcher).
//	    Canonical(context.Background())
func (e *Extractor) Canonical(ctx context.Context) ([]*model.Table, model.Mapping, []Warning, error) {
	tables, warnings, err := e.Tables()
	if err != nil {
		return nil, nil, warnings, err
	}

	name := e.sourceName()

	labels := canon.Labels(tables)
	e.options.emit(Event{Kind: EventLabelsCollected, Source: name, Count: len(labels)})

	if e.options.matcher != nil && len(labels) > 0 {
		e.options.emit(Event{
			Kind:   EventMatcherCalled,
			Source: name,
			Detail: e.options.matcher.Name(),
			Count:  len(labels),
		})
	}

	mapping, err := canon.Canonicalize(ctx, tables, e.options.matcher)
	if err != nil {
		warnings = append(warnings, Warning{
			Source:  name,
			Message: fmt.Sprintf("column matching failed: %v", err),
		})
		e.options.emit(Event{Kind: EventMatcherFailed, Source: name, Detail: err.Error()})
	}

	renamed := canon.Apply(tables, mapping)
	e.options.emit(Event{Kind: EventMappingApplied, Source: name, Count: renamed})

	return tables, mapping, warnings, nil
}

// ============================================================================
// Internal helpers
// ============================================================================

// checkDroppedRows warns when non-blank rows were left out of every table
// by the minimum-size rule.
func (e *Extractor) checkDroppedRows(name string, rows []model.Row, tables []*model.Table) {
	covered := 0
	for _, tbl := range tables {
		covered += 1 + tbl.RowCount()
	}

	nonEmpty := 0
	for _, row := range rows {
		if !row.IsEmpty() {
			nonEmpty++
		}
	}

	if dropped := nonEmpty - covered; dropped > 0 {
		e.warnings = append(e.warnings, Warning{
			Source: name,
			Message: fmt.Sprintf("%d non-blank rows are not part of any table (regions need at least %d data rows)",
				dropped, e.options.minDataRows),
		})
	}
}
