// analyze.go provides multi-source analysis on top of the fluent extraction API.
package unitable

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/unitable/canon"
	"github.com/tsawler/unitable/match"
	"github.com/tsawler/unitable/model"
)

// analyzeOptions holds configuration for multi-source analysis.
type analyzeOptions struct {
	matcher     match.Matcher
	observer    Observer
	parallelism int
	minDataRows int
	ocrLanguage string
}

// defaultAnalyzeOptions returns the default analysis options.
func defaultAnalyzeOptions() analyzeOptions {
	return analyzeOptions{
		parallelism: 4,
		minDataRows: 2,
	}
}

// emit sends an event to the observer, if one is configured.
func (o analyzeOptions) emit(ev Event) {
	if o.observer != nil {
		o.observer(ev)
	}
}

// configure applies the analysis options to a single-source extractor.
func (o analyzeOptions) configure(ext *Extractor) *Extractor {
	ext = ext.MinDataRows(o.minDataRows)
	if o.ocrLanguage != "" {
		ext = ext.WithOCR(o.ocrLanguage)
	}
	if o.observer != nil {
		ext = ext.WithObserver(o.observer)
	}
	return ext
}

// AnalyzeOption configures multi-source analysis.
type AnalyzeOption func(*analyzeOptions)

// WithMatcher sets the semantic matcher used to canonicalize column labels
// across all analyzed sources. Without a matcher, headers are left unchanged.
func WithMatcher(m match.Matcher) AnalyzeOption {
	return func(o *analyzeOptions) {
		o.matcher = m
	}
}

// WithObserver registers a callback that receives progress events. Sources
// are processed in parallel, so the callback must be safe for concurrent use.
func WithObserver(fn Observer) AnalyzeOption {
	return func(o *analyzeOptions) {
		o.observer = fn
	}
}

// WithParallelism sets how many sources are processed concurrently.
// The default is 4. Values below 1 are ignored.
func WithParallelism(n int) AnalyzeOption {
	return func(o *analyzeOptions) {
		if n >= 1 {
			o.parallelism = n
		}
	}
}

// WithMinDataRows sets the minimum number of data rows a region must have
// to be kept as a table. The default is 2. Values below 1 are ignored.
func WithMinDataRows(n int) AnalyzeOption {
	return func(o *analyzeOptions) {
		if n >= 1 {
			o.minDataRows = n
		}
	}
}

// WithOCRLanguage sets the recognition language for image sources, as a
// "+" separated list of Tesseract language codes.
func WithOCRLanguage(lang string) AnalyzeOption {
	return func(o *analyzeOptions) {
		o.ocrLanguage = lang
	}
}

// SourceResult reports the per-source outcome of an analysis.
type SourceResult struct {
	// Name identifies the source.
	Name string

	// Format is the detected source format.
	Format string

	// Tables is the number of tables recovered from the source.
	Tables int

	// Err is non-nil when the source could not be processed. A failed
	// source is skipped; it does not fail the analysis.
	Err error
}

// Analysis is the result of analyzing a set of sources together.
type Analysis struct {
	// RunID uniquely identifies this analysis run.
	RunID string

	// Dir and Pattern record what was scanned when AnalyzeDirectory was used.
	Dir     string
	Pattern string

	// Sources reports the outcome per source, in discovery order.
	Sources []SourceResult

	// Tables is every table recovered, in discovery order.
	Tables []*model.Table

	// Mapping is the canonical mapping applied to the tables' headers.
	// Empty when no matcher was configured or the matcher failed.
	Mapping model.Mapping

	// Renamed counts the header cells renamed by the mapping.
	Renamed int

	// Warnings are the non-fatal issues encountered during the run.
	Warnings []Warning

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// sourceJob produces a configured extractor for one source.
type sourceJob struct {
	name string
	open func() *Extractor
}

// AnalyzeDirectory analyzes every file in dir matching pattern. The pattern
// uses filepath.Match syntax and defaults to "*.xlsx" when empty. Sources
// that fail to open or read are skipped and reported in the result; column
// labels are canonicalized across all recovered tables with a single
// matcher call.
//
// Example:
//
//	matcher, err := match.NewOpenAI()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	analysis, err := unitable.AnalyzeDirectory(ctx, "./reports", "*.xlsx",
//	    unitable.WithMatcher(matcher))
func AnalyzeDirectory(ctx context.Context, dir, pattern string, opts ...AnalyzeOption) (*Analysis, error) {
	if pattern == "" {
		pattern = "*.xlsx"
	}

	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	sort.Strings(paths)

	analysis, err := AnalyzeFiles(ctx, paths, opts...)
	if err != nil {
		return nil, err
	}

	analysis.Dir = dir
	analysis.Pattern = pattern
	return analysis, nil
}

// AnalyzeFiles analyzes the given files together. Sources that fail are
// skipped and reported in the result.
func AnalyzeFiles(ctx context.Context, paths []string, opts ...AnalyzeOption) (*Analysis, error) {
	o := defaultAnalyzeOptions()
	for _, opt := range opts {
		opt(&o)
	}

	jobs := make([]sourceJob, len(paths))
	for i, path := range paths {
		path := path // per-iteration copy: required under go <1.22 loop semantics
		jobs[i] = sourceJob{
			name: path,
			open: func() *Extractor { return o.configure(Open(path)) },
		}
	}

	return analyze(ctx, jobs, o)
}

// AnalyzeSources analyzes already-opened sources together. The caller is
// responsible for closing the sources.
func AnalyzeSources(ctx context.Context, sources []Source, opts ...AnalyzeOption) (*Analysis, error) {
	o := defaultAnalyzeOptions()
	for _, opt := range opts {
		opt(&o)
	}

	jobs := make([]sourceJob, len(sources))
	for i, src := range sources {
		src := src // per-iteration copy: required under go <1.22 loop semantics
		jobs[i] = sourceJob{
			name: src.Name(),
			open: func() *Extractor { return o.configure(FromSource(src)) },
		}
	}

	return analyze(ctx, jobs, o)
}

// analyze runs the jobs in parallel, then canonicalizes column labels once
// across every recovered table.
func analyze(ctx context.Context, jobs []sourceJob, o analyzeOptions) (*Analysis, error) {
	start := time.Now()

	// Results land in discovery-order slots, so parallel completion order
	// does not reorder the output.
	results := make([]SourceResult, len(jobs))
	tablesBySource := make([][]*model.Table, len(jobs))
	warningsBySource := make([][]Warning, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)

	for i, job := range jobs {
		i, job := i, job // per-iteration copies: required under go <1.22 loop semantics
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = SourceResult{Name: job.name, Err: err}
				return err
			}

			ext := job.open()
			tables, warnings, err := ext.Tables()
			if err != nil {
				results[i] = SourceResult{Name: job.name, Format: ext.format.String(), Err: err}
				warningsBySource[i] = append(warnings, Warning{
					Source:  job.name,
					Message: fmt.Sprintf("skipped: %v", err),
				})
				o.emit(Event{Kind: EventSourceSkipped, Source: job.name, Detail: err.Error()})
				return nil
			}

			results[i] = SourceResult{
				Name:   job.name,
				Format: ext.format.String(),
				Tables: len(tables),
			}
			tablesBySource[i] = tables
			warningsBySource[i] = warnings
			return nil
		})
	}

	// Every source finishes before labels are collected.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var allTables []*model.Table
	var allWarnings []Warning
	for i := range jobs {
		allTables = append(allTables, tablesBySource[i]...)
		allWarnings = append(allWarnings, warningsBySource[i]...)
	}

	labels := canon.Labels(allTables)
	o.emit(Event{Kind: EventLabelsCollected, Count: len(labels)})

	if o.matcher != nil && len(labels) > 0 {
		o.emit(Event{Kind: EventMatcherCalled, Detail: o.matcher.Name(), Count: len(labels)})
	}

	mapping, err := canon.Canonicalize(ctx, allTables, o.matcher)
	if err != nil {
		allWarnings = append(allWarnings, Warning{
			Message: fmt.Sprintf("column matching failed: %v", err),
		})
		o.emit(Event{Kind: EventMatcherFailed, Detail: err.Error()})
	}

	renamed := canon.Apply(allTables, mapping)
	o.emit(Event{Kind: EventMappingApplied, Count: renamed})

	return &Analysis{
		RunID:    uuid.NewString(),
		Sources:  results,
		Tables:   allTables,
		Mapping:  mapping,
		Renamed:  renamed,
		Warnings: allWarnings,
		Duration: time.Since(start),
	}, nil
}
