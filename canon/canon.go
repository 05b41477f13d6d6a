// Package canon reconciles column names across segmented tables. It collects
// the distinct labels from every table header, delegates semantic grouping
// to a matcher in a single batched call, and applies the resulting mapping
// uniformly so that equivalent columns end up with one canonical name in
// every table.
//
// Canonicalization soft-fails: a matcher fault degrades to the empty mapping
// (no renaming) and never invalidates the tables already segmented.
package canon

import (
	"context"
	"fmt"
	"sort"

	"github.com/tsawler/unitable/match"
	"github.com/tsawler/unitable/model"
)

// Labels returns the distinct column labels across all table headers, each
// coerced to its textual form, sorted. The label set is assembled unordered;
// sorting happens only here, at the matcher boundary, so request content is
// deterministic.
func Labels(tables []*model.Table) []string {
	set := make(map[string]struct{})
	for _, t := range tables {
		for _, label := range t.Labels() {
			set[label] = struct{}{}
		}
	}

	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Canonicalize computes the raw-to-canonical label mapping for tables by
// invoking matcher once with the combined label set. The returned mapping is
// always usable: when the matcher is nil, when there are no labels, or when
// the matcher fails, it is empty. A non-nil error reports a matcher fault
// for logging or warnings only; callers must treat it as informational and
// never abort a run over it.
func Canonicalize(ctx context.Context, tables []*model.Table, matcher match.Matcher) (model.Mapping, error) {
	labels := Labels(tables)
	if matcher == nil || len(labels) == 0 {
		return model.Mapping{}, nil
	}

	mapping, err := matcher.Match(ctx, labels)
	if err != nil {
		return model.Mapping{}, fmt.Errorf("matching column labels: %w", err)
	}
	if mapping == nil {
		mapping = model.Mapping{}
	}
	return mapping, nil
}

// Apply rewrites every table's header in place through the mapping and
// returns the total number of labels renamed. Labels outside the mapping's
// domain are untouched; applying the empty mapping is the identity.
func Apply(tables []*model.Table, mapping model.Mapping) int {
	renamed := 0
	for _, t := range tables {
		renamed += t.RenameColumns(mapping)
	}
	return renamed
}
