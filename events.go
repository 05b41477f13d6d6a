package unitable

// EventKind identifies the processing stage an Event reports.
type EventKind string

// Event kinds emitted during extraction and analysis.
const (
	// EventSourceOpened is emitted after a source is opened and its rows read.
	EventSourceOpened EventKind = "source_opened"
	// EventSourceSkipped is emitted when a source cannot be processed and
	// analysis continues without it.
	EventSourceSkipped EventKind = "source_skipped"
	// EventTableFound is emitted for each table recovered from a source.
	EventTableFound EventKind = "table_found"
	// EventLabelsCollected is emitted after column labels are gathered
	// across all tables.
	EventLabelsCollected EventKind = "labels_collected"
	// EventMatcherCalled is emitted before the semantic matcher is invoked.
	EventMatcherCalled EventKind = "matcher_called"
	// EventMatcherFailed is emitted when the semantic matcher returns an
	// error and analysis proceeds with original labels.
	EventMatcherFailed EventKind = "matcher_failed"
	// EventMappingApplied is emitted after header renames are applied.
	EventMappingApplied EventKind = "mapping_applied"
)

// Event reports progress during extraction and analysis.
type Event struct {
	// Kind identifies the stage being reported.
	Kind EventKind

	// Source names the input the event relates to, when it relates to one.
	Source string

	// Detail is a human-readable description of what happened.
	Detail string

	// Count carries the kind-specific quantity: tables found, labels
	// collected, or headers renamed.
	Count int
}

// Observer receives events during processing. When sources are analyzed in
// parallel the Observer is called from multiple goroutines and must be safe
// for concurrent use.
type Observer func(Event)

// emit sends an event to the observer, if one is configured.
func (o ExtractOptions) emit(ev Event) {
	if o.observer != nil {
		o.observer(ev)
	}
}
