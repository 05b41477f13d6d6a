// Package match defines the semantic matching contract used to unify column
// labels that denote the same real-world field under different spellings,
// along with an OpenAI-backed implementation.
//
// A matcher receives the sorted list of distinct column labels seen across
// all tables in one analysis run and returns a mapping from raw label to a
// canonical group name. Labels with no semantic peer may be omitted. The
// caller validates shape only; it never second-guesses the grouping.
package match

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tsawler/unitable/model"
)

// Matcher groups semantically equivalent column labels under canonical names.
//
// Match receives the sorted distinct labels for one run. The returned
// mapping's domain should be a subset of the input and its values should use
// lowercase_with_underscores naming, but neither is enforced. Errors from
// Match are treated by callers as equivalent to an empty mapping.
type Matcher interface {
	// Name identifies the matcher in events and reports.
	Name() string

	Match(ctx context.Context, labels []string) (model.Mapping, error)
}

// Func adapts an ordinary function to the Matcher interface.
type Func func(ctx context.Context, labels []string) (model.Mapping, error)

// Name implements Matcher.
func (f Func) Name() string { return "func" }

// Match implements Matcher.
func (f Func) Match(ctx context.Context, labels []string) (model.Mapping, error) {
	return f(ctx, labels)
}

// ParseMapping validates that data is a JSON object mapping strings to
// strings and converts it to a model.Mapping. A surrounding markdown code
// fence is tolerated. Any other shape (array, nested object, non-string
// value, trailing content) is an error.
func ParseMapping(data []byte) (model.Mapping, error) {
	text := stripFence(strings.TrimSpace(string(data)))

	var m map[string]string
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("response is not a JSON object of strings: %w", err)
	}
	return model.Mapping(m), nil
}

// stripFence removes a ```...``` wrapper if one encloses the whole text.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimSuffix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	return strings.TrimSpace(text)
}
