package model

import "sort"

// Mapping relates raw column labels to canonical names. It is a partial
// function over the labels seen in one analysis run: labels absent from the
// mapping keep their original name. A Mapping is computed once per run and
// only read afterwards.
type Mapping map[string]string

// Canonical returns the canonical name for a raw label, if one exists.
func (m Mapping) Canonical(label string) (string, bool) {
	c, ok := m[label]
	return c, ok
}

// Groups inverts the mapping: canonical name to the sorted raw labels that
// map to it. Useful for reporting what was unified.
func (m Mapping) Groups() map[string][]string {
	groups := make(map[string][]string)
	for raw, canonical := range m {
		groups[canonical] = append(groups[canonical], raw)
	}
	for _, raws := range groups {
		sort.Strings(raws)
	}
	return groups
}
