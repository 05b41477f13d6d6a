// Package model provides the intermediate representation (IR) for segmented
// tabular content.
//
// This package defines the user-facing data structures produced by grid
// segmentation and consumed by column canonicalization, making them the
// primary API for working with extracted tables.
//
// # Cells and Rows
//
// A [Cell] is a closed variant over the scalar kinds a grid can hold:
// empty, text, number, boolean, or date. The zero value is the empty cell.
// Segmentation only ever needs two capabilities from a cell: emptiness
// ([Cell.IsEmpty]) and textual coercion ([Cell.String]).
//
//	row := model.Row{model.NewText("Name"), model.NewNumber(42)}
//	row.IsEmpty() // false
//
// A [Row] is an ordered sequence of cells. Rows are fixed-width within one
// grid; width may vary between grids.
//
// # Tables
//
// A [Table] is one blank-row-delimited region of a grid: a header row plus
// at least two data rows. Tables are created once, by the segmenter, and are
// immutable afterwards except for header rewriting via [Table.RenameColumns].
// Export methods: [Table.ToMarkdown] and [Table.ToCSV].
//
// # Mappings
//
// A [Mapping] relates raw column labels to canonical names. It is a partial
// function: labels absent from the mapping are left unchanged wherever the
// mapping is applied. [Mapping.Groups] inverts it for reporting.
package model
