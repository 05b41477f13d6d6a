// Package htmldoc reads the tables of an HTML document as one grid of cells.
//
// Every <table> element in document order contributes its rows to the grid,
// with a single blank row between consecutive tables, so the blank-row
// segmenter recovers each HTML table as its own region.
package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/unitable/model"
)

// Reader provides access to HTML table content as grid rows.
type Reader struct {
	name string
	doc  *html.Node
}

// Open opens an HTML file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f, filename)
}

// OpenReader parses HTML from an io.Reader. The name is used for reporting
// only.
func OpenReader(r io.Reader, name string) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return &Reader{name: name, doc: doc}, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	// Nothing to close for HTML (no file handles kept)
	return nil
}

// Name returns the name the reader was opened with.
func (r *Reader) Name() string {
	return r.name
}

// Rows returns the rows of every table in the document, in document order,
// separated by single blank rows and padded to a uniform width. Row and
// column spans are ignored; each td or th contributes exactly one cell.
func (r *Reader) Rows() ([]model.Row, error) {
	var tables [][]model.Row
	collectTables(r.doc, &tables)

	width := 0
	for _, table := range tables {
		for _, row := range table {
			if len(row) > width {
				width = len(row)
			}
		}
	}

	var rows []model.Row
	for i, table := range tables {
		if i > 0 {
			rows = append(rows, model.Row{})
		}
		for _, row := range table {
			padded := make(model.Row, width)
			copy(padded, row)
			rows = append(rows, padded)
		}
	}
	return rows, nil
}

// collectTables walks the DOM appending the rows of each table element.
// The walk does not descend into a collected table, so a table nested in
// another contributes its text to the enclosing cell rather than becoming
// a separate grid region.
func collectTables(n *html.Node, tables *[][]model.Row) {
	if n.Type == html.ElementNode && n.Data == "table" {
		if rows := parseTable(n); len(rows) > 0 {
			*tables = append(*tables, rows)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectTables(c, tables)
	}
}

// parseTable extracts the rows of an HTML table element, walking thead,
// tbody, tfoot, and direct tr children in document order.
func parseTable(tableNode *html.Node) []model.Row {
	var rows []model.Row

	for c := tableNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "thead", "tbody", "tfoot":
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.Data == "tr" {
					if row := parseTableRow(tr); len(row) > 0 {
						rows = append(rows, row)
					}
				}
			}
		case "tr":
			if row := parseTableRow(c); len(row) > 0 {
				rows = append(rows, row)
			}
		}
	}

	return rows
}

// parseTableRow parses a single table row.
func parseTableRow(tr *html.Node) model.Row {
	row := make(model.Row, 0)

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			row = append(row, model.ParseCell(getTextContent(c)))
		}
	}

	return row
}

// getTextContent returns the trimmed text content of a node, skipping
// script and style subtrees.
func getTextContent(n *html.Node) string {
	var sb strings.Builder
	textContent(n, &sb)
	return strings.TrimSpace(sb.String())
}

func textContent(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		case "br":
			sb.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		textContent(c, sb)
	}
}
