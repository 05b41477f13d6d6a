package ocr

import (
	"regexp"
	"strings"

	"github.com/tsawler/unitable/model"
)

// cellSplit separates the cells of a recognized line. Tesseract emits tab
// characters between well-separated columns and runs of spaces elsewhere.
var cellSplit = regexp.MustCompile(`\t| {2,}`)

// RowsFromText splits recognized text into grid rows. Each line becomes one
// row; within a line, cells are separated by tabs or by two or more
// consecutive spaces. Blank lines produce blank rows, which downstream
// segmentation treats as region boundaries.
func RowsFromText(text string) []model.Row {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	rows := make([]model.Row, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, rowFromLine(line))
	}
	return rows
}

func rowFromLine(line string) model.Row {
	line = strings.TrimSpace(line)
	if line == "" {
		return model.Row{}
	}

	fields := cellSplit.Split(line, -1)
	row := make(model.Row, 0, len(fields))
	for _, field := range fields {
		row = append(row, model.ParseCell(field))
	}
	return row
}
