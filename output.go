package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

const (
	maxPathWidth  = 80
	wideTextWidth = 80
	wideTextLimit = 40
	levelWidth    = 5
	nameWidth     = 40
)

// sortRows orders rows by path cell using byte-wise comparison, which matches
// code point order for UTF-8. Equal paths keep their relative order.
func sortRows(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		return strings.Compare(a.Path(), b.Path())
	})
}

// filterRows keeps file rows whose path cell matches filter. Directory rows
// always pass so the hierarchy of kept files stays readable.
func filterRows(rows []Row, filter *regexp2.Regexp) ([]Row, error) {
	if filter == nil {
		return rows, nil
	}
	kept := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.IsDir {
			kept = append(kept, row)
			continue
		}
		ok, err := filter.MatchString(row.Path())
		if err != nil {
			return nil, fmt.Errorf("filter failed on %s: %w", row.Path(), err)
		}
		if ok {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// maxRowLength returns the largest cell count across rows, never less than
// the fixed cells plus a name cell.
func maxRowLength(rows []Row) int {
	width := fixedCells + 1
	for _, row := range rows {
		width = max(width, len(row.Cells))
	}
	return width
}

// normalize pads every row with trailing empty cells to the table width and
// computes the column layout.
func normalize(rows []Row) *Table {
	width := maxRowLength(rows)
	padded := make([]Row, len(rows))
	for i, row := range rows {
		cells := make([]string, width)
		copy(cells, row.Cells)
		padded[i] = Row{Cells: cells, IsDir: row.IsDir}
	}
	return &Table{
		Rows:    padded,
		Width:   width,
		Columns: columnLayout(rows, width),
	}
}

// columnLayout sizes the path, title and remark columns from their longest
// values and emits one LV column per depth level.
func columnLayout(rows []Row, width int) []Column {
	var pathLen, titleLen, remarkLen int
	for _, row := range rows {
		pathLen = max(pathLen, cellLen(row, cellPath))
		titleLen = max(titleLen, cellLen(row, cellTitle))
		remarkLen = max(remarkLen, cellLen(row, cellRemark))
	}

	cols := []Column{
		{Header: "Path", Width: float64(min(pathLen, maxPathWidth)), Kind: ColumnText},
		{Header: "Title", Width: textWidth(titleLen), Kind: ColumnText},
		{Header: "Remark", Width: textWidth(remarkLen), Kind: ColumnText},
	}

	levels := max(1, width-fixedCells)
	for i := 1; i <= levels; i++ {
		col := Column{Header: fmt.Sprintf("LV%d", i), Width: levelWidth, Kind: ColumnLevel}
		if i == levels {
			col.Width = nameWidth
			col.Kind = ColumnName
		}
		cols = append(cols, col)
	}
	return cols
}

func textWidth(n int) float64 {
	if n > wideTextLimit {
		return wideTextWidth
	}
	return float64(n * 2)
}

func cellLen(row Row, i int) int {
	if i >= len(row.Cells) {
		return 0
	}
	return utf8.RuneCountInString(row.Cells[i])
}

// buildTable runs the post-traversal pipeline: sort, filter, normalize.
func buildTable(rows []Row, filter *regexp2.Regexp) (*Table, error) {
	sortRows(rows)
	kept, err := filterRows(rows, filter)
	if err != nil {
		return nil, err
	}
	return normalize(kept), nil
}

// writeTSV renders the table as tab-separated values with a header line.
func writeTSV(w io.Writer, table *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	header := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col.Header
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := cw.Write(row.Cells); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func tableTSV(table *Table) (string, error) {
	var b strings.Builder
	if err := writeTSV(&b, table); err != nil {
		return "", err
	}
	return b.String(), nil
}
