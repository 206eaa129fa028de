package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsOf(paths ...string) []Row {
	rows := make([]Row, len(paths))
	for i, p := range paths {
		rows[i] = Row{Cells: []string{p, "", "", p}, IsDir: strings.HasSuffix(p, "/")}
	}
	return rows
}

func pathsOf(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Path()
	}
	return out
}

func TestSortRows(t *testing.T) {
	rows := rowsOf("/b", "/a/z", "/a", "/B", "/a/b", "/ä")
	sortRows(rows)
	assert.Equal(t, []string{"/B", "/a", "/a/b", "/a/z", "/b", "/ä"}, pathsOf(rows))
}

func TestSortRowsStable(t *testing.T) {
	rows := []Row{
		{Cells: []string{"/same", "first"}},
		{Cells: []string{"/same", "second"}},
	}
	sortRows(rows)
	assert.Equal(t, "first", rows[0].Cells[1])
	assert.Equal(t, "second", rows[1].Cells[1])
}

func TestFilterRows(t *testing.T) {
	filter, err := compileFilter("html")
	require.NoError(t, err)

	rows := rowsOf("/docs/", "/docs/index.html", "/docs/site.css", "/top.html")
	kept, err := filterRows(rows, filter)
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs/", "/docs/index.html", "/top.html"}, pathsOf(kept))

	again, err := filterRows(kept, filter)
	require.NoError(t, err)
	assert.Equal(t, kept, again)

	all, err := filterRows(rows, nil)
	require.NoError(t, err)
	assert.Len(t, all, len(rows))
}

func TestNormalize(t *testing.T) {
	rows := []Row{
		newRow("/a", "", "", 0, "a/", true),
		newRow("/a/b", "", "", 1, "b/", true),
		newRow("/a/b/c.txt", "", "", 2, "c.txt", false),
	}

	table := normalize(rows)

	assert.Equal(t, 6, table.Width)
	for _, row := range table.Rows {
		assert.Len(t, row.Cells, 6)
	}
	assert.Equal(t, []string{"/a", "", "", "a/", "", ""}, table.Rows[0].Cells)
	assert.Equal(t, []string{"/a/b/c.txt", "", "", "", "", "c.txt"}, table.Rows[2].Cells)
	// input rows are left untouched
	assert.Len(t, rows[0].Cells, 4)
}

func TestColumnLayout(t *testing.T) {
	rows := []Row{
		newRow("/short", strings.Repeat("t", 10), strings.Repeat("r", 41), 2, "x", false),
	}

	table := normalize(rows)
	cols := table.Columns

	require.Len(t, cols, table.Width)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	assert.Equal(t, []string{"Path", "Title", "Remark", "LV1", "LV2", "LV3"}, headers)

	assert.Equal(t, float64(len("/short")), cols[cellPath].Width)
	assert.Equal(t, float64(20), cols[cellTitle].Width)
	assert.Equal(t, float64(wideTextWidth), cols[cellRemark].Width)
	assert.Equal(t, ColumnLevel, cols[3].Kind)
	assert.Equal(t, float64(levelWidth), cols[3].Width)
	assert.Equal(t, ColumnName, cols[5].Kind)
	assert.Equal(t, float64(nameWidth), cols[5].Width)
}

func TestColumnLayoutLongPath(t *testing.T) {
	long := "/" + strings.Repeat("日", 120)
	table := normalize([]Row{newRow(long, "", "", 0, "日", false)})

	assert.Equal(t, float64(maxPathWidth), table.Columns[cellPath].Width)
	require.Len(t, table.Columns, 4)
	assert.Equal(t, "LV1", table.Columns[3].Header)
	assert.Equal(t, ColumnName, table.Columns[3].Kind)
}

func TestBuildTable(t *testing.T) {
	rows := []Row{
		newRow("/z.txt", "", "", 0, "z.txt", false),
		newRow("/a", "", "", 0, "a/", true),
		newRow("/a/index.html", "Home", "", 1, "index.html", false),
	}
	filter, err := compileFilter("html")
	require.NoError(t, err)

	table, err := buildTable(rows, filter)
	require.NoError(t, err)

	assert.Equal(t, []string{"/a", "/a/index.html"}, pathsOf(table.Rows))
	assert.Equal(t, 5, table.Width)
}

func TestWriteTSV(t *testing.T) {
	table := normalize([]Row{
		newRow("/a", "", "", 0, "a/", true),
		newRow("/a/index.html", "Home", "1件, foo", 1, "index.html", false),
	})

	out, err := tableTSV(table)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Path\tTitle\tRemark\tLV1\tLV2", lines[0])
	assert.Equal(t, "/a\t\t\ta/\t", lines[1])
	assert.Equal(t, "/a/index.html\tHome\t1件, foo\t\tindex.html", lines[2])
}
