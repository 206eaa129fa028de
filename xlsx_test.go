package main

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() *Table {
	return normalize([]Row{
		newRow(`docs`, "", "", 0, `docs\`, true),
		newRow(`docs\index.html`, "Home", "", 1, "index.html", false),
	})
}

func TestSinkFor(t *testing.T) {
	tests := []struct {
		output string
		want   ReportSink
	}{
		{"output.xlsx", xlsxSink{}},
		{"report.PDF", &pdfSink{fontFile: "font.ttf"}},
		{"table.tsv", tsvSink{}},
		{"table.txt", tsvSink{}},
		{"noext", xlsxSink{}},
	}
	for _, tt := range tests {
		got := sinkFor(&ScanConfig{Output: tt.output, PDFFont: "font.ttf"})
		assert.Equal(t, tt.want, got, tt.output)
	}
}

func TestXLSXSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.xlsx")
	table := sampleTable()

	require.NoError(t, xlsxSink{}.Write(table, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Path", "Title", "Remark", "LV1", "LV2"}, rows[0])
	assert.Empty(t, rows[1])
	assert.Equal(t, "docs", rows[2][0])
	assert.Equal(t, `docs\`, rows[2][3])
	assert.Equal(t, `docs\index.html`, rows[3][0])
	assert.Equal(t, "Home", rows[3][1])
	assert.Equal(t, "index.html", rows[3][4])

	assert.NotContains(t, sheetXML(t, path), `width="0"`)

	width, err := f.GetColWidth(sheetName, "E")
	require.NoError(t, err)
	assert.Equal(t, float64(nameWidth), width)

	panes, err := f.GetPanes(sheetName)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.XSplit)
	assert.Equal(t, 1, panes.YSplit)
}

// sheetXML returns the raw worksheet part of a saved workbook.
func sheetXML(t *testing.T, path string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, file := range zr.File {
		if file.Name != "xl/worksheets/sheet1.xml" {
			continue
		}
		rc, err := file.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("worksheet part missing from %s", path)
	return ""
}

func TestXLSXSinkEmptyColumnsKeepDefaultWidth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"docs/readme.md": "# readme"})
	cfg := scanConfig(t, ScanOptions{Dir: root, Output: filepath.Join(t.TempDir(), "output.xlsx")})
	table, _ := scanTable(t, cfg)
	require.Zero(t, table.Columns[cellTitle].Width)
	require.Zero(t, table.Columns[cellRemark].Width)

	require.NoError(t, xlsxSink{}.Write(table, cfg.Output))

	xml := sheetXML(t, cfg.Output)
	assert.Contains(t, xml, "<cols>")
	assert.NotContains(t, xml, `width="0"`)

	f, err := excelize.OpenFile(cfg.Output)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Equal(t, "Title", rows[0][cellTitle])
	assert.Equal(t, "Remark", rows[0][cellRemark])
}

func TestXLSXSinkBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "output.xlsx")
	assert.Error(t, xlsxSink{}.Write(sampleTable(), path))
}

func TestTSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.tsv")

	require.NoError(t, tsvSink{}.Write(sampleTable(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Path\tTitle\tRemark\tLV1\tLV2", lines[0])
}

func TestPDFSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")

	require.NoError(t, (&pdfSink{}).Write(sampleTable(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestPDFSinkMissingFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	err := (&pdfSink{fontFile: filepath.Join(t.TempDir(), "none.ttf")}).Write(sampleTable(), path)
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestPDFColumnWidths(t *testing.T) {
	widths := pdfColumnWidths(sampleTable().Columns)

	var total float64
	for _, w := range widths {
		assert.Greater(t, w, 0.0)
		total += w
	}
	assert.InDelta(t, pdfPageWidth-2*pdfMargin, total, 0.001)
}
