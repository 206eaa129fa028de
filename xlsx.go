package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReportSink renders a finalized table to a file.
type ReportSink interface {
	Write(table *Table, path string) error
}

// sinkFor picks a sink from the output file extension; unknown extensions get a spreadsheet.
func sinkFor(cfg *ScanConfig) ReportSink {
	switch strings.ToLower(filepath.Ext(cfg.Output)) {
	case ".pdf":
		return &pdfSink{fontFile: cfg.PDFFont}
	case ".tsv", ".txt":
		return tsvSink{}
	default:
		return xlsxSink{}
	}
}

const (
	sheetName   = "Tree"
	headerFill  = "999999"
	borderColor = "000000"
	// excelize border style indexes
	borderThin   = 1
	borderDotted = 4
	// data rows start below the header and one blank spacer row
	firstDataRow = 3
)

type xlsxSink struct{}

func (xlsxSink) Write(table *Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		// an empty column keeps the default width instead of collapsing
		if col.Width > 0 {
			if err := f.SetColWidth(sheetName, name, name, col.Width); err != nil {
				return err
			}
		}
		if err := f.SetColStyle(sheetName, name, styles.column(col.Kind)); err != nil {
			return err
		}
		header[i] = col.Header
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(table.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, styles.header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, firstDataRow+i)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row.Cells))
		for j, v := range row.Cells {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", firstDataRow+i, err)
		}
	}

	if err := setSheetView(f); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

type sheetStyles struct {
	header, text, level, name int
}

func (s sheetStyles) column(kind ColumnKind) int {
	switch kind {
	case ColumnLevel:
		return s.level
	case ColumnName:
		return s.name
	default:
		return s.text
	}
}

func borders(left, right int) []excelize.Border {
	return []excelize.Border{
		{Type: "top", Color: borderColor, Style: borderThin},
		{Type: "bottom", Color: borderColor, Style: borderThin},
		{Type: "left", Color: borderColor, Style: left},
		{Type: "right", Color: borderColor, Style: right},
	}
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Border: borders(borderThin, borderThin),
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
	}); err != nil {
		return s, err
	}
	if s.text, err = f.NewStyle(&excelize.Style{Border: borders(borderThin, borderThin)}); err != nil {
		return s, err
	}
	if s.level, err = f.NewStyle(&excelize.Style{Border: borders(borderDotted, borderDotted)}); err != nil {
		return s, err
	}
	if s.name, err = f.NewStyle(&excelize.Style{Border: borders(borderDotted, borderThin)}); err != nil {
		return s, err
	}
	return s, nil
}

// setSheetView freezes the path column and header row and fits the sheet to
// one page wide.
func setSheetView(f *excelize.File) error {
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return err
	}
	fitToPage := true
	if err := f.SetSheetProps(sheetName, &excelize.SheetPropsOptions{FitToPage: &fitToPage}); err != nil {
		return err
	}
	wide, high := 1, 100
	return f.SetPageLayout(sheetName, &excelize.PageLayoutOptions{
		FitToWidth:  &wide,
		FitToHeight: &high,
	})
}

type tsvSink struct{}

func (tsvSink) Write(table *Table, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeTSV(file, table); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
