package main

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 297 // A4 landscape width in mm
	pdfMargin     = 10  // Margin in mm
	pdfLineHeight = 5   // Line height in mm
	pdfFontSize   = 7
	pdfFontFamily = "Helvetica"
	pdfUTF8Family = "report"
)

// pdfSink renders the table as a landscape PDF. The core fonts only cover
// Latin-1; set fontFile to a TTF to render other scripts.
type pdfSink struct {
	fontFile string
}

func (s *pdfSink) Write(table *Table, path string) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)

	family := pdfFontFamily
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if s.fontFile != "" {
		pdf.AddUTF8Font(pdfUTF8Family, "", s.fontFile)
		family = pdfUTF8Family
		tr = func(text string) string { return text }
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to load font %s: %w", s.fontFile, err)
	}

	widths := pdfColumnWidths(table.Columns)
	header := func() {
		pdf.SetFont(family, "", pdfFontSize)
		pdf.SetFillColor(0x99, 0x99, 0x99)
		for i, col := range table.Columns {
			pdf.CellFormat(widths[i], pdfLineHeight, col.Header, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetHeaderFunc(header)
	pdf.AddPage()

	pdf.SetFont(family, "", pdfFontSize)
	for _, row := range table.Rows {
		for i, cell := range row.Cells {
			border := "1"
			if table.Columns[i].Kind == ColumnLevel {
				border = "TB"
			}
			text := fitText(pdf, tr, cell, widths[i])
			pdf.CellFormat(widths[i], pdfLineHeight, text, border, 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", path, err)
	}
	return nil
}

// pdfColumnWidths scales the character widths of the spreadsheet layout down
// to the printable page width.
func pdfColumnWidths(cols []Column) []float64 {
	var total float64
	for _, col := range cols {
		total += max(col.Width, 1)
	}
	printable := float64(pdfPageWidth - 2*pdfMargin)
	widths := make([]float64, len(cols))
	for i, col := range cols {
		widths[i] = max(col.Width, 1) / total * printable
	}
	return widths
}

// fitText trims s rune by rune until its translated form fits in width mm.
func fitText(pdf *gofpdf.Fpdf, tr func(string) string, s string, width float64) string {
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(tr(string(runes)))+2 > width {
		runes = runes[:len(runes)-1]
	}
	return tr(string(runes))
}
