package main

// Row is one flattened output record for a file or directory.
// Cells holds path, title, search summary, one blank per depth level and the base name.
type Row struct {
	Cells []string
	IsDir bool
}

// Path returns the path cell used for sorting and filtering.
func (r Row) Path() string {
	if len(r.Cells) == 0 {
		return ""
	}
	return r.Cells[0]
}

const (
	cellPath = iota
	cellTitle
	cellRemark
	// leading cells before the depth placeholders
	fixedCells
)

// ColumnKind describes how a report sink should style a column.
type ColumnKind int

const (
	ColumnText  ColumnKind = iota // path, title, remark
	ColumnLevel                   // depth indicator
	ColumnName                    // last depth column, holds the deepest names
)

// Column is the presentation configuration for one report column.
type Column struct {
	Header string
	Width  float64
	Kind   ColumnKind
}

// Table is the finalized, normalized report handed to a sink.
// Every row in Rows has exactly Width cells.
type Table struct {
	Rows    []Row
	Width   int
	Columns []Column
}

// Summary holds aggregated counts for a finished scan.
type Summary struct {
	Rows      int
	Files     int
	Dirs      int
	Inspected int
	Matched   int
}

// EncodingDecision is the detected encoding and decoded text of one file.
type EncodingDecision struct {
	Encoding Encoding
	Label    string // detector output, empty if detection failed
	Text     string
}
