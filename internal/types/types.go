// =============================================================================
// Fraud Account Analyzer - Shared Types
// =============================================================================
//
// This package contains the tabular shape produced by every decoder and
// consumed by the pipeline. It lives on its own to avoid import cycles
// between the decoders (csvparser, xlsxparser), ingest and pipeline.
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// TABLE TYPES
// =============================================================================

// Table is one fully materialized input file.
type Table struct {
	// Headers are the raw header strings in column order.
	Headers []string

	// Records are the data rows in file order.
	Records []Record

	// SourceFile is the path the table was decoded from.
	SourceFile string

	// Sheet is the worksheet name for spreadsheet inputs, empty for CSV.
	Sheet string
}

// Record is a single data row.
type Record struct {
	// Index is the 1-based row number in the source file, counting header rows.
	// Defect messages substitute this value for {row}.
	Index int

	// Cells maps raw header -> raw cell text.
	Cells map[string]string
}

// Get returns the cell for header, or "" when the header is absent.
func (r Record) Get(header string) string {
	if header == "" {
		return ""
	}
	return r.Cells[header]
}

// RowCount returns the number of data records.
func (t *Table) RowCount() int {
	return len(t.Records)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.Headers)
}

// NewRecord builds a record from one decoded row. Missing trailing cells are
// empty. When a header repeats, the first column with that header wins.
func NewRecord(index int, headers, row []string) Record {
	cells := make(map[string]string, len(headers))
	for i, header := range headers {
		if _, dup := cells[header]; dup {
			continue
		}
		if i < len(row) {
			cells[header] = row[i]
		} else {
			cells[header] = ""
		}
	}
	return Record{Index: index, Cells: cells}
}

// CleanHeaders trims header text and names blank headers Column_N.
func CleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}
