// =============================================================================
// Fraud Account Analyzer - XLSX Parser Module
// =============================================================================
//
// Decodes one worksheet of an .xlsx/.xlsm workbook into a types.Table.
//
// SHEET SELECTION:
//   The profile's sheet_name when set, otherwise the first sheet.
//
// CELL VALUES:
//   Cells are read with their raw (unformatted) values so that long account
//   numbers stored as numbers are not shown in scientific notation.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/types"
)

var (
	// ErrNoSheets is returned for a workbook without worksheets.
	ErrNoSheets = errors.New("workbook has no sheets")

	// ErrNoHeader is returned when the sheet has fewer rows than the header
	// settings require.
	ErrNoHeader = errors.New("sheet has no header row")
)

// Options selects what to read from a workbook.
type Options struct {
	// Sheet is the worksheet name. Empty selects the first sheet.
	Sheet string

	// HeaderRows is the number of header rows. Default: 1
	HeaderRows int

	// DataStartRow is the 1-based row where data begins.
	// Default: HeaderRows + 1
	DataStartRow int
}

func (o Options) withDefaults() Options {
	if o.HeaderRows <= 0 {
		o.HeaderRows = 1
	}
	if o.DataStartRow <= o.HeaderRows {
		o.DataStartRow = o.HeaderRows + 1
	}
	return o
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads one sheet of a workbook file.
//
// PARAMETERS:
//   - filePath: The path to the workbook.
//   - opts: Sheet and header settings.
//
// RETURNS:
//   - The decoded table, with Sheet set to the sheet that was read.
//   - An error if the workbook cannot be opened or the sheet is missing.
func Parse(filePath string, opts Options) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	table, err := parseFile(f, opts)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// ParseReader reads one sheet of a workbook from r.
func ParseReader(r io.Reader, opts Options) (*types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFile(f, opts)
}

func parseFile(f *excelize.File, opts Options) (*types.Table, error) {
	opts = opts.withDefaults()

	sheet, err := resolveSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet '%s': %w", sheet, err)
	}
	if len(rows) < opts.HeaderRows {
		return nil, ErrNoHeader
	}

	headers := mergeHeaders(rows[:opts.HeaderRows])

	table := &types.Table{
		Headers: headers,
		Records: []types.Record{},
		Sheet:   sheet,
	}
	for i := opts.DataStartRow - 1; i < len(rows); i++ {
		table.Records = append(table.Records, types.NewRecord(i+1, headers, rows[i]))
	}
	return table, nil
}

// resolveSheet returns the requested sheet, or the first sheet when name is
// empty. Names match case-insensitively.
func resolveSheet(f *excelize.File, name string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", ErrNoSheets
	}
	if name == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if strings.EqualFold(s, name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("sheet '%s' not found (available: %s)", name, strings.Join(sheets, ", "))
}

// mergeHeaders joins the non-empty values of each column across the header
// rows with a space.
func mergeHeaders(headerRows [][]string) []string {
	maxCols := 0
	for _, row := range headerRows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for _, row := range headerRows {
			if col < len(row) {
				if v := strings.TrimSpace(row[col]); v != "" {
					parts = append(parts, v)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}
	return types.CleanHeaders(headers)
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// PREVIEW
// =============================================================================

// Preview reads the headers and at most n non-blank records, streaming the
// sheet rather than loading it whole.
func Preview(filePath string, opts Options, n int) (*types.Table, error) {
	opts = opts.withDefaults()

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet '%s': %w", sheet, err)
	}
	defer rows.Close()

	table := &types.Table{SourceFile: filePath, Sheet: sheet}
	var headerRows [][]string
	rowNumber := 0

	for rows.Next() {
		rowNumber++
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", rowNumber, err)
		}

		switch {
		case rowNumber <= opts.HeaderRows:
			headerRows = append(headerRows, cols)
			if rowNumber == opts.HeaderRows {
				table.Headers = mergeHeaders(headerRows)
			}
		case rowNumber < opts.DataStartRow || isRowEmpty(cols):
			continue
		default:
			table.Records = append(table.Records, types.NewRecord(rowNumber, table.Headers, cols))
		}

		if table.Headers != nil && len(table.Records) >= n {
			break
		}
	}
	if err := rows.Error(); err != nil {
		return nil, err
	}
	if table.Headers == nil {
		return nil, ErrNoHeader
	}
	return table, nil
}

// SheetNames lists the worksheets of a workbook.
func SheetNames(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
