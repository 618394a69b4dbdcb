// =============================================================================
// Fraud Account Analyzer - CSV Parser Module
// =============================================================================
//
// Decodes CSV exports into a types.Table. It handles:
//   - Different delimiters (comma, pipe, semicolon, tab)
//   - Multi-line headers
//   - Custom data start rows
//   - UTF-8 (with or without BOM), Windows-1252 and ISO-8859-1 input
//
// Rows are returned as they appear. Blank rows are kept so that the
// classifier can count them as dropped; cell text is not trimmed.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/types"
)

var (
	// ErrNoHeader is returned when the input has fewer rows than the header
	// settings require.
	ErrNoHeader = errors.New("file has no header row")

	// ErrUnsupportedEncoding is returned for an unknown encoding name.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file into a table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV settings of the source profile.
//
// RETURNS:
//   - The decoded table.
//   - An error if the file cannot be read or parsed.
func Parse(filePath string, settings config.CSVSettings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// ParseReader decodes CSV text from r.
//
// PARSING PROCESS:
//   1. Wrap r in the decoder for the configured encoding
//   2. Configure the CSV reader with the delimiter
//   3. Read and merge header rows
//   4. Read data rows starting from the configured data start row
func ParseReader(r io.Reader, settings config.CSVSettings) (*types.Table, error) {
	decoded, err := decodeReader(r, settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(bufio.NewReader(decoded))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	headers, err := extractHeaders(allRows, settings)
	if err != nil {
		return nil, err
	}

	return &types.Table{
		Headers: headers,
		Records: extractDataRows(allRows, headers, settings),
	}, nil
}

// decodeReader wraps r so that it yields UTF-8.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// lookupEncoding maps a configured encoding name to a decoder. UTF-8 input
// has any leading byte order mark removed.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "UTF-8", "UTF8":
		return unicode.UTF8BOM, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedEncoding, name)
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "pipe", "PIPE":
		reader.Comma = '|'
	case "semicolon":
		reader.Comma = ';'
	default:
		if d := []rune(settings.Delimiter); len(d) > 0 {
			reader.Comma = d[0]
		}
	}

	// Exports often carry ragged rows.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = settings.LazyQuotes
}

// extractHeaders extracts and merges headers.
//
// MULTI-LINE HEADER HANDLING:
//   Non-empty values of each column across the header rows are joined
//   with a space.
//
//   Row 1: "Beneficiary", "", "Amount"
//   Row 2: "Account No", "IFSC", ""
//   Result: "Beneficiary Account No", "IFSC", "Amount"
func extractHeaders(allRows [][]string, settings config.CSVSettings) ([]string, error) {
	headerRows := settings.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}
	if len(allRows) < headerRows {
		return nil, ErrNoHeader
	}

	if headerRows == 1 {
		return types.CleanHeaders(allRows[0]), nil
	}

	maxCols := 0
	for i := 0; i < headerRows; i++ {
		if len(allRows[i]) > maxCols {
			maxCols = len(allRows[i])
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < headerRows; row++ {
			if col < len(allRows[row]) {
				if value := strings.TrimSpace(allRows[row][col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}

	return types.CleanHeaders(headers), nil
}

// extractDataRows converts the data rows to records. Record indexes are the
// 1-based row numbers within the file.
func extractDataRows(allRows [][]string, headers []string, settings config.CSVSettings) []types.Record {
	startIndex := settings.DataStartRow - 1
	if startIndex < settings.HeaderRows {
		startIndex = settings.HeaderRows
	}
	if startIndex >= len(allRows) {
		return []types.Record{}
	}

	records := make([]types.Record, 0, len(allRows)-startIndex)
	for rowIndex := startIndex; rowIndex < len(allRows); rowIndex++ {
		records = append(records, types.NewRecord(rowIndex+1, headers, allRows[rowIndex]))
	}
	return records
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
// STREAMING PARSER
// =============================================================================

// StreamingParser reads records one at a time. Preview uses it so that only
// the first rows of a large file are decoded.
//
// USAGE:
//   parser, err := NewStreamingParser(filePath, settings)
//   if err != nil {
//       return err
//   }
//   defer parser.Close()
//
//   for parser.Next() {
//       rec := parser.Record()
//   }
//
//   if err := parser.Err(); err != nil {
//       return err
//   }
type StreamingParser struct {
	file      *os.File
	reader    *csv.Reader
	headers   []string
	current   types.Record
	rowNumber int
	err       error
	settings  config.CSVSettings
}

// NewStreamingParser opens filePath and reads its headers.
func NewStreamingParser(filePath string, settings config.CSVSettings) (*StreamingParser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	decoded, err := decodeReader(file, settings.Encoding)
	if err != nil {
		file.Close()
		return nil, err
	}

	reader := csv.NewReader(bufio.NewReader(decoded))
	configureReader(reader, settings)

	parser := &StreamingParser{
		file:     file,
		reader:   reader,
		settings: settings,
	}

	if err := parser.readHeaders(); err != nil {
		file.Close()
		return nil, err
	}
	if err := parser.skipToDataStart(); err != nil {
		file.Close()
		return nil, err
	}

	return parser, nil
}

// readHeaders reads and merges the header rows.
func (p *StreamingParser) readHeaders() error {
	n := p.settings.HeaderRows
	if n <= 0 {
		n = 1
	}
	headerRows := make([][]string, 0, n)

	for i := 0; i < n; i++ {
		row, err := p.reader.Read()
		if err == io.EOF {
			return ErrNoHeader
		}
		if err != nil {
			return fmt.Errorf("error reading header row %d: %w", i+1, err)
		}
		headerRows = append(headerRows, row)
		p.rowNumber++
	}

	headers, err := extractHeaders(headerRows, p.settings)
	if err != nil {
		return err
	}
	p.headers = headers
	return nil
}

// skipToDataStart skips rows until the data start row.
func (p *StreamingParser) skipToDataStart() error {
	for p.rowNumber < p.settings.DataStartRow-1 {
		_, err := p.reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error skipping to data start: %w", err)
		}
		p.rowNumber++
	}
	return nil
}

// Next advances to the next non-blank row. Returns false when there are no
// more rows or an error occurred.
func (p *StreamingParser) Next() bool {
	for p.err == nil {
		row, err := p.reader.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			p.err = fmt.Errorf("error reading row %d: %w", p.rowNumber+1, err)
			return false
		}
		p.rowNumber++

		if isRowEmpty(row) {
			continue
		}
		p.current = types.NewRecord(p.rowNumber, p.headers, row)
		return true
	}
	return false
}

// Record returns the current record.
func (p *StreamingParser) Record() types.Record {
	return p.current
}

// Headers returns the parsed headers.
func (p *StreamingParser) Headers() []string {
	return p.headers
}

// RowNumber returns the current row number (1-indexed).
func (p *StreamingParser) RowNumber() int {
	return p.rowNumber
}

// Err returns any error that occurred during parsing.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close closes the underlying file.
func (p *StreamingParser) Close() error {
	return p.file.Close()
}

// =============================================================================
// PREVIEW
// =============================================================================

// Preview decodes the headers and at most n non-blank records of a file.
func Preview(filePath string, settings config.CSVSettings, n int) (*types.Table, error) {
	parser, err := NewStreamingParser(filePath, settings)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	table := &types.Table{
		Headers:    parser.Headers(),
		SourceFile: filePath,
	}
	for len(table.Records) < n && parser.Next() {
		table.Records = append(table.Records, parser.Record())
	}
	if err := parser.Err(); err != nil {
		return nil, err
	}
	return table, nil
}
