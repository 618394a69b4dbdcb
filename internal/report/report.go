// =============================================================================
// Fraud Account Analyzer - Report Generator
// =============================================================================
//
// Writes the investigator-facing outputs of one run:
//   - XLSX workbook: "Fraud Accounts", "Quality Report", "Flagged Rows"
//   - CSV export of the account table
//   - Plain-text summary: statistics, quality figures, top accounts
//
// Reports consume the sorted account list as given. Nothing here reorders
// or recomputes it.
//
// =============================================================================

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/aggregation"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/validation"
)

// =============================================================================
// REPORT INPUT
// =============================================================================

// Input is everything a report may show.
type Input struct {
	RunID       string
	SourceFile  string
	ProfileName string
	GeneratedAt time.Time

	// Accounts in sorted order.
	Accounts []aggregation.Account

	Statistics aggregation.Statistics
	Quality    validation.QualityReport

	// Flagged are the row outcomes with at least one defect, in row order.
	Flagged []validation.Outcome

	// TableDefects are the table-wide defects (DUPLICATE_ACK).
	TableDefects []validation.Defect
}

// AccountColumns are the column headers of the account table.
var AccountColumns = []string{
	"Fraudster Bank Account Number",
	"All Acknowledgement Numbers",
	"ACK Count",
	"Bank Name",
	"IFSC Code",
	"Address",
	"Total Transactions",
	"Total Amount",
	"Total Disputed Amount",
	"Risk Score",
}

// =============================================================================
// WRITER
// =============================================================================

// Writer writes reports into a directory.
type Writer struct {
	OutputDir string
}

// NewWriter returns a Writer for dir.
func NewWriter(dir string) *Writer {
	return &Writer{OutputDir: dir}
}

// Write produces every requested format.
//
// PARAMETERS:
//   - baseName: Output file name without extension.
//   - formats: Any of config.FormatXLSX, config.FormatCSV, config.FormatSummary.
//   - in: The report data.
//
// RETURNS:
//   - The paths written, in the order of formats.
//   - An error for an unknown format or a failed write. Files already
//     written are left in place.
func (w *Writer) Write(baseName string, formats []string, in Input) ([]string, error) {
	if err := os.MkdirAll(w.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, format := range formats {
		var (
			path string
			err  error
		)

		switch strings.ToLower(format) {
		case config.FormatXLSX:
			path = filepath.Join(w.OutputDir, baseName+".xlsx")
			err = WriteXLSX(path, in)
		case config.FormatCSV:
			path = filepath.Join(w.OutputDir, baseName+".csv")
			err = WriteCSV(path, in.Accounts)
		case config.FormatSummary:
			path = filepath.Join(w.OutputDir, baseName+"_summary.txt")
			err = WriteSummary(path, in)
		default:
			err = fmt.Errorf("unknown report format %q", format)
		}

		if err != nil {
			return written, fmt.Errorf("failed to write %s report: %w", format, err)
		}
		written = append(written, path)
	}

	return written, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// FormatAmount renders an amount with two decimals and thousands separators.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + b.String() + frac
}
