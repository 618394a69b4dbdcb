// =============================================================================
// Fraud Account Analyzer - Upload Gate
// =============================================================================
//
// Checks an input file before any row is read and hands it to the decoder
// for its format.
//
// FILE-LEVEL CRITICAL CONDITIONS (returned as *validation.RunError):
//   - INVALID_FORMAT: extension other than .csv, .xlsx, .xlsm
//   - FILE_TOO_LARGE: size above the configured limit
//   - FILE_CORRUPTED: empty file, or the decoder cannot read it
//
// Any other failure (missing file, bad profile encoding) is returned as a
// plain error.
//
// =============================================================================

package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/csvparser"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/types"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/validation"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/xlsxparser"
)

// DefaultPreviewRows is the preview length when none is given.
const DefaultPreviewRows = 10

// Format is a supported input format.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatXLSX
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// FormatOf returns the format implied by the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatUnknown
	}
}

// SupportedExtensions lists the accepted input extensions.
func SupportedExtensions() []string {
	return []string{".csv", ".xlsx", ".xlsm"}
}

// =============================================================================
// GATE
// =============================================================================

// Check validates extension and size.
//
// PARAMETERS:
//   - path: The input file.
//   - maxBytes: The size limit. <= 0 disables the limit.
//
// RETURNS:
//   - The detected format.
//   - A *validation.RunError for file-level criticals, or a plain error.
func Check(path string, maxBytes int64) (Format, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return format, validation.NewRunError(validation.CodeInvalidFormat, validation.Vars{},
			eris.Errorf("ingest: unsupported extension %q", filepath.Ext(path)))
	}

	info, err := os.Stat(path)
	if err != nil {
		return format, eris.Wrap(err, "ingest: stat input")
	}
	if info.IsDir() {
		return format, eris.Errorf("ingest: %s is a directory", path)
	}

	if maxBytes > 0 && info.Size() > maxBytes {
		return format, validation.NewRunError(validation.CodeFileTooLarge,
			validation.Vars{LimitMB: maxBytes / (1024 * 1024)},
			eris.Errorf("ingest: %d bytes exceeds %d", info.Size(), maxBytes))
	}
	if info.Size() == 0 {
		return format, validation.NewRunError(validation.CodeFileCorrupted, validation.Vars{},
			eris.New("ingest: file is empty"))
	}

	return format, nil
}

// Load checks the file and decodes it fully.
//
// PARAMETERS:
//   - path: The input file.
//   - profile: The source profile (decode settings).
//   - maxBytes: The size limit. <= 0 disables the limit.
//
// RETURNS:
//   - The materialized table.
//   - A *validation.RunError for file-level criticals, or a plain error.
func Load(path string, profile *config.SourceProfile, maxBytes int64) (*types.Table, error) {
	format, err := Check(path, maxBytes)
	if err != nil {
		return nil, err
	}

	var table *types.Table
	switch format {
	case FormatCSV:
		table, err = csvparser.Parse(path, profile.CSVSettings)
	case FormatXLSX:
		table, err = xlsxparser.Parse(path, xlsxOptions(profile))
	}
	if err != nil {
		return nil, decodeError(err)
	}

	return table, nil
}

// Preview checks the file and decodes its headers and at most n records.
// n <= 0 uses DefaultPreviewRows.
func Preview(path string, profile *config.SourceProfile, maxBytes int64, n int) (*types.Table, error) {
	if n <= 0 {
		n = DefaultPreviewRows
	}

	format, err := Check(path, maxBytes)
	if err != nil {
		return nil, err
	}

	var table *types.Table
	switch format {
	case FormatCSV:
		table, err = csvparser.Preview(path, profile.CSVSettings, n)
	case FormatXLSX:
		table, err = xlsxparser.Preview(path, xlsxOptions(profile), n)
	}
	if err != nil {
		return nil, decodeError(err)
	}

	return table, nil
}

func xlsxOptions(profile *config.SourceProfile) xlsxparser.Options {
	return xlsxparser.Options{
		Sheet:        profile.SheetName,
		HeaderRows:   profile.CSVSettings.HeaderRows,
		DataStartRow: profile.CSVSettings.DataStartRow,
	}
}

// decodeError classifies a decoder failure. Configuration problems stay
// plain errors; everything else means the file cannot be read.
func decodeError(err error) error {
	if errors.Is(err, csvparser.ErrUnsupportedEncoding) {
		return eris.Wrap(err, "ingest: profile encoding")
	}
	return validation.NewRunError(validation.CodeFileCorrupted, validation.Vars{}, eris.Wrap(err, "ingest: decode"))
}
