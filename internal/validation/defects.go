// =============================================================================
// Fraud Account Analyzer - Defect Taxonomy
// =============================================================================
//
// Every data problem the pipeline reports has a code, and every code belongs
// to exactly one severity:
//
//   CRITICAL  - the affected unit is excluded. Column and file codes abort
//               the run before any row is processed; row codes exclude just
//               that row from aggregation.
//   WARNING   - recorded in the quality report and the defect lists, never
//               exclusionary.
//
// Messages are templates. {row}, {ack_no} and {limit} are substituted when a
// defect is created.
//
// =============================================================================

package validation

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// SEVERITY AND CODES
// =============================================================================

// Severity is the tier a defect code belongs to.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Code identifies a defect.
type Code string

// Critical codes.
const (
	CodeNoAccountColumn Code = "NO_ACCOUNT_COLUMN"
	CodeNoAmountColumn  Code = "NO_AMOUNT_COLUMN"
	CodeFileCorrupted   Code = "FILE_CORRUPTED"
	CodeFileTooLarge    Code = "FILE_TOO_LARGE"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNoAccountValue  Code = "NO_ACCOUNT_VALUE"
	CodeNoAmountValue   Code = "NO_AMOUNT_VALUE"
)

// Warning codes.
const (
	CodeMissingIFSC       Code = "MISSING_IFSC"
	CodeInvalidIFSCFormat Code = "INVALID_IFSC_FORMAT"
	CodeMissingAddress    Code = "MISSING_ADDRESS"
	CodeInvalidAmount     Code = "INVALID_AMOUNT"
	CodeDuplicateAck      Code = "DUPLICATE_ACK"
	CodeInvalidAccount    Code = "INVALID_ACCOUNT"
)

var criticalCodes = []Code{
	CodeNoAccountColumn,
	CodeNoAmountColumn,
	CodeFileCorrupted,
	CodeFileTooLarge,
	CodeInvalidFormat,
	CodeNoAccountValue,
	CodeNoAmountValue,
}

var warningCodes = []Code{
	CodeMissingIFSC,
	CodeInvalidIFSCFormat,
	CodeMissingAddress,
	CodeInvalidAmount,
	CodeDuplicateAck,
	CodeInvalidAccount,
}

var messages = map[Code]string{
	CodeNoAccountColumn: "No bank account number column found in the file",
	CodeNoAmountColumn:  "No amount column found in the file",
	CodeFileCorrupted:   "File is corrupted or unreadable",
	CodeFileTooLarge:    "File exceeds maximum size limit of {limit}MB",
	CodeInvalidFormat:   "File format is not supported",
	CodeNoAccountValue:  "Missing or unreadable bank account number at row {row}",
	CodeNoAmountValue:   "Missing, unparsable or non-positive amount at row {row}",

	CodeMissingIFSC:       "IFSC code missing for row {row}",
	CodeInvalidIFSCFormat: "Invalid IFSC format at row {row}",
	CodeMissingAddress:    "Address missing for row {row}",
	CodeInvalidAmount:     "Invalid amount format at row {row}, using 0",
	CodeDuplicateAck:      "Duplicate acknowledgement number: {ack_no}",
	CodeInvalidAccount:    "Invalid account number format at row {row}",
}

// CriticalCodes returns the critical codes in report order.
func CriticalCodes() []Code {
	return append([]Code(nil), criticalCodes...)
}

// WarningCodes returns the warning codes in report order.
func WarningCodes() []Code {
	return append([]Code(nil), warningCodes...)
}

// AllCodes returns critical then warning codes.
func AllCodes() []Code {
	return append(CriticalCodes(), warningCodes...)
}

// Severity returns the tier of c, or "" for an unknown code.
func (c Code) Severity() Severity {
	for _, k := range criticalCodes {
		if k == c {
			return SeverityCritical
		}
	}
	for _, k := range warningCodes {
		if k == c {
			return SeverityWarning
		}
	}
	return ""
}

// Template returns the unrendered message template for c.
func (c Code) Template() string {
	if t, ok := messages[c]; ok {
		return t
	}
	return "Unknown error: " + string(c)
}

// Vars are the substitutions available to message templates.
type Vars struct {
	Row     int
	AckNo   string
	LimitMB int64
}

// Render fills the template of c.
func (c Code) Render(v Vars) string {
	r := strings.NewReplacer(
		"{row}", strconv.Itoa(v.Row),
		"{ack_no}", v.AckNo,
		"{limit}", strconv.FormatInt(v.LimitMB, 10),
	)
	return r.Replace(c.Template())
}

// =============================================================================
// DEFECTS
// =============================================================================

// Defect is one recorded data problem.
type Defect struct {
	// Code identifies the problem; Severity is derived from it.
	Code     Code
	Severity Severity

	// Field is the canonical field involved, if any.
	Field string

	// Value is the offending cell text, if any.
	Value string

	// Row is the source row for row-scoped defects, 0 for table scope.
	Row int

	// Rows lists every offending row for table-scoped defects (DUPLICATE_ACK).
	Rows []int

	// Message is the rendered template.
	Message string
}

// NewRowDefect builds a row-scoped defect.
func NewRowDefect(code Code, row int, field, value string) Defect {
	return Defect{
		Code:     code,
		Severity: code.Severity(),
		Field:    field,
		Value:    value,
		Row:      row,
		Message:  code.Render(Vars{Row: row}),
	}
}

// String formats the defect for logs.
func (d Defect) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", strings.ToUpper(string(d.Severity)), d.Code, d.Message)
	if len(d.Rows) > 0 {
		rows := make([]string, len(d.Rows))
		for i, r := range d.Rows {
			rows[i] = strconv.Itoa(r)
		}
		fmt.Fprintf(&b, " (rows %s)", strings.Join(rows, ", "))
	}
	if d.Value != "" && d.Code != CodeDuplicateAck {
		fmt.Fprintf(&b, " (value: '%s')", d.Value)
	}
	return b.String()
}

// =============================================================================
// RUN ERRORS
// =============================================================================

// RunError is a critical condition that stops the whole run: a missing
// required column or an unusable input file. Its message is meant to be shown
// to the caller verbatim.
type RunError struct {
	Code    Code
	Message string
	Err     error
}

// NewRunError builds a RunError for code with the rendered template.
func NewRunError(code Code, v Vars, cause error) *RunError {
	return &RunError{Code: code, Message: code.Render(v), Err: cause}
}

// Error implements the error interface.
func (e *RunError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *RunError) Unwrap() error {
	return e.Err
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatDefects formats defects for display or logging.
func FormatDefects(defects []Defect) string {
	if len(defects) == 0 {
		return "No data quality issues."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Validation completed with %d issue(s):\n\n", len(defects))
	for i, d := range defects {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d.String())
	}
	return b.String()
}
