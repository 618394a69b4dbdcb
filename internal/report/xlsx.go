package report

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/aggregation"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/validation"
)

// Sheet names of the workbook.
const (
	SheetAccounts = "Fraud Accounts"
	SheetQuality  = "Quality Report"
	SheetFlagged  = "Flagged Rows"
	SheetAcks     = "Acknowledgements"
)

// WriteXLSX writes the report workbook.
func WriteXLSX(path string, in Input) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetAccounts); err != nil {
		return err
	}
	for _, name := range []string{SheetQuality, SheetFlagged} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	spilled, err := writeAccountsSheet(f, headerStyle, in)
	if err != nil {
		return err
	}
	if err := writeQualitySheet(f, headerStyle, in); err != nil {
		return err
	}
	if err := writeFlaggedSheet(f, headerStyle, in); err != nil {
		return err
	}
	if len(spilled) > 0 {
		if err := writeAcksSheet(f, headerStyle, spilled); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// headerRow turns header strings into styled cells for a stream writer.
func headerRow(style int, headers ...string) []interface{} {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = excelize.Cell{StyleID: style, Value: h}
	}
	return row
}

// writeRows writes rows from A1 down and styles the rows listed in headers.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int, headers ...int) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	for _, r := range headers {
		width := len(rows[r-1])
		start, _ := excelize.CoordinatesToCellName(1, r)
		end, _ := excelize.CoordinatesToCellName(width, r)
		if err := f.SetCellStyle(sheet, start, end, headerStyle); err != nil {
			return err
		}
	}
	return nil
}

// writeAccountsSheet streams the account table. Account numbers are written
// as text so leading zeros survive. Accounts whose acknowledgement list does
// not fit in one cell are returned; their cell points at the
// Acknowledgements sheet instead.
func writeAccountsSheet(f *excelize.File, headerStyle int, in Input) ([]aggregation.Account, error) {
	sw, err := f.NewStreamWriter(SheetAccounts)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream writer: %w", err)
	}

	widths := []float64{30, 45, 10, 25, 14, 40, 18, 16, 20, 12}
	for i, w := range widths {
		if err := sw.SetColWidth(i+1, i+1, w); err != nil {
			return nil, err
		}
	}

	if err := sw.SetRow("A1", headerRow(headerStyle, AccountColumns...)); err != nil {
		return nil, err
	}

	var spilled []aggregation.Account
	for i, a := range in.Accounts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		acks := a.AcknowledgementNumbers()
		if cellLen(acks) > excelize.TotalCellChars {
			acks = fmt.Sprintf("%d acknowledgement numbers, see %s sheet", a.AckCount(), SheetAcks)
			spilled = append(spilled, a)
		}
		row := []interface{}{
			a.AccountNumber,
			acks,
			a.AckCount(),
			a.BankName,
			a.IFSCCode,
			a.Address,
			a.TotalTransactions,
			a.TotalAmount.InexactFloat64(),
			a.TotalDisputedAmount.InexactFloat64(),
			a.RiskScore,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("failed to write account row %d: %w", i+1, err)
		}
	}

	return spilled, sw.Flush()
}

// cellLen counts UTF-16 code units, the unit of the cell length limit.
func cellLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// writeAcksSheet lists the acknowledgement numbers of the given accounts,
// one row per account and acknowledgement.
func writeAcksSheet(f *excelize.File, headerStyle int, accounts []aggregation.Account) error {
	if _, err := f.NewSheet(SheetAcks); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", SheetAcks, err)
	}

	rows := [][]interface{}{
		{"Account Number", "Acknowledgement Number"},
	}
	for _, a := range accounts {
		for _, ack := range a.Acks {
			if ack == "" {
				continue
			}
			rows = append(rows, []interface{}{a.AccountNumber, ack})
		}
	}

	if err := writeRows(f, SheetAcks, rows, headerStyle, 1); err != nil {
		return err
	}
	return f.SetColWidth(SheetAcks, "A", "B", 30)
}

func writeQualitySheet(f *excelize.File, headerStyle int, in Input) error {
	q := in.Quality
	s := in.Statistics

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Input File", in.SourceFile},
		{"Generated", in.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Input Rows", s.TotalInputRows},
		{"Empty Rows Dropped", q.RowsDropped},
		{"Rows Processed", s.RowsProcessed},
		{"Rows with Errors", s.RowsWithErrors},
		{"Clean Rows", q.Clean},
		{"Rows with Warnings", q.Warned},
		{"Critical Rows", q.Critical},
		{"Unique Fraudster Accounts", s.UniqueAccounts},
		{"Total Fraud Amount", s.TotalAmount.InexactFloat64()},
		{"Total Disputed Amount", s.TotalDisputedAmount.InexactFloat64()},
		{"Average Amount per Account", s.AverageAmount.Round(2).InexactFloat64()},
		{},
		{"Code", "Severity", "Count"},
	}
	tallyHeader := len(rows)
	for _, t := range q.Tallies() {
		rows = append(rows, []interface{}{string(t.Code), string(t.Severity), t.Count})
	}

	if err := writeRows(f, SheetQuality, rows, headerStyle, 1, tallyHeader); err != nil {
		return err
	}
	return f.SetColWidth(SheetQuality, "A", "A", 30)
}

func writeFlaggedSheet(f *excelize.File, headerStyle int, in Input) error {
	rows := [][]interface{}{
		{"Row", "Severity", "Code", "Field", "Value", "Message"},
	}

	for _, o := range in.Flagged {
		for _, d := range o.Defects {
			rows = append(rows, defectRow(d.Row, d))
		}
	}
	for _, d := range in.TableDefects {
		rows = append(rows, defectRow(rowList(d.Rows), d))
	}

	if err := writeRows(f, SheetFlagged, rows, headerStyle, 1); err != nil {
		return err
	}
	return f.SetColWidth(SheetFlagged, "F", "F", 60)
}

// rowList joins the rows of a table-scoped defect.
func rowList(rows []int) string {
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, ", ")
}

// defectRow is one line of the flagged sheet.
func defectRow(row interface{}, d validation.Defect) []interface{} {
	return []interface{}{row, string(d.Severity), string(d.Code), d.Field, d.Value, d.Message}
}
