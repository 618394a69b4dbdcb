package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/aggregation"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/validation"
)

func sampleInput() Input {
	accounts := []aggregation.Account{
		{
			AccountNumber:       "00123456789",
			BankName:            "State Bank of India Main Branch",
			IFSCCode:            "SBIN0001234",
			Address:             "12 MG Road",
			TotalTransactions:   2,
			Acks:                []string{"A1", "A2"},
			TotalAmount:         decimal.RequireFromString("3000"),
			TotalDisputedAmount: decimal.RequireFromString("500.5"),
			RiskScore:           0.82,
		},
		{
			AccountNumber:       "987654321",
			BankName:            "HDFC",
			TotalTransactions:   1,
			Acks:                []string{""},
			TotalAmount:         decimal.RequireFromString("1000"),
			TotalDisputedAmount: decimal.Zero,
			RiskScore:           0.41,
		},
	}

	quality := validation.QualityReport{
		RowsSeen:    4,
		RowsDropped: 1,
		Clean:       2,
		Warned:      1,
		Critical:    1,
		CodeCounts: map[validation.Code]int{
			validation.CodeNoAmountValue: 1,
			validation.CodeMissingIFSC:   1,
		},
	}

	flagged := []validation.Outcome{
		{
			Verdict: validation.VerdictWarned,
			Defects: []validation.Defect{validation.NewRowDefect(validation.CodeMissingIFSC, 3, "ifsc_code", "")},
		},
	}

	return Input{
		RunID:        "run-1",
		SourceFile:   "complaints.csv",
		GeneratedAt:  time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		Accounts:     accounts,
		Statistics:   aggregation.ComputeStatistics(accounts, quality, 20),
		Quality:      quality,
		Flagged:      flagged,
		TableDefects: nil,
	}
}

func TestFormatAmount(t *testing.T) {
	tests := map[string]string{
		"0":           "0.00",
		"999.5":       "999.50",
		"1000":        "1,000.00",
		"1234567.891": "1,234,567.89",
		"-12345":      "-12,345.00",
	}

	for in, want := range tests {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatAmount(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("HDFC", 20); got != "HDFC" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("State Bank of India Main Branch", 20); got != "State Bank of India ..." {
		t.Errorf("Truncate long = %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	in := sampleInput()

	if err := WriteCSV(path, in.Accounts); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		AccountColumns,
		{"00123456789", "A1;A2", "2", "State Bank of India Main Branch", "SBIN0001234", "12 MG Road", "2", "3000.00", "500.50", "0.82"},
		{"987654321", "", "0", "HDFC", "", "", "1", "1000.00", "0.00", "0.41"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSVEscapesFormulas(t *testing.T) {
	accounts := []aggregation.Account{
		{
			AccountNumber:       "123456789",
			Acks:                []string{"+91ACK"},
			BankName:            "=HYPERLINK(\"http://x\",\"SBI\")",
			IFSCCode:            "-SBIN000123",
			Address:             "@SUM(A1:A2)",
			TotalTransactions:   1,
			TotalAmount:         decimal.RequireFromString("10"),
			TotalDisputedAmount: decimal.Zero,
		},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSV(path, accounts); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"123456789", "'+91ACK", "1", "'=HYPERLINK(\"http://x\",\"SBI\")", "'-SBIN000123", "'@SUM(A1:A2)", "1", "10.00", "0.00", "0.00"}
	if diff := cmp.Diff(want, records[1]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	if err := WriteXLSX(path, sampleInput()); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if diff := cmp.Diff([]string{SheetAccounts, SheetQuality, SheetFlagged}, f.GetSheetList()); diff != "" {
		t.Errorf("sheets mismatch (-want +got):\n%s", diff)
	}

	rows, err := f.GetRows(SheetAccounts)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("account rows = %d, want 3", len(rows))
	}
	if diff := cmp.Diff(AccountColumns, rows[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if rows[1][0] != "00123456789" {
		t.Errorf("account number = %q, leading zeros lost", rows[1][0])
	}
	if rows[1][1] != "A1;A2" || rows[1][2] != "2" {
		t.Errorf("acks = %q count = %q", rows[1][1], rows[1][2])
	}

	flagged, err := f.GetRows(SheetFlagged)
	if err != nil {
		t.Fatal(err)
	}
	if len(flagged) != 2 || flagged[1][2] != string(validation.CodeMissingIFSC) {
		t.Errorf("flagged rows = %v", flagged)
	}

	quality, err := f.GetRows(SheetQuality)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, r := range quality {
		if len(r) >= 3 && r[0] == string(validation.CodeNoAmountValue) {
			found = r[1] == "critical" && r[2] == "1"
		}
	}
	if !found {
		t.Errorf("NO_AMOUNT_VALUE tally missing from quality sheet: %v", quality)
	}
}

func TestWriteXLSXSpillsLongAckLists(t *testing.T) {
	in := sampleInput()
	acks := make([]string, 3000)
	for i := range acks {
		acks[i] = fmt.Sprintf("ACK-2024-%07d", i)
	}
	in.Accounts[0].Acks = acks
	if n := len(in.Accounts[0].AcknowledgementNumbers()); n <= excelize.TotalCellChars {
		t.Fatalf("joined acks = %d chars, want more than %d", n, excelize.TotalCellChars)
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteXLSX(path, in); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	want := []string{SheetAccounts, SheetQuality, SheetFlagged, SheetAcks}
	if diff := cmp.Diff(want, f.GetSheetList()); diff != "" {
		t.Errorf("sheets mismatch (-want +got):\n%s", diff)
	}

	cell, err := f.GetCellValue(SheetAccounts, "B2")
	if err != nil {
		t.Fatal(err)
	}
	if cell != "3000 acknowledgement numbers, see Acknowledgements sheet" {
		t.Errorf("ack cell = %q", cell)
	}
	if other, _ := f.GetCellValue(SheetAccounts, "B3"); other != "" {
		t.Errorf("second account ack cell = %q, want empty", other)
	}

	rows, err := f.GetRows(SheetAcks)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(acks)+1 {
		t.Fatalf("ack rows = %d, want %d", len(rows), len(acks)+1)
	}
	var got []string
	for _, r := range rows[1:] {
		if r[0] != "00123456789" {
			t.Fatalf("ack row account = %q", r[0])
		}
		got = append(got, r[1])
	}
	if diff := cmp.Diff(acks, got); diff != "" {
		t.Errorf("acks mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSummary(t *testing.T) {
	var b strings.Builder
	if err := RenderSummary(&b, sampleInput()); err != nil {
		t.Fatal(err)
	}
	out := b.String()

	for _, want := range []string{
		"FRAUD ANALYSIS REPORT",
		"Input File: complaints.csv",
		"Generated:  2024-03-01 10:30:00",
		"₹4,000.00",
		"State Bank of India ...",
		"TOP 2 FRAUDSTER ACCOUNTS BY AMOUNT",
		"NO_AMOUNT_VALUE",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\n%s", want, out)
		}
	}

	if strings.Index(out, "00123456789") > strings.Index(out, "987654321") {
		t.Error("top accounts not in given order")
	}
}

func TestRenderSummaryNoAccounts(t *testing.T) {
	in := sampleInput()
	in.Accounts = nil
	in.Statistics = aggregation.ComputeStatistics(nil, in.Quality, 20)

	var b strings.Builder
	if err := RenderSummary(&b, in); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "No accounts to display.") {
		t.Errorf("summary = %s", b.String())
	}
}

func TestWriterWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := NewWriter(dir)

	paths, err := w.Write("batch", []string{config.FormatXLSX, config.FormatCSV, config.FormatSummary}, sampleInput())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "batch.xlsx"),
		filepath.Join(dir, "batch.csv"),
		filepath.Join(dir, "batch_summary.txt"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestWriterUnknownFormat(t *testing.T) {
	w := NewWriter(t.TempDir())
	if _, err := w.Write("x", []string{"pdf"}, sampleInput()); err == nil {
		t.Error("expected error for unknown format")
	}
}
