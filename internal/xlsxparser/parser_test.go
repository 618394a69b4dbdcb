package xlsxparser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/types"
)

// writeWorkbook creates a workbook whose sheets hold the given rows.
func writeWorkbook(t *testing.T, sheets map[string][][]interface{}, order ...string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}

		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName: %v", err)
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "input.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestParseFirstSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Complaints": {
			{"Ack No", "Account No", "Amount"},
			{"ACK1", 123456789012, 1500},
			{},
			{"ACK2", "000123456789", "2,000"},
		},
		"Other": {{"ignored"}},
	}, "Complaints", "Other")

	table, err := Parse(path, Options{})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if table.Sheet != "Complaints" || table.SourceFile != path {
		t.Errorf("sheet = %q source = %q", table.Sheet, table.SourceFile)
	}
	if diff := cmp.Diff([]string{"Ack No", "Account No", "Amount"}, table.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}

	want := []types.Record{
		{Index: 2, Cells: map[string]string{"Ack No": "ACK1", "Account No": "123456789012", "Amount": "1500"}},
		{Index: 3, Cells: map[string]string{"Ack No": "", "Account No": "", "Amount": ""}},
		{Index: 4, Cells: map[string]string{"Ack No": "ACK2", "Account No": "000123456789", "Amount": "2,000"}},
	}
	if diff := cmp.Diff(want, table.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNamedSheetAndHeaderRows(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Summary": {{"Total", 10}},
		"Data": {
			{"Beneficiary", nil, "Amount"},
			{"Account No", "IFSC", nil},
			{"Generated 2024-01-01"},
			{"123456789", "SBIN0001234", 10},
		},
	}, "Summary", "Data")

	table, err := Parse(path, Options{Sheet: "data", HeaderRows: 2, DataStartRow: 4})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if table.Sheet != "Data" {
		t.Errorf("sheet = %q", table.Sheet)
	}
	if diff := cmp.Diff([]string{"Beneficiary Account No", "IFSC", "Amount"}, table.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if len(table.Records) != 1 || table.Records[0].Index != 4 || table.Records[0].Get("Amount") != "10" {
		t.Errorf("records = %+v", table.Records)
	}
}

func TestParseErrors(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{"Data": {}}, "Data")

	if _, err := Parse(path, Options{}); !errors.Is(err, ErrNoHeader) {
		t.Errorf("empty sheet error = %v, want ErrNoHeader", err)
	}
	if _, err := Parse(path, Options{Sheet: "Missing"}); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("missing sheet error = %v", err)
	}
	if _, err := ParseReader(strings.NewReader("not a zip"), Options{}); err == nil {
		t.Error("garbage input should fail")
	}
}

func TestPreview(t *testing.T) {
	rows := [][]interface{}{{"Account No", "Amount"}, {}}
	for i := 0; i < 30; i++ {
		rows = append(rows, []interface{}{fmt.Sprintf("%09d", 100000000+i), i})
	}
	path := writeWorkbook(t, map[string][][]interface{}{"Data": rows}, "Data")

	table, err := Preview(path, Options{}, 10)
	if err != nil {
		t.Fatalf("Preview error: %v", err)
	}
	if len(table.Records) != 10 {
		t.Fatalf("records = %d, want 10", len(table.Records))
	}
	if table.Records[0].Index != 3 || table.Records[0].Get("Account No") != "100000000" {
		t.Errorf("first record = %+v", table.Records[0])
	}

	names, err := SheetNames(path)
	if err != nil {
		t.Fatalf("SheetNames error: %v", err)
	}
	if diff := cmp.Diff([]string{"Data"}, names); diff != "" {
		t.Errorf("sheet names mismatch (-want +got):\n%s", diff)
	}
}
