package csvparser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/types"
)

func settings() config.CSVSettings {
	return config.DefaultProfile().CSVSettings
}

func writeCSV(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestParse(t *testing.T) {
	path := writeCSV(t, []byte("Account No,Amount,\n123456789,\"1,000\",x\n,,\n987654321,20\n"))

	table, err := Parse(path, settings())
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if diff := cmp.Diff([]string{"Account No", "Amount", "Column_3"}, table.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	want := []types.Record{
		{Index: 2, Cells: map[string]string{"Account No": "123456789", "Amount": "1,000", "Column_3": "x"}},
		{Index: 3, Cells: map[string]string{"Account No": "", "Amount": "", "Column_3": ""}},
		{Index: 4, Cells: map[string]string{"Account No": "987654321", "Amount": "20", "Column_3": ""}},
	}
	if diff := cmp.Diff(want, table.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if table.SourceFile != path {
		t.Errorf("source file = %q", table.SourceFile)
	}
}

func TestParseReaderSettings(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		settings    config.CSVSettings
		wantHeaders []string
		wantFirst   types.Record
	}{
		{
			name:        "tab delimiter",
			input:       "Account No\tAmount\n123456789\t10\n",
			settings:    config.CSVSettings{Delimiter: "\t", HeaderRows: 1, DataStartRow: 2},
			wantHeaders: []string{"Account No", "Amount"},
			wantFirst:   types.Record{Index: 2, Cells: map[string]string{"Account No": "123456789", "Amount": "10"}},
		},
		{
			name:        "pipe alias",
			input:       "Account No|Amount\n123456789|10\n",
			settings:    config.CSVSettings{Delimiter: "pipe", HeaderRows: 1, DataStartRow: 2},
			wantHeaders: []string{"Account No", "Amount"},
			wantFirst:   types.Record{Index: 2, Cells: map[string]string{"Account No": "123456789", "Amount": "10"}},
		},
		{
			name:        "multi-line header",
			input:       "Beneficiary,,Amount\nAccount No,IFSC,\n123456789,SBIN0001234,10\n",
			settings:    config.CSVSettings{Delimiter: ",", HeaderRows: 2, DataStartRow: 3},
			wantHeaders: []string{"Beneficiary Account No", "IFSC", "Amount"},
			wantFirst:   types.Record{Index: 3, Cells: map[string]string{"Beneficiary Account No": "123456789", "IFSC": "SBIN0001234", "Amount": "10"}},
		},
		{
			name:        "metadata rows before data",
			input:       "Account No,Amount\nGenerated,2024-01-01\n123456789,10\n",
			settings:    config.CSVSettings{Delimiter: ",", HeaderRows: 1, DataStartRow: 3},
			wantHeaders: []string{"Account No", "Amount"},
			wantFirst:   types.Record{Index: 3, Cells: map[string]string{"Account No": "123456789", "Amount": "10"}},
		},
		{
			name:        "utf-8 bom stripped",
			input:       "\ufeffAccount No,Amount\n123456789,10\n",
			settings:    config.CSVSettings{Delimiter: ",", HeaderRows: 1, DataStartRow: 2},
			wantHeaders: []string{"Account No", "Amount"},
			wantFirst:   types.Record{Index: 2, Cells: map[string]string{"Account No": "123456789", "Amount": "10"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseReader(strings.NewReader(tt.input), tt.settings)
			if err != nil {
				t.Fatalf("ParseReader error: %v", err)
			}
			if diff := cmp.Diff(tt.wantHeaders, table.Headers); diff != "" {
				t.Errorf("headers mismatch (-want +got):\n%s", diff)
			}
			if len(table.Records) == 0 {
				t.Fatal("no records")
			}
			if diff := cmp.Diff(tt.wantFirst, table.Records[0]); diff != "" {
				t.Errorf("first record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseReaderWindows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("Account No,Amount,Address\n123456789,€10,Café Road\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	s := settings()
	s.Encoding = "Windows-1252"
	table, err := ParseReader(bytes.NewReader([]byte(encoded)), s)
	if err != nil {
		t.Fatalf("ParseReader error: %v", err)
	}

	rec := table.Records[0]
	if rec.Get("Amount") != "€10" || rec.Get("Address") != "Café Road" {
		t.Errorf("decoded cells = %q / %q", rec.Get("Amount"), rec.Get("Address"))
	}
}

func TestParseReaderErrors(t *testing.T) {
	if _, err := ParseReader(strings.NewReader(""), settings()); !errors.Is(err, ErrNoHeader) {
		t.Errorf("empty input error = %v, want ErrNoHeader", err)
	}

	s := settings()
	s.Encoding = "EBCDIC"
	if _, err := ParseReader(strings.NewReader("a\n"), s); err == nil || !strings.Contains(err.Error(), "unsupported encoding") {
		t.Errorf("unknown encoding error = %v", err)
	}

	if _, err := ParseReader(strings.NewReader("a,b\n\"unterminated,1\n"), settings()); err == nil {
		t.Error("malformed quotes should fail without lazy_quotes")
	}
}

func TestHeaderOnly(t *testing.T) {
	table, err := ParseReader(strings.NewReader("Account No,Amount\n"), settings())
	if err != nil {
		t.Fatalf("ParseReader error: %v", err)
	}
	if table.RowCount() != 0 || table.ColumnCount() != 2 {
		t.Errorf("rows = %d columns = %d", table.RowCount(), table.ColumnCount())
	}
}

func TestPreview(t *testing.T) {
	var b strings.Builder
	b.WriteString("Account No,Amount\n")
	b.WriteString(",\n")
	for i := 0; i < 25; i++ {
		b.WriteString("123456789,10\n")
	}
	path := writeCSV(t, []byte(b.String()))

	table, err := Preview(path, settings(), 10)
	if err != nil {
		t.Fatalf("Preview error: %v", err)
	}
	if len(table.Records) != 10 {
		t.Fatalf("records = %d, want 10", len(table.Records))
	}
	if table.Records[0].Index != 3 {
		t.Errorf("first preview record index = %d, want 3 (blank row skipped)", table.Records[0].Index)
	}
}

func TestStreamingParser(t *testing.T) {
	path := writeCSV(t, []byte("Account No,Amount\n111111111,1\n222222222,2\n"))

	p, err := NewStreamingParser(path, settings())
	if err != nil {
		t.Fatalf("NewStreamingParser error: %v", err)
	}
	defer p.Close()

	var accounts []string
	for p.Next() {
		accounts = append(accounts, p.Record().Get("Account No"))
	}
	if err := p.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if diff := cmp.Diff([]string{"111111111", "222222222"}, accounts); diff != "" {
		t.Errorf("accounts mismatch (-want +got):\n%s", diff)
	}
	if p.RowNumber() != 3 {
		t.Errorf("row number = %d, want 3", p.RowNumber())
	}
}
