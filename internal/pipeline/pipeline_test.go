package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/audit"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/validation"
	"github.com/ginjaninja78/fraud-account-analyzer/pkg/utils"
)

const complaintsCSV = `Sr No,Ack No,Account No,IFSC Code,Address,Amount,Disputed Amount,Bank Name
1,A1,123456789,SBIN0001234,12 MG Road,"1,000",100,SBI
2,A2,1234-56789,SBIN0001234,12 MG Road,2000,,SBI
3,A3,987654321012,,Park Street,5000,,HDFC
4,A4,,,,700,,
,,,,,,,
`

type fixture struct {
	dir      string
	input    string
	outDir   string
	archive  string
	auditLog string
	cfg      *config.MainConfig
	deps     Deps
}

func newFixture(t *testing.T, name, content string) *fixture {
	t.Helper()

	dir := t.TempDir()
	f := &fixture{
		dir:      dir,
		input:    filepath.Join(dir, "input", name),
		outDir:   filepath.Join(dir, "output"),
		archive:  filepath.Join(dir, "archive"),
		auditLog: filepath.Join(dir, "logs", "audit.log"),
	}
	if err := os.MkdirAll(filepath.Dir(f.input), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.input, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	f.cfg = &config.MainConfig{
		OutputDir:        f.outDir,
		OutputNameFormat: "{original}_fraud_analysis",
		MaxUploadMB:      200,
		ClassifyWorkers:  2,
		Report: config.ReportConfig{
			Formats:     []string{config.FormatXLSX, config.FormatCSV, config.FormatSummary},
			TopAccounts: 20,
		},
	}

	sink, err := audit.NewTextSink(f.auditLog)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sink.Close() })

	f.deps = Deps{
		Config: f.cfg,
		Audit:  sink,
		Files:  utils.NewFileManager(filepath.Dir(f.input), f.outDir, f.archive),
	}
	return f
}

func (f *fixture) auditText(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(f.auditLog)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRunProcessesFile(t *testing.T) {
	f := newFixture(t, "complaints.csv", complaintsCSV)

	p := New(f.input, nil, f.deps)
	p.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	res := p.Run(context.Background())

	if !res.Success {
		t.Fatalf("Run() failed: %v", res.Error)
	}

	want := ProcessingStats{RowsProcessed: 3, CriticalRows: 1, WarnedRows: 1, DroppedRows: 1, Accounts: 2}
	got := res.Stats
	got.ProcessingTime = 0
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	var order []string
	for _, a := range res.Accounts {
		order = append(order, a.AccountNumber)
	}
	if diff := cmp.Diff([]string{"987654321012", "123456789"}, order); diff != "" {
		t.Errorf("account order mismatch (-want +got):\n%s", diff)
	}
	if got := res.Accounts[1].AcknowledgementNumbers(); got != "A1;A2" {
		t.Errorf("acks = %q", got)
	}

	wantOutputs := []string{
		filepath.Join(f.outDir, "complaints_fraud_analysis.xlsx"),
		filepath.Join(f.outDir, "complaints_fraud_analysis.csv"),
		filepath.Join(f.outDir, "complaints_fraud_analysis_summary.txt"),
	}
	if diff := cmp.Diff(wantOutputs, res.OutputFiles); diff != "" {
		t.Errorf("outputs mismatch (-want +got):\n%s", diff)
	}

	if res.ArchivePath != filepath.Join(f.archive, "complaints.csv") {
		t.Errorf("archive path = %s", res.ArchivePath)
	}
	if utils.FileExists(f.input) {
		t.Error("input not moved to archive")
	}

	log := f.auditText(t)
	for _, want := range []string{"Status: success", "Rows Processed: 3", "IFSC code missing for row 4"} {
		if !strings.Contains(log, want) {
			t.Errorf("audit log missing %q\n%s", want, log)
		}
	}
}

func TestRunMissingAmountColumn(t *testing.T) {
	f := newFixture(t, "bad.csv", "Account No,Bank Name\n123456789,SBI\n")

	res := New(f.input, nil, f.deps).Run(context.Background())

	if res.Success {
		t.Fatal("Run() succeeded without an amount column")
	}
	var runErr *validation.RunError
	if !errors.As(res.Error, &runErr) || runErr.Code != validation.CodeNoAmountColumn {
		t.Fatalf("error = %v, want NO_AMOUNT_COLUMN run error", res.Error)
	}
	if got := Message(res.Error); got != "No amount column found in the file" {
		t.Errorf("Message() = %q", got)
	}
	if ErrorCode(res.Error) != "NO_AMOUNT_COLUMN" {
		t.Errorf("ErrorCode() = %s", ErrorCode(res.Error))
	}
	if len(res.OutputFiles) != 0 {
		t.Errorf("outputs written on failure: %v", res.OutputFiles)
	}
	if !utils.FileExists(f.input) {
		t.Error("failed input was archived")
	}

	log := f.auditText(t)
	if !strings.Contains(log, "Status: failed") || !strings.Contains(log, "1. No amount column found in the file") {
		t.Errorf("audit log = %s", log)
	}
}

func TestRunInvalidFormat(t *testing.T) {
	f := newFixture(t, "notes.txt", "hello")

	res := New(f.input, nil, f.deps).Run(context.Background())
	if ErrorCode(res.Error) != string(validation.CodeInvalidFormat) {
		t.Errorf("error = %v", res.Error)
	}
}

func TestRunDryRun(t *testing.T) {
	f := newFixture(t, "complaints.csv", complaintsCSV)

	p := New(f.input, nil, f.deps)
	p.DryRun = true
	res := p.Run(context.Background())

	if !res.Success || res.Stats.Accounts != 2 {
		t.Fatalf("Run() = %+v", res)
	}
	if len(res.OutputFiles) != 0 || res.ArchivePath != "" {
		t.Errorf("dry run wrote outputs %v archive %q", res.OutputFiles, res.ArchivePath)
	}
	if !utils.FileExists(f.input) {
		t.Error("dry run archived the input")
	}
	if _, err := os.Stat(f.outDir); !os.IsNotExist(err) {
		t.Error("dry run created the output directory")
	}
}

func TestRunProfileOverridesAndCleaning(t *testing.T) {
	content := "Beneficiary Acct,Loss (Rs)\n123456789,500\n123456789,250\n"
	f := newFixture(t, "portal.csv", content)

	profile := config.DefaultProfile()
	profile.ProfileCode = "portal"
	profile.ColumnOverrides = map[string]string{
		"bank_account_number": "Beneficiary Acct",
		"amount":              "Loss (Rs)",
	}
	profile.CleaningRules = []config.CleaningRule{{
		Field:   "bank_account_number",
		Actions: []config.CleaningAction{{Type: config.ActionPadZerosToLength, Value: "12"}},
	}}

	p := New(f.input, profile, f.deps)
	p.DryRun = true
	res := p.Run(context.Background())

	if !res.Success {
		t.Fatalf("Run() failed: %v", res.Error)
	}
	if res.ProfileCode != "portal" || res.Stats.CellsCleaned != 2 {
		t.Errorf("profile = %s cleaned = %d", res.ProfileCode, res.Stats.CellsCleaned)
	}
	if len(res.Accounts) != 1 || res.Accounts[0].AccountNumber != "000123456789" {
		t.Fatalf("accounts = %+v", res.Accounts)
	}
	if res.Accounts[0].TotalAmount.String() != "750" {
		t.Errorf("total = %s", res.Accounts[0].TotalAmount)
	}
}

func TestRunCancelled(t *testing.T) {
	var b strings.Builder
	b.WriteString("Account No,Amount\n")
	for i := 0; i < 2000; i++ {
		b.WriteString("123456789,100\n")
	}
	f := newFixture(t, "big.csv", b.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(f.input, nil, f.deps).Run(ctx)
	if res.Success || !errors.Is(res.Error, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", res.Error)
	}
}

func TestRunCancelledStillAudited(t *testing.T) {
	f := newFixture(t, "complaints.csv", complaintsCSV)

	sink, err := audit.OpenSQLite(filepath.Join(f.dir, "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()
	f.deps.Audit = sink

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(f.input, nil, f.deps).Run(ctx)
	if res.Success {
		t.Fatal("Run() succeeded on a cancelled context")
	}

	runs, err := sink.Runs(context.Background(), f.input)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("audit runs = %d, want 1", len(runs))
	}
	if runs[0].RunID != res.RunID || runs[0].Status != audit.StatusFailed {
		t.Errorf("audit run = %+v", runs[0])
	}
}

func TestTrimExt(t *testing.T) {
	if got := trimExt("/data/in/May Complaints.xlsx"); got != "May Complaints" {
		t.Errorf("trimExt() = %q", got)
	}
}
