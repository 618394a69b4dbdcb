package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xlsx", "a.CSV", "notes.txt", ".hidden.csv", "~$b.xlsx", "sub/c.csv"} {
		touch(t, filepath.Join(dir, name))
	}

	fm := NewFileManager(dir, "", "")
	got, err := fm.DiscoverInputFiles([]string{".csv", ".xlsx", ".xlsm"})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.xlsx")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DiscoverInputFiles() mismatch (-want +got):\n%s", diff)
	}
}

func TestArchiveInputFile(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive")
	fm := NewFileManager(dir, "", archive)

	first := filepath.Join(dir, "in.csv")
	touch(t, first)
	got, err := fm.ArchiveInputFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(archive, "in.csv") {
		t.Errorf("archive path = %s", got)
	}
	if FileExists(first) {
		t.Error("input still present after archive")
	}

	// same name again
	touch(t, first)
	got, err = fm.ArchiveInputFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(archive, "in_1.csv") {
		t.Errorf("collision path = %s", got)
	}
}

func TestArchiveTimestampSubdirs(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(dir, "", filepath.Join(dir, "archive"))
	fm.UseTimestampSubdirs = true
	fm.now = func() time.Time { return time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) }

	path := filepath.Join(dir, "in.csv")
	touch(t, path)
	got, err := fm.ArchiveInputFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "archive", "2024", "01", "05", "in.csv"); got != want {
		t.Errorf("archive path = %s, want %s", got, want)
	}
}

func TestArchiveDisabled(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(dir, "", filepath.Join(dir, "archive"))
	fm.ArchiveOnSuccess = false

	path := filepath.Join(dir, "in.csv")
	touch(t, path)
	got, err := fm.ArchiveInputFile(path)
	if err != nil || got != path || !FileExists(path) {
		t.Errorf("ArchiveInputFile() = %s, %v", got, err)
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	now := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

	tests := []struct {
		format string
		want   string
	}{
		{"{original}_fraud_analysis_{timestamp}", "complaints_fraud_analysis_20240115_143022"},
		{"{date}-{time}", "20240115-143022"},
		{"out/{original}", "out_complaints"},
	}

	for _, tt := range tests {
		got := GenerateOutputFileName(tt.format, now, map[string]string{"original": "complaints"})
		if got != tt.want {
			t.Errorf("GenerateOutputFileName(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}

	withID := GenerateOutputFileName("run_{uuid}", now, nil)
	if len(withID) != len("run_")+36 {
		t.Errorf("uuid name = %q", withID)
	}
}

func TestOutputBaseName(t *testing.T) {
	fm := NewFileManager("", "", "")
	fm.now = func() time.Time { return time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC) }

	got := fm.OutputBaseName("{original}_{timestamp}", "/data/in/May Complaints.xlsx")
	if got != "May Complaints_20240115_143022" {
		t.Errorf("OutputBaseName() = %q", got)
	}
}

func TestWriteSummaryLog(t *testing.T) {
	start := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	var summary ProcessingSummary
	summary.StartTime = start
	summary.EndTime = start.Add(3 * time.Second)
	summary.AddProcessed(ProcessedFileInfo{
		InputFile:   "a.csv",
		OutputFiles: []string{"out/a.xlsx", "out/a.csv"},
		Rows:        10,
		Accounts:    3,
	}, 1, 2)
	summary.AddFailed(FailedFileInfo{InputFile: "b.csv", ErrorType: "NO_AMOUNT_COLUMN", ErrorMessage: "No amount column found in the file"})

	if summary.TotalFiles != 2 || summary.SuccessfulFiles != 1 || summary.FailedFiles != 1 {
		t.Errorf("counts = %+v", summary)
	}

	path, err := WriteSummaryLog(summary, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "processing_summary_20240115_143003.txt" {
		t.Errorf("summary path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Total Files:        2", "Output:       out/a.csv", "Type:  NO_AMOUNT_COLUMN", "Critical Rows:      1"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("summary missing %q\n%s", want, data)
		}
	}
}
