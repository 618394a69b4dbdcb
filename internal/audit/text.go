package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	ruleHeavy = "============================================================"
	ruleLight = "------------------------------------------------------------"
)

// TextSink appends records to a plain-text log file.
type TextSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewTextSink opens path for appending, creating its directory.
func NewTextSink(path string) (*TextSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &TextSink{file: file}, nil
}

// Write appends one formatted block.
func (s *TextSink) Write(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := io.WriteString(s.file, Format(rec))
	return err
}

// Close closes the log file.
func (s *TextSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// Format renders a record as an audit log block.
func Format(rec Record) string {
	var b strings.Builder

	fmt.Fprintln(&b, ruleHeavy)
	fmt.Fprintln(&b, "FRAUD ANALYSIS PROCESSING AUDIT LOG")
	fmt.Fprintln(&b, ruleHeavy)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Timestamp: %s\n", rec.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Run ID: %s\n", rec.RunID)
	fmt.Fprintf(&b, "Input File: %s\n", rec.InputFile)
	if rec.ProfileCode != "" {
		fmt.Fprintf(&b, "Profile: %s\n", rec.ProfileCode)
	}
	fmt.Fprintf(&b, "Status: %s\n", rec.Status)
	fmt.Fprintf(&b, "Rows Processed: %d\n", rec.RowsProcessed)
	fmt.Fprintf(&b, "Critical Rows: %d\n", rec.CriticalRows)
	fmt.Fprintf(&b, "Rows with Warnings: %d\n", rec.WarnedRows)
	fmt.Fprintf(&b, "Accounts: %d\n", rec.Accounts)
	fmt.Fprintf(&b, "Duration: %s\n", rec.Duration())
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, ruleLight)
	fmt.Fprintln(&b, "ERRORS ENCOUNTERED")
	fmt.Fprintln(&b, ruleLight)
	if len(rec.Errors) == 0 {
		fmt.Fprintln(&b, "No errors encountered during processing.")
	} else {
		for i, e := range rec.Errors {
			fmt.Fprintf(&b, "%d. %s\n", i+1, e)
		}
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, ruleLight)
	fmt.Fprintln(&b, "END OF AUDIT LOG")
	fmt.Fprintln(&b, ruleLight)
	fmt.Fprintln(&b)

	return b.String()
}
