// =============================================================================
// Fraud Account Analyzer - Audit Records
// =============================================================================
//
// One Record is written per processed input file. Two sinks exist:
//   - TextSink appends a readable block to a log file
//   - SQLiteSink inserts into audit_runs and audit_errors
//
// =============================================================================

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Record describes one processing run.
type Record struct {
	RunID       string
	InputFile   string
	ProfileCode string
	Status      string

	StartedAt  time.Time
	FinishedAt time.Time

	// RowsProcessed counts rows that took part in aggregation.
	RowsProcessed int
	CriticalRows  int
	WarnedRows    int
	Accounts      int

	// Errors are the messages shown to the investigator: run errors and
	// row defects, in the order they were found.
	Errors []string
}

// Duration is FinishedAt - StartedAt.
func (r Record) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Sink stores audit records. Implementations are safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}

// New opens the sink selected by cfg.
func New(cfg config.AuditConfig) (Sink, error) {
	switch cfg.Driver {
	case config.AuditText, "":
		return NewTextSink(cfg.Path)
	case config.AuditSQLite:
		return OpenSQLite(cfg.Path)
	case config.AuditNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown audit driver %q", cfg.Driver)
	}
}

// Nop discards records.
type Nop struct{}

func (Nop) Write(context.Context, Record) error { return nil }
func (Nop) Close() error                        { return nil }
