package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_runs (
	run_id         TEXT PRIMARY KEY,
	input_file     TEXT NOT NULL,
	profile_code   TEXT,
	status         TEXT NOT NULL,
	started_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL,
	rows_processed INTEGER NOT NULL,
	critical_rows  INTEGER NOT NULL,
	warned_rows    INTEGER NOT NULL,
	accounts       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS audit_errors (
	run_id  TEXT NOT NULL REFERENCES audit_runs(run_id),
	seq     INTEGER NOT NULL,
	message TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_audit_runs_input_file ON audit_runs(input_file);
`

// SQLiteSink stores records in a SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply audit schema: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Write inserts the run and its errors in one transaction.
func (s *SQLiteSink) Write(ctx context.Context, rec Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO audit_runs (run_id, input_file, profile_code, status, started_at, finished_at,
			rows_processed, critical_rows, warned_rows, accounts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.InputFile, rec.ProfileCode, rec.Status,
		rec.StartedAt.Format(time.RFC3339), rec.FinishedAt.Format(time.RFC3339),
		rec.RowsProcessed, rec.CriticalRows, rec.WarnedRows, rec.Accounts,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit run: %w", err)
	}

	if len(rec.Errors) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO audit_errors (run_id, seq, message) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, msg := range rec.Errors {
			if _, err := stmt.ExecContext(ctx, rec.RunID, i+1, msg); err != nil {
				return fmt.Errorf("failed to insert audit error: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Runs returns the stored records for inputFile, oldest first. An empty
// inputFile returns every run.
func (s *SQLiteSink) Runs(ctx context.Context, inputFile string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, input_file, COALESCE(profile_code, ''), status, started_at, finished_at,
			rows_processed, critical_rows, warned_rows, accounts
		FROM audit_runs
		WHERE ? = '' OR input_file = ?
		ORDER BY started_at, run_id`, inputFile, inputFile)
	if err != nil {
		return nil, err
	}

	var out []Record
	for rows.Next() {
		var rec Record
		var started, finished string
		if err := rows.Scan(&rec.RunID, &rec.InputFile, &rec.ProfileCode, &rec.Status, &started, &finished,
			&rec.RowsProcessed, &rec.CriticalRows, &rec.WarnedRows, &rec.Accounts); err != nil {
			rows.Close()
			return nil, err
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		out = append(out, rec)
	}
	// release the connection before the per-run queries
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		msgs, err := s.errors(ctx, out[i].RunID)
		if err != nil {
			return nil, err
		}
		out[i].Errors = msgs
	}
	return out, nil
}

func (s *SQLiteSink) errors(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT message FROM audit_errors WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
