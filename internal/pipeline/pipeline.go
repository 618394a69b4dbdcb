// =============================================================================
// Fraud Account Analyzer - Processing Pipeline
// =============================================================================
//
// This module orchestrates the processing of a single input file, from raw
// bytes to the investigator reports.
//
// PROCESSING PIPELINE:
//   1. Check and decode the input file (CSV or XLSX)
//   2. Detect the column mapping and apply profile overrides
//   3. Apply the profile's cleaning rules
//   4. Classify every row (clean / warned / critical)
//   5. Aggregate participating rows per account and sort
//   6. Compute run statistics
//   7. Write the reports
//   8. Write the audit record
//   9. Archive the input file
//
// CONCURRENCY:
//   A Processor handles one file. Several processors may run at once; the
//   shared collaborators (audit sink, file manager, report writer) are safe
//   for concurrent use.
//
// =============================================================================

package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/aggregation"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/audit"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/cleaning"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/columns"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/ingest"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/logging"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/report"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/validation"
	"github.com/ginjaninja78/fraud-account-analyzer/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// RunID identifies the run in logs, reports and the audit store.
	RunID string

	// FilePath is the path to the input file that was processed.
	FilePath string

	// ProfileCode is the source profile used for decoding and cleaning.
	ProfileCode string

	// OutputFiles are the report files written. Empty on failure or dry run.
	OutputFiles []string

	// ArchivePath is where the input was moved, if it was archived.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed. Column-level and
	// file-level criticals are *validation.RunError values.
	Error error

	// Mapping is the column mapping used, after overrides.
	Mapping columns.Mapping

	// Classification holds every row outcome and the quality report.
	Classification *validation.Result

	// Accounts are the aggregated accounts in sorted order.
	Accounts []aggregation.Account

	// Statistics summarizes the run.
	Statistics aggregation.Statistics

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	RowsProcessed int
	CriticalRows  int
	WarnedRows    int
	DroppedRows   int
	CellsCleaned  int
	Accounts      int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// ErrorCode returns the defect code of a run error, or "ERROR".
func ErrorCode(err error) string {
	var runErr *validation.RunError
	if errors.As(err, &runErr) {
		return string(runErr.Code)
	}
	return "ERROR"
}

// =============================================================================
// PROCESSOR STRUCTURE
// =============================================================================

// Deps are the collaborators shared by every processor of a batch.
type Deps struct {
	Config  *config.MainConfig
	Logger  logrus.FieldLogger
	Audit   audit.Sink
	Files   *utils.FileManager
	Reports *report.Writer
}

// Processor handles the processing of a single input file.
type Processor struct {
	// path is the path to the input file.
	path string

	// profile is the source profile for this file.
	profile *config.SourceProfile

	deps Deps

	// DryRun stops after statistics: no reports, no audit, no archive.
	DryRun bool

	// now is replaced in tests.
	now func() time.Time
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Processor.
//
// PARAMETERS:
//   - path: The input file.
//   - profile: The source profile. Nil uses the default profile.
//   - deps: Shared collaborators. Nil Logger, Audit, Files or Reports fall
//     back to a discarding logger, no audit, no archiving and the configured
//     output directory.
//
// RETURNS:
//   - A new Processor instance.
func New(path string, profile *config.SourceProfile, deps Deps) *Processor {
	if profile == nil {
		profile = config.DefaultProfile()
	}
	if deps.Config == nil {
		deps.Config = &config.MainConfig{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Audit == nil {
		deps.Audit = audit.Nop{}
	}
	if deps.Reports == nil {
		deps.Reports = report.NewWriter(deps.Config.OutputDir)
	}

	return &Processor{
		path:    path,
		profile: profile,
		deps:    deps,
		now:     time.Now,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the file.
//
// RETURNS:
//   - A Result describing the outcome. Run never panics on bad input; every
//     failure is reported through Result.Error.
func (p *Processor) Run(ctx context.Context) Result {
	started := p.now()
	result := Result{
		RunID:       uuid.New().String(),
		FilePath:    p.path,
		ProfileCode: p.profile.ProfileCode,
	}

	log := p.deps.Logger.WithFields(logrus.Fields{
		"file":    p.path,
		"run_id":  result.RunID,
		"profile": p.profile.ProfileCode,
	})
	log.Info("Processing file")

	p.process(ctx, log, &result)

	result.Stats.ProcessingTime = p.now().Sub(started)

	if !p.DryRun {
		p.writeAudit(ctx, log, result, started)
	}

	if result.Error != nil {
		log.WithField("code", ErrorCode(result.Error)).WithError(result.Error).Error("Processing failed")
		return result
	}

	// =========================================================================
	// STEP 9: ARCHIVE INPUT
	// =========================================================================

	if !p.DryRun && p.deps.Files != nil && p.deps.Config.ShouldArchive() {
		archived, err := p.deps.Files.ArchiveInputFile(p.path)
		if err != nil {
			// The reports are already written; a failed move is not a failed run.
			log.WithError(err).Warn("Failed to archive input file")
		} else {
			result.ArchivePath = archived
		}
	}

	result.Success = true
	log.WithFields(logrus.Fields{
		"rows":     result.Stats.RowsProcessed,
		"critical": result.Stats.CriticalRows,
		"warned":   result.Stats.WarnedRows,
		"accounts": result.Stats.Accounts,
		"duration": result.Stats.ProcessingTime.String(),
	}).Info("Processing complete")

	return result
}

func (p *Processor) process(ctx context.Context, log logrus.FieldLogger, result *Result) {
	cfg := p.deps.Config

	// =========================================================================
	// STEP 1: DECODE INPUT
	// =========================================================================

	table, err := ingest.Load(p.path, p.profile, cfg.MaxUploadBytes())
	if err != nil {
		result.Error = wrap(err, "pipeline: load input")
		return
	}
	log.WithFields(logrus.Fields{"rows": len(table.Records), "columns": len(table.Headers)}).Debug("Decoded input")

	// =========================================================================
	// STEP 2: DETECT COLUMNS
	// =========================================================================
	// Profile variants widen detection; profile overrides replace the
	// detected source of a field after detection.

	variants, err := p.profile.Variants()
	if err != nil {
		result.Error = eris.Wrap(err, "pipeline: profile variants")
		return
	}

	mapping := columns.NewDetector(variants).Detect(table.Headers)
	mapping, err = mapping.ApplyOverrides(p.profile.ColumnOverrides, table.Headers)
	if err != nil {
		result.Error = eris.Wrap(err, "pipeline: column overrides")
		return
	}
	result.Mapping = mapping

	for _, f := range mapping.AmbiguousFields() {
		log.WithFields(logrus.Fields{"field": f.String(), "candidates": mapping.Ambiguous(f)}).
			Warn("Ambiguous column left unmapped")
	}

	classifier, err := validation.NewClassifier(mapping)
	if err != nil {
		result.Error = wrap(err, "pipeline: required columns")
		return
	}

	// =========================================================================
	// STEP 3: CLEAN
	// =========================================================================

	cleaner, err := cleaning.New(p.profile.CleaningRules)
	if err != nil {
		result.Error = eris.Wrap(err, "pipeline: cleaning rules")
		return
	}
	result.Stats.CellsCleaned = cleaner.ApplyTable(table, mapping)

	// =========================================================================
	// STEP 4: CLASSIFY
	// =========================================================================

	classified, err := classifier.ClassifyParallel(ctx, table.Records, cfg.ClassifyWorkers)
	if err != nil {
		result.Error = eris.Wrap(err, "pipeline: classify")
		return
	}
	result.Classification = classified

	q := classified.Report
	result.Stats.RowsProcessed = q.RowsProcessed()
	result.Stats.CriticalRows = q.Critical
	result.Stats.WarnedRows = q.Warned
	result.Stats.DroppedRows = q.RowsDropped

	// =========================================================================
	// STEP 5: AGGREGATE AND SORT
	// =========================================================================

	result.Accounts = aggregation.Sort(aggregation.FromResult(classified))
	result.Stats.Accounts = len(result.Accounts)

	// =========================================================================
	// STEP 6: STATISTICS
	// =========================================================================

	result.Statistics = aggregation.ComputeStatistics(result.Accounts, q, cfg.Report.TopAccounts)

	if p.DryRun {
		return
	}

	// =========================================================================
	// STEP 7: WRITE REPORTS
	// =========================================================================

	baseName := utils.GenerateOutputFileName(cfg.OutputNameFormat, p.now(), map[string]string{
		"original": trimExt(p.path),
		"run_id":   result.RunID,
	})

	in := report.Input{
		RunID:        result.RunID,
		SourceFile:   p.path,
		ProfileName:  p.profile.ProfileName,
		GeneratedAt:  p.now(),
		Accounts:     result.Accounts,
		Statistics:   result.Statistics,
		Quality:      q,
		Flagged:      aggregation.FlaggedRows(classified.Outcomes),
		TableDefects: classified.TableDefects,
	}

	written, err := p.deps.Reports.Write(baseName, cfg.Report.Formats, in)
	result.OutputFiles = written
	if err != nil {
		result.Error = eris.Wrap(err, "pipeline: write reports")
		return
	}
	log.WithField("outputs", written).Debug("Reports written")
}

// =============================================================================
// AUDIT
// =============================================================================

// writeAudit stores the audit record. Failures are logged only.
func (p *Processor) writeAudit(ctx context.Context, log logrus.FieldLogger, result Result, started time.Time) {
	rec := audit.Record{
		RunID:         result.RunID,
		InputFile:     p.path,
		ProfileCode:   result.ProfileCode,
		Status:        audit.StatusSuccess,
		StartedAt:     started,
		FinishedAt:    started.Add(result.Stats.ProcessingTime),
		RowsProcessed: result.Stats.RowsProcessed,
		CriticalRows:  result.Stats.CriticalRows,
		WarnedRows:    result.Stats.WarnedRows,
		Accounts:      result.Stats.Accounts,
	}

	if result.Error != nil {
		rec.Status = audit.StatusFailed
		rec.Errors = append(rec.Errors, Message(result.Error))
	}
	if result.Classification != nil {
		for _, d := range result.Classification.Defects() {
			rec.Errors = append(rec.Errors, d.Message)
		}
	}

	// A cancelled batch still records the run.
	if err := p.deps.Audit.Write(context.WithoutCancel(ctx), rec); err != nil {
		log.WithError(err).Warn("Failed to write audit record")
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Message returns the text shown to the investigator for err: the verbatim
// message of a run error, the full chain otherwise.
func Message(err error) string {
	var runErr *validation.RunError
	if errors.As(err, &runErr) {
		return runErr.Message
	}
	return err.Error()
}

// wrap adds context to plain errors and passes run errors through untouched
// so their message reaches the caller verbatim.
func wrap(err error, msg string) error {
	var runErr *validation.RunError
	if errors.As(err, &runErr) {
		return err
	}
	return eris.Wrap(err, msg)
}

func trimExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
