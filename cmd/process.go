// =============================================================================
// Fraud Account Analyzer - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the full pipeline over
// every input file.
//
// COMMAND USAGE:
//   fraudagg process [flags]
//
// FLAGS:
//   --dry-run     : Classify and aggregate without writing reports or archiving
//   --file        : Process only this file instead of scanning the input directory
//   --profile     : Use this profile code for every file instead of pattern matching
//
// PROCESSING PIPELINE:
//   1. Load configuration and source profiles
//   2. Discover input files
//   3. Process files concurrently, at most max_concurrency at a time
//   4. Print and write the batch summary
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/audit"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/ingest"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/pipeline"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/report"
	"github.com/ginjaninja78/fraud-account-analyzer/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun stops each run before reports, audit and archival.
var dryRun bool

// filePath is a single file to process.
var filePath string

// profileCode forces a profile for every file.
var profileCode string

// errStopBatch cancels the remaining files when continue_on_error is off.
var errStopBatch = errors.New("stopping batch after failed file")

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process fraud complaint files and write account reports",
	Long: `The process command scans the input directory for CSV and XLSX files,
selects a source profile for each, and runs the analysis pipeline:
header detection, cleaning, row classification, per-account aggregation,
reports and audit.

Files are processed concurrently. By default a failed file does not stop
the others (continue_on_error).

On successful processing:
  - Reports are placed in the output directory
  - The input file is moved to the input archive
  - An audit record is written

On error:
  - The input file remains in the input directory
  - The audit record carries the error message`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runProcess(ctx)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Classify and aggregate without writing reports, audit records or archiving",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Path to a specific file to process",
	)

	processCmd.Flags().StringVar(
		&profileCode,
		"profile",
		"",
		"Profile code to use for every file",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(ctx context.Context) error {
	summary := utils.ProcessingSummary{StartTime: time.Now()}

	// =========================================================================
	// STEP 1: LOAD PROFILES
	// =========================================================================

	profiles, err := config.LoadProfiles(appConfig.ProfilesDir)
	if err != nil {
		return fmt.Errorf("failed to load source profiles: %w", err)
	}
	logger.WithField("profiles", len(profiles)).Info("Loaded source profiles")

	fm := utils.NewFileManager(appConfig.InputDir, appConfig.OutputDir, appConfig.InputArchiveDir)
	fm.ArchiveOnSuccess = appConfig.ShouldArchive()
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if filePath != "" {
		inputFiles = []string{filePath}
	} else {
		inputFiles, err = fm.DiscoverInputFiles(ingest.SupportedExtensions())
		if err != nil {
			return err
		}
	}

	if len(inputFiles) == 0 {
		fmt.Println("No input files found in the input directory.")
		return nil
	}
	fmt.Printf("Found %d file(s) to process\n", len(inputFiles))

	sink := audit.Sink(audit.Nop{})
	if !dryRun {
		sink, err = audit.New(appConfig.Audit)
		if err != nil {
			return fmt.Errorf("failed to open audit sink: %w", err)
		}
		defer sink.Close()
	}

	deps := pipeline.Deps{
		Config:  appConfig,
		Logger:  logger,
		Audit:   sink,
		Files:   fm,
		Reports: report.NewWriter(appConfig.OutputDir),
	}

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// Each result goes to its own slot so the summary keeps discovery order.

	results := make([]pipeline.Result, len(inputFiles))
	started := make([]bool, len(inputFiles))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(appConfig.MaxConcurrency)

	for i, file := range inputFiles {
		i, file := i, file

		if gCtx.Err() != nil {
			break
		}

		g.Go(func() error {
			profile, err := profileFor(profiles, profileCode, file)
			started[i] = true
			if err != nil {
				results[i] = pipeline.Result{FilePath: file, Error: err}
			} else {
				p := pipeline.New(file, profile, deps)
				p.DryRun = dryRun
				results[i] = p.Run(gCtx)
			}

			if !results[i].Success && !appConfig.ShouldContinueOnError() {
				return errStopBatch
			}
			return nil
		})
	}

	batchErr := g.Wait()

	// =========================================================================
	// STEP 4: SUMMARY
	// =========================================================================

	for i, result := range results {
		if !started[i] {
			continue
		}

		name := filepath.Base(result.FilePath)
		if result.Success {
			summary.AddProcessed(utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFiles: result.OutputFiles,
				ArchivePath: result.ArchivePath,
				RunID:       result.RunID,
				Rows:        result.Stats.RowsProcessed,
				Accounts:    result.Stats.Accounts,
				ProcessTime: result.Stats.ProcessingTime,
			}, result.Stats.CriticalRows, result.Stats.WarnedRows)

			outputs := "dry run"
			if len(result.OutputFiles) > 0 {
				outputs = strings.Join(result.OutputFiles, ", ")
			}
			fmt.Printf("  ✓ %s -> %s (%d accounts)\n", name, outputs, result.Stats.Accounts)
		} else {
			summary.AddFailed(utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorType:    pipeline.ErrorCode(result.Error),
				ErrorMessage: pipeline.Message(result.Error),
			})
			fmt.Printf("  ✗ %s: %s\n", name, pipeline.Message(result.Error))
		}
	}

	summary.EndTime = time.Now()

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Accounts:        %d\n", summary.TotalAccounts)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if !dryRun {
		path, err := utils.WriteSummaryLog(summary, appConfig.OutputDir)
		if err != nil {
			logger.WithError(err).Warn("Failed to write processing summary")
		} else {
			logger.WithField("path", path).Info("Processing summary written")
		}
	}

	if batchErr != nil && !errors.Is(batchErr, errStopBatch) {
		return batchErr
	}
	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}
