// =============================================================================
// Fraud Account Analyzer - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for batch processing:
//   - Directory management
//   - Input file discovery
//   - File archival (moving processed inputs)
//   - Report file naming
//   - Batch summary log
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to input_archive after successful processing
//   - Failed files remain in their original location
//   - Name collisions in the archive get a numeric suffix
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for batch processing.
type FileManager struct {
	// InputDir is the directory where input files are placed.
	InputDir string

	// OutputDir is the directory where reports are written.
	OutputDir string

	// InputArchiveDir is the directory for archived input files.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/complaints.xlsx
	UseTimestampSubdirs bool

	// ArchiveOnSuccess determines whether inputs are moved after success.
	ArchiveOnSuccess bool

	// now is replaced in tests.
	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		ArchiveOnSuccess: true,
		now:              time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the files in the input directory whose extension
// is one of extensions (case-insensitive). Subdirectories and hidden files
// are skipped. Office lock files ("~$report.xlsx") are skipped too.
//
// RETURNS:
//   - File paths sorted by name.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles(extensions []string) ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var result []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if wanted[strings.ToLower(filepath.Ext(name))] {
			result = append(result, filepath.Join(fm.InputDir, name))
		}
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived file (filePath when archiving is off).
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := uniquePath(fm.getArchivePath(filePath))

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := fm.clock()
		return filepath.Join(
			fm.InputArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(fm.InputArchiveDir, fileName)
}

// uniquePath appends _1, _2, ... before the extension until path is free.
func uniquePath(path string) string {
	if !FileExists(path) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if !FileExists(candidate) {
			return candidate
		}
	}
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// OutputBaseName generates the report base name for an input file using the
// current time. See GenerateOutputFileName.
func (fm *FileManager) OutputBaseName(format, inputFile string) string {
	original := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	return GenerateOutputFileName(format, fm.clock(), map[string]string{"original": original})
}

// GenerateOutputFileName generates a report base name, without extension.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Date (YYYYMMDD)
//               {time}      - Time (HHMMSS)
//               {original}  - Input file name without extension
//   - now: The time used for the time placeholders.
//   - params: Additional placeholder values.
//
// RETURNS:
//   - The generated name. Path separators are replaced with "_".
//
// EXAMPLE:
//   format: "{original}_fraud_analysis_{timestamp}"
//   params: {"original": "complaints"}
//   output: "complaints_fraud_analysis_20240115_143022"
func GenerateOutputFileName(format string, now time.Time, params map[string]string) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return strings.NewReplacer("/", "_", "\\", "_").Replace(result)
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a batch run.
type ProcessingSummary struct {
	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalRows       int
	CriticalRows    int
	WarnedRows      int
	TotalAccounts   int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFiles []string
	ArchivePath string
	RunID       string
	Rows        int
	Accounts    int
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string

	// ErrorType is the defect code for run errors, "ERROR" otherwise.
	ErrorType string
}

// AddProcessed records a successful file.
func (s *ProcessingSummary) AddProcessed(info ProcessedFileInfo, critical, warned int) {
	s.TotalFiles++
	s.SuccessfulFiles++
	s.TotalRows += info.Rows
	s.TotalAccounts += info.Accounts
	s.CriticalRows += critical
	s.WarnedRows += warned
	s.ProcessedFiles = append(s.ProcessedFiles, info)
}

// AddFailed records a failed file.
func (s *ProcessingSummary) AddFailed(info FailedFileInfo) {
	s.TotalFiles++
	s.FailedFiles++
	s.FailedFilesList = append(s.FailedFilesList, info)
}

// WriteSummaryLog writes a batch summary to a log file.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	timestamp := summary.EndTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := RenderSummary(writer, summary); err != nil {
		return "", err
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// RenderSummary writes the batch summary text to w.
func RenderSummary(w io.Writer, summary ProcessingSummary) error {
	var b strings.Builder

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(&b, "Fraud Account Analyzer - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Successful:         %d\n"+
		"  Failed:             %d\n"+
		"  Rows Processed:     %d\n"+
		"  Critical Rows:      %d\n"+
		"  Rows with Warnings: %d\n"+
		"  Accounts:           %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalRows,
		summary.CriticalRows,
		summary.WarnedRows,
		summary.TotalAccounts)

	if len(summary.ProcessedFiles) > 0 {
		b.WriteString("Successful Files:\n")
		b.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(&b, "  Input:        %s\n", pf.InputFile)
			for _, out := range pf.OutputFiles {
				fmt.Fprintf(&b, "  Output:       %s\n", out)
			}
			if pf.ArchivePath != "" && pf.ArchivePath != pf.InputFile {
				fmt.Fprintf(&b, "  Archived:     %s\n", pf.ArchivePath)
			}
			if pf.RunID != "" {
				fmt.Fprintf(&b, "  Run ID:       %s\n", pf.RunID)
			}
			fmt.Fprintf(&b, "  Rows:         %d\n", pf.Rows)
			fmt.Fprintf(&b, "  Accounts:     %d\n", pf.Accounts)
			fmt.Fprintf(&b, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		b.WriteString("Failed Files:\n")
		b.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(&b, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(&b, "  Type:  %s\n", ff.ErrorType)
			fmt.Fprintf(&b, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	b.WriteString("================================================================================\n" +
		"End of Summary\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
