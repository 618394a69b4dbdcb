// =============================================================================
// Fraud Account Analyzer - Configuration Module
// =============================================================================
//
// Loads the main application configuration and the per-source profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, logging, processing, reports
//      and audit settings
//   2. Source Profiles (profiles/*.yaml): how one bank's or portal's export
//      is decoded, which headers it uses and how its cells are cleaned
//   3. Environment (.env + process environment): overrides for deployment
//      specific values, see env.go
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for .csv/.xlsx/.xlsm files to analyze.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated reports.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after a successful run.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ProfilesDir holds the source profile YAML files.
	// Default: "./profiles"
	ProfilesDir string `yaml:"profiles_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is the application log path. Empty logs to stdout only.
	// Default: "./logs/fraudagg.log"
	LogFile string `yaml:"log_file"`

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat is the report base name, without extension.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {original}  - Input file name without extension
	// Default: "{original}_fraud_analysis_{timestamp}"
	OutputNameFormat string `yaml:"output_name_format"`

	// Report controls which reports are written.
	Report ReportConfig `yaml:"report"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps processing other files when one fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// ArchiveOnSuccess moves input files to InputArchiveDir after a run.
	// Default: true
	ArchiveOnSuccess *bool `yaml:"archive_on_success"`

	// MaxUploadMB is the largest accepted input file.
	// Default: 200
	MaxUploadMB int `yaml:"max_upload_mb"`

	// ClassifyWorkers is the number of goroutines classifying rows of one
	// file. 1 classifies sequentially.
	// Default: 4
	ClassifyWorkers int `yaml:"classify_workers"`

	// =========================================================================
	// AUDIT SETTINGS
	// =========================================================================

	// Audit selects where run records are written.
	Audit AuditConfig `yaml:"audit"`
}

// ReportConfig selects the report formats.
type ReportConfig struct {
	// Formats is any of "xlsx", "csv", "summary".
	// Default: ["xlsx", "summary"]
	Formats []string `yaml:"formats"`

	// TopAccounts is the length of the top accounts list.
	// Default: 20
	TopAccounts int `yaml:"top_accounts"`
}

// AuditConfig selects the audit sink.
type AuditConfig struct {
	// Driver is "text", "sqlite" or "none".
	// Default: "text"
	Driver string `yaml:"driver"`

	// Path is the log file (text) or database file (sqlite).
	// Default: "./logs/audit.log" or "./logs/audit.db"
	Path string `yaml:"path"`
}

// Report formats.
const (
	FormatXLSX    = "xlsx"
	FormatCSV     = "csv"
	FormatSummary = "summary"
)

// Audit drivers.
const (
	AuditText   = "text"
	AuditSQLite = "sqlite"
	AuditNone   = "none"
)

// ShouldContinueOnError reports the effective continue_on_error value.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// ShouldArchive reports the effective archive_on_success value.
func (c *MainConfig) ShouldArchive() bool {
	return c.ArchiveOnSuccess == nil || *c.ArchiveOnSuccess
}

// MaxUploadBytes returns the size limit in bytes.
func (c *MainConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file, applies
// environment overrides and defaults, and validates it.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. An empty path
//     or a missing file yields the defaults.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be parsed or the result is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case os.IsNotExist(err):
			// Defaults only.
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	ApplyEnvOverrides(&config)
	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.ProfilesDir == "" {
		config.ProfilesDir = "./profiles"
	}
	if config.LogFile == "" {
		config.LogFile = "./logs/fraudagg.log"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{original}_fraud_analysis_{timestamp}"
	}
	if len(config.Report.Formats) == 0 {
		config.Report.Formats = []string{FormatXLSX, FormatSummary}
	}
	if config.Report.TopAccounts == 0 {
		config.Report.TopAccounts = 20
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.MaxUploadMB == 0 {
		config.MaxUploadMB = 200
	}
	if config.ClassifyWorkers == 0 {
		config.ClassifyWorkers = 4
	}
	if config.Audit.Driver == "" {
		config.Audit.Driver = AuditText
	}
	if config.Audit.Path == "" {
		switch config.Audit.Driver {
		case AuditSQLite:
			config.Audit.Path = "./logs/audit.db"
		default:
			config.Audit.Path = "./logs/audit.log"
		}
	}
}

// validateMainConfig checks enumerated values and creates the working
// directories.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	switch config.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", config.LogFormat)
	}

	for i, f := range config.Report.Formats {
		switch strings.ToLower(f) {
		case FormatXLSX, FormatCSV, FormatSummary:
			config.Report.Formats[i] = strings.ToLower(f)
		default:
			return fmt.Errorf("unknown report format %q", f)
		}
	}

	switch config.Audit.Driver {
	case AuditText, AuditSQLite, AuditNone:
	default:
		return fmt.Errorf("unknown audit driver %q", config.Audit.Driver)
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}
	if config.MaxUploadMB < 0 {
		return fmt.Errorf("max_upload_mb must not be negative, got %d", config.MaxUploadMB)
	}
	if config.ClassifyWorkers < 1 {
		return fmt.Errorf("classify_workers must be at least 1, got %d", config.ClassifyWorkers)
	}

	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.InputArchiveDir,
		config.ProfilesDir,
	}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}
