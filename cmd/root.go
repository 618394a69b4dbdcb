// =============================================================================
// Fraud Account Analyzer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (fraudagg)
//   ├── processCmd  (fraudagg process)
//   ├── detectCmd   (fraudagg detect FILE)
//   ├── previewCmd  (fraudagg preview FILE)
//   ├── accountsCmd (fraudagg accounts FILE)
//   ├── validateCmd (fraudagg validate)
//   └── versionCmd  (fraudagg version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --env-file, --verbose)
//   2. Loading the .env file and the main configuration
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile holds the path to the optional .env file.
var envFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig and logger are set by setup.
var (
	appConfig *config.MainConfig
	logger    *logrus.Logger
	closeLog  = func() error { return nil }
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "fraudagg",

	Short: "Fraud Account Analyzer - Aggregate fraud complaint exports per beneficiary account",

	Long: `Fraud Account Analyzer reads fraud complaint exports (CSV or XLSX) whose
column headers vary between sources, maps them onto a canonical schema,
classifies every row by data quality, and aggregates the transactions per
fraudster bank account into a ranked report.

Key Features:
  - Fuzzy header detection with per-source profiles and overrides
  - Two-tier data quality classification (critical / warning)
  - Per-account aggregation with a bounded risk score
  - XLSX, CSV and text summary reports
  - Audit trail in a text log or SQLite database

Example Usage:
  fraudagg process                       # Process all files in the input directory
  fraudagg process --file ./may.xlsx     # Process a single file
  fraudagg detect ./may.xlsx             # Show the detected column mapping
  fraudagg preview ./may.csv -n 5        # Show the first rows as decoded`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},

	SilenceUsage: true,

	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to a .env file with environment overrides (ignored if missing)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// setup loads the environment, the main configuration and the logger.
// Commands that need configuration call it first.
func setup() error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	log, closer, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Verbose: verbose,
		JSON:    cfg.LogFormat == "json",
	})
	if err != nil {
		return err
	}

	appConfig, logger, closeLog = cfg, log, closer
	logger.WithField("config", cfgFile).Debug("Configuration loaded")
	return nil
}

// profileFor resolves the profile for a file: the --profile code when
// given, otherwise the first profile whose patterns match the file name.
func profileFor(profiles []*config.SourceProfile, code, path string) (*config.SourceProfile, error) {
	if code != "" {
		return config.FindProfileByCode(profiles, code)
	}
	return config.FindProfile(profiles, path), nil
}
