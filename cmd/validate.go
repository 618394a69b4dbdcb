// =============================================================================
// Fraud Account Analyzer - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   fraudagg validate
//
// Loads the main configuration and every source profile, compiles the
// cleaning rules, and reports problems without touching any input file.
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/cleaning"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and source profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return err
		}
		return runValidate()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate() error {
	fmt.Printf("Config:        %s\n", cfgFile)
	fmt.Printf("Input dir:     %s\n", appConfig.InputDir)
	fmt.Printf("Output dir:    %s\n", appConfig.OutputDir)
	fmt.Printf("Reports:       %s (top %d)\n", strings.Join(appConfig.Report.Formats, ", "), appConfig.Report.TopAccounts)
	fmt.Printf("Audit:         %s %s\n", appConfig.Audit.Driver, appConfig.Audit.Path)
	fmt.Printf("Concurrency:   %d files, %d classify workers\n\n", appConfig.MaxConcurrency, appConfig.ClassifyWorkers)

	profiles, err := config.LoadProfiles(appConfig.ProfilesDir)
	if err != nil {
		return err
	}

	fmt.Printf("Profiles (%d):\n", len(profiles))
	for _, p := range append(profiles, config.DefaultProfile()) {
		if _, err := cleaning.New(p.CleaningRules); err != nil {
			return fmt.Errorf("profile %s: %w", p.ProfileCode, err)
		}
		if _, err := p.Variants(); err != nil {
			return fmt.Errorf("profile %s: %w", p.ProfileCode, err)
		}
		if _, err := p.Overrides(); err != nil {
			return fmt.Errorf("profile %s: %w", p.ProfileCode, err)
		}

		patterns := strings.Join(p.FileMatchingPatterns, ", ")
		if patterns == "" {
			patterns = "(fallback)"
		}
		fmt.Printf("  %-12s %-30s %s\n", p.ProfileCode, p.ProfileName, patterns)
	}

	fmt.Println("\nConfiguration is valid.")
	return nil
}
