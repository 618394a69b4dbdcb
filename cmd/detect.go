// =============================================================================
// Fraud Account Analyzer - Detect and Preview Commands
// =============================================================================
//
// COMMAND USAGE:
//   fraudagg detect FILE [--profile CODE]
//   fraudagg preview FILE [--profile CODE] [-n 10]
//
// 'detect' prints the column mapping the pipeline would use for FILE: the
// selected header and confidence per canonical field, ambiguous candidates,
// and headers that map to nothing. 'preview' prints the first rows exactly
// as decoded, before any cleaning.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/columns"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/ingest"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/validation"
)

// previewRows is the number of rows shown by 'preview'.
var previewRows int

var detectCmd = &cobra.Command{
	Use:   "detect FILE",
	Short: "Show the detected column mapping for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return err
		}
		return runDetect(args[0])
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview FILE",
	Short: "Show the first rows of a file as decoded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return err
		}
		return runPreview(args[0])
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(previewCmd)

	for _, c := range []*cobra.Command{detectCmd, previewCmd} {
		c.Flags().StringVar(&profileCode, "profile", "", "Profile code to use instead of pattern matching")
	}
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", ingest.DefaultPreviewRows, "Number of rows to show")
}

// resolveProfile loads the profiles and picks the one for path.
func resolveProfile(path string) (*config.SourceProfile, error) {
	profiles, err := config.LoadProfiles(appConfig.ProfilesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load source profiles: %w", err)
	}
	return profileFor(profiles, profileCode, path)
}

// =============================================================================
// DETECT
// =============================================================================

func runDetect(path string) error {
	profile, err := resolveProfile(path)
	if err != nil {
		return err
	}

	table, err := ingest.Preview(path, profile, appConfig.MaxUploadBytes(), 1)
	if err != nil {
		return err
	}

	variants, err := profile.Variants()
	if err != nil {
		return err
	}
	detected := columns.NewDetector(variants).Detect(table.Headers)
	mapping, err := detected.ApplyOverrides(profile.ColumnOverrides, table.Headers)
	if err != nil {
		return err
	}

	fmt.Printf("File:    %s\n", path)
	fmt.Printf("Profile: %s (%s)\n\n", profile.ProfileName, profile.ProfileCode)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tHEADER\tCONFIDENCE\tSTATUS")
	for _, f := range columns.Fields {
		m := mapping.Match(f)
		status := "mapped"
		switch {
		case m.Overridden:
			status = "override"
		case len(m.Ambiguous) > 0:
			status = "ambiguous: " + strings.Join(m.Ambiguous, " | ")
		case m.Source == "":
			status = "unmapped"
			if f.Required() {
				status = "MISSING (required)"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", f, m.Source, m.Confidence, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if unmapped := mapping.Unmapped(table.Headers); len(unmapped) > 0 {
		fmt.Printf("\nUnmapped headers: %s\n", strings.Join(unmapped, ", "))
	}

	if err := validation.CheckRequiredColumns(mapping); err != nil {
		fmt.Println()
		return err
	}
	return nil
}

// =============================================================================
// PREVIEW
// =============================================================================

func runPreview(path string) error {
	profile, err := resolveProfile(path)
	if err != nil {
		return err
	}

	table, err := ingest.Preview(path, profile, appConfig.MaxUploadBytes(), previewRows)
	if err != nil {
		return err
	}

	if table.Sheet != "" {
		fmt.Printf("Sheet: %s\n", table.Sheet)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\t"+strings.Join(table.Headers, "\t"))
	for _, rec := range table.Records {
		cells := make([]string, len(table.Headers))
		for i, h := range table.Headers {
			cells[i] = rec.Cells[h]
		}
		fmt.Fprintf(w, "%d\t%s\n", rec.Index, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d row(s) shown\n", len(table.Records))
	return nil
}
