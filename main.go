// =============================================================================
// Fraud Account Analyzer - Main Entry Point
// =============================================================================
//
// USAGE:
//   fraudagg process        - Process all input files in the input directory
//   fraudagg detect FILE    - Show the detected column mapping
//   fraudagg preview FILE   - Show the first decoded rows
//   fraudagg validate       - Validate configuration and profiles
//   fraudagg version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/        : CLI command definitions (Cobra)
//   - internal/   : Core logic (normalization, detection, validation,
//                   aggregation) and its collaborators (ingest, reports, audit)
//   - pkg/        : Shared file utilities
//   - profiles/   : Source profile YAML files
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/fraud-account-analyzer/cmd"
)

func main() {
	cmd.Execute()
}
