// =============================================================================
// Fraud Account Analyzer - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   fraudagg version
//   fraudagg --version
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set with ldflags:
//   go build -ldflags "-X github.com/ginjaninja78/fraud-account-analyzer/cmd.Version=1.2.0 \
//     -X github.com/ginjaninja78/fraud-account-analyzer/cmd.Commit=$(git rev-parse --short HEAD)"
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// versionString is shared by the command and the --version flag.
func versionString() string {
	return fmt.Sprintf("fraudagg %s (commit %s, built %s, %s %s/%s)",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}
