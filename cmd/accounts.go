// =============================================================================
// Fraud Account Analyzer - Accounts Command
// =============================================================================
//
// COMMAND USAGE:
//   fraudagg accounts FILE [--search Q] [--min-transactions N] [--min-amount X]
//                          [--limit N] [--issues]
//
// Analyzes FILE without writing reports or archiving it and prints the
// ranked account list, optionally narrowed by account number search and
// minimum filters. --issues also prints every data quality defect.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/aggregation"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/pipeline"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/report"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/validation"
)

var (
	searchQuery     string
	minTransactions int
	minAmount       string
	accountLimit    int
	showIssues      bool
)

var accountsCmd = &cobra.Command{
	Use:   "accounts FILE",
	Short: "Print the ranked fraudster accounts of a file without writing reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return err
		}
		return runAccounts(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)

	accountsCmd.Flags().StringVar(&profileCode, "profile", "", "Profile code to use instead of pattern matching")
	accountsCmd.Flags().StringVar(&searchQuery, "search", "", "Show only accounts whose number contains this text")
	accountsCmd.Flags().IntVar(&minTransactions, "min-transactions", 0, "Show only accounts with at least this many transactions")
	accountsCmd.Flags().StringVar(&minAmount, "min-amount", "0", "Show only accounts with at least this total amount")
	accountsCmd.Flags().IntVar(&accountLimit, "limit", 0, "Show at most this many accounts (0 = all)")
	accountsCmd.Flags().BoolVar(&showIssues, "issues", false, "Also print every data quality issue")
}

func runAccounts(cmd *cobra.Command, path string) error {
	threshold, err := decimal.NewFromString(minAmount)
	if err != nil {
		return fmt.Errorf("invalid --min-amount %q: %w", minAmount, err)
	}

	profile, err := resolveProfile(path)
	if err != nil {
		return err
	}

	p := pipeline.New(path, profile, pipeline.Deps{Config: appConfig, Logger: logger})
	p.DryRun = true
	res := p.Run(cmd.Context())
	if res.Error != nil {
		return fmt.Errorf("%s", pipeline.Message(res.Error))
	}

	accounts := aggregation.Search(res.Accounts, searchQuery)
	accounts = aggregation.FilterMinTransactions(accounts, minTransactions)
	accounts = aggregation.FilterMinAmount(accounts, threshold)
	if accountLimit > 0 && len(accounts) > accountLimit {
		accounts = accounts[:accountLimit]
	}

	s := res.Statistics
	fmt.Printf("Rows processed: %d   Rows with errors: %d   Accounts: %d   Total: ₹%s\n\n",
		s.RowsProcessed, s.RowsWithErrors, s.UniqueAccounts, report.FormatAmount(s.TotalAmount))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tACCOUNT\tBANK\tIFSC\tTXNS\tACKS\tAMOUNT\tDISPUTED\tRISK\t")
	for i, a := range accounts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%.1f\t\n",
			i+1,
			a.AccountNumber,
			report.Truncate(a.BankName, 20),
			a.IFSCCode,
			a.TotalTransactions,
			a.AckCount(),
			report.FormatAmount(a.TotalAmount),
			report.FormatAmount(a.TotalDisputedAmount),
			a.RiskScore,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d of %d account(s) shown\n", len(accounts), len(res.Accounts))

	if showIssues {
		fmt.Println()
		fmt.Println(strings.TrimRight(validation.FormatDefects(res.Classification.Defects()), "\n"))
	}
	return nil
}
