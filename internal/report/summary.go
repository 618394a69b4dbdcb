package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

const (
	ruleHeavy = "============================================================"
	ruleLight = "------------------------------------------------------------"

	bankNameWidth = 20
)

// WriteSummary writes the plain-text summary to path.
func WriteSummary(path string, in Input) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := RenderSummary(w, in); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return file.Close()
}

// RenderSummary writes the summary: run header, summary statistics, data
// quality metrics and the top accounts by amount.
func RenderSummary(w io.Writer, in Input) error {
	s := in.Statistics
	q := in.Quality

	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line(ruleHeavy)
	line("FRAUD ANALYSIS REPORT")
	line(ruleHeavy)
	line("")
	line("Generated:  %s", in.GeneratedAt.Format("2006-01-02 15:04:05"))
	line("Input File: %s", in.SourceFile)
	if in.ProfileName != "" {
		line("Profile:    %s", in.ProfileName)
	}
	if in.RunID != "" {
		line("Run ID:     %s", in.RunID)
	}
	line("")

	line(ruleLight)
	line("SUMMARY STATISTICS")
	line(ruleLight)
	line("%-28s %s", "Total Input Rows:", fmt.Sprint(s.TotalInputRows))
	line("%-28s %s", "Rows Processed:", fmt.Sprint(s.RowsProcessed))
	line("%-28s %s", "Rows with Errors:", fmt.Sprint(s.RowsWithErrors))
	line("%-28s %s", "Unique Fraudster Accounts:", fmt.Sprint(s.UniqueAccounts))
	line("%-28s ₹%s", "Total Fraud Amount:", FormatAmount(s.TotalAmount))
	line("%-28s ₹%s", "Total Disputed Amount:", FormatAmount(s.TotalDisputedAmount))
	line("%-28s ₹%s", "Average Amount per Account:", FormatAmount(s.AverageAmount))
	line("")

	line(ruleLight)
	line("DATA QUALITY METRICS")
	line(ruleLight)
	line("%-28s %d", "Clean Rows:", q.Clean)
	line("%-28s %d", "Rows with Warnings:", q.Warned)
	line("%-28s %d", "Critical Rows (excluded):", q.Critical)
	line("%-28s %d", "Empty Rows Dropped:", q.RowsDropped)
	line("%-28s %.1f%%", "Clean Rate:", q.CleanRate())
	if tallies := q.Tallies(); len(tallies) > 0 {
		line("")
		for _, t := range tallies {
			line("  %-24s %-9s %d", t.Code, t.Severity, t.Count)
		}
	}
	line("")

	top := s.TopAccounts
	line(ruleLight)
	line("TOP %d FRAUDSTER ACCOUNTS BY AMOUNT", len(top))
	line(ruleLight)
	if len(top) == 0 {
		line("No accounts to display.")
	} else {
		line("%-4s %-20s %-23s %-11s %6s %16s %6s", "#", "Account Number", "Bank Name", "IFSC Code", "Txns", "Total Amount", "Risk")
		for i, a := range top {
			line("%-4d %-20s %-23s %-11s %6d %16s %6.1f",
				i+1,
				a.AccountNumber,
				Truncate(a.BankName, bankNameWidth),
				a.IFSCCode,
				a.TotalTransactions,
				"₹"+FormatAmount(a.TotalAmount),
				a.RiskScore,
			)
		}
	}
	line("")
	line(ruleHeavy)

	_, err := io.WriteString(w, b.String())
	return err
}

// Truncate shortens s to max runes followed by "..." when it is longer.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
