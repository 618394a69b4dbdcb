// =============================================================================
// Fraud Account Analyzer - Dashboard Statistics
// =============================================================================
//
// Summary figures, search and filters over the sorted account list. Every
// function here preserves the order of its input.
//
// =============================================================================

package aggregation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/validation"
)

// DefaultTopAccounts is the top list length when none is configured.
const DefaultTopAccounts = 10

// Statistics summarizes one run.
type Statistics struct {
	TotalInputRows int
	RowsProcessed  int
	RowsWithErrors int
	CriticalRows   int
	DroppedRows    int

	UniqueAccounts      int
	TotalAmount         decimal.Decimal
	TotalDisputedAmount decimal.Decimal

	// AverageAmount is TotalAmount / UniqueAccounts, zero with no accounts.
	AverageAmount decimal.Decimal

	// TopAccounts are the first topN accounts of the sorted list.
	TopAccounts []Account
}

// ComputeStatistics builds the run statistics.
//
// PARAMETERS:
//   - accounts: Accounts in sorted order.
//   - report: The quality report of the same run.
//   - topN: Length of the top list; <= 0 uses DefaultTopAccounts.
//
// RETURNS:
//   - The statistics. TopAccounts shares no backing array with accounts.
func ComputeStatistics(accounts []Account, report validation.QualityReport, topN int) Statistics {
	if topN <= 0 {
		topN = DefaultTopAccounts
	}

	stats := Statistics{
		TotalInputRows:      report.RowsSeen + report.RowsDropped,
		RowsProcessed:       report.RowsProcessed(),
		RowsWithErrors:      report.RowsWithErrors(),
		CriticalRows:        report.Critical,
		DroppedRows:         report.RowsDropped,
		UniqueAccounts:      len(accounts),
		TotalAmount:         decimal.Zero,
		TotalDisputedAmount: decimal.Zero,
		AverageAmount:       decimal.Zero,
	}

	for _, a := range accounts {
		stats.TotalAmount = stats.TotalAmount.Add(a.TotalAmount)
		stats.TotalDisputedAmount = stats.TotalDisputedAmount.Add(a.TotalDisputedAmount)
	}
	if len(accounts) > 0 {
		stats.AverageAmount = stats.TotalAmount.Div(decimal.NewFromInt(int64(len(accounts))))
	}

	if topN > len(accounts) {
		topN = len(accounts)
	}
	stats.TopAccounts = append([]Account(nil), accounts[:topN]...)

	return stats
}

// Search returns the accounts whose number contains query, ignoring case and
// surrounding whitespace. An empty query returns accounts unchanged.
func Search(accounts []Account, query string) []Account {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return accounts
	}

	var out []Account
	for _, a := range accounts {
		if strings.Contains(strings.ToLower(a.AccountNumber), query) {
			out = append(out, a)
		}
	}
	return out
}

// FilterMinTransactions keeps accounts with at least min transactions.
func FilterMinTransactions(accounts []Account, min int) []Account {
	if min <= 0 {
		return accounts
	}

	var out []Account
	for _, a := range accounts {
		if a.TotalTransactions >= min {
			out = append(out, a)
		}
	}
	return out
}

// FilterMinAmount keeps accounts whose total amount is at least min.
func FilterMinAmount(accounts []Account, min decimal.Decimal) []Account {
	if !min.IsPositive() {
		return accounts
	}

	var out []Account
	for _, a := range accounts {
		if a.TotalAmount.GreaterThanOrEqual(min) {
			out = append(out, a)
		}
	}
	return out
}

// FlaggedRows returns the outcomes carrying at least one defect, in row order.
func FlaggedRows(outcomes []validation.Outcome) []validation.Outcome {
	var out []validation.Outcome
	for _, o := range outcomes {
		if len(o.Defects) > 0 {
			out = append(out, o)
		}
	}
	return out
}
