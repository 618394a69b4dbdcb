package aggregation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/validation"
)

func sampleAccounts() []Account {
	return []Account{
		{AccountNumber: "50100123456", TotalAmount: dec("500"), TotalDisputedAmount: dec("50"), TotalTransactions: 4},
		{AccountNumber: "123456789", TotalAmount: dec("300"), TotalDisputedAmount: dec("0"), TotalTransactions: 1},
		{AccountNumber: "AB998877665", TotalAmount: dec("100"), TotalDisputedAmount: dec("10"), TotalTransactions: 2},
	}
}

func numbers(accounts []Account) []string {
	var out []string
	for _, a := range accounts {
		out = append(out, a.AccountNumber)
	}
	return out
}

func TestComputeStatistics(t *testing.T) {
	report := validation.QualityReport{RowsSeen: 10, RowsDropped: 2, Clean: 5, Warned: 2, Critical: 3}

	stats := ComputeStatistics(sampleAccounts(), report, 2)

	if stats.TotalInputRows != 12 || stats.RowsProcessed != 7 || stats.RowsWithErrors != 5 {
		t.Errorf("row counts = %d/%d/%d", stats.TotalInputRows, stats.RowsProcessed, stats.RowsWithErrors)
	}
	if stats.CriticalRows != 3 || stats.DroppedRows != 2 {
		t.Errorf("critical = %d dropped = %d", stats.CriticalRows, stats.DroppedRows)
	}
	if stats.UniqueAccounts != 3 {
		t.Errorf("unique accounts = %d", stats.UniqueAccounts)
	}
	if !stats.TotalAmount.Equal(dec("900")) || !stats.TotalDisputedAmount.Equal(dec("60")) {
		t.Errorf("totals = %s / %s", stats.TotalAmount, stats.TotalDisputedAmount)
	}
	if !stats.AverageAmount.Equal(dec("300")) {
		t.Errorf("average = %s", stats.AverageAmount)
	}
	if diff := cmp.Diff([]string{"50100123456", "123456789"}, numbers(stats.TopAccounts)); diff != "" {
		t.Errorf("top accounts mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := ComputeStatistics(nil, validation.QualityReport{}, 0)
	if stats.UniqueAccounts != 0 || !stats.AverageAmount.IsZero() || len(stats.TopAccounts) != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"50100123456", "123456789", "AB998877665"}},
		{"  ", []string{"50100123456", "123456789", "AB998877665"}},
		{"123456", []string{"50100123456", "123456789"}},
		{"ab99", []string{"AB998877665"}},
		{"nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := numbers(Search(sampleAccounts(), tt.query))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestFilters(t *testing.T) {
	if diff := cmp.Diff([]string{"50100123456", "AB998877665"}, numbers(FilterMinTransactions(sampleAccounts(), 2))); diff != "" {
		t.Errorf("FilterMinTransactions mismatch (-want +got):\n%s", diff)
	}
	if got := FilterMinTransactions(sampleAccounts(), 0); len(got) != 3 {
		t.Errorf("FilterMinTransactions(0) = %d accounts, want 3", len(got))
	}
	if diff := cmp.Diff([]string{"50100123456", "123456789"}, numbers(FilterMinAmount(sampleAccounts(), dec("300")))); diff != "" {
		t.Errorf("FilterMinAmount mismatch (-want +got):\n%s", diff)
	}
	if got := FilterMinAmount(sampleAccounts(), decimal.Zero); len(got) != 3 {
		t.Errorf("FilterMinAmount(0) = %d accounts, want 3", len(got))
	}
}

func TestFlaggedRows(t *testing.T) {
	outcomes := []validation.Outcome{
		{Row: validation.Row{Index: 2}},
		{Row: validation.Row{Index: 3}, Verdict: validation.VerdictWarned, Defects: []validation.Defect{{Code: validation.CodeMissingIFSC}}},
		{Row: validation.Row{Index: 4}},
		{Row: validation.Row{Index: 5}, Verdict: validation.VerdictCritical, Defects: []validation.Defect{{Code: validation.CodeNoAmountValue}}},
	}

	got := FlaggedRows(outcomes)
	if len(got) != 2 || got[0].Row.Index != 3 || got[1].Row.Index != 5 {
		t.Errorf("flagged rows = %+v", got)
	}
}
