package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/aggregation"
)

// WriteCSV writes the account table as CSV with a header row.
func WriteCSV(path string, accounts []aggregation.Account) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(AccountColumns); err != nil {
		return err
	}

	for _, a := range accounts {
		record := []string{
			csvText(a.AccountNumber),
			csvText(a.AcknowledgementNumbers()),
			strconv.Itoa(a.AckCount()),
			csvText(a.BankName),
			csvText(a.IFSCCode),
			csvText(a.Address),
			strconv.Itoa(a.TotalTransactions),
			a.TotalAmount.StringFixed(2),
			a.TotalDisputedAmount.StringFixed(2),
			strconv.FormatFloat(a.RiskScore, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write account %s: %w", a.AccountNumber, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return file.Close()
}

// csvText quotes a text cell with a leading apostrophe when a spreadsheet
// would otherwise read it as a formula.
func csvText(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
