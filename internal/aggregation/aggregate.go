// =============================================================================
// Fraud Account Analyzer - Aggregation Engine
// =============================================================================
//
// Groups participating transaction rows by standardized bank account number
// and computes one summary record per account.
//
// PER ACCOUNT:
//   - TotalTransactions: row count in the group
//   - Acks: acknowledgement numbers in row order (empty values kept as empty
//     segments so positions line up with the rows)
//   - TotalAmount / TotalDisputedAmount: decimal sums
//   - BankName / IFSCCode / Address: mode of the non-empty values, the value
//     seen first wins a tie
//   - RiskScore: see risk.go
//
// Groups are emitted in order of first appearance. Nothing here iterates a
// map to decide an order.
//
// =============================================================================

package aggregation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/validation"
)

// AckSeparator joins acknowledgement numbers in exports.
const AckSeparator = ";"

// =============================================================================
// ACCOUNT
// =============================================================================

// Account is the aggregate of every participating row for one account number.
type Account struct {
	// AccountNumber is the standardized account number (the grouping key).
	AccountNumber string

	BankName string
	IFSCCode string
	Address  string

	TotalTransactions int

	// Acks holds one entry per row, in row order.
	Acks []string

	TotalAmount         decimal.Decimal
	TotalDisputedAmount decimal.Decimal

	// RiskScore is in [0, 100].
	RiskScore float64
}

// AcknowledgementNumbers returns the acks joined with AckSeparator.
func (a Account) AcknowledgementNumbers() string {
	return strings.Join(a.Acks, AckSeparator)
}

// AckCount returns the number of non-empty acknowledgement numbers.
func (a Account) AckCount() int {
	n := 0
	for _, ack := range a.Acks {
		if ack != "" {
			n++
		}
	}
	return n
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate groups rows by account number.
//
// PARAMETERS:
//   - rows: Non-critical rows in source order (see validation.Result.Participating).
//
// RETURNS:
//   - One Account per distinct account number, in order of first appearance.
func Aggregate(rows []validation.Row) []Account {
	index := make(map[string]int)
	var groups []*group

	for _, row := range rows {
		i, ok := index[row.Account]
		if !ok {
			i = len(groups)
			index[row.Account] = i
			groups = append(groups, newGroup(row.Account))
		}
		groups[i].add(row)
	}

	accounts := make([]Account, 0, len(groups))
	for _, g := range groups {
		accounts = append(accounts, g.account())
	}
	return accounts
}

// FromResult aggregates the participating rows of a classification result.
func FromResult(res *validation.Result) []Account {
	return Aggregate(res.Participating())
}

type group struct {
	accountNumber string
	count         int
	acks          []string
	amount        decimal.Decimal
	disputed      decimal.Decimal

	bankName modeCounter
	ifsc     modeCounter
	address  modeCounter
}

func newGroup(accountNumber string) *group {
	return &group{
		accountNumber: accountNumber,
		amount:        decimal.Zero,
		disputed:      decimal.Zero,
	}
}

func (g *group) add(row validation.Row) {
	g.count++
	g.acks = append(g.acks, row.AcknowledgementNumber)
	g.amount = g.amount.Add(row.Amount)
	g.disputed = g.disputed.Add(row.DisputedAmount)
	g.bankName.add(row.BankName)
	g.ifsc.add(row.IFSCCode)
	g.address.add(row.Address)
}

func (g *group) account() Account {
	return Account{
		AccountNumber:       g.accountNumber,
		BankName:            g.bankName.mode(),
		IFSCCode:            g.ifsc.mode(),
		Address:             g.address.mode(),
		TotalTransactions:   g.count,
		Acks:                g.acks,
		TotalAmount:         g.amount,
		TotalDisputedAmount: g.disputed,
		RiskScore:           RiskScore(g.count, g.amount),
	}
}

// =============================================================================
// MODE
// =============================================================================

// modeCounter counts non-empty values and remembers first-seen order.
type modeCounter struct {
	counts map[string]int
	order  []string
}

func (m *modeCounter) add(v string) {
	if v == "" {
		return
	}
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	if _, seen := m.counts[v]; !seen {
		m.order = append(m.order, v)
	}
	m.counts[v]++
}

// mode returns the most frequent value; on a tie the one seen first.
func (m *modeCounter) mode() string {
	best, bestCount := "", 0
	for _, v := range m.order {
		if n := m.counts[v]; n > bestCount {
			best, bestCount = v, n
		}
	}
	return best
}

// Mode returns the most frequent non-empty value of values. Ties go to the
// value that appears first; no non-empty value gives "".
func Mode(values []string) string {
	var m modeCounter
	for _, v := range values {
		m.add(v)
	}
	return m.mode()
}
