package aggregation

import "sort"

// Sort returns a copy of accounts ordered by total amount descending, then
// total transactions descending. Accounts equal on both keys keep their
// input order.
func Sort(accounts []Account) []Account {
	out := make([]Account, len(accounts))
	copy(out, accounts)

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].TotalAmount.Cmp(out[j].TotalAmount); c != 0 {
			return c > 0
		}
		return out[i].TotalTransactions > out[j].TotalTransactions
	})
	return out
}
