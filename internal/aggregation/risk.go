package aggregation

import (
	"math"

	"github.com/shopspring/decimal"
)

// Risk score weights. Each component saturates at its cap.
const (
	riskTransactionWeight = 0.4
	riskAmountWeight      = 0.6
	riskTransactionCap    = 100
	riskAmountCap         = 10_000_000
)

// RiskScore rates an account from 0 to 100 using its transaction count and
// total amount. It is non-decreasing in both arguments and rounded to two
// decimals.
func RiskScore(transactions int, totalAmount decimal.Decimal) float64 {
	txn := clamp01(float64(transactions) / riskTransactionCap)
	amt := clamp01(totalAmount.InexactFloat64() / riskAmountCap)

	score := (riskTransactionWeight*txn + riskAmountWeight*amt) * 100
	return math.Round(score*100) / 100
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
