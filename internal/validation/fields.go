// =============================================================================
// Fraud Account Analyzer - Field Validators
// =============================================================================
//
// Stateless checks for individual cell values. Every function here is total:
// any string input produces a result, none of them panic or return errors.
//
// RULES:
//   - Account numbers: 9 to 18 digits once non-digits are stripped
//   - IFSC codes: exactly 11 alphanumeric characters
//   - Amounts: currency symbols and thousands separators stripped, then a
//     decimal number; valid only when > 0
//
// =============================================================================

package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// AccountMinDigits is the shortest valid account number.
	AccountMinDigits = 9

	// AccountMaxDigits is the longest valid account number.
	AccountMaxDigits = 18

	// IFSCLength is the exact length of an IFSC code.
	IFSCLength = 11
)

// currencyPattern matches the currency markers stripped before parsing.
// "Rs." must be tried before "Rs".
var currencyPattern = regexp.MustCompile(`(?i)rs\.|rs|inr|usd|[₹$£€]`)

// =============================================================================
// ACCOUNT NUMBERS
// =============================================================================

// StandardizeAccount removes space and dash characters. Everything else is
// preserved, so "1234-5678 90" becomes "1234567890".
func StandardizeAccount(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
}

// IsValidAccount reports whether s holds between 9 and 18 digits after all
// non-digit characters are stripped.
func IsValidAccount(s string) bool {
	n := countDigits(s)
	return n >= AccountMinDigits && n <= AccountMaxDigits
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// =============================================================================
// IFSC CODES
// =============================================================================

// IsValidIFSC reports whether s (ignoring surrounding whitespace) is exactly
// 11 letters or digits. Case does not matter.
func IsValidIFSC(s string) bool {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) != IFSCLength {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// =============================================================================
// AMOUNTS
// =============================================================================

// ParseAmount parses a money cell such as "₹1,00,000.50" or "Rs. 2,500".
// It returns (0, false) when the remainder is not a number. Signs are kept.
func ParseAmount(s string) (float64, bool) {
	d, ok := ParseAmountDecimal(s)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// maxAmountExponent bounds the decimal exponent of a parsed amount.
const maxAmountExponent = 30

// ParseAmountDecimal is ParseAmount without the float conversion. Sums are
// taken over these values so that 0.1 + 0.2 stays exact.
func ParseAmountDecimal(s string) (decimal.Decimal, bool) {
	cleaned := currencyPattern.ReplaceAllString(s, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	// Sums rescale to a common exponent, so a value like 1e999999999 would
	// stall aggregation.
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return decimal.Zero, false
	}
	return d, true
}

// IsValidAmount reports whether v is strictly positive.
func IsValidAmount(v float64) bool {
	return v > 0
}
