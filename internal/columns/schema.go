// =============================================================================
// Fraud Account Analyzer - Canonical Schema
// =============================================================================
//
// The eight semantic fields every input is mapped onto, and the frozen list
// of known header spellings (variants) for each of them.
//
// =============================================================================

package columns

import (
	"fmt"
	"strings"
)

// Field is one canonical semantic field.
type Field int

const (
	SerialNumber Field = iota
	AcknowledgementNumber
	BankAccountNumber
	IFSCCode
	Address
	Amount
	DisputedAmount
	BankName

	fieldCount
)

// Fields lists every canonical field in schema order. Schema order is the
// tie-break whenever one header scores equally against two fields.
var Fields = []Field{
	SerialNumber,
	AcknowledgementNumber,
	BankAccountNumber,
	IFSCCode,
	Address,
	Amount,
	DisputedAmount,
	BankName,
}

var fieldNames = [fieldCount]string{
	SerialNumber:          "serial_number",
	AcknowledgementNumber: "acknowledgement_number",
	BankAccountNumber:     "bank_account_number",
	IFSCCode:              "ifsc_code",
	Address:               "address",
	Amount:                "amount",
	DisputedAmount:        "disputed_amount",
	BankName:              "bank_name",
}

// variants is the known header spelling table. Order inside each list is
// significant only for display.
var variants = [fieldCount][]string{
	SerialNumber: {
		"sr no", "sr.no", "serial no", "s.no", "sno", "serial number", "#",
	},
	AcknowledgementNumber: {
		"acknowledgement no", "ack no", "ackno", "ack", "acknowledgment no",
		"acknowledgement number", "acknowledgment number", "ref no", "reference no",
	},
	BankAccountNumber: {
		"bank account no", "bank ac no", "bank a/c no", "ac no", "a/c no",
		"account no", "account number", "bank account number",
		"beneficiary account", "beneficiary ac",
	},
	IFSCCode: {
		"ifsc code", "ifsc", "bank code",
	},
	Address: {
		"address", "beneficiary address", "account holder address", "location",
	},
	Amount: {
		"amount", "transaction amount", "txn amount", "transfer amount", "fraud amount",
	},
	DisputedAmount: {
		"disputed amount", "disputed", "claim amount", "disputed amt", "chargeback amount",
	},
	BankName: {
		"bank name", "bank", "beneficiary bank", "receiving bank",
	},
}

// String returns the snake_case field name.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// Required reports whether a run cannot proceed without this field mapped.
func (f Field) Required() bool {
	return f == BankAccountNumber || f == Amount
}

// Variants returns a copy of the known header spellings for f.
func (f Field) Variants() []string {
	if f < 0 || f >= fieldCount {
		return nil
	}
	out := make([]string, len(variants[f]))
	copy(out, variants[f])
	return out
}

// ParseField resolves a snake_case field name (case-insensitive).
func ParseField(name string) (Field, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, f := range Fields {
		if fieldNames[f] == key {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown canonical field %q", name)
}
