// =============================================================================
// Fraud Account Analyzer - Row Classifier
// =============================================================================
//
// Turns decoded records into cleaned transaction rows with a verdict.
//
// PER ROW:
//   1. Trim every mapped cell. A row whose mapped cells are all empty is
//      dropped and gets no verdict.
//   2. Account: standardized; no digits at all -> NO_ACCOUNT_VALUE (critical),
//      digit count outside 9..18 -> INVALID_ACCOUNT (warning).
//   3. Amount: missing, unparsable or <= 0 -> NO_AMOUNT_VALUE (critical).
//   4. IFSC and address, when their columns are mapped: MISSING_IFSC,
//      INVALID_IFSC_FORMAT, MISSING_ADDRESS (warnings).
//   5. Disputed amount present but unparsable -> INVALID_AMOUNT (warning),
//      value coerced to 0.
//
// TABLE WIDE:
//   Every acknowledgement number appearing on more than one row raises one
//   DUPLICATE_ACK warning listing all of those rows.
//
// =============================================================================

package validation

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/columns"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/types"
)

// =============================================================================
// ROW TYPES
// =============================================================================

// Verdict is the classification of one row.
type Verdict int

const (
	VerdictClean Verdict = iota
	VerdictWarned
	VerdictCritical
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictClean:
		return "clean"
	case VerdictWarned:
		return "warned"
	case VerdictCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Row is one cleaned transaction.
type Row struct {
	// Index is the source row number.
	Index int

	SerialNumber          string
	AcknowledgementNumber string

	// Account is the standardized account number, the grouping key.
	Account string

	// RawAccount is the trimmed cell before standardization.
	RawAccount string

	IFSCCode string
	Address  string
	BankName string

	// Amount is the parsed amount (zero on critical rows).
	Amount decimal.Decimal

	// DisputedAmount is zero when missing or unparsable.
	DisputedAmount decimal.Decimal
}

// Outcome is a classified row with its verdict and row-scoped defects.
type Outcome struct {
	Row     Row
	Verdict Verdict
	Defects []Defect
}

// Result is the output of classifying a whole table.
type Result struct {
	// Outcomes are the classified rows in source order. Dropped rows are absent.
	Outcomes []Outcome

	// TableDefects holds table-scoped defects (DUPLICATE_ACK), ordered by the
	// first row each value appears on.
	TableDefects []Defect

	// Report holds the quality counters.
	Report QualityReport
}

// Participating returns the non-critical rows in source order.
func (r *Result) Participating() []Row {
	rows := make([]Row, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Verdict != VerdictCritical {
			rows = append(rows, o.Row)
		}
	}
	return rows
}

// Defects returns every row defect in row order followed by table defects.
func (r *Result) Defects() []Defect {
	var out []Defect
	for _, o := range r.Outcomes {
		out = append(out, o.Defects...)
	}
	return append(out, r.TableDefects...)
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier classifies records using a resolved column mapping.
type Classifier struct {
	mapping columns.Mapping
	sources map[columns.Field]string
}

// NewClassifier returns a classifier, or a *RunError when a required column
// is not mapped. The account column is checked first.
func NewClassifier(mapping columns.Mapping) (*Classifier, error) {
	if err := CheckRequiredColumns(mapping); err != nil {
		return nil, err
	}

	sources := make(map[columns.Field]string)
	for _, f := range mapping.MappedFields() {
		sources[f] = mapping.Source(f)
	}

	return &Classifier{mapping: mapping, sources: sources}, nil
}

// CheckRequiredColumns returns the column-level critical for the first
// missing required field, or nil.
func CheckRequiredColumns(mapping columns.Mapping) error {
	if !mapping.IsMapped(columns.BankAccountNumber) {
		return NewRunError(CodeNoAccountColumn, Vars{}, nil)
	}
	if !mapping.IsMapped(columns.Amount) {
		return NewRunError(CodeNoAmountColumn, Vars{}, nil)
	}
	return nil
}

// Classify classifies records sequentially.
func (c *Classifier) Classify(records []types.Record) *Result {
	outcomes := make([]Outcome, 0, len(records))
	dropped := 0

	for _, rec := range records {
		o, ok := c.ClassifyRecord(rec)
		if !ok {
			dropped++
			continue
		}
		outcomes = append(outcomes, o)
	}

	return finish(outcomes, dropped)
}

// ClassifyParallel classifies records on up to workers goroutines. Records
// are split into contiguous chunks and every outcome is written to its own
// slot, so the result is identical to Classify.
func (c *Classifier) ClassifyParallel(ctx context.Context, records []types.Record, workers int) (*Result, error) {
	if workers <= 1 || len(records) < 2*workers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return c.Classify(records), nil
	}

	type slot struct {
		outcome Outcome
		kept    bool
	}
	slots := make([]slot, len(records))
	chunk := (len(records) + workers - 1) / workers

	g, gCtx := errgroup.WithContext(ctx)
	for start := 0; start < len(records); start += chunk {
		start, end := start, start+chunk
		if end > len(records) {
			end = len(records)
		}

		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%256 == 0 {
					if err := gCtx.Err(); err != nil {
						return err
					}
				}
				o, ok := c.ClassifyRecord(records[i])
				slots[i] = slot{outcome: o, kept: ok}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(records))
	dropped := 0
	for _, s := range slots {
		if !s.kept {
			dropped++
			continue
		}
		outcomes = append(outcomes, s.outcome)
	}

	return finish(outcomes, dropped), nil
}

// ClassifyRecord classifies one record. ok is false when every mapped cell is
// empty and the record is dropped.
func (c *Classifier) ClassifyRecord(rec types.Record) (Outcome, bool) {
	cells := make(map[columns.Field]string, len(c.sources))
	empty := true
	for f, header := range c.sources {
		v := strings.TrimSpace(rec.Get(header))
		cells[f] = v
		if v != "" {
			empty = false
		}
	}
	if empty {
		return Outcome{}, false
	}

	row := Row{
		Index:                 rec.Index,
		SerialNumber:          cells[columns.SerialNumber],
		AcknowledgementNumber: cells[columns.AcknowledgementNumber],
		RawAccount:            cells[columns.BankAccountNumber],
		Account:               StandardizeAccount(cells[columns.BankAccountNumber]),
		IFSCCode:              strings.ToUpper(cells[columns.IFSCCode]),
		Address:               cells[columns.Address],
		BankName:              cells[columns.BankName],
		Amount:                decimal.Zero,
		DisputedAmount:        decimal.Zero,
	}

	var defects []Defect
	add := func(code Code, field columns.Field, value string) {
		defects = append(defects, NewRowDefect(code, rec.Index, field.String(), value))
	}

	// Account.
	switch {
	case countDigits(row.Account) == 0:
		add(CodeNoAccountValue, columns.BankAccountNumber, row.RawAccount)
	case !IsValidAccount(row.Account):
		add(CodeInvalidAccount, columns.BankAccountNumber, row.RawAccount)
	}

	// Amount.
	rawAmount := cells[columns.Amount]
	if amount, ok := ParseAmountDecimal(rawAmount); ok && amount.IsPositive() {
		row.Amount = amount
	} else {
		add(CodeNoAmountValue, columns.Amount, rawAmount)
	}

	// IFSC.
	if c.mapping.IsMapped(columns.IFSCCode) {
		switch {
		case row.IFSCCode == "":
			add(CodeMissingIFSC, columns.IFSCCode, "")
		case !IsValidIFSC(row.IFSCCode):
			add(CodeInvalidIFSCFormat, columns.IFSCCode, row.IFSCCode)
		}
	}

	// Address.
	if c.mapping.IsMapped(columns.Address) && row.Address == "" {
		add(CodeMissingAddress, columns.Address, "")
	}

	// Disputed amount.
	if raw := cells[columns.DisputedAmount]; raw != "" {
		if disputed, ok := ParseAmountDecimal(raw); ok {
			row.DisputedAmount = disputed
		} else {
			add(CodeInvalidAmount, columns.DisputedAmount, raw)
		}
	}

	return Outcome{Row: row, Verdict: verdictOf(defects), Defects: defects}, true
}

func verdictOf(defects []Defect) Verdict {
	v := VerdictClean
	for _, d := range defects {
		if d.Severity == SeverityCritical {
			return VerdictCritical
		}
		v = VerdictWarned
	}
	return v
}

// finish runs the table-wide checks and builds the quality report.
func finish(outcomes []Outcome, dropped int) *Result {
	res := &Result{
		Outcomes:     outcomes,
		TableDefects: duplicateAcks(outcomes),
	}
	res.Report = buildReport(outcomes, res.TableDefects, dropped)
	return res
}

// duplicateAcks finds acknowledgement numbers used on more than one row.
// Critical rows take part; empty values do not.
func duplicateAcks(outcomes []Outcome) []Defect {
	rowsByAck := make(map[string][]int)
	var order []string

	for _, o := range outcomes {
		ack := o.Row.AcknowledgementNumber
		if ack == "" {
			continue
		}
		if _, seen := rowsByAck[ack]; !seen {
			order = append(order, ack)
		}
		rowsByAck[ack] = append(rowsByAck[ack], o.Row.Index)
	}

	var defects []Defect
	for _, ack := range order {
		rows := rowsByAck[ack]
		if len(rows) < 2 {
			continue
		}
		defects = append(defects, Defect{
			Code:     CodeDuplicateAck,
			Severity: CodeDuplicateAck.Severity(),
			Field:    columns.AcknowledgementNumber.String(),
			Value:    ack,
			Rows:     rows,
			Message:  CodeDuplicateAck.Render(Vars{AckNo: ack}),
		})
	}
	return defects
}
