package validation

// QualityReport holds the data quality counters of one run. It is computed
// once after classification and not modified afterwards.
type QualityReport struct {
	// RowsSeen is the number of classified rows (dropped rows excluded).
	RowsSeen int

	// RowsDropped is the number of rows skipped because every mapped cell
	// was empty.
	RowsDropped int

	Clean    int
	Warned   int
	Critical int

	// CodeCounts tallies defects per code. DUPLICATE_ACK counts duplicated
	// values, not rows.
	CodeCounts map[Code]int
}

func buildReport(outcomes []Outcome, tableDefects []Defect, dropped int) QualityReport {
	q := QualityReport{
		RowsSeen:    len(outcomes),
		RowsDropped: dropped,
		CodeCounts:  make(map[Code]int),
	}

	for _, o := range outcomes {
		switch o.Verdict {
		case VerdictClean:
			q.Clean++
		case VerdictWarned:
			q.Warned++
		case VerdictCritical:
			q.Critical++
		}
		for _, d := range o.Defects {
			q.CodeCounts[d.Code]++
		}
	}
	for _, d := range tableDefects {
		q.CodeCounts[d.Code]++
	}

	return q
}

// Count returns the tally for code.
func (q QualityReport) Count(code Code) int {
	return q.CodeCounts[code]
}

// RowsProcessed is the number of rows that take part in aggregation.
func (q QualityReport) RowsProcessed() int {
	return q.Clean + q.Warned
}

// RowsWithErrors is the number of rows carrying at least one defect.
func (q QualityReport) RowsWithErrors() int {
	return q.Warned + q.Critical
}

// CriticalCount is the total of critical tallies.
func (q QualityReport) CriticalCount() int {
	return q.sum(SeverityCritical)
}

// WarningCount is the total of warning tallies.
func (q QualityReport) WarningCount() int {
	return q.sum(SeverityWarning)
}

// CleanRate is the percentage of classified rows with no defect.
func (q QualityReport) CleanRate() float64 {
	if q.RowsSeen == 0 {
		return 0
	}
	return float64(q.Clean) * 100 / float64(q.RowsSeen)
}

// Tallies returns (code, count) pairs with a non-zero count, critical codes
// first, each group in report order.
func (q QualityReport) Tallies() []Tally {
	var out []Tally
	for _, c := range AllCodes() {
		if n := q.CodeCounts[c]; n > 0 {
			out = append(out, Tally{Code: c, Severity: c.Severity(), Count: n})
		}
	}
	return out
}

// Tally is one line of the per-code breakdown.
type Tally struct {
	Code     Code
	Severity Severity
	Count    int
}

func (q QualityReport) sum(s Severity) int {
	n := 0
	for code, count := range q.CodeCounts {
		if code.Severity() == s {
			n += count
		}
	}
	return n
}
