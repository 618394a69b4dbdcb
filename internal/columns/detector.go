// =============================================================================
// Fraud Account Analyzer - Column Detector
// =============================================================================
//
// Maps arbitrary raw header spellings onto the canonical schema.
//
// ALGORITHM:
//   1. Normalize every raw header and every known variant.
//   2. Score each header against every variant; a header's score for a field
//      is its best variant score.
//   3. Each header competes only for the field it scores highest on. Ties go
//      to the earlier field in schema order.
//   4. A field is matched when its best candidate scores >= Threshold.
//   5. If two or more distinct headers tie at that best score, the field is
//      left unmapped and the tied headers are recorded as ambiguous.
//
// The input slice is never modified.
//
// =============================================================================

package columns

import (
	"math"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/normalize"
)

// Threshold is the minimum similarity for a header to be matched to a field.
const Threshold = 0.80

// scoreEpsilon is the tolerance for treating two scores as equal.
const scoreEpsilon = 1e-9

// =============================================================================
// DETECTOR
// =============================================================================

// Detector holds the normalized variant table it matches against.
type Detector struct {
	variants [fieldCount][]string
}

var defaultDetector = NewDetector(nil)

// NewDetector builds a detector from the built-in variant table plus extra
// spellings per field (used by source profiles for portal-specific headers).
func NewDetector(extra map[Field][]string) *Detector {
	d := &Detector{}
	for _, f := range Fields {
		seen := make(map[string]bool)
		add := func(v string) {
			n := normalize.Text(v)
			if n == "" || seen[n] {
				return
			}
			seen[n] = true
			d.variants[f] = append(d.variants[f], n)
		}
		for _, v := range variants[f] {
			add(v)
		}
		for _, v := range extra[f] {
			add(v)
		}
	}
	return d
}

// Detect maps headers with the built-in variant table.
func Detect(headers []string) Mapping {
	return defaultDetector.Detect(headers)
}

// Detect maps headers onto the canonical schema.
func (d *Detector) Detect(headers []string) Mapping {
	type candidate struct {
		header string
		score  float64
	}

	var candidates [fieldCount][]candidate
	seen := make(map[string]bool, len(headers))

	for _, header := range headers {
		if seen[header] {
			continue
		}
		seen[header] = true

		field, score, ok := d.BestField(header)
		if !ok || score < Threshold {
			continue
		}
		candidates[field] = append(candidates[field], candidate{header: header, score: score})
	}

	var m Mapping
	for _, f := range Fields {
		list := candidates[f]
		if len(list) == 0 {
			continue
		}

		best := list[0].score
		for _, c := range list[1:] {
			if c.score > best {
				best = c.score
			}
		}

		var tied []string
		for _, c := range list {
			if math.Abs(c.score-best) <= scoreEpsilon {
				tied = append(tied, c.header)
			}
		}

		if len(tied) == 1 {
			m.matches[f] = FieldMatch{Source: tied[0], Confidence: best}
		} else {
			m.matches[f] = FieldMatch{Confidence: best, Ambiguous: tied}
		}
	}

	return m
}

// BestField returns the field header scores highest against, and that score.
// ok is false when the header normalizes to nothing.
func (d *Detector) BestField(header string) (field Field, score float64, ok bool) {
	normalized := normalize.Text(header)
	if normalized == "" {
		return 0, 0, false
	}

	score = -1
	for _, f := range Fields {
		s := d.Score(normalized, f)
		if s > score+scoreEpsilon {
			field, score = f, s
		}
	}
	return field, score, true
}

// Score returns the best similarity of an already normalized header against
// the variants of f.
func (d *Detector) Score(normalized string, f Field) float64 {
	best := 0.0
	for _, v := range d.variants[f] {
		if s := Similarity(normalized, v); s > best {
			best = s
			if best == 1 {
				break
			}
		}
	}
	return best
}
