package columns

import (
	"fmt"
)

// FieldMatch is the detection outcome for one canonical field.
type FieldMatch struct {
	// Source is the raw header selected for the field, "" when unmapped.
	Source string

	// Confidence is the similarity of the best candidate. It is also set for
	// an ambiguous field, where it is the score the candidates tied at.
	Confidence float64

	// Ambiguous holds the raw headers that tied for the field. A field with
	// ambiguous candidates is left unmapped until overridden.
	Ambiguous []string

	// Overridden is true once a manual override replaced the source.
	Overridden bool
}

// Mapping is the resolved header -> field assignment for one run. It is a
// value: Override returns a modified copy and leaves the receiver untouched.
type Mapping struct {
	matches [fieldCount]FieldMatch
}

// Source returns the raw header mapped to f, or "".
func (m Mapping) Source(f Field) string {
	if !valid(f) {
		return ""
	}
	return m.matches[f].Source
}

// IsMapped reports whether f has a source column.
func (m Mapping) IsMapped(f Field) bool {
	return m.Source(f) != ""
}

// Confidence returns the detection confidence for f.
func (m Mapping) Confidence(f Field) float64 {
	if !valid(f) {
		return 0
	}
	return m.matches[f].Confidence
}

// Match returns a copy of the full detection outcome for f.
func (m Mapping) Match(f Field) FieldMatch {
	if !valid(f) {
		return FieldMatch{}
	}
	out := m.matches[f]
	if out.Ambiguous != nil {
		out.Ambiguous = append([]string(nil), out.Ambiguous...)
	}
	return out
}

// Ambiguous returns the tied candidates for f, in header order.
func (m Mapping) Ambiguous(f Field) []string {
	return m.Match(f).Ambiguous
}

// AmbiguousFields lists fields waiting for disambiguation, in schema order.
func (m Mapping) AmbiguousFields() []Field {
	var out []Field
	for _, f := range Fields {
		if len(m.matches[f].Ambiguous) > 0 {
			out = append(out, f)
		}
	}
	return out
}

// MappedFields lists fields with a source column, in schema order.
func (m Mapping) MappedFields() []Field {
	var out []Field
	for _, f := range Fields {
		if m.matches[f].Source != "" {
			out = append(out, f)
		}
	}
	return out
}

// MissingRequired lists required fields without a source column.
func (m Mapping) MissingRequired() []Field {
	var out []Field
	for _, f := range Fields {
		if f.Required() && m.matches[f].Source == "" {
			out = append(out, f)
		}
	}
	return out
}

// Unmapped returns the headers not selected for any field, in input order.
func (m Mapping) Unmapped(headers []string) []string {
	used := make(map[string]bool, fieldCount)
	for _, f := range Fields {
		if src := m.matches[f].Source; src != "" {
			used[src] = true
		}
	}

	var out []string
	for _, h := range headers {
		if !used[h] {
			out = append(out, h)
		}
	}
	return out
}

// Override replaces the source column of one field. The header must be one
// of headers. The overridden field gets confidence 1.0 and loses its
// ambiguity list; every other field is left exactly as detected.
func (m Mapping) Override(f Field, header string, headers []string) (Mapping, error) {
	if !valid(f) {
		return m, fmt.Errorf("override: invalid field %d", int(f))
	}

	found := false
	for _, h := range headers {
		if h == header {
			found = true
			break
		}
	}
	if !found {
		return m, fmt.Errorf("override %s: header %q not present in input", f, header)
	}

	out := m
	out.matches[f] = FieldMatch{
		Source:     header,
		Confidence: 1,
		Overridden: true,
	}
	return out, nil
}

// ApplyOverrides applies field-name -> header overrides in schema order.
func (m Mapping) ApplyOverrides(overrides map[string]string, headers []string) (Mapping, error) {
	if len(overrides) == 0 {
		return m, nil
	}

	byField := make(map[Field]string, len(overrides))
	for name, header := range overrides {
		f, err := ParseField(name)
		if err != nil {
			return m, fmt.Errorf("override: %w", err)
		}
		byField[f] = header
	}

	out := m
	for _, f := range Fields {
		header, ok := byField[f]
		if !ok {
			continue
		}
		var err error
		out, err = out.Override(f, header, headers)
		if err != nil {
			return m, err
		}
	}
	return out, nil
}

func valid(f Field) bool {
	return f >= 0 && f < fieldCount
}
