// =============================================================================
// Fraud Account Analyzer - Cell Cleaning Rules
// =============================================================================
//
// Applies a source profile's cleaning rules to raw cell text before rows are
// classified. Rules are keyed by canonical field and resolved to the raw
// header the column mapping selected for that field, so one profile works
// whatever the header is actually called in a given file.
//
// ACTION TYPES:
//   - trim, trim_left, trim_right (optional cutset in value)
//   - uppercase, lowercase
//   - replace, regex_replace (find -> value)
//   - strip_prefix, strip_suffix
//   - pad_zeros_to_length (value = target length)
//
// Cleaning changes cell text only. It never drops rows and never raises
// defects; the classifier judges the cleaned text.
//
// =============================================================================

package cleaning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/columns"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/config"
	"github.com/ginjaninja78/fraud-account-analyzer/internal/types"
)

// =============================================================================
// CLEANER
// =============================================================================

// Cleaner applies compiled cleaning rules.
type Cleaner struct {
	steps map[columns.Field][]step
	order []columns.Field
}

type step struct {
	action config.CleaningAction
	re     *regexp.Regexp
	length int
}

// New compiles rules into a Cleaner.
//
// PARAMETERS:
//   - rules: The profile's cleaning rules. Several rules for the same field
//     are applied in the order given.
//
// RETURNS:
//   - The Cleaner.
//   - An error for unknown fields or actions, bad patterns or bad lengths.
func New(rules []config.CleaningRule) (*Cleaner, error) {
	c := &Cleaner{steps: make(map[columns.Field][]step)}

	for _, rule := range rules {
		field, err := columns.ParseField(rule.Field)
		if err != nil {
			return nil, err
		}

		for _, action := range rule.Actions {
			s, err := compile(action)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field, err)
			}
			if _, ok := c.steps[field]; !ok {
				c.order = append(c.order, field)
			}
			c.steps[field] = append(c.steps[field], s)
		}
	}

	return c, nil
}

func compile(action config.CleaningAction) (step, error) {
	s := step{action: action}

	switch action.Type {
	case config.ActionTrim, config.ActionTrimLeft, config.ActionTrimRight,
		config.ActionUppercase, config.ActionLowercase, config.ActionReplace,
		config.ActionStripPrefix, config.ActionStripSuffix:

	case config.ActionRegexReplace:
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return s, fmt.Errorf("invalid regex pattern: %w", err)
		}
		s.re = re

	case config.ActionPadZerosToLength:
		n, err := strconv.Atoi(action.Value)
		if err != nil || n < 1 {
			return s, fmt.Errorf("pad_zeros_to_length needs a positive length, got %q", action.Value)
		}
		s.length = n

	default:
		return s, fmt.Errorf("unknown cleaning action type: %s", action.Type)
	}

	return s, nil
}

// Empty reports whether the cleaner has no rules.
func (c *Cleaner) Empty() bool {
	return len(c.order) == 0
}

// Clean rewrites one value of field.
func (c *Cleaner) Clean(field columns.Field, value string) string {
	for _, s := range c.steps[field] {
		value = s.apply(value)
	}
	return value
}

// ApplyTable rewrites the mapped cells of every record in place.
//
// PARAMETERS:
//   - table: The decoded table.
//   - mapping: The resolved mapping. Rules for unmapped fields are skipped.
//
// RETURNS:
//   - The number of cells whose text changed.
func (c *Cleaner) ApplyTable(table *types.Table, mapping columns.Mapping) int {
	changed := 0
	for _, field := range c.order {
		if !mapping.IsMapped(field) {
			continue
		}
		header := mapping.Source(field)

		for i := range table.Records {
			cells := table.Records[i].Cells
			old, ok := cells[header]
			if !ok {
				continue
			}
			if v := c.Clean(field, old); v != old {
				cells[header] = v
				changed++
			}
		}
	}
	return changed
}

// =============================================================================
// ACTIONS
// =============================================================================

func (s step) apply(value string) string {
	a := s.action

	switch a.Type {
	case config.ActionTrim:
		if a.Value != "" {
			return strings.Trim(value, a.Value)
		}
		return strings.TrimSpace(value)

	case config.ActionTrimLeft:
		if a.Value != "" {
			return strings.TrimLeft(value, a.Value)
		}
		return strings.TrimLeft(value, " \t\n\r")

	case config.ActionTrimRight:
		if a.Value != "" {
			return strings.TrimRight(value, a.Value)
		}
		return strings.TrimRight(value, " \t\n\r")

	case config.ActionUppercase:
		return strings.ToUpper(value)

	case config.ActionLowercase:
		return strings.ToLower(value)

	case config.ActionReplace:
		if a.Find == "" {
			return value
		}
		return strings.ReplaceAll(value, a.Find, a.Value)

	case config.ActionRegexReplace:
		if a.Find == "" {
			return value
		}
		return s.re.ReplaceAllString(value, a.Value)

	case config.ActionStripPrefix:
		return strings.TrimPrefix(value, a.Value)

	case config.ActionStripSuffix:
		return strings.TrimSuffix(value, a.Value)

	case config.ActionPadZerosToLength:
		// Empty cells stay empty so a missing value is still reported missing.
		if value == "" {
			return value
		}
		return PadLeft(value, s.length, '0')
	}

	return value
}

// PadLeft pads s on the left with padChar to length runes.
func PadLeft(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-n) + s
}
