// =============================================================================
// Fraud Account Analyzer - Source Profiles
// =============================================================================
//
// A source profile describes one family of input files (one bank, one
// complaint portal export, ...): how to decode it, which headers it uses
// that the built-in variant table does not know, explicit column choices
// and cell cleaning rules.
//
// Files that match no profile are processed with DefaultProfile().
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/fraud-account-analyzer/internal/columns"
)

// DefaultProfileCode identifies the built-in profile.
const DefaultProfileCode = "default"

// =============================================================================
// SOURCE PROFILE STRUCTURE
// =============================================================================

// SourceProfile holds the settings for one family of input files.
type SourceProfile struct {
	// ProfileName is the human-readable name used in logs.
	ProfileName string `yaml:"profile_name"`

	// ProfileCode is a short unique key. Defaults to the file name.
	ProfileCode string `yaml:"profile_code"`

	// FileMatchingPatterns are glob patterns matched against the input file
	// name, e.g. "sbi_*.xlsx" or "*_ncrp_*.csv".
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	// CSVSettings controls CSV decoding.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// SheetName is the worksheet to read from workbooks. Empty reads the
	// first sheet.
	SheetName string `yaml:"sheet_name"`

	// ColumnOverrides maps a canonical field name to the raw header that
	// must be used for it, replacing whatever detection chose.
	//
	// Example:
	//   column_overrides:
	//     amount: "Amt Lost (Rs)"
	ColumnOverrides map[string]string `yaml:"column_overrides"`

	// ExtraVariants maps a canonical field name to additional header
	// spellings the detector accepts for this source.
	ExtraVariants map[string][]string `yaml:"extra_variants"`

	// CleaningRules rewrite raw cell text before classification.
	CleaningRules []CleaningRule `yaml:"cleaning_rules"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter separates fields. "\t" and "tab" both select tab.
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows. Multi-row headers are joined
	// with a space per column.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-based row where data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`

	// Encoding is "UTF-8", "Windows-1252" or "ISO-8859-1".
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// LazyQuotes tolerates bare quotes inside unquoted fields.
	LazyQuotes bool `yaml:"lazy_quotes"`
}

// =============================================================================
// CLEANING RULE STRUCTURE
// =============================================================================

// CleaningRule lists the actions applied to one canonical field.
type CleaningRule struct {
	// Field is a canonical field name, e.g. "bank_account_number".
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []CleaningAction `yaml:"actions"`
}

// CleaningAction is one cell rewrite.
type CleaningAction struct {
	// Type is one of the Action* constants.
	Type string `yaml:"type"`

	// Value is the parameter of the action:
	//   - "replace", "regex_replace": the replacement
	//   - "strip_prefix", "strip_suffix": the affix to remove
	//   - "pad_zeros_to_length": the target length, e.g. "12"
	Value string `yaml:"value"`

	// Find is the substring or pattern for "replace" and "regex_replace".
	Find string `yaml:"find,omitempty"`
}

// Cleaning action types.
const (
	ActionTrim             = "trim"
	ActionTrimLeft         = "trim_left"
	ActionTrimRight        = "trim_right"
	ActionUppercase        = "uppercase"
	ActionLowercase        = "lowercase"
	ActionReplace          = "replace"
	ActionRegexReplace     = "regex_replace"
	ActionStripPrefix      = "strip_prefix"
	ActionStripSuffix      = "strip_suffix"
	ActionPadZerosToLength = "pad_zeros_to_length"
)

// ActionTypes lists every supported cleaning action type.
var ActionTypes = []string{
	ActionTrim,
	ActionTrimLeft,
	ActionTrimRight,
	ActionUppercase,
	ActionLowercase,
	ActionReplace,
	ActionRegexReplace,
	ActionStripPrefix,
	ActionStripSuffix,
	ActionPadZerosToLength,
}

// =============================================================================
// PROFILE ACCESSORS
// =============================================================================

// DefaultProfile returns the profile used for files no profile matches.
func DefaultProfile() *SourceProfile {
	p := &SourceProfile{
		ProfileName: "Default",
		ProfileCode: DefaultProfileCode,
	}
	applyProfileDefaults(p)
	return p
}

// Matches reports whether fileName matches one of the profile's patterns.
func (p *SourceProfile) Matches(fileName string) bool {
	base := filepath.Base(fileName)
	for _, pattern := range p.FileMatchingPatterns {
		if ok, err := filepath.Match(strings.ToLower(pattern), strings.ToLower(base)); err == nil && ok {
			return true
		}
	}
	return false
}

// Overrides returns the column overrides keyed by canonical field.
func (p *SourceProfile) Overrides() (map[columns.Field]string, error) {
	out := make(map[columns.Field]string, len(p.ColumnOverrides))
	for name, header := range p.ColumnOverrides {
		f, err := columns.ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("column_overrides: %w", err)
		}
		out[f] = header
	}
	return out, nil
}

// Variants returns the extra header variants keyed by canonical field.
func (p *SourceProfile) Variants() (map[columns.Field][]string, error) {
	out := make(map[columns.Field][]string, len(p.ExtraVariants))
	for name, variants := range p.ExtraVariants {
		f, err := columns.ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("extra_variants: %w", err)
		}
		out[f] = append(out[f], variants...)
	}
	return out, nil
}

// =============================================================================
// PROFILE LOADING FUNCTIONS
// =============================================================================

// LoadProfiles loads every *.yaml / *.yml profile in dir.
//
// PARAMETERS:
//   - profilesDir: The directory containing profile files.
//
// RETURNS:
//   - The profiles sorted by file name.
//   - An error if any file cannot be parsed, fails validation, or two
//     profiles share a code.
func LoadProfiles(profilesDir string) ([]*SourceProfile, error) {
	files, err := filepath.Glob(filepath.Join(profilesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(profilesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	seen := make(map[string]string)
	var profiles []*SourceProfile
	for _, file := range files {
		profile, err := LoadProfile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		if other, dup := seen[profile.ProfileCode]; dup {
			return nil, fmt.Errorf("profile code %q used by both %s and %s", profile.ProfileCode, other, file)
		}
		seen[profile.ProfileCode] = file

		profiles = append(profiles, profile)
	}

	return profiles, nil
}

// LoadProfile loads and validates a single profile file.
func LoadProfile(filePath string) (*SourceProfile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile SourceProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	if profile.ProfileCode == "" {
		profile.ProfileCode = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	if profile.ProfileName == "" {
		profile.ProfileName = profile.ProfileCode
	}
	applyProfileDefaults(&profile)

	if err := validateProfile(&profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// FindProfile returns the first profile whose patterns match fileName, or
// the default profile.
func FindProfile(profiles []*SourceProfile, fileName string) *SourceProfile {
	for _, p := range profiles {
		if p.Matches(fileName) {
			return p
		}
	}
	return DefaultProfile()
}

// FindProfileByCode returns the profile with the given code. The code
// "default" always resolves.
func FindProfileByCode(profiles []*SourceProfile, code string) (*SourceProfile, error) {
	for _, p := range profiles {
		if strings.EqualFold(p.ProfileCode, code) {
			return p, nil
		}
	}
	if strings.EqualFold(code, DefaultProfileCode) {
		return DefaultProfile(), nil
	}
	return nil, fmt.Errorf("no profile with code %q", code)
}

// applyProfileDefaults sets default values for a profile.
func applyProfileDefaults(profile *SourceProfile) {
	s := &profile.CSVSettings
	switch strings.ToLower(s.Delimiter) {
	case "":
		s.Delimiter = ","
	case "tab", `\t`:
		s.Delimiter = "\t"
	}
	if s.HeaderRows == 0 {
		s.HeaderRows = 1
	}
	if s.DataStartRow == 0 {
		s.DataStartRow = s.HeaderRows + 1
	}
	if s.Encoding == "" {
		s.Encoding = "UTF-8"
	}
}

// validateProfile rejects unknown fields, unknown actions and malformed
// action parameters.
func validateProfile(profile *SourceProfile) error {
	s := profile.CSVSettings
	if len([]rune(s.Delimiter)) != 1 {
		return fmt.Errorf("csv_settings.delimiter must be a single character, got %q", s.Delimiter)
	}
	if s.HeaderRows < 1 {
		return fmt.Errorf("csv_settings.header_rows must be at least 1, got %d", s.HeaderRows)
	}
	if s.DataStartRow <= s.HeaderRows {
		return fmt.Errorf("csv_settings.data_start_row (%d) must come after the header rows (%d)", s.DataStartRow, s.HeaderRows)
	}

	if _, err := profile.Overrides(); err != nil {
		return err
	}
	if _, err := profile.Variants(); err != nil {
		return err
	}

	for _, rule := range profile.CleaningRules {
		if _, err := columns.ParseField(rule.Field); err != nil {
			return fmt.Errorf("cleaning_rules: %w", err)
		}
		for _, action := range rule.Actions {
			if !knownAction(action.Type) {
				return fmt.Errorf("cleaning_rules[%s]: unknown action type %q", rule.Field, action.Type)
			}
			switch action.Type {
			case ActionPadZerosToLength:
				if n, err := strconv.Atoi(action.Value); err != nil || n < 1 {
					return fmt.Errorf("cleaning_rules[%s]: pad_zeros_to_length needs a positive length, got %q", rule.Field, action.Value)
				}
			case ActionRegexReplace:
				if _, err := regexp.Compile(action.Find); err != nil {
					return fmt.Errorf("cleaning_rules[%s]: invalid regex_replace pattern: %w", rule.Field, err)
				}
			}
		}
	}

	return nil
}

func knownAction(t string) bool {
	for _, a := range ActionTypes {
		if a == t {
			return true
		}
	}
	return false
}
