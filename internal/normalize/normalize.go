// =============================================================================
// Fraud Account Analyzer - Text Normalizer
// =============================================================================
//
// Canonical text form shared by header matching and field cleaning.
//
// NORMALIZATION STEPS:
//   1. Unicode NFC composition (so "é" typed two ways compares equal)
//   2. Lowercase
//   3. Drop every character that is not a letter, digit, whitespace, '#', '.'
//      or '/'
//   4. Trim and collapse whitespace runs to a single ASCII space
//   5. NFC again, since step 3 can bring composable runes together
//
// Text is idempotent: Text(Text(s)) == Text(s) for every s.
//
// =============================================================================

package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// InputError is returned by Value for input that has no text form.
type InputError struct {
	Value interface{}
}

// Error implements the error interface.
func (e *InputError) Error() string {
	if e.Value == nil {
		return "normalize: nil input"
	}
	return fmt.Sprintf("normalize: unsupported input type %T", e.Value)
}

// Text returns the canonical comparison form of s. Empty and pure-punctuation
// input normalizes to "".
func Text(s string) string {
	if s == "" {
		return ""
	}

	lowered := strings.ToLower(compose(s))

	var b strings.Builder
	b.Grow(len(lowered))

	pendingSpace := false
	for _, r := range lowered {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case keep(r):
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}

	return compose(b.String())
}

// Value normalizes any input that has a natural text form: strings, byte
// slices, fmt.Stringer values, booleans and numbers. Anything else yields an
// *InputError.
func Value(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return Text(x), nil
	case []byte:
		return Text(string(x)), nil
	case fmt.Stringer:
		return stringValue(x)
	case bool:
		return Text(strconv.FormatBool(x)), nil
	case int:
		return strconv.Itoa(x), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return Text(strconv.FormatFloat(float64(x), 'f', -1, 32)), nil
	case float64:
		return Text(strconv.FormatFloat(x, 'f', -1, 64)), nil
	default:
		return "", &InputError{Value: v}
	}
}

// stringValue normalizes s.String(). A String method that panics, as a value
// receiver does on a typed nil pointer, yields an *InputError.
func stringValue(s fmt.Stringer) (out string, err error) {
	defer func() {
		if recover() != nil {
			out, err = "", &InputError{Value: s}
		}
	}()
	return Text(s.String()), nil
}

// keep reports whether r survives the character filter.
func keep(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return r == '#' || r == '.' || r == '/'
}

func compose(s string) string {
	out, _, err := transform.String(norm.NFC, s)
	if err != nil {
		return s
	}
	return out
}
