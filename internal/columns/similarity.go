package columns

import (
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Similarity scores two normalized strings in [0,1].
//
// The score is the larger of the plain edit ratio and the ratio over
// whitespace tokens sorted alphabetically, so "no account" and "account no"
// score 1.0. Ratios use insert/delete cost 1 and substitute cost 2, which
// makes them (len(a)+len(b)-distance)/(len(a)+len(b)). Identical non-empty
// strings always score exactly 1.0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ratio := levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	sorted := levenshtein.RatioForStrings([]rune(sortTokens(a)), []rune(sortTokens(b)), levenshtein.DefaultOptions)

	if sorted > ratio {
		return sorted
	}
	return ratio
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
