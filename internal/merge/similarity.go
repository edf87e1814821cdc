package merge

import (
	"strings"
	"unicode"
)

// Scorer computes a normalized lexical similarity in [0,1] between two
// strings. The production resolver and the tests share the same pluggable
// interface so threshold semantics can be exercised without a database.
type Scorer interface {
	Score(a, b string) float64
}

// TrigramScorer mirrors the trigram similarity the storage layer's text
// extension computes: case-folded, words padded with two leading and one
// trailing space, score = shared trigrams / all trigrams.
type TrigramScorer struct{}

func (TrigramScorer) Score(a, b string) float64 {
	ta := trigrams(a)
	tb := trigrams(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

func trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range splitWords(s) {
		padded := []rune("  " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Similar applies the threshold rule for optional identity fields: two
// absent values match, a single absent value never matches, and present
// values match when their score strictly exceeds the threshold.
func Similar(s Scorer, a, b *string, threshold float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return s.Score(*a, *b) > threshold
}
