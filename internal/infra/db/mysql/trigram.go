package mysql

import (
	"strings"
	"unicode"
)

// similarity approximates pg_trgm: words are lowercased alphanumeric runs
// padded with two leading and one trailing space, and the score is the
// Jaccard index of the two trigram sets.
func similarity(a, b string) float64 {
	return jaccard(trigrams(a), trigrams(b))
}

func jaccard(ta, tb map[string]struct{}) float64 {
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(ta)+len(tb)-shared)
}

func trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		padded := []rune("  " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}
