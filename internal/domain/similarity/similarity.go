// Package similarity provides the string similarity score used to resolve
// spoken playlist names against stored keys.
package similarity

import "strings"

// Score returns the Jaccard index over the character sets of the two
// lowercased strings: |intersection| / |union|. The result is in [0, 1];
// two strings with an empty union score 0.
func Score(a, b string) float64 {
	setA := runeSet(strings.ToLower(a))
	setB := runeSet(strings.ToLower(b))

	union := len(setB)
	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}
