package matching

import "strings"

// DescriptionSimilarity is the Jaccard ratio of the lower-cased, whitespace-separated
// words of a and b: |common| / |union|. Two empty descriptions share nothing and score 0.
func DescriptionSimilarity(a, b string) float64 {
	left := wordSet(a)
	right := wordSet(b)
	if len(left) == 0 && len(right) == 0 {
		return 0
	}

	common := 0
	for w := range left {
		if _, ok := right[w]; ok {
			common++
		}
	}
	union := len(left) + len(right) - common
	return float64(common) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
