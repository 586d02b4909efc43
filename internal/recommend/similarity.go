// Package recommend implements the similarity-scoring and candidate-aggregation
// pipeline behind book recommendations.
package recommend

// Jaccard returns the Jaccard similarity of two sets of book ids: the size of
// the intersection divided by the size of the union. Two empty sets score 0,
// defined as "no similarity" rather than undefined. The result is symmetric
// and always in [0, 1].
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	// Iterate the smaller set against the larger.
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	intersection := 0
	for id := range small {
		if _, ok := large[id]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
