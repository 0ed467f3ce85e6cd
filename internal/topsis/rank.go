package topsis

import "sort"

// Rank assigns rank 1 to the highest score. Equal scores never share a rank:
// the alternative that appears first in the input gets the better one, so the
// result is always a permutation of 1..N.
func Rank(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	ranks := make([]int, len(scores))
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}
