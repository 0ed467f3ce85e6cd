package topsis

import "math"

// ClosenessScores returns, per alternative, S_worst / (S_best + S_worst)
// where S_* is the Euclidean distance to the matching ideal vector.
// When both distances are zero the score is 0.
func ClosenessScores(m Matrix, best, worst []float64) []float64 {
	scores := make([]float64, len(m))
	for i, row := range m {
		sBest := distance(row, best)
		sWorst := distance(row, worst)
		if sWorst == 0 {
			continue
		}
		// same ratio, but the sum of two huge distances cannot overflow
		scores[i] = 1 / (1 + sBest/sWorst)
	}
	return scores
}

// distance is the Euclidean distance between a and b. Differences are scaled
// by the largest one before squaring so huge weights cannot overflow the sum.
func distance(a, b []float64) float64 {
	var scale float64
	for j := range a {
		if d := math.Abs(a[j] - b[j]); d > scale {
			scale = d
		}
	}
	if scale == 0 || math.IsInf(scale, 0) {
		return scale
	}
	var sum float64
	for j := range a {
		d := (a[j] - b[j]) / scale
		sum += d * d
	}
	return scale * math.Sqrt(sum)
}
