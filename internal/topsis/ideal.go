package topsis

// IdealSolutions derives the ideal best and ideal worst vectors of a weighted
// matrix. For a benefit criterion the best value is the column maximum; for a
// cost criterion it is the column minimum.
func IdealSolutions(m Matrix, d Directions) (best, worst []float64) {
	best = make([]float64, len(d))
	worst = make([]float64, len(d))
	if len(m) == 0 {
		return best, worst
	}

	for j, dir := range d {
		lo, hi := m[0][j], m[0][j]
		for _, row := range m[1:] {
			if row[j] < lo {
				lo = row[j]
			}
			if row[j] > hi {
				hi = row[j]
			}
		}
		if dir == Cost {
			best[j], worst[j] = lo, hi
		} else {
			best[j], worst[j] = hi, lo
		}
	}
	return best, worst
}
