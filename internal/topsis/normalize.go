package topsis

import "math"

// ColumnNorms returns the Euclidean norm of every column of m. Each column is
// scaled by its largest magnitude before squaring.
func ColumnNorms(m Matrix, cols int) []float64 {
	norms := make([]float64, cols)
	for j := range norms {
		var scale float64
		for _, row := range m {
			if a := math.Abs(row[j]); a > scale {
				scale = a
			}
		}
		if scale == 0 || math.IsInf(scale, 0) {
			norms[j] = scale
			continue
		}
		var sum float64
		for _, row := range m {
			v := row[j] / scale
			sum += v * v
		}
		norms[j] = scale * math.Sqrt(sum)
	}
	return norms
}

// NormalizeWeighted divides each column of m by its Euclidean norm and scales
// it by the matching weight. A column with a zero norm cannot be normalized.
func NormalizeWeighted(m Matrix, w Weights) (Matrix, error) {
	norms := ColumnNorms(m, len(w))
	for j, n := range norms {
		if n == 0 {
			return nil, &DegenerateInputError{Reason: ReasonZeroNormColumn, Column: j}
		}
	}

	out := make(Matrix, len(m))
	for i, row := range m {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = v / norms[j] * w[j]
		}
		out[i] = scaled
	}
	return out, nil
}
