package topsis

import (
	"math"
	"strconv"
	"strings"
)

// MinColumns is the smallest accepted table width: one identifier column and
// at least two criteria.
const MinColumns = 3

// ValidateTable splits t into its identifier column and an N×M decision
// matrix, rejecting tables that are too narrow or hold non-numeric criteria.
func ValidateTable(t *Table) ([]string, Matrix, error) {
	if t == nil || t.Columns() < MinColumns {
		cols := 0
		if t != nil {
			cols = t.Columns()
		}
		return nil, nil, validationErr(ReasonTooFewColumns, "got %d, need at least %d", cols, MinColumns)
	}

	m := t.Columns() - 1
	ids := make([]string, len(t.Rows))
	data := make(Matrix, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) != t.Columns() {
			return nil, nil, validationErr(ReasonNonNumericCriteria,
				"row %d has %d fields, want %d", i+1, len(row), t.Columns())
		}
		ids[i] = row[0]
		values := make([]float64, m)
		for j := 0; j < m; j++ {
			v, ok := parseCell(row[j+1])
			if !ok {
				return nil, nil, validationErr(ReasonNonNumericCriteria,
					"row %d, column %q: %q", i+1, t.Header[j+1], row[j+1])
			}
			values[j] = v
		}
		data[i] = values
	}
	return ids, data, nil
}

func parseCell(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
