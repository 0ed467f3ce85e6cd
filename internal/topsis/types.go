// Package topsis ranks alternatives by their relative closeness to an ideal
// best and an ideal worst solution.
//
// Every stage is a pure function that returns a fresh value; nothing is
// updated in place, so independent calls may run concurrently.
package topsis

// Output column names appended by Run.
const (
	ScoreColumn = "Score"
	RankColumn  = "Rank"
)

// Direction is the optimisation direction of a criterion.
type Direction int

const (
	Benefit Direction = iota // higher is better, "+"
	Cost                     // lower is better, "-"
)

func (d Direction) String() string {
	if d == Cost {
		return "-"
	}
	return "+"
}

// Table is a raw input table. Column 0 identifies the alternative and is
// carried through untouched; the remaining columns are criteria.
type Table struct {
	Header []string
	Rows   [][]string
}

// Columns returns the column count, taken from the header.
func (t *Table) Columns() int {
	return len(t.Header)
}

// Matrix is a row-major N×M matrix of criterion values.
type Matrix [][]float64

// Weights holds one weight per criterion.
type Weights []float64

// Directions holds one direction per criterion.
type Directions []Direction

// Result is the outcome of a successful Run.
type Result struct {
	Table      *Table
	Scores     []float64
	Ranks      []int
	IdealBest  []float64
	IdealWorst []float64
}

// Best returns the identifier of the rank-1 alternative.
func (r *Result) Best() string {
	for i, rank := range r.Ranks {
		if rank == 1 {
			return r.Table.Rows[i][0]
		}
	}
	return ""
}
