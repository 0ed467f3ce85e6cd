package topsis

import (
	"errors"
	"math"
	"strconv"
)

// Run validates t, parses the weight and direction lists, and returns t
// extended with a Score and a Rank column. On error nothing is returned but
// the error of the first stage that failed.
func Run(t *Table, weightText, directionText string) (*Result, error) {
	_, data, err := ValidateTable(t)
	if err != nil {
		return nil, err
	}

	weights, directions, err := ParseSpec(weightText, directionText, t.Columns()-1)
	if err != nil {
		return nil, err
	}

	weighted, err := NormalizeWeighted(data, weights)
	if err != nil {
		var degenerate *DegenerateInputError
		if errors.As(err, &degenerate) {
			degenerate.Name = t.Header[degenerate.Column+1]
		}
		return nil, err
	}

	best, worst := IdealSolutions(weighted, directions)
	scores := ClosenessScores(weighted, best, worst)
	for _, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, &DegenerateInputError{Reason: ReasonNonFiniteScore, Column: -1}
		}
	}
	ranks := Rank(scores)

	return &Result{
		Table:      augment(t, scores, ranks),
		Scores:     scores,
		Ranks:      ranks,
		IdealBest:  best,
		IdealWorst: worst,
	}, nil
}

// augment copies t and appends the score and rank columns.
func augment(t *Table, scores []float64, ranks []int) *Table {
	header := make([]string, 0, len(t.Header)+2)
	header = append(header, t.Header...)
	header = append(header, ScoreColumn, RankColumn)

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]string, 0, len(row)+2)
		out = append(out, row...)
		out = append(out, FormatScore(scores[i]), strconv.Itoa(ranks[i]))
		rows[i] = out
	}
	return &Table{Header: header, Rows: rows}
}

// FormatScore renders a score with the shortest representation that parses
// back to the same float64.
func FormatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
