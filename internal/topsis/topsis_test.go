package topsis

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(header string, rows ...string) *Table {
	t := &Table{Header: strings.Split(header, ",")}
	for _, r := range rows {
		t.Rows = append(t.Rows, strings.Split(r, ","))
	}
	return t
}

func phones() *Table {
	return table("Model,Price,Storage", "M1,250,16", "M2,200,16", "M3,300,32")
}

func TestRunScenario(t *testing.T) {
	res, err := Run(phones(), "1,1", "+,+")
	require.NoError(t, err)

	want := []float64{0.2118, 0.0, 1.0}
	for i, s := range res.Scores {
		assert.InDelta(t, want[i], s, 0.0005, "score %d", i)
	}
	assert.Equal(t, []int{2, 3, 1}, res.Ranks)
	assert.Equal(t, "M3", res.Best())
}

func TestRunAugmentsTable(t *testing.T) {
	in := phones()
	res, err := Run(in, "1,1", "+,+")
	require.NoError(t, err)

	out := res.Table
	assert.Equal(t, []string{"Model", "Price", "Storage", ScoreColumn, RankColumn}, out.Header)
	require.Len(t, out.Rows, len(in.Rows))
	for i, row := range out.Rows {
		assert.Len(t, row, in.Columns()+2)
		assert.Equal(t, in.Rows[i], row[:in.Columns()], "input columns must be preserved")
		assert.Equal(t, strconv.Itoa(res.Ranks[i]), row[len(row)-1])
	}
	assert.Equal(t, "1", out.Rows[2][3])
	assert.Equal(t, "0", out.Rows[1][3])

	// input untouched
	assert.Equal(t, []string{"Model", "Price", "Storage"}, in.Header)
	assert.Len(t, in.Rows[0], 3)
}

func TestRunSingleAlternative(t *testing.T) {
	res, err := Run(table("id,a,b", "only,3,4"), "1,1", "+,-")
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, res.Scores)
	assert.Equal(t, []int{1}, res.Ranks)
}

func TestRunCostCriterion(t *testing.T) {
	// Lower price wins once price is a cost and storage is equal.
	res, err := Run(table("id,price,storage", "a,300,16", "b,100,16"), "1,1", "-,+")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, res.Ranks)
	assert.InDelta(t, 1.0, res.Scores[1], 1e-12)
	assert.InDelta(t, 0.0, res.Scores[0], 1e-12)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name       string
		table      *Table
		weights    string
		directions string
		reason     string
	}{
		{"weight count mismatch", table("id,a,b,c", "x,1,2,3"), "1,1", "+,+,+", ReasonCountMismatch},
		{"direction count mismatch", table("id,a,b,c", "x,1,2,3"), "1,1,1", "+,+", ReasonCountMismatch},
		{"malformed weight", table("id,a,b,c", "x,1,2,3"), "1,a,1", "+,+,+", ReasonWeightsNotNumeric},
		{"bad direction", table("id,a,b", "x,1,2"), "1,1", "+,*", ReasonInvalidDirection},
		{"too few columns", table("id,a", "x,1"), "1", "+", ReasonTooFewColumns},
		{"non-numeric criteria", table("id,a,b", "x,1,two"), "1,1", "+,+", ReasonNonNumericCriteria},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(tt.table, tt.weights, tt.directions)
			assert.Nil(t, res)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.reason, verr.Reason)
		})
	}
}

func TestRunValidatesTableBeforeSpec(t *testing.T) {
	_, err := Run(table("id,a", "x,1"), "bogus", "?")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ReasonTooFewColumns, verr.Reason)
}

func TestRunZeroColumn(t *testing.T) {
	_, err := Run(table("id,a,b", "x,1,0", "y,2,0"), "1,1", "+,+")
	var derr *DegenerateInputError
	require.True(t, errors.As(err, &derr), "expected DegenerateInputError, got %v", err)
	assert.Equal(t, 1, derr.Column)
	assert.Equal(t, "b", derr.Name)
	assert.Contains(t, err.Error(), ReasonZeroNormColumn)
}

func TestRunNoRows(t *testing.T) {
	_, err := Run(table("id,a,b"), "1,1", "+,+")
	var derr *DegenerateInputError
	assert.True(t, errors.As(err, &derr))
}

func TestRunHugeWeights(t *testing.T) {
	unit, err := Run(phones(), "1,1", "+,+")
	require.NoError(t, err)

	res, err := Run(phones(), "1e200,1e200", "+,+")
	require.NoError(t, err)
	for i, s := range res.Scores {
		assert.InDelta(t, unit.Scores[i], s, 1e-9, "score %d", i)
	}
	assert.Equal(t, unit.Ranks, res.Ranks)
}

func TestRunNonFiniteScore(t *testing.T) {
	// weighted distances overflow even after scaling
	res, err := Run(table("id,a,b,c,d,e,f,g,h",
		"low,-1,-1,-1,-1,-1,-1,-1,-1",
		"high,1,1,1,1,1,1,1,1",
		"mixed,-1,-1,-1,-1,1,1,1,1"),
		"1e308,1e308,1e308,1e308,1e308,1e308,1e308,1e308", "+,+,+,+,+,+,+,+")
	assert.Nil(t, res)
	var derr *DegenerateInputError
	require.True(t, errors.As(err, &derr), "expected DegenerateInputError, got %v", err)
	assert.Equal(t, ReasonNonFiniteScore, derr.Reason)
	assert.Equal(t, "degenerate input: non-finite score", err.Error())
}

func randomTable(r *rand.Rand, n, m int) (*Table, string, string) {
	header := []string{"id"}
	var w, d []string
	for j := 0; j < m; j++ {
		header = append(header, "c"+strconv.Itoa(j))
		w = append(w, strconv.FormatFloat(r.Float64()*5+0.1, 'f', 3, 64))
		if r.Intn(2) == 0 {
			d = append(d, "+")
		} else {
			d = append(d, "-")
		}
	}
	t := &Table{Header: header}
	for i := 0; i < n; i++ {
		row := []string{"alt" + strconv.Itoa(i)}
		for j := 0; j < m; j++ {
			// small integer range so ties are common
			row = append(row, strconv.Itoa(r.Intn(5)+1))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, strings.Join(w, ","), strings.Join(d, ",")
}

func TestRunProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		n := r.Intn(12) + 1
		m := r.Intn(5) + 2
		tbl, w, d := randomTable(r, n, m)

		res, err := Run(tbl, w, d)
		require.NoError(t, err)

		for _, s := range res.Scores {
			assert.False(t, math.IsNaN(s))
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0+1e-12)
		}

		ranks := append([]int(nil), res.Ranks...)
		sort.Ints(ranks)
		for i, rk := range ranks {
			require.Equal(t, i+1, rk, "ranks must be a permutation of 1..N")
		}

		again, err := Run(tbl, w, d)
		require.NoError(t, err)
		assert.Equal(t, res.Scores, again.Scores)
		assert.Equal(t, res.Ranks, again.Ranks)

		assert.Equal(t, tbl.Columns()+2, res.Table.Columns())
		assert.Len(t, res.Table.Rows, n)
	}
}
