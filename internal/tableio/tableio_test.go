package tableio

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Topsis/internal/topsis"
)

const sample = "Model,Price,Storage\nM1,250,16\nM2,200,16\nM3,300,32\n"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDecode(t *testing.T) {
	tbl, err := Decode(strings.NewReader("\ufeffid, a,b\nx, 1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "a", "b"}, tbl.Header)
	assert.Equal(t, [][]string{{"x", "1", "2"}}, tbl.Rows)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bare quote", "id,a,b\nx,\"1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			var serr *topsis.SourceError
			assert.True(t, errors.As(err, &serr), "got %v", err)
		})
	}
}

func TestDecodeKeepsShortRows(t *testing.T) {
	tbl, err := Decode(strings.NewReader("id,a,b\nx,1\ny,2,3,4\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x", "1"}, {"y", "2", "3", "4"}}, tbl.Rows)
}

func TestRunFileShortRow(t *testing.T) {
	in := writeTemp(t, "data.csv", "Model,Price,Storage\nM1,250,16\nM2,200\n")
	out := filepath.Join(t.TempDir(), "result.csv")

	_, err := RunFile(in, "1,1", "+,+", out)
	var verr *topsis.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, topsis.ReasonNonNumericCriteria, verr.Reason)
}

func TestEncodeRoundTrip(t *testing.T) {
	tbl, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tbl))
	assert.Equal(t, sample, buf.String())
}

func TestRunFile(t *testing.T) {
	in := writeTemp(t, "data.csv", sample)
	out := filepath.Join(t.TempDir(), "result.csv")

	res, err := RunFile(in, "1,1", "+,+", out)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, res.Ranks)

	written, err := ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Model", "Price", "Storage", topsis.ScoreColumn, topsis.RankColumn}, written.Header)
	assert.Equal(t, []string{"M2", "200", "16", "0", "3"}, written.Rows[1])
	assert.Equal(t, []string{"M3", "300", "32", "1", "1"}, written.Rows[2])
}

func TestRunFileMissingInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "result.csv")
	_, err := RunFile(filepath.Join(t.TempDir(), "nope.csv"), "1,1", "+,+", out)

	var serr *topsis.SourceError
	require.True(t, errors.As(err, &serr))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "file not found")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunFileNoOutputOnFailure(t *testing.T) {
	in := writeTemp(t, "data.csv", sample)
	out := filepath.Join(t.TempDir(), "result.csv")

	_, err := RunFile(in, "1,x", "+,+", out)
	var verr *topsis.ValidationError
	require.True(t, errors.As(err, &verr))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "output must not be created on failure")
}

func TestRunFileUnwritableOutput(t *testing.T) {
	in := writeTemp(t, "data.csv", sample)
	out := filepath.Join(t.TempDir(), "missing-dir", "result.csv")

	_, err := RunFile(in, "1,1", "+,+", out)
	var serr *topsis.SourceError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "write", serr.Op)
}
