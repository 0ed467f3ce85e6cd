// Package tableio moves decision tables between CSV sources and the topsis
// engine.
package tableio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MikeSquared-Agency/Topsis/internal/topsis"
)

// Decode reads a CSV document whose first record is the header.
func Decode(r io.Reader) (*topsis.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// row width is checked by topsis.ValidateTable
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &topsis.SourceError{Op: "read", Err: err}
	}
	if len(records) == 0 {
		return nil, &topsis.SourceError{Op: "read", Err: errors.New("no header row")}
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return &topsis.Table{Header: header, Rows: records[1:]}, nil
}

// Encode writes t as CSV, header first.
func Encode(w io.Writer, t *topsis.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Bytes encodes t into memory.
func Bytes(t *topsis.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, t); err != nil {
		return nil, fmt.Errorf("encode table: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadFile decodes the CSV file at path.
func ReadFile(path string) (*topsis.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &topsis.SourceError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()

	t, err := Decode(f)
	if err != nil {
		var serr *topsis.SourceError
		if errors.As(err, &serr) {
			serr.Path = path
		}
		return nil, err
	}
	return t, nil
}

// WriteFile encodes t to path, replacing any existing file.
func WriteFile(path string, t *topsis.Table) error {
	data, err := Bytes(t)
	if err != nil {
		return &topsis.SourceError{Op: "write", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &topsis.SourceError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// RunFile ranks the table stored at inPath and writes the augmented table to
// outPath. The output file is only touched once the ranking has succeeded.
func RunFile(inPath, weights, directions, outPath string) (*topsis.Result, error) {
	t, err := ReadFile(inPath)
	if err != nil {
		return nil, err
	}
	res, err := topsis.Run(t, weights, directions)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(outPath, res.Table); err != nil {
		return nil, err
	}
	return res, nil
}
