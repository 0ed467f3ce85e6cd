package topsis

import (
	"errors"
	"fmt"
	"io/fs"
)

// Validation failure reasons.
const (
	ReasonWeightsNotNumeric  = "weights not numeric"
	ReasonInvalidDirection   = "invalid direction token"
	ReasonCountMismatch      = "count mismatch"
	ReasonTooFewColumns      = "too few columns"
	ReasonNonNumericCriteria = "non-numeric criteria"
	ReasonZeroNormColumn     = "zero-norm column"
	ReasonNonFiniteScore     = "non-finite score"
)

// ValidationError reports malformed input detected before any numeric work.
type ValidationError struct {
	Reason string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Reason, e.Detail)
}

// DegenerateInputError reports input that parses but cannot be scored: a
// criterion column whose vector norm is zero, or magnitudes so large that a
// closeness score is not a finite number.
type DegenerateInputError struct {
	Reason string
	Column int // criterion index, 0-based; -1 when no single criterion is at fault
	Name   string
}

func (e *DegenerateInputError) Error() string {
	if e.Column < 0 {
		return "degenerate input: " + e.Reason
	}
	if e.Name != "" {
		return fmt.Sprintf("degenerate input: %s: criterion %q", e.Reason, e.Name)
	}
	return fmt.Sprintf("degenerate input: %s: criterion %d", e.Reason, e.Column)
}

// SourceError reports an input or output source that could not be used.
type SourceError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	if e.Op == "read" && errors.Is(e.Err, fs.ErrNotExist) {
		return "file not found: " + e.Path
	}
	if e.Path == "" {
		return fmt.Sprintf("unable to %s input: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("unable to %s file %s: %v", e.Op, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func validationErr(reason, format string, args ...interface{}) error {
	return &ValidationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
