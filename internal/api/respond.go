package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Topsis/internal/topsis"
)

// requestError is a malformed request that never reached the ranking engine.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error { return &requestError{msg: msg} }

// storeError wraps a persistence failure after a successful ranking.
type storeError struct {
	err error
}

func (e *storeError) Error() string { return "store run: " + e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

// statusFor maps ranking and request errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		verr  *topsis.ValidationError
		derr  *topsis.DegenerateInputError
		serr  *topsis.SourceError
		rerr  *requestError
		mberr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &mberr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &verr), errors.As(err, &derr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &serr), errors.As(err, &rerr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
