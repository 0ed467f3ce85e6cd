// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MikeSquared-Agency/Topsis/internal/topsis"
)

// Run outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeDegenerate  = "degenerate"
	OutcomeSourceError = "source_error"
	OutcomeError       = "error"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "topsis",
		Name:      "runs_total",
		Help:      "Ranking runs by submission source and outcome.",
	}, []string{"source", "outcome"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "topsis",
		Name:      "run_duration_seconds",
		Help:      "Time spent ranking one table.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	Alternatives = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "topsis",
		Name:      "alternatives",
		Help:      "Number of alternatives per ranked table.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "topsis",
		Name:      "deliveries_total",
		Help:      "E-mail delivery attempts by outcome (delivered, retry, failed).",
	}, []string{"outcome"})

	RunsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "topsis",
		Name:      "runs_purged_total",
		Help:      "Runs removed by the retention job.",
	})
)

// OutcomeFor classifies the error returned by a ranking run.
func OutcomeFor(err error) string {
	var (
		verr *topsis.ValidationError
		derr *topsis.DegenerateInputError
		serr *topsis.SourceError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &verr):
		return OutcomeInvalid
	case errors.As(err, &derr):
		return OutcomeDegenerate
	case errors.As(err, &serr):
		return OutcomeSourceError
	default:
		return OutcomeError
	}
}
