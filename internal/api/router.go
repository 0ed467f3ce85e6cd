package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Topsis/internal/config"
	"github.com/MikeSquared-Agency/Topsis/internal/hermes"
	"github.com/MikeSquared-Agency/Topsis/internal/store"
)

// NewRouter builds the public service. deliveryEnabled reports whether a
// mailer is configured; without one the form rejects submissions.
func NewRouter(s store.Store, h hermes.Client, cfg *config.Config, deliveryEnabled bool, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RequestsPerMinute))

	ranker := NewRanker(s, h, cfg.MaxUploadBytes(), logger)
	form := NewFormHandler(ranker, deliveryEnabled)
	runs := NewRunsHandler(s)

	r.Get("/", form.Show)
	r.Post("/", form.Submit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/rank", ranker.Rank)
		r.Get("/runs/{id}", runs.Get)
		r.Get("/runs/{id}/result", runs.Result)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/runs", runs.List)
			r.Get("/stats", runs.Stats)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
