package api

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/Topsis/internal/hermes"
	"github.com/MikeSquared-Agency/Topsis/internal/metrics"
	"github.com/MikeSquared-Agency/Topsis/internal/store"
	"github.com/MikeSquared-Agency/Topsis/internal/tableio"
	"github.com/MikeSquared-Agency/Topsis/internal/topsis"
)

const defaultResultName = "topsis_results.csv"

// submission is one uploaded table plus its ranking parameters.
type submission struct {
	Filename string
	Table    *topsis.Table
	Weights  string
	Impacts  string
	Email    string
}

// Ranker runs submissions through the engine and records successful runs.
type Ranker struct {
	store     store.Store
	hermes    hermes.Client
	maxUpload int64
	logger    *slog.Logger
}

func NewRanker(s store.Store, h hermes.Client, maxUpload int64, logger *slog.Logger) *Ranker {
	if h == nil {
		h = hermes.Nop{}
	}
	return &Ranker{store: s, hermes: h, maxUpload: maxUpload, logger: logger}
}

// readSubmission parses the multipart body shared by the form and the API.
func (rk *Ranker) readSubmission(w http.ResponseWriter, r *http.Request) (*submission, error) {
	if rk.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rk.maxUpload)
	}
	if err := r.ParseMultipartForm(rk.maxUpload); err != nil {
		var mberr *http.MaxBytesError
		if errors.As(err, &mberr) {
			return nil, err
		}
		return nil, badRequest("invalid multipart form: " + err.Error())
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("input_file")
	if err != nil {
		return nil, badRequest("input_file is required")
	}
	defer file.Close()

	tbl, err := tableio.Decode(file)
	if err != nil {
		return nil, err
	}

	return &submission{
		Filename: uploadName(header),
		Table:    tbl,
		Weights:  r.FormValue("weights"),
		Impacts:  r.FormValue("impacts"),
		Email:    strings.TrimSpace(r.FormValue("email")),
	}, nil
}

// uploadName keeps only the base name of the client-supplied filename.
func uploadName(h *multipart.FileHeader) string {
	name := filepath.Base(strings.ReplaceAll(h.Filename, `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// rank scores sub and stores the run. Runs carrying an email are queued for
// delivery; all others are stored as completed.
func (rk *Ranker) rank(ctx context.Context, source store.RunSource, sub *submission) (*store.Run, *topsis.Result, error) {
	start := time.Now()
	res, err := topsis.Run(sub.Table, sub.Weights, sub.Impacts)
	metrics.RunsTotal.WithLabelValues(string(source), metrics.OutcomeFor(err)).Inc()
	if err != nil {
		rk.logger.Info("ranking rejected", "source", source, "file", sub.Filename, "error", err)
		return nil, nil, err
	}
	metrics.RunDuration.Observe(time.Since(start).Seconds())
	metrics.Alternatives.Observe(float64(len(res.Scores)))

	data, err := tableio.Bytes(res.Table)
	if err != nil {
		return nil, nil, err
	}

	run := &store.Run{
		Source:       source,
		Filename:     sub.Filename,
		Weights:      sub.Weights,
		Impacts:      sub.Impacts,
		Email:        sub.Email,
		Alternatives: len(res.Scores),
		Criteria:     sub.Table.Columns() - 1,
		Best:         res.Best(),
		Status:       store.StatusCompleted,
		Result:       data,
	}
	if sub.Email != "" {
		run.Status = store.StatusPending
	}
	if err := rk.store.CreateRun(ctx, run); err != nil {
		return nil, nil, &storeError{err: err}
	}

	rk.logger.Info("run completed",
		"run_id", run.ID,
		"source", source,
		"alternatives", run.Alternatives,
		"criteria", run.Criteria,
		"best", run.Best,
	)
	if err := rk.hermes.Publish(hermes.SubjectRunCompleted(run.ID.String()), hermes.RunCompletedEvent{
		RunID:        run.ID.String(),
		Source:       string(source),
		Alternatives: run.Alternatives,
		Criteria:     run.Criteria,
		Best:         run.Best,
		Queued:       run.Status == store.StatusPending,
		Timestamp:    time.Now(),
	}); err != nil {
		rk.logger.Warn("failed to publish event", "run_id", run.ID, "error", err)
	}
	return run, res, nil
}

// RankResponse is the JSON form of a ranking result.
type RankResponse struct {
	RunID      string     `json:"run_id"`
	Header     []string   `json:"header"`
	Rows       [][]string `json:"rows"`
	Scores     []float64  `json:"scores"`
	Ranks      []int      `json:"ranks"`
	Best       string     `json:"best"`
	IdealBest  []float64  `json:"ideal_best"`
	IdealWorst []float64  `json:"ideal_worst"`
}

// Rank handles POST /api/v1/rank.
func (rk *Ranker) Rank(w http.ResponseWriter, r *http.Request) {
	sub, err := rk.readSubmission(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	// the API never queues e-mail; the form is the only delivery entry point
	sub.Email = ""

	run, res, err := rk.rank(r.Context(), store.SourceAPI, sub)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			rk.logger.Error("rank failed", "error", err)
		}
		writeError(w, err)
		return
	}

	w.Header().Set("X-Run-ID", run.ID.String())
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, RankResponse{
			RunID:      run.ID.String(),
			Header:     res.Table.Header,
			Rows:       res.Table.Rows,
			Scores:     res.Scores,
			Ranks:      res.Ranks,
			Best:       res.Best(),
			IdealBest:  res.IdealBest,
			IdealWorst: res.IdealWorst,
		})
		return
	}
	writeCSV(w, defaultResultName, run.Result)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
