package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Topsis/internal/config"
)

type RunStatus string

const (
	StatusCompleted RunStatus = "completed" // ranked, no delivery requested
	StatusPending   RunStatus = "pending"   // ranked, awaiting e-mail delivery
	StatusDelivered RunStatus = "delivered"
	StatusFailed    RunStatus = "failed"
)

type RunSource string

const (
	SourceForm RunSource = "form"
	SourceAPI  RunSource = "api"
)

// Run is one successful ranking together with its delivery state.
type Run struct {
	ID       uuid.UUID `json:"run_id"`
	Source   RunSource `json:"source"`
	Filename string    `json:"filename"`
	Weights  string    `json:"weights"`
	Impacts  string    `json:"impacts"`
	Email    string    `json:"email,omitempty"`

	Alternatives int    `json:"alternatives"`
	Criteria     int    `json:"criteria"`
	Best         string `json:"best"`

	// State
	Status   RunStatus `json:"status"`
	Result   []byte    `json:"-"`
	Error    string    `json:"error,omitempty"`
	Attempts int       `json:"attempts"`

	// Timestamps
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

type RunFilter struct {
	Status *RunStatus
	Source RunSource
	Limit  int
	Offset int
}

type RunStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// ResultFilename is the attachment / download name of a run's result.
func (r *Run) ResultFilename() string {
	if r.Filename == "" {
		return "topsis_results.csv"
	}
	return "result_" + r.Filename
}

type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	// GetRun returns nil, nil when no run has the given id.
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
	UpdateRun(ctx context.Context, run *Run) error
	GetPendingDeliveries(ctx context.Context, limit int) ([]*Run, error)
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	GetStats(ctx context.Context) (*RunStats, error)
	Close() error
}

const defaultListLimit = 100

func listLimit(filter RunFilter) int {
	if filter.Limit <= 0 {
		return defaultListLimit
	}
	return filter.Limit
}

// Open connects the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "postgres":
		if cfg.URL == "" {
			return nil, fmt.Errorf("postgres driver requires database.url")
		}
		return NewPostgresStore(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
