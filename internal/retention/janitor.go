// Package retention purges old runs on a cron schedule.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MikeSquared-Agency/Topsis/internal/config"
	"github.com/MikeSquared-Agency/Topsis/internal/metrics"
	"github.com/MikeSquared-Agency/Topsis/internal/store"
)

const purgeTimeout = 5 * time.Minute

type Janitor struct {
	store  store.Store
	maxAge time.Duration
	cron   *cron.Cron
	logger *slog.Logger
	now    func() time.Time
}

func New(s store.Store, cfg *config.Config, logger *slog.Logger) (*Janitor, error) {
	if cfg.MaxAge() <= 0 {
		return nil, fmt.Errorf("retention max age must be positive, got %v", cfg.MaxAge())
	}
	j := &Janitor{
		store:  s,
		maxAge: cfg.MaxAge(),
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger,
		now:    time.Now,
	}
	if _, err := j.cron.AddFunc(cfg.Retention.Schedule, j.job); err != nil {
		return nil, fmt.Errorf("add retention schedule %q: %w", cfg.Retention.Schedule, err)
	}
	return j, nil
}

func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts the schedule and waits for a running purge to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// Purge deletes runs created before now minus the retention window.
func (j *Janitor) Purge(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.maxAge)
	n, err := j.store.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete runs before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	metrics.RunsPurged.Add(float64(n))
	return n, nil
}

func (j *Janitor) job() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	n, err := j.Purge(ctx)
	if err != nil {
		j.logger.Error("retention purge failed", "error", err)
		return
	}
	j.logger.Info("retention purge complete", "deleted", n, "max_age", j.maxAge.String())
}
