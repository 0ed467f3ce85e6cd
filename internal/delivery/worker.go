// Package delivery e-mails queued ranking results.
package delivery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Topsis/internal/config"
	"github.com/MikeSquared-Agency/Topsis/internal/hermes"
	"github.com/MikeSquared-Agency/Topsis/internal/mailer"
	"github.com/MikeSquared-Agency/Topsis/internal/metrics"
	"github.com/MikeSquared-Agency/Topsis/internal/store"
)

const (
	sendTimeout = time.Minute

	// a delivered run whose status cannot be saved would be mailed again
	statusUpdateAttempts = 3
)

// Worker polls the store for pending runs and mails each result to its
// requester.
type Worker struct {
	store  store.Store
	sender mailer.Sender
	hermes hermes.Client
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time

	statusRetryDelay time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(s store.Store, sender mailer.Sender, h hermes.Client, cfg *config.Config, logger *slog.Logger) *Worker {
	if h == nil {
		h = hermes.Nop{}
	}
	return &Worker{
		store:  s,
		sender: sender,
		hermes: h,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		stopCh: make(chan struct{}),

		statusRetryDelay: 500 * time.Millisecond,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.deliveryLoop(ctx)
}

func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

func (w *Worker) deliveryLoop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

func (w *Worker) processPending(ctx context.Context) {
	runs, err := w.store.GetPendingDeliveries(ctx, w.cfg.Delivery.BatchSize)
	if err != nil {
		w.logger.Error("failed to get pending deliveries", "error", err)
		return
	}
	if len(runs) == 0 {
		return
	}

	w.logger.Debug("processing pending deliveries", "count", len(runs))
	for _, run := range runs {
		select {
		case <-w.stopCh:
			return
		default:
		}
		if err := w.deliver(ctx, run); err != nil {
			w.logger.Error("failed to record delivery", "run_id", run.ID, "error", err)
		}
	}
}

// deliver sends one run and persists the outcome. The returned error is
// only non-nil when the store update fails.
func (w *Worker) deliver(ctx context.Context, run *store.Run) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	sendErr := w.sender.Send(sendCtx, w.message(run))
	cancel()

	now := w.now()
	run.Attempts++
	run.UpdatedAt = now

	if sendErr == nil {
		run.Status = store.StatusDelivered
		run.Error = ""
		run.DeliveredAt = &now
		if err := w.recordDelivered(ctx, run); err != nil {
			w.logger.Error("result sent but delivered status not saved, run may be mailed again",
				"run_id", run.ID, "to", run.Email, "error", err)
			return err
		}
		metrics.DeliveriesTotal.WithLabelValues("delivered").Inc()
		w.logger.Info("result delivered", "run_id", run.ID, "to", run.Email, "attempts", run.Attempts)
		w.publish(hermes.SubjectRunDelivered(run.ID.String()), hermes.RunDeliveredEvent{
			RunID:     run.ID.String(),
			Attempts:  run.Attempts,
			Timestamp: now,
		})
		return nil
	}

	run.Error = sendErr.Error()
	if run.Attempts < w.maxAttempts() {
		if err := w.store.UpdateRun(ctx, run); err != nil {
			return err
		}
		metrics.DeliveriesTotal.WithLabelValues("retry").Inc()
		w.logger.Warn("delivery failed, will retry", "run_id", run.ID, "attempts", run.Attempts, "error", sendErr)
		return nil
	}

	run.Status = store.StatusFailed
	if err := w.store.UpdateRun(ctx, run); err != nil {
		return err
	}
	metrics.DeliveriesTotal.WithLabelValues("failed").Inc()
	w.logger.Error("delivery failed permanently", "run_id", run.ID, "attempts", run.Attempts, "error", sendErr)
	w.publish(hermes.SubjectRunFailed(run.ID.String()), hermes.RunFailedEvent{
		RunID:     run.ID.String(),
		Error:     run.Error,
		Attempts:  run.Attempts,
		Timestamp: now,
	})
	return nil
}

// recordDelivered saves a delivered run, retrying transient store failures.
func (w *Worker) recordDelivered(ctx context.Context, run *store.Run) error {
	var err error
	for attempt := 1; attempt <= statusUpdateAttempts; attempt++ {
		if err = w.store.UpdateRun(ctx, run); err == nil {
			return nil
		}
		w.logger.Warn("failed to save delivered status", "run_id", run.ID, "attempt", attempt, "error", err)
		if attempt == statusUpdateAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.statusRetryDelay):
		}
	}
	return err
}

func (w *Worker) message(run *store.Run) *mailer.Message {
	return &mailer.Message{
		To:      run.Email,
		Subject: w.cfg.Mail.Subject,
		Body:    w.cfg.Mail.Body,
		Attachments: []mailer.Attachment{{
			Filename:    run.ResultFilename(),
			ContentType: "text/csv",
			Data:        run.Result,
		}},
	}
}

func (w *Worker) maxAttempts() int {
	if w.cfg.Delivery.MaxAttempts <= 0 {
		return 1
	}
	return w.cfg.Delivery.MaxAttempts
}

func (w *Worker) publish(subject string, event interface{}) {
	if err := w.hermes.Publish(subject, event); err != nil {
		w.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
