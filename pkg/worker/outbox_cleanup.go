package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/carewatch-api/internal/repository"
	"github.com/jwalitptl/carewatch-api/pkg/logger"
)

// OutboxCleanupWorker prunes processed outbox rows older than the retention window.
type OutboxCleanupWorker struct {
	repo      repository.OutboxRepository
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retention, interval time.Duration, logger *logger.Logger) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Cleanup(ctx)
		}
	}
}

func (w *OutboxCleanupWorker) Cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-w.retention)
	rows, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		w.logger.Error(err, "Failed to clean up outbox events")
		return
	}
	if rows > 0 {
		w.logger.Info("Cleaned up outbox events", "deleted", rows, "cutoff", cutoff)
	}
}
