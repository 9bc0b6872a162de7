package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"weather_syncer/internal/domain"
)

// Syncer defines the interface for sync operations.
type Syncer interface {
	Run(ctx context.Context) (*domain.SyncOutcome, error)
}

// Scheduler triggers a sync pass on a cron spec. A failed pass is
// logged and the schedule keeps going; failures never escape the
// scheduler.
type Scheduler struct {
	syncer  Syncer
	spec    string
	timeout time.Duration
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewScheduler(syncer Syncer, spec string, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:  syncer,
		spec:    spec,
		timeout: timeout,
		cron:    cron.New(),
		logger:  logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "cron_spec", s.spec)

	s.runSync(ctx)

	if _, err := s.cron.AddFunc(s.spec, func() {
		s.runSync(ctx)
	}); err != nil {
		return err
	}

	s.cron.Start()

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) runSync(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, err := s.syncer.Run(syncCtx)
	if err != nil {
		s.logger.Error("scheduled sync failed", "error", err)
		return
	}

	s.logger.Info("scheduled sync finished",
		"status", outcome.Status,
		"fetched", outcome.Fetched,
		"upserted", outcome.Upserted,
	)
}
