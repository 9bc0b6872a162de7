package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"weather_syncer/internal/domain"
	"weather_syncer/internal/metrics"
	"weather_syncer/internal/normalize"
)

// SyncService is the reconciliation engine: it fetches one feed
// snapshot, filters it against the active catalog and converges the
// forecast store on the fetched values. Not designed for concurrent
// self-invocation; overlapping runs resolve by last write wins on the
// (city, date) key.
type SyncService struct {
	source    FeedSource
	cities    CityStore
	forecasts ForecastStore
	runs      SyncRunStore
	publisher Publisher
	metrics   *metrics.Collector
	logger    *slog.Logger
	now       func() time.Time
}

func NewSyncService(
	source FeedSource,
	cities CityStore,
	forecasts ForecastStore,
	runs SyncRunStore,
	publisher Publisher,
	collector *metrics.Collector,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		source:    source,
		cities:    cities,
		forecasts: forecasts,
		runs:      runs,
		publisher: publisher,
		metrics:   collector,
		logger:    logger.With("source", source.ID()),
		now:       time.Now,
	}
}

// Run executes one full sync pass. Whatever happens after the ledger row
// is opened, the row ends in a terminal state before Run returns; on
// failure the outcome carries the counters reached so far and the error
// is returned alongside it for the caller to surface.
func (s *SyncService) Run(ctx context.Context) (*domain.SyncOutcome, error) {
	start := s.now()

	runID, err := s.runs.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open sync run: %w", err)
	}

	s.logger.Info("starting sync", "run_id", runID, "source_name", s.source.Name())

	outcome := &domain.SyncOutcome{Status: domain.RunStatusRunning}

	activeIDs, err := s.cities.ActiveIDs(ctx)
	if err != nil {
		return s.fail(ctx, runID, outcome, fmt.Errorf("load active cities: %w", err))
	}

	feed, err := s.source.Fetch(ctx)
	if err != nil {
		return s.fail(ctx, runID, outcome, fmt.Errorf("fetch feed: %w", err))
	}

	for i := range feed.Rows {
		row := feed.Rows[i]

		cityID, ok := normalize.LocationID(row.GlobalIDLocal)
		if !ok {
			continue
		}
		if _, active := activeIDs[cityID]; !active {
			continue
		}

		outcome.Fetched++

		day, fallback := normalize.Day(row, s.now())
		if fallback {
			s.metrics.DateFallbacksTotal.Inc()
			s.logger.Warn("no recognized forecast date, storing under today",
				"city_id", cityID,
				"day", day.Format("2006-01-02"),
			)
		}

		record := buildRecord(cityID, day, row)

		// A failed upsert aborts the pass: row noise is tolerable, a
		// broken store is not. Rows already written stay committed.
		created, err := s.forecasts.Upsert(ctx, record)
		if err != nil {
			return s.fail(ctx, runID, outcome, fmt.Errorf("upsert forecast city=%d date=%s: %w",
				cityID, day.Format("2006-01-02"), err))
		}
		outcome.Upserted++

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, record, created); err != nil {
				s.metrics.PublishErrorsTotal.Inc()
				s.logger.Error("publish forecast event failed",
					"city_id", cityID,
					"error", err,
				)
			}
		}
	}

	outcome.Status = domain.RunStatusSuccess
	if err := s.runs.Finish(ctx, runID, domain.RunStatusSuccess, outcome.Fetched, outcome.Upserted, nil); err != nil {
		outcome.Status = domain.RunStatusError
		return outcome, fmt.Errorf("close sync run: %w", err)
	}

	s.metrics.RunsTotal.WithLabelValues(domain.RunStatusSuccess).Inc()
	s.metrics.RowsFetchedTotal.Add(float64(outcome.Fetched))
	s.metrics.RowsUpsertedTotal.Add(float64(outcome.Upserted))
	s.metrics.SyncDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("sync completed",
		"run_id", runID,
		"fetched", outcome.Fetched,
		"upserted", outcome.Upserted,
		"duration", time.Since(start),
	)

	return outcome, nil
}

// fail closes the ledger row in the error state and hands the original
// failure back to the caller. Closing is best-effort: a secondary ledger
// error is logged, it never masks the cause. The close uses a detached
// context so a cancelled run still gets its terminal row.
func (s *SyncService) fail(ctx context.Context, runID int64, outcome *domain.SyncOutcome, cause error) (*domain.SyncOutcome, error) {
	outcome.Status = domain.RunStatusError

	msg := cause.Error()
	closeCtx := context.WithoutCancel(ctx)
	if err := s.runs.Finish(closeCtx, runID, domain.RunStatusError, outcome.Fetched, outcome.Upserted, &msg); err != nil {
		s.logger.Error("failed to close sync run", "run_id", runID, "error", err)
	}

	// Rows committed before the failure are real work; count them.
	s.metrics.RunsTotal.WithLabelValues(domain.RunStatusError).Inc()
	s.metrics.RowsFetchedTotal.Add(float64(outcome.Fetched))
	s.metrics.RowsUpsertedTotal.Add(float64(outcome.Upserted))

	s.logger.Error("sync failed",
		"run_id", runID,
		"fetched", outcome.Fetched,
		"upserted", outcome.Upserted,
		"error", cause,
	)

	return outcome, cause
}

func buildRecord(cityID int64, day time.Time, row domain.FeedRow) *domain.ForecastRecord {
	tMin := normalize.Float(row.TMin)
	tMax := normalize.Float(row.TMax)

	record := &domain.ForecastRecord{
		CityID:       cityID,
		ForecastDate: day,
		TMin:         tMin,
		TMax:         tMax,
		PrecipProb:   normalize.Float(row.PrecipitaProb),
		WindClass:    normalize.StringVal(row.ClassWindSpeed),
		WeatherType:  normalize.Int(row.IDWeatherType),
	}

	if tMin != nil && tMax != nil {
		amplitude := *tMax - *tMin
		record.Amplitude = &amplitude
	}

	return record
}
