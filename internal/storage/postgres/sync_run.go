package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"weather_syncer/internal/domain"
)

type SyncRunStore struct {
	db *sqlx.DB
}

func NewSyncRunStore(db *sqlx.DB) *SyncRunStore {
	return &SyncRunStore{db: db}
}

// Open inserts a running ledger row and returns its id. The insert is
// committed before Open returns, so a crash mid-run leaves a visible
// forever-running row instead of a hidden one.
func (s *SyncRunStore) Open(ctx context.Context) (int64, error) {
	var id int64
	query := `
		INSERT INTO sync_runs (status, fetched, upserted)
		VALUES ($1, 0, 0)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query, domain.RunStatusRunning).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// Finish moves the run to a terminal state and flushes the counters the
// engine accumulated in memory. Counters are written once here, never
// incrementally.
func (s *SyncRunStore) Finish(ctx context.Context, id int64, status string, fetched, upserted int, message *string) error {
	query := `
		UPDATE sync_runs
		SET status = $2, fetched = $3, upserted = $4, finished_at = NOW(), message = $5
		WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, id, status, fetched, upserted, message)
	return err
}

func (s *SyncRunStore) List(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	runs := []domain.SyncRun{}
	query := `
		SELECT id, status, fetched, upserted, started_at, finished_at, message
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1`

	err := s.db.SelectContext(ctx, &runs, query, limit)
	return runs, err
}
