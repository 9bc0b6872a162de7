package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"weather_syncer/internal/domain"
)

type WatchlistStore struct {
	db *sqlx.DB
}

func NewWatchlistStore(db *sqlx.DB) *WatchlistStore {
	return &WatchlistStore{db: db}
}

func (s *WatchlistStore) List(ctx context.Context) ([]domain.WatchlistItem, error) {
	items := []domain.WatchlistItem{}
	query := `
		SELECT w.city_id, w.label, w.created_at, c.name AS city_name, c.district
		FROM watchlist w
		INNER JOIN cities c ON c.id = w.city_id
		ORDER BY w.created_at DESC`

	err := s.db.SelectContext(ctx, &items, query)
	return items, err
}

func (s *WatchlistStore) Upsert(ctx context.Context, cityID int64, label *string) (*domain.WatchlistItem, error) {
	query := `
		INSERT INTO watchlist (city_id, label)
		VALUES ($1, $2)
		ON CONFLICT (city_id) DO UPDATE SET label = EXCLUDED.label`

	if _, err := s.db.ExecContext(ctx, query, cityID, label); err != nil {
		return nil, err
	}

	var item domain.WatchlistItem
	get := `
		SELECT w.city_id, w.label, w.created_at, c.name AS city_name, c.district
		FROM watchlist w
		INNER JOIN cities c ON c.id = w.city_id
		WHERE w.city_id = $1`

	if err := s.db.GetContext(ctx, &item, get, cityID); err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *WatchlistStore) Delete(ctx context.Context, cityID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE city_id = $1`, cityID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
