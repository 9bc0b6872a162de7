package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"weather_syncer/internal/domain"
)

type CityStore struct {
	db *sqlx.DB
}

func NewCityStore(db *sqlx.DB) *CityStore {
	return &CityStore{db: db}
}

// ActiveIDs returns the set of city ids eligible for forecast writes.
// An empty catalog is valid and yields an empty set.
func (s *CityStore) ActiveIDs(ctx context.Context) (map[int64]struct{}, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids, `SELECT id FROM cities WHERE is_active = TRUE`)
	if err != nil {
		return nil, err
	}

	active := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		active[id] = struct{}{}
	}

	return active, nil
}

func (s *CityStore) ListActive(ctx context.Context) ([]domain.City, error) {
	cities := []domain.City{}
	query := `
		SELECT id, name, district, is_active
		FROM cities
		WHERE is_active = TRUE
		ORDER BY name ASC`

	err := s.db.SelectContext(ctx, &cities, query)
	return cities, err
}

func (s *CityStore) Get(ctx context.Context, id int64) (*domain.City, error) {
	var city domain.City
	query := `SELECT id, name, district, is_active FROM cities WHERE id = $1`

	err := s.db.GetContext(ctx, &city, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &city, nil
}

// Upsert writes one catalog entry. It honors an ambient transaction so
// the seeder can refresh the whole catalog atomically.
func (s *CityStore) Upsert(ctx context.Context, city *domain.City) error {
	query := `
		INSERT INTO cities (id, name, district, is_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			district = EXCLUDED.district,
			is_active = EXCLUDED.is_active`

	exec := GetExecutor(ctx, s.db)
	_, err := exec.ExecContext(ctx, query, city.ID, city.Name, city.District, city.IsActive)
	return err
}
