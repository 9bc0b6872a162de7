package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"weather_syncer/internal/domain"
)

type ForecastStore struct {
	db *sqlx.DB
}

func NewForecastStore(db *sqlx.DB) *ForecastStore {
	return &ForecastStore{db: db}
}

// Upsert writes the record under its (city_id, forecast_date) key. An
// existing row has every mutable field overwritten, last write wins.
// Returns whether a new row was created; xmax = 0 only holds for rows
// inserted by the current transaction.
func (s *ForecastStore) Upsert(ctx context.Context, record *domain.ForecastRecord) (bool, error) {
	query := `
		INSERT INTO forecasts (
			city_id, forecast_date, t_min, t_max, precip_prob, wind_class, weather_type, amplitude
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (city_id, forecast_date) DO UPDATE SET
			t_min = EXCLUDED.t_min,
			t_max = EXCLUDED.t_max,
			precip_prob = EXCLUDED.precip_prob,
			wind_class = EXCLUDED.wind_class,
			weather_type = EXCLUDED.weather_type,
			amplitude = EXCLUDED.amplitude
		RETURNING (xmax = 0)`

	var created bool
	err := s.db.QueryRowContext(ctx, query,
		record.CityID,
		record.ForecastDate,
		record.TMin,
		record.TMax,
		record.PrecipProb,
		record.WindClass,
		record.WeatherType,
		record.Amplitude,
	).Scan(&created)
	if err != nil {
		return false, err
	}

	return created, nil
}

func (s *ForecastStore) GetByCityAndDate(ctx context.Context, cityID int64, date time.Time) ([]domain.ForecastRecord, error) {
	records := []domain.ForecastRecord{}
	query := `
		SELECT city_id, forecast_date, t_min, t_max, precip_prob, wind_class, weather_type, amplitude
		FROM forecasts
		WHERE city_id = $1 AND forecast_date = $2
		ORDER BY forecast_date ASC`

	err := s.db.SelectContext(ctx, &records, query, cityID, date)
	return records, err
}
