package domain

import "time"

// ForecastRecord is the stored daily forecast for one (city, day) pair.
// The pair is the idempotency key: re-syncing the same day overwrites the
// record in place, it never appends.
type ForecastRecord struct {
	CityID       int64     `db:"city_id" json:"cityId"`
	ForecastDate time.Time `db:"forecast_date" json:"forecastDate"`
	TMin         *float64  `db:"t_min" json:"tMin"`
	TMax         *float64  `db:"t_max" json:"tMax"`
	PrecipProb   *float64  `db:"precip_prob" json:"precipProb"`
	WindClass    *string   `db:"wind_class" json:"windClass"`
	WeatherType  *int      `db:"weather_type" json:"weatherType"`
	// Amplitude is tMax - tMin, nil when either bound is missing.
	Amplitude *float64 `db:"amplitude" json:"amplitude"`
}
