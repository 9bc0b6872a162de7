package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"weather_syncer/internal/domain"
)

type FeedSource interface {
	ID() string
	Name() string
	Fetch(ctx context.Context) (*domain.Feed, error)
}

type CityStore interface {
	ActiveIDs(ctx context.Context) (map[int64]struct{}, error)
}

type ForecastStore interface {
	Upsert(ctx context.Context, record *domain.ForecastRecord) (bool, error)
}

type SyncRunStore interface {
	Open(ctx context.Context) (int64, error)
	Finish(ctx context.Context, id int64, status string, fetched, upserted int, message *string) error
}

type Publisher interface {
	Publish(ctx context.Context, record *domain.ForecastRecord, created bool) error
	Close() error
}
