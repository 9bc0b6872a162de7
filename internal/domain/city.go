package domain

import "time"

// City is one entry of the provider's location catalog. The sync engine
// only reads it; writes happen through the catalog seeder.
type City struct {
	ID       int64   `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	District *string `db:"district" json:"district"`
	IsActive bool    `db:"is_active" json:"isActive"`
}

// WatchlistItem pins a city on the read side of the API. The sync engine
// never touches the watchlist.
type WatchlistItem struct {
	CityID    int64     `db:"city_id" json:"cityId"`
	Label     *string   `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CityName  string    `db:"city_name" json:"cityName"`
	District  *string   `db:"district" json:"district"`
}
