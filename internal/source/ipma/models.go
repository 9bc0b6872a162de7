package ipma

import "weather_syncer/internal/domain"

// feedEnvelope is the top-level shape of the daily forecast file.
type feedEnvelope struct {
	Owner      string           `json:"owner"`
	Country    string           `json:"country"`
	DataUpdate string           `json:"dataUpdate"`
	Data       []domain.FeedRow `json:"data"`
}

// catalogEnvelope is the top-level shape of the districts/islands file.
type catalogEnvelope struct {
	Owner string        `json:"owner"`
	Data  []catalogCity `json:"data"`
}

type catalogCity struct {
	GlobalIDLocal int64   `json:"globalIdLocal"`
	Local         string  `json:"local"`
	District      *string `json:"district"`
}
