package domain

import "time"

// Feed is one snapshot of the provider's daily forecast payload.
type Feed struct {
	UpdatedAt *time.Time
	Rows      []FeedRow
}

// FeedRow carries a single raw feed entry. The numeric fields are typed
// `any` on purpose: depending on the file version the provider serves
// them as JSON numbers or as strings ("14.2"). Coercion into usable
// values happens in the normalize package, never during decoding.
type FeedRow struct {
	GlobalIDLocal  any    `json:"globalIdLocal"`
	ForecastDate   string `json:"forecastDate"`
	DataPrev       string `json:"dataPrev"`
	Date           string `json:"date"`
	Data           string `json:"data"`
	TMin           any    `json:"tMin"`
	TMax           any    `json:"tMax"`
	PrecipitaProb  any    `json:"precipitaProb"`
	ClassWindSpeed any    `json:"classWindSpeed"`
	IDWeatherType  any    `json:"idWeatherType"`
}

// DateCandidates returns the date-bearing fields in the order they are
// trusted. Older feed files used dataPrev or plain date/data.
func (r FeedRow) DateCandidates() []string {
	return []string{r.ForecastDate, r.DataPrev, r.Date, r.Data}
}
