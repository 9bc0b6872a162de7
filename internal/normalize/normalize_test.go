package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"weather_syncer/internal/domain"
)

func TestDay_RecognizedFields(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		row  domain.FeedRow
		want time.Time
	}{
		{
			name: "forecastDate plain",
			row:  domain.FeedRow{ForecastDate: "2026-09-01"},
			want: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "forecastDate with time suffix is truncated",
			row:  domain.FeedRow{ForecastDate: "2026-09-01T12:00:00"},
			want: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "dataPrev used when forecastDate is absent",
			row:  domain.FeedRow{DataPrev: "2026-09-02"},
			want: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "forecastDate wins over later candidates",
			row:  domain.FeedRow{ForecastDate: "2026-09-01", Date: "2026-09-03"},
			want: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "data field as last resort",
			row:  domain.FeedRow{Data: "2026-09-04"},
			want: time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, fallback := Day(tt.row, now)
			assert.False(t, fallback)
			assert.Equal(t, tt.want, day)
		})
	}
}

func TestDay_FallbackToToday(t *testing.T) {
	now := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		row  domain.FeedRow
	}{
		{name: "no date fields at all", row: domain.FeedRow{}},
		{name: "garbage date", row: domain.FeedRow{ForecastDate: "tomorrow"}},
		{name: "prefix matches but month is invalid", row: domain.FeedRow{ForecastDate: "2026-13-40"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, fallback := Day(tt.row, now)
			assert.True(t, fallback)
			assert.Equal(t, today, day)
		})
	}
}

func TestDay_FallbackUsesUTCDate(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2026, 8, 31, 23, 30, 0, 0, loc)

	day, fallback := Day(domain.FeedRow{}, now)
	assert.True(t, fallback)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), day)
}

func TestFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{name: "json number", in: 14.2, want: ptr(14.2)},
		{name: "numeric string", in: "14.2", want: ptr(14.2)},
		{name: "numeric string with spaces", in: " 7.5 ", want: ptr(7.5)},
		{name: "negative string", in: "-2.5", want: ptr(-2.5)},
		{name: "absent", in: nil, want: nil},
		{name: "non-numeric string", in: "n/a", want: nil},
		{name: "boolean", in: true, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Float(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestInt(t *testing.T) {
	assert.Equal(t, 3, *Int(3.0))
	assert.Equal(t, 3, *Int("3"))
	assert.Nil(t, Int(nil))
	assert.Nil(t, Int("cloudy"))
}

func TestStringVal(t *testing.T) {
	assert.Equal(t, "2", *StringVal(2.0))
	assert.Equal(t, "NE", *StringVal("NE"))
	assert.Nil(t, StringVal(nil))
	assert.Nil(t, StringVal(true))
}

func TestLocationID(t *testing.T) {
	id, ok := LocationID(1010500.0)
	assert.True(t, ok)
	assert.Equal(t, int64(1010500), id)

	id, ok = LocationID("1100")
	assert.True(t, ok)
	assert.Equal(t, int64(1100), id)

	_, ok = LocationID(nil)
	assert.False(t, ok)

	_, ok = LocationID("lisboa")
	assert.False(t, ok)

	// A fractional id never matches a catalog entry; refuse to truncate it
	// into one that might.
	_, ok = LocationID(1100.5)
	assert.False(t, ok)
}

func ptr(f float64) *float64 { return &f }
