// Package normalize turns the provider's loosely typed feed fields into
// values the sync engine can store. All coercions are null-preserving: a
// present-but-unusable value becomes nil instead of failing the row.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"weather_syncer/internal/domain"
)

var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Day extracts the calendar day of a feed row as midnight UTC. Candidate
// fields are tried in order; the first one matching a YYYY-MM-DD prefix
// wins and is truncated to the day. When no field matches, the row falls
// back to today's UTC date and the second return value reports that, so
// the caller can decide how loudly to complain. The fallback keeps a
// single malformed row from aborting a whole pass, at the cost of
// possibly filing the forecast under the wrong day.
func Day(row domain.FeedRow, now time.Time) (time.Time, bool) {
	for _, raw := range row.DateCandidates() {
		if !datePrefix.MatchString(raw) {
			continue
		}
		day, err := time.Parse("2006-01-02", raw[:10])
		if err != nil {
			continue
		}
		return day, false
	}

	utc := now.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC), true
}

// Float coerces a raw feed value to a float. Absent or non-numeric
// values come back nil.
func Float(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// Int coerces a raw feed value to an int, via Float so that "3" and 3.0
// both resolve.
func Int(v any) *int {
	f := Float(v)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

// StringVal renders a raw feed value as a string. Numbers are formatted
// without a trailing fraction, so a wind class served as 2 becomes "2".
func StringVal(v any) *string {
	switch t := v.(type) {
	case string:
		return &t
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	default:
		return nil
	}
}

// LocationID resolves the provider's location field to a catalog id.
// The second return value is false when the field is missing, not
// numeric, or not a whole number.
func LocationID(v any) (int64, bool) {
	f := Float(v)
	if f == nil {
		return 0, false
	}
	if *f != math.Trunc(*f) {
		return 0, false
	}
	return int64(*f), true
}
