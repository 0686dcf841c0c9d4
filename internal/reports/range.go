package reports

import (
	"fmt"
	"time"

	"github.com/lattice-erp/lattice/internal/shared"
)

// Granularity selects the date_trunc bucket for a report.
type Granularity string

const (
	GranularityDaily     Granularity = "daily"
	GranularityWeekly    Granularity = "weekly"
	GranularityMonthly   Granularity = "monthly"
	GranularityQuarterly Granularity = "quarterly"
	GranularityYearly    Granularity = "yearly"
)

var errInvalidRange = fmt.Errorf("%w: invalid range filter", shared.ErrValidation)

// ParseGranularity validates the range query parameter. An empty value
// defaults to monthly.
func ParseGranularity(raw string) (Granularity, error) {
	if raw == "" {
		return GranularityMonthly, nil
	}
	g := Granularity(raw)
	switch g {
	case GranularityDaily, GranularityWeekly, GranularityMonthly, GranularityQuarterly, GranularityYearly:
		return g, nil
	}
	return "", errInvalidRange
}

// trunc returns the postgres date_trunc field for the granularity.
func (g Granularity) trunc() string {
	switch g {
	case GranularityDaily:
		return "day"
	case GranularityWeekly:
		return "week"
	case GranularityQuarterly:
		return "quarter"
	case GranularityYearly:
		return "year"
	default:
		return "month"
	}
}

// Window is the resolved reporting interval. End is inclusive for display;
// queries use the half open [Start, End+1ms).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ResolveWindow parses the startDate/endDate query parameters
// ("2006-01-02"). Both must be given together; when absent the window
// covers the last 30 days up to today. Start snaps to midnight and End to
// the last instant of its day.
func ResolveWindow(startDate, endDate string, now time.Time) (Window, error) {
	if startDate == "" || endDate == "" {
		end := endOfDay(now)
		start := startOfDay(now.AddDate(0, 0, -30))
		return Window{Start: start, End: end}, nil
	}
	start, err := time.ParseInLocation("2006-01-02", startDate, now.Location())
	if err != nil {
		return Window{}, fmt.Errorf("%w: invalid startDate", shared.ErrValidation)
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, now.Location())
	if err != nil {
		return Window{}, fmt.Errorf("%w: invalid endDate", shared.ErrValidation)
	}
	return Window{Start: startOfDay(start), End: endOfDay(end)}, nil
}

// queryEnd is the exclusive upper bound used in SQL.
func (w Window) queryEnd() time.Time {
	return w.End.Add(time.Millisecond)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// BucketKey identifies one aggregation bucket. Fields beyond Year are set
// only when the granularity uses them.
type BucketKey struct {
	Year    int `json:"year"`
	Month   int `json:"month,omitempty"`
	Day     int `json:"day,omitempty"`
	Week    int `json:"week,omitempty"`
	Quarter int `json:"quarter,omitempty"`
}

// bucketKey decomposes a truncated bucket start into the key shape for the
// requested granularity.
func bucketKey(g Granularity, t time.Time) BucketKey {
	switch g {
	case GranularityDaily:
		return BucketKey{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
	case GranularityWeekly:
		year, week := t.ISOWeek()
		return BucketKey{Year: year, Week: week}
	case GranularityQuarterly:
		return BucketKey{Year: t.Year(), Quarter: (int(t.Month())-1)/3 + 1}
	case GranularityYearly:
		return BucketKey{Year: t.Year()}
	default:
		return BucketKey{Year: t.Year(), Month: int(t.Month())}
	}
}

// bucketLabel renders the display label for a bucket.
func bucketLabel(g Granularity, key BucketKey) string {
	switch g {
	case GranularityDaily:
		return fmt.Sprintf("%d/%d/%d", key.Day, key.Month, key.Year)
	case GranularityWeekly:
		return fmt.Sprintf("Week %d, %d", key.Week, key.Year)
	case GranularityQuarterly:
		return fmt.Sprintf("Q%d, %d", key.Quarter, key.Year)
	case GranularityYearly:
		return fmt.Sprintf("%d", key.Year)
	default:
		return fmt.Sprintf("%d/%d", key.Month, key.Year)
	}
}
