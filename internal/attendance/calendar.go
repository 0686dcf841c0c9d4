package attendance

import "time"

// Company holidays, kept in calendar order. Weekends are excluded from
// working days independently of this list.
var holidays = map[string]struct{}{
	"2025-01-01": {},
	"2025-01-26": {},
	"2025-03-08": {},
	"2025-08-15": {},
	"2025-10-02": {},
	"2025-12-25": {},
}

// IsWorkingDay reports whether the given day counts toward salary: not a
// weekend and not a company holiday.
func IsWorkingDay(day time.Time) bool {
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := holidays[day.Format("2006-01-02")]
	return !holiday
}

// CountWorkingDays counts working days in the inclusive range [start, end].
func CountWorkingDays(start, end time.Time) int {
	start = truncateDay(start)
	end = truncateDay(end)
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d) {
			count++
		}
	}
	return count
}

// endOfMonth returns the last day of the month containing t.
func endOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
