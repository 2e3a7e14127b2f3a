package scheduler

import "time"

// Window is the span within which one system task per (type, project)
// satisfies a recurring entry. Boundaries are midnights in the configured
// zone, half-open [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// dailyWindow is the calendar day containing now.
func dailyWindow(now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// twiceWeekWindow splits the week at Monday and Thursday midnight: one run
// satisfies Mon-Thu, another Thu-Mon.
func twiceWeekWindow(now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	// Monday=0 .. Sunday=6
	dow := (int(day.Weekday()) + 6) % 7
	if dow <= 2 {
		start := day.AddDate(0, 0, -dow)
		return Window{Start: start, End: start.AddDate(0, 0, 3)}
	}
	start := day.AddDate(0, 0, -(dow - 3))
	return Window{Start: start, End: start.AddDate(0, 0, 4)}
}
