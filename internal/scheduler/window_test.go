package scheduler

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d, h int, loc *time.Location) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, loc)
}

func TestDailyWindow(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	tests := []struct {
		name      string
		now       time.Time
		loc       *time.Location
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid day utc",
			now:       date(2025, time.March, 10, 15, time.UTC),
			loc:       time.UTC,
			wantStart: date(2025, time.March, 10, 0, time.UTC),
			wantEnd:   date(2025, time.March, 11, 0, time.UTC),
		},
		{
			name:      "just before midnight utc",
			now:       time.Date(2025, time.March, 10, 23, 59, 59, 0, time.UTC),
			loc:       time.UTC,
			wantStart: date(2025, time.March, 10, 0, time.UTC),
			wantEnd:   date(2025, time.March, 11, 0, time.UTC),
		},
		{
			// 01:00 UTC is still the previous calendar day in Sao Paulo
			name:      "timezone shifts the day",
			now:       date(2025, time.March, 10, 1, time.UTC),
			loc:       saoPaulo,
			wantStart: date(2025, time.March, 9, 0, saoPaulo),
			wantEnd:   date(2025, time.March, 10, 0, saoPaulo),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := dailyWindow(tc.now, tc.loc)
			if !w.Start.Equal(tc.wantStart) || !w.End.Equal(tc.wantEnd) {
				t.Errorf("dailyWindow(%v) = [%v, %v), want [%v, %v)",
					tc.now, w.Start, w.End, tc.wantStart, tc.wantEnd)
			}
		})
	}
}

func TestTwiceWeekWindow(t *testing.T) {
	// 2025-03-10 is a Monday
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "monday is in the first window",
			now:       date(2025, time.March, 10, 9, time.UTC),
			wantStart: date(2025, time.March, 10, 0, time.UTC),
			wantEnd:   date(2025, time.March, 13, 0, time.UTC),
		},
		{
			name:      "wednesday is still the first window",
			now:       date(2025, time.March, 12, 23, time.UTC),
			wantStart: date(2025, time.March, 10, 0, time.UTC),
			wantEnd:   date(2025, time.March, 13, 0, time.UTC),
		},
		{
			name:      "thursday starts the second window",
			now:       date(2025, time.March, 13, 0, time.UTC),
			wantStart: date(2025, time.March, 13, 0, time.UTC),
			wantEnd:   date(2025, time.March, 17, 0, time.UTC),
		},
		{
			name:      "sunday is still the second window",
			now:       date(2025, time.March, 16, 20, time.UTC),
			wantStart: date(2025, time.March, 13, 0, time.UTC),
			wantEnd:   date(2025, time.March, 17, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := twiceWeekWindow(tc.now, time.UTC)
			if !w.Start.Equal(tc.wantStart) || !w.End.Equal(tc.wantEnd) {
				t.Errorf("twiceWeekWindow(%v) = [%v, %v), want [%v, %v)",
					tc.now, w.Start, w.End, tc.wantStart, tc.wantEnd)
			}
		})
	}
}
