package attendance

import (
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestComputeTotalHours(t *testing.T) {
	clockIn := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		clockIn  *time.Time
		clockOut *time.Time
		want     float64
	}{
		{
			name:     "full day",
			clockIn:  &clockIn,
			clockOut: timePtr(time.Date(2024, 1, 1, 17, 30, 0, 0, time.UTC)),
			want:     8.5,
		},
		{
			name:     "rounds to two decimals",
			clockIn:  &clockIn,
			clockOut: timePtr(time.Date(2024, 1, 1, 17, 10, 0, 0, time.UTC)),
			want:     8.17,
		},
		{
			name:    "open session",
			clockIn: &clockIn,
			want:    0,
		},
		{
			name:     "missing clock in",
			clockOut: timePtr(time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)),
			want:     0,
		},
		{
			name: "both missing",
			want: 0,
		},
		{
			name:     "clock out before clock in clamps to zero",
			clockIn:  &clockIn,
			clockOut: timePtr(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)),
			want:     0,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotalHours(tc.clockIn, tc.clockOut)
			if got != tc.want {
				t.Fatalf("expected %v hours, got %v", tc.want, got)
			}
		})
	}
}

func TestDayBounds(t *testing.T) {
	clock := NewClock(time.UTC)
	now := time.Date(2024, 1, 1, 15, 42, 7, 0, time.UTC)

	start, end := clock.DayBounds(now)
	if !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day start: %v", start)
	}
	if !end.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day end: %v", end)
	}
}

func TestDayBoundsHonorsTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	clock := NewClock(loc)

	// 02:30 on Jan 2 in UTC+5 is still Jan 1 in UTC.
	now := time.Date(2024, 1, 1, 21, 30, 0, 0, time.UTC)

	start, end := clock.DayBounds(now)
	if !start.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected day start: %v", start)
	}
	if !end.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected day end: %v", end)
	}
}

func TestNewClockDefaultsToUTC(t *testing.T) {
	clock := NewClock(nil)
	if clock.Location() != time.UTC {
		t.Fatalf("expected UTC fallback, got %v", clock.Location())
	}
}
