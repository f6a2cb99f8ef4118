package attendance

import (
	"math"
	"time"
)

// ReopenWindow is the grace period after a clock-out during which a new
// login resumes the closed session instead of starting a fresh one. It
// keeps a dropped connection from fragmenting the reported hours.
const ReopenWindow = 10 * time.Minute

// ComputeTotalHours derives worked hours from a clock-in/clock-out pair,
// rounded to two decimals. Either side missing yields 0, as does a pair
// where clock-out precedes clock-in.
func ComputeTotalHours(clockIn, clockOut *time.Time) float64 {
	if clockIn == nil || clockOut == nil || clockIn.IsZero() || clockOut.IsZero() {
		return 0
	}
	hours := clockOut.Sub(*clockIn).Hours()
	if hours < 0 {
		return 0
	}
	return math.Round(hours*100) / 100
}

// Clock owns the day-boundary arithmetic so that "today" means the same
// thing everywhere, in one configured timezone.
type Clock struct {
	loc *time.Location
}

func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc}
}

func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// DayBounds returns local midnight of the day containing now and the
// exclusive upper bound (the next local midnight).
func (c *Clock) DayBounds(now time.Time) (time.Time, time.Time) {
	local := now.In(c.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
	return day, day.AddDate(0, 0, 1)
}
