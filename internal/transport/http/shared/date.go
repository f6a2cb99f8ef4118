package shared

import "time"

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}

// ParseDateRange parses optional start/end query values; nil means
// unbounded on that side.
func ParseDateRange(startValue, endValue string) (*time.Time, *time.Time, error) {
	var startDate, endDate *time.Time
	if startValue != "" {
		parsed, err := ParseDate(startValue)
		if err != nil {
			return nil, nil, err
		}
		startDate = &parsed
	}
	if endValue != "" {
		parsed, err := ParseDate(endValue)
		if err != nil {
			return nil, nil, err
		}
		endDate = &parsed
	}
	return startDate, endDate, nil
}
