package attendance

import "errors"

var (
	ErrNotFound = errors.New("attendance record not found")
	// ErrDuplicateDay is returned when a manual entry would violate the
	// one-record-per-employee-per-day invariant.
	ErrDuplicateDay = errors.New("attendance record already exists for this date")
	// ErrClockOutBeforeClockIn rejects edits that would persist a
	// negative session.
	ErrClockOutBeforeClockIn = errors.New("clock-out precedes clock-in")
	// ErrConflict is returned when the per-day record could not be
	// settled even after re-reading; callers may retry the request.
	ErrConflict = errors.New("attendance record contention")
)
