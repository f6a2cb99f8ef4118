package attendance

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Service decides, at each login, whether to continue an existing workday
// session, reopen a recently closed one, or start over. All shared state
// lives in the store; the service only performs read-decide-write cycles.
type Service struct {
	store StoreAPI
	clock *Clock
}

func NewService(store StoreAPI, clock *Clock) *Service {
	return &Service{store: store, clock: clock}
}

func (s *Service) Clock() *Clock {
	return s.clock
}

// ReconcileLogin settles today's attendance record for the employee.
//
// Decision table, first match wins:
//   - no record for today: create one with clockIn=now, session open.
//   - record open: keep it, the original clockIn stays the session start.
//   - record closed, gap since clockOut within ReopenWindow: reopen the
//     same record, continuation.
//   - record closed, gap beyond the window: overwrite clockIn/clockOut on
//     the same record (one record per day holds).
//
// A lost insert race against a concurrent first login is re-read and
// re-applied once rather than surfaced.
func (s *Service) ReconcileLogin(ctx context.Context, employeeID string, now time.Time) (Session, error) {
	dayStart, dayEnd := s.clock.DayBounds(now)

	for attempt := 0; attempt < 2; attempt++ {
		rec, err := s.store.FindForDay(ctx, employeeID, dayStart, dayEnd)
		if errors.Is(err, ErrNotFound) {
			created, err := s.store.InsertOpen(ctx, employeeID, dayStart, now)
			if err != nil {
				return Session{}, err
			}
			if created == nil {
				// Another login created today's record first.
				continue
			}
			return Session{
				ClockIn:          created.ClockIn,
				IsLoggedIn:       true,
				SessionStartTime: created.ClockIn,
			}, nil
		}
		if err != nil {
			return Session{}, err
		}

		if rec.ClockOut == nil {
			// Session never closed; clockIn remains the effective start.
			return Session{
				ClockIn:          rec.ClockIn,
				IsLoggedIn:       true,
				SessionStartTime: rec.ClockIn,
			}, nil
		}

		if now.Sub(*rec.ClockOut) <= ReopenWindow {
			if err := s.store.Reopen(ctx, rec.ID); err != nil {
				return Session{}, err
			}
			return Session{
				ClockIn:          rec.ClockIn,
				IsLoggedIn:       true,
				SessionStartTime: rec.ClockIn,
				IsContinuation:   true,
			}, nil
		}

		if err := s.store.Restart(ctx, rec.ID, now); err != nil {
			return Session{}, err
		}
		return Session{
			ClockIn:          now,
			IsLoggedIn:       true,
			SessionStartTime: now,
		}, nil
	}

	return Session{}, ErrConflict
}

// ReconcileLogout closes today's open session. Logging out with no open
// session is a no-op, not an error.
func (s *Service) ReconcileLogout(ctx context.Context, employeeID string, now time.Time) error {
	dayStart, dayEnd := s.clock.DayBounds(now)

	rec, err := s.store.FindForDay(ctx, employeeID, dayStart, dayEnd)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rec.ClockIn.IsZero() || rec.ClockOut != nil {
		return nil
	}
	return s.store.Close(ctx, rec.ID, now)
}

// Today returns the employee's record for the current day, or ErrNotFound.
func (s *Service) Today(ctx context.Context, employeeID string, now time.Time) (*Record, error) {
	dayStart, dayEnd := s.clock.DayBounds(now)
	return s.store.FindForDay(ctx, employeeID, dayStart, dayEnd)
}

func (s *Service) Get(ctx context.Context, recordID string) (*Record, error) {
	return s.store.GetByID(ctx, recordID)
}

func (s *Service) ListForEmployee(ctx context.Context, employeeID string, filter ListFilter) ([]Record, int, error) {
	return s.store.ListForEmployee(ctx, employeeID, filter)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	return s.store.List(ctx, filter)
}

func (s *Service) TodayOverview(ctx context.Context, now time.Time) ([]OverviewEntry, error) {
	dayStart, dayEnd := s.clock.DayBounds(now)
	return s.store.TodayOverview(ctx, dayStart, dayEnd)
}

func (s *Service) ActiveSessions(ctx context.Context, now time.Time) ([]OverviewEntry, error) {
	dayStart, dayEnd := s.clock.DayBounds(now)
	return s.store.ActiveSessions(ctx, dayStart, dayEnd)
}

func (s *Service) Stats(ctx context.Context, startDate, endDate *time.Time) (Stats, error) {
	return s.store.Stats(ctx, startDate, endDate)
}

// CreateManual records an administrator-entered day. The date is truncated
// to its local midnight and total hours are derived before the write.
func (s *Service) CreateManual(ctx context.Context, rec Record, editorID string) (*Record, error) {
	if rec.ClockOut != nil && rec.ClockOut.Before(rec.ClockIn) {
		return nil, ErrClockOutBeforeClockIn
	}
	day, _ := s.clock.DayBounds(rec.Date)
	rec.Date = day
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	if !validStatus(rec.Status) {
		return nil, errors.New("invalid attendance status")
	}
	rec.IsManualEntry = true
	rec.EditedBy = editorID
	rec.TotalHours = ComputeTotalHours(&rec.ClockIn, rec.ClockOut)
	return s.store.Create(ctx, rec)
}

// UpdateManual applies an administrator edit to an existing record.
// Zero-value fields keep their stored value; total hours are always
// recomputed from the resulting pair.
func (s *Service) UpdateManual(ctx context.Context, recordID string, clockIn, clockOut *time.Time, status, notes *string, editorID string) (*Record, error) {
	rec, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if clockIn != nil {
		rec.ClockIn = *clockIn
	}
	if clockOut != nil {
		rec.ClockOut = clockOut
	}
	if status != nil {
		if !validStatus(*status) {
			return nil, errors.New("invalid attendance status")
		}
		rec.Status = *status
	}
	if notes != nil {
		rec.Notes = strings.TrimSpace(*notes)
	}
	if rec.ClockOut != nil && rec.ClockOut.Before(rec.ClockIn) {
		return nil, ErrClockOutBeforeClockIn
	}

	rec.IsManualEntry = true
	rec.EditedBy = editorID
	rec.TotalHours = ComputeTotalHours(&rec.ClockIn, rec.ClockOut)

	if err := s.store.Update(ctx, *rec); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, recordID)
}

func validStatus(status string) bool {
	switch status {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay:
		return true
	}
	return false
}
