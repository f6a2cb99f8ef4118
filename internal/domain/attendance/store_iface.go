package attendance

import (
	"context"
	"time"
)

type StoreAPI interface {
	// FindForDay returns the record whose date falls in [dayStart, dayEnd)
	// for the employee, or ErrNotFound.
	FindForDay(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) (*Record, error)
	// InsertOpen creates today's record with an open session. It returns
	// (nil, nil) when another writer created the day's record first.
	InsertOpen(ctx context.Context, employeeID string, day, clockIn time.Time) (*Record, error)
	// Reopen clears clock_out on a closed record, keeping the original
	// clock_in.
	Reopen(ctx context.Context, recordID string) error
	// Restart overwrites the record with a fresh session starting at
	// clockIn.
	Restart(ctx context.Context, recordID string, clockIn time.Time) error
	// Close stamps clock_out and recomputes total hours in the same
	// statement; a no-op when the session is already closed.
	Close(ctx context.Context, recordID string, clockOut time.Time) error

	GetByID(ctx context.Context, recordID string) (*Record, error)
	ListForEmployee(ctx context.Context, employeeID string, filter ListFilter) ([]Record, int, error)
	List(ctx context.Context, filter ListFilter) ([]Record, int, error)
	Create(ctx context.Context, rec Record) (*Record, error)
	Update(ctx context.Context, rec Record) error
	TodayOverview(ctx context.Context, dayStart, dayEnd time.Time) ([]OverviewEntry, error)
	ActiveSessions(ctx context.Context, dayStart, dayEnd time.Time) ([]OverviewEntry, error)
	Stats(ctx context.Context, startDate, endDate *time.Time) (Stats, error)
}
