package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeStore struct {
	records map[string]*Record
	seq     int

	// insertRace makes the next InsertOpen behave as if a concurrent
	// first login won the per-day insert: the rival's record appears and
	// the caller gets no row back.
	insertRace bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*Record{}}
}

func (f *fakeStore) add(employeeID string, day, clockIn time.Time) *Record {
	f.seq++
	rec := &Record{
		ID:         fmt.Sprintf("rec-%d", f.seq),
		EmployeeID: employeeID,
		Date:       day,
		ClockIn:    clockIn,
		Status:     StatusPresent,
	}
	f.records[rec.ID] = rec
	return rec
}

func (f *fakeStore) FindForDay(_ context.Context, employeeID string, dayStart, dayEnd time.Time) (*Record, error) {
	for _, rec := range f.records {
		if rec.EmployeeID == employeeID && !rec.Date.Before(dayStart) && rec.Date.Before(dayEnd) {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) InsertOpen(_ context.Context, employeeID string, day, clockIn time.Time) (*Record, error) {
	if f.insertRace {
		f.insertRace = false
		f.add(employeeID, day, clockIn.Add(-time.Minute))
		return nil, nil
	}
	rec := f.add(employeeID, day, clockIn)
	clone := *rec
	return &clone, nil
}

func (f *fakeStore) Reopen(_ context.Context, recordID string) error {
	rec, ok := f.records[recordID]
	if !ok {
		return ErrNotFound
	}
	rec.ClockOut = nil
	rec.TotalHours = 0
	return nil
}

func (f *fakeStore) Restart(_ context.Context, recordID string, clockIn time.Time) error {
	rec, ok := f.records[recordID]
	if !ok {
		return ErrNotFound
	}
	rec.ClockIn = clockIn
	rec.ClockOut = nil
	rec.TotalHours = 0
	return nil
}

func (f *fakeStore) Close(_ context.Context, recordID string, clockOut time.Time) error {
	rec, ok := f.records[recordID]
	if !ok {
		return ErrNotFound
	}
	if rec.ClockOut != nil {
		return nil
	}
	out := clockOut
	rec.ClockOut = &out
	rec.TotalHours = ComputeTotalHours(&rec.ClockIn, rec.ClockOut)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, recordID string) (*Record, error) {
	rec, ok := f.records[recordID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (f *fakeStore) ListForEmployee(_ context.Context, _ string, _ ListFilter) ([]Record, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) List(_ context.Context, _ ListFilter) ([]Record, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) Create(_ context.Context, rec Record) (*Record, error) {
	for _, existing := range f.records {
		if existing.EmployeeID == rec.EmployeeID && existing.Date.Equal(rec.Date) {
			return nil, ErrDuplicateDay
		}
	}
	f.seq++
	rec.ID = fmt.Sprintf("rec-%d", f.seq)
	stored := rec
	f.records[rec.ID] = &stored
	clone := rec
	return &clone, nil
}

func (f *fakeStore) Update(_ context.Context, rec Record) error {
	if _, ok := f.records[rec.ID]; !ok {
		return ErrNotFound
	}
	stored := rec
	f.records[rec.ID] = &stored
	return nil
}

func (f *fakeStore) TodayOverview(_ context.Context, _, _ time.Time) ([]OverviewEntry, error) {
	return nil, nil
}

func (f *fakeStore) ActiveSessions(_ context.Context, _, _ time.Time) ([]OverviewEntry, error) {
	return nil, nil
}

func (f *fakeStore) Stats(_ context.Context, _, _ *time.Time) (Stats, error) {
	return Stats{}, nil
}

func (f *fakeStore) only(t *testing.T) *Record {
	t.Helper()
	if len(f.records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(f.records))
	}
	for _, rec := range f.records {
		return rec
	}
	return nil
}

func newTestService(store StoreAPI) *Service {
	return NewService(store, NewClock(time.UTC))
}

func TestReconcileLoginFirstOfDay(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	session, err := svc.ReconcileLogin(context.Background(), "emp-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !session.ClockIn.Equal(now) {
		t.Fatalf("expected clockIn %v, got %v", now, session.ClockIn)
	}
	if !session.IsLoggedIn || session.IsContinuation {
		t.Fatalf("expected fresh open session, got %+v", session)
	}

	rec := store.only(t)
	if !rec.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected midnight-truncated date, got %v", rec.Date)
	}
	if rec.ClockOut != nil {
		t.Fatalf("expected open session, got clockOut %v", rec.ClockOut)
	}
}

func TestReconcileLoginIdempotentWhileOpen(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	first := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	if _, err := svc.ReconcileLogin(context.Background(), "emp-1", first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session, err := svc.ReconcileLogin(context.Background(), "emp-1", first.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !session.ClockIn.Equal(first) {
		t.Fatalf("expected original clockIn %v, got %v", first, session.ClockIn)
	}
	if !session.IsLoggedIn {
		t.Fatal("expected session to remain open")
	}
	if session.IsContinuation {
		t.Fatal("open session login must not report continuation")
	}
	store.only(t)
}

func TestReconcileLoginReopensWithinWindow(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	clockIn := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	clockOut := time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)

	if _, err := svc.ReconcileLogin(context.Background(), "emp-1", clockIn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.ReconcileLogout(context.Background(), "emp-1", clockOut); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	originalID := store.only(t).ID

	session, err := svc.ReconcileLogin(context.Background(), "emp-1", clockOut.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !session.IsContinuation {
		t.Fatal("expected continuation within reopen window")
	}
	if !session.ClockIn.Equal(clockIn) {
		t.Fatalf("expected original clockIn preserved, got %v", session.ClockIn)
	}

	rec := store.only(t)
	if rec.ID != originalID {
		t.Fatalf("expected same record %s, got %s", originalID, rec.ID)
	}
	if rec.ClockOut != nil {
		t.Fatal("expected clockOut cleared on reopen")
	}
}

func TestReconcileLoginRestartsBeyondWindow(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	clockIn := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	clockOut := time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)
	relogin := clockOut.Add(15 * time.Minute)

	if _, err := svc.ReconcileLogin(context.Background(), "emp-1", clockIn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.ReconcileLogout(context.Background(), "emp-1", clockOut); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	originalID := store.only(t).ID

	session, err := svc.ReconcileLogin(context.Background(), "emp-1", relogin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.IsContinuation {
		t.Fatal("expected fresh session beyond reopen window")
	}
	if !session.ClockIn.Equal(relogin) {
		t.Fatalf("expected clockIn reset to %v, got %v", relogin, session.ClockIn)
	}

	// The per-day invariant holds: the existing record was overwritten.
	rec := store.only(t)
	if rec.ID != originalID {
		t.Fatalf("expected record %s reused, got %s", originalID, rec.ID)
	}
	if !rec.ClockIn.Equal(relogin) || rec.ClockOut != nil {
		t.Fatalf("expected overwritten open session, got %+v", rec)
	}
}

func TestReconcileLogoutIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	now := time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)

	// No record at all.
	if err := svc.ReconcileLogout(context.Background(), "emp-1", now); err != nil {
		t.Fatalf("logout without a session must be a no-op, got %v", err)
	}
	if len(store.records) != 0 {
		t.Fatalf("logout must not create records, got %d", len(store.records))
	}

	// Already closed.
	if _, err := svc.ReconcileLogin(context.Background(), "emp-1", now.Add(-8*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.ReconcileLogout(context.Background(), "emp-1", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	closedAt := *store.only(t).ClockOut

	if err := svc.ReconcileLogout(context.Background(), "emp-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("second logout must be a no-op, got %v", err)
	}
	if !store.only(t).ClockOut.Equal(closedAt) {
		t.Fatalf("second logout must not move clockOut, got %v", store.only(t).ClockOut)
	}
}

func TestReconcileLoginRetriesLostInsertRace(t *testing.T) {
	store := newFakeStore()
	store.insertRace = true
	svc := newTestService(store)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	session, err := svc.ReconcileLogin(context.Background(), "emp-1", now)
	if err != nil {
		t.Fatalf("expected race to be absorbed, got %v", err)
	}

	// The rival's record survives; the retry lands on its open session.
	rec := store.only(t)
	if !session.ClockIn.Equal(rec.ClockIn) {
		t.Fatalf("expected rival clockIn %v, got %v", rec.ClockIn, session.ClockIn)
	}
	if !session.IsLoggedIn || session.IsContinuation {
		t.Fatalf("unexpected session after race: %+v", session)
	}
}

func TestEndToEndWorkday(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	login := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	session, err := svc.ReconcileLogin(ctx, "emp-1", login)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !session.IsLoggedIn {
		t.Fatal("expected open session after first login")
	}

	if err := svc.ReconcileLogout(ctx, "emp-1", login.Add(8*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.only(t).TotalHours; got != 8.0 {
		t.Fatalf("expected 8.0 total hours, got %v", got)
	}

	session, err = svc.ReconcileLogin(ctx, "emp-1", login.Add(8*time.Hour+5*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !session.IsContinuation {
		t.Fatal("expected continuation five minutes after logout")
	}
	if !session.ClockIn.Equal(login) {
		t.Fatalf("expected original 09:00 clockIn, got %v", session.ClockIn)
	}

	// The reopen gap is not deducted: total hours stay wall-clock.
	if err := svc.ReconcileLogout(ctx, "emp-1", login.Add(9*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.only(t).TotalHours; got != 9.0 {
		t.Fatalf("expected 9.0 total hours after reopen, got %v", got)
	}
}

func TestCreateManualRejectsNegativeSession(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	clockIn := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	clockOut := clockIn.Add(-time.Hour)
	_, err := svc.CreateManual(context.Background(), Record{
		EmployeeID: "emp-1",
		Date:       clockIn,
		ClockIn:    clockIn,
		ClockOut:   &clockOut,
	}, "admin-1")
	if !errors.Is(err, ErrClockOutBeforeClockIn) {
		t.Fatalf("expected ErrClockOutBeforeClockIn, got %v", err)
	}
}

func TestCreateManualDerivesHoursAndFlags(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	clockIn := time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC)
	clockOut := time.Date(2024, 1, 1, 17, 45, 0, 0, time.UTC)
	rec, err := svc.CreateManual(context.Background(), Record{
		EmployeeID: "emp-1",
		Date:       clockIn,
		ClockIn:    clockIn,
		ClockOut:   &clockOut,
	}, "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.TotalHours != 8.5 {
		t.Fatalf("expected 8.5 hours, got %v", rec.TotalHours)
	}
	if !rec.IsManualEntry || rec.EditedBy != "admin-1" {
		t.Fatalf("expected manual-entry attribution, got %+v", rec)
	}
	if !rec.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected midnight-truncated date, got %v", rec.Date)
	}

	_, err = svc.CreateManual(context.Background(), Record{
		EmployeeID: "emp-1",
		Date:       clockIn,
		ClockIn:    clockIn,
	}, "admin-1")
	if !errors.Is(err, ErrDuplicateDay) {
		t.Fatalf("expected ErrDuplicateDay for second record, got %v", err)
	}
}

func TestUpdateManualRecomputesHours(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	clockIn := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	if _, err := svc.ReconcileLogin(ctx, "emp-1", clockIn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := store.only(t)

	newOut := clockIn.Add(7*time.Hour + 30*time.Minute)
	updated, err := svc.UpdateManual(ctx, rec.ID, nil, &newOut, nil, nil, "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.TotalHours != 7.5 {
		t.Fatalf("expected 7.5 hours, got %v", updated.TotalHours)
	}
	if !updated.IsManualEntry || updated.EditedBy != "admin-1" {
		t.Fatalf("expected manual edit attribution, got %+v", updated)
	}

	badOut := clockIn.Add(-time.Minute)
	if _, err := svc.UpdateManual(ctx, rec.ID, nil, &badOut, nil, nil, "admin-1"); !errors.Is(err, ErrClockOutBeforeClockIn) {
		t.Fatalf("expected ErrClockOutBeforeClockIn, got %v", err)
	}
}
