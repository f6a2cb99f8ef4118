package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists attendance records. Every statement that writes the
// clock pair also recomputes total_hours, so a record with both
// timestamps can never carry stale hours. Session transitions are single
// conditional updates; the unique (employee_id, date) index is the sole
// arbiter of the one-record-per-day invariant.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const recordColumns = `
    a.id, a.employee_id, u.name, u.email,
    a.date, a.clock_in, a.clock_out, a.total_hours, a.status,
    COALESCE(a.notes, ''), a.is_manual_entry,
    COALESCE(a.edited_by::text, ''), COALESCE(e.name, ''),
    a.created_at, a.updated_at`

const recordJoins = `
    FROM attendance a
    JOIN users u ON a.employee_id = u.id
    LEFT JOIN users e ON a.edited_by = e.id`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.EmployeeName, &rec.EmployeeEmail,
		&rec.Date, &rec.ClockIn, &rec.ClockOut, &rec.TotalHours, &rec.Status,
		&rec.Notes, &rec.IsManualEntry, &rec.EditedBy, &rec.EditedByName,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan attendance record: %w", err)
	}
	return &rec, nil
}

func (s *Store) FindForDay(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) (*Record, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+recordColumns+recordJoins+`
    WHERE a.employee_id = $1 AND a.date >= $2 AND a.date < $3
  `, employeeID, dayStart, dayEnd)
	return scanRecord(row)
}

func (s *Store) GetByID(ctx context.Context, recordID string) (*Record, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+recordColumns+recordJoins+`
    WHERE a.id = $1
  `, recordID)
	return scanRecord(row)
}

func (s *Store) InsertOpen(ctx context.Context, employeeID string, day, clockIn time.Time) (*Record, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance (employee_id, date, clock_in, status)
    VALUES ($1, $2, $3, 'present')
    ON CONFLICT (employee_id, date) DO NOTHING
    RETURNING id
  `, employeeID, day, clockIn).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race against a concurrent first login.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("insert attendance record: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *Store) Reopen(ctx context.Context, recordID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE attendance
    SET clock_out = NULL, total_hours = 0, updated_at = now()
    WHERE id = $1
  `, recordID)
	if err != nil {
		return fmt.Errorf("reopen attendance record: %w", err)
	}
	return nil
}

func (s *Store) Restart(ctx context.Context, recordID string, clockIn time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE attendance
    SET clock_in = $2, clock_out = NULL, total_hours = 0, updated_at = now()
    WHERE id = $1
  `, recordID, clockIn)
	if err != nil {
		return fmt.Errorf("restart attendance record: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context, recordID string, clockOut time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE attendance
    SET clock_out = $2,
        total_hours = ROUND(GREATEST(EXTRACT(EPOCH FROM ($2::timestamptz - clock_in)) / 3600.0, 0)::numeric, 2),
        updated_at = now()
    WHERE id = $1 AND clock_out IS NULL
  `, recordID, clockOut)
	if err != nil {
		return fmt.Errorf("close attendance record: %w", err)
	}
	return nil
}

func (s *Store) ListForEmployee(ctx context.Context, employeeID string, filter ListFilter) ([]Record, int, error) {
	filter.EmployeeID = employeeID
	filter.Search = ""
	return s.List(ctx, filter)
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.EmployeeID != "" {
		where += " AND a.employee_id = " + arg(filter.EmployeeID)
	}
	if filter.StartDate != nil {
		where += " AND a.date >= " + arg(*filter.StartDate)
	}
	if filter.EndDate != nil {
		where += " AND a.date <= " + arg(*filter.EndDate)
	}
	if filter.Status != "" {
		where += " AND a.status = " + arg(filter.Status)
	}
	if filter.Search != "" {
		pattern := arg("%" + filter.Search + "%")
		where += " AND (u.name ILIKE " + pattern + " OR u.email ILIKE " + pattern + ")"
	}

	var total int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)`+recordJoins+`
    `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count attendance records: %w", err)
	}

	query := `
    SELECT` + recordColumns + recordJoins + `
    ` + where + `
    ORDER BY a.date DESC, a.clock_in DESC
    LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rec)
	}
	return out, total, rows.Err()
}

func (s *Store) Create(ctx context.Context, rec Record) (*Record, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance (employee_id, date, clock_in, clock_out, total_hours, status, notes, is_manual_entry, edited_by)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    ON CONFLICT (employee_id, date) DO NOTHING
    RETURNING id
  `, rec.EmployeeID, rec.Date, rec.ClockIn, rec.ClockOut, rec.TotalHours,
		rec.Status, rec.Notes, rec.IsManualEntry, nullIfEmpty(rec.EditedBy)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDuplicateDay
	}
	if err != nil {
		return nil, fmt.Errorf("create attendance record: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *Store) Update(ctx context.Context, rec Record) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE attendance
    SET clock_in = $2,
        clock_out = $3,
        total_hours = $4,
        status = $5,
        notes = $6,
        is_manual_entry = $7,
        edited_by = $8,
        updated_at = now()
    WHERE id = $1
  `, rec.ID, rec.ClockIn, rec.ClockOut, rec.TotalHours, rec.Status, rec.Notes,
		rec.IsManualEntry, nullIfEmpty(rec.EditedBy))
	if err != nil {
		return fmt.Errorf("update attendance record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) TodayOverview(ctx context.Context, dayStart, dayEnd time.Time) ([]OverviewEntry, error) {
	return s.overview(ctx, dayStart, dayEnd, false)
}

func (s *Store) ActiveSessions(ctx context.Context, dayStart, dayEnd time.Time) ([]OverviewEntry, error) {
	return s.overview(ctx, dayStart, dayEnd, true)
}

func (s *Store) overview(ctx context.Context, dayStart, dayEnd time.Time, openOnly bool) ([]OverviewEntry, error) {
	condition := ""
	if openOnly {
		condition = " AND a.clock_out IS NULL"
	}
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.name, u.email, COALESCE(u.department, ''), COALESCE(u.position, ''),
           a.clock_in, a.clock_out, COALESCE(a.total_hours, 0), COALESCE(a.status, 'absent')
    FROM users u
    LEFT JOIN attendance a
      ON a.employee_id = u.id AND a.date >= $1 AND a.date < $2`+condition+`
    WHERE u.role = 'employee' AND u.is_active
    ORDER BY u.name
  `, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("attendance overview: %w", err)
	}
	defer rows.Close()

	var out []OverviewEntry
	for rows.Next() {
		var entry OverviewEntry
		var clockIn, clockOut *time.Time
		if err := rows.Scan(
			&entry.Employee.ID, &entry.Employee.Name, &entry.Employee.Email,
			&entry.Employee.Department, &entry.Employee.Position,
			&clockIn, &clockOut, &entry.Attendance.TotalHours, &entry.Attendance.Status,
		); err != nil {
			return nil, fmt.Errorf("scan attendance overview: %w", err)
		}
		entry.Attendance.ClockIn = clockIn
		entry.Attendance.ClockOut = clockOut
		entry.Attendance.IsLoggedIn = clockIn != nil && clockOut == nil
		if clockIn == nil {
			entry.Attendance.Status = StatusAbsent
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) Stats(ctx context.Context, startDate, endDate *time.Time) (Stats, error) {
	where := "WHERE 1=1"
	args := []any{}
	if startDate != nil {
		args = append(args, *startDate)
		where += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if endDate != nil {
		args = append(args, *endDate)
		where += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	var stats Stats
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE status = 'present'),
           COUNT(1) FILTER (WHERE status = 'absent'),
           COUNT(1) FILTER (WHERE status = 'late'),
           COUNT(1) FILTER (WHERE status = 'half-day')
    FROM attendance
    `+where, args...).Scan(
		&stats.TotalRecords, &stats.PresentRecords, &stats.AbsentRecords,
		&stats.LateRecords, &stats.HalfDayRecords,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("attendance stats: %w", err)
	}

	err = s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM users WHERE role = 'employee' AND is_active
  `).Scan(&stats.TotalEmployees)
	if err != nil {
		return Stats{}, fmt.Errorf("attendance stats employees: %w", err)
	}

	if stats.TotalEmployees > 0 {
		stats.AttendanceRate = int(float64(stats.PresentRecords)/float64(stats.TotalEmployees)*100 + 0.5)
	}
	return stats, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
