package requests

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("request not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const requestColumns = `
    r.id, r.employee_id, u.name, u.email,
    r.subject, r.description, r.category, r.priority, r.status,
    COALESCE(r.admin_response, ''),
    COALESCE(r.resolved_by::text, ''), COALESCE(a.name, ''),
    r.resolved_at, r.created_at, r.updated_at`

const requestJoins = `
    FROM requests r
    JOIN users u ON r.employee_id = u.id
    LEFT JOIN users a ON r.resolved_by = a.id`

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.EmployeeName, &req.EmployeeEmail,
		&req.Subject, &req.Description, &req.Category, &req.Priority, &req.Status,
		&req.AdminResponse, &req.ResolvedBy, &req.ResolvedByName,
		&req.ResolvedAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan request: %w", err)
	}
	return &req, nil
}

func (s *Store) Create(ctx context.Context, req Request) (*Request, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO requests (employee_id, subject, description, category, priority, status)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, req.EmployeeID, req.Subject, req.Description, req.Category, req.Priority, req.Status).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *Store) GetByID(ctx context.Context, requestID string) (*Request, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+requestColumns+requestJoins+`
    WHERE r.id = $1
  `, requestID)
	return scanRequest(row)
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Request, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.EmployeeID != "" {
		where += " AND r.employee_id = " + arg(filter.EmployeeID)
	}
	if filter.Status != "" {
		where += " AND r.status = " + arg(filter.Status)
	}
	if filter.Category != "" {
		where += " AND r.category = " + arg(filter.Category)
	}
	if filter.Priority != "" {
		where += " AND r.priority = " + arg(filter.Priority)
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+requestJoins+" "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	query := `
    SELECT` + requestColumns + requestJoins + `
    ` + where + `
    ORDER BY r.created_at DESC
    LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *req)
	}
	return out, total, rows.Err()
}

func (s *Store) Update(ctx context.Context, req Request) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE requests
    SET status = $2,
        admin_response = $3,
        resolved_by = $4,
        resolved_at = $5,
        updated_at = now()
    WHERE id = $1
  `, req.ID, req.Status, nullIfEmpty(req.AdminResponse), nullIfEmpty(req.ResolvedBy), req.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT status, COUNT(1)
    FROM requests
    GROUP BY status
    ORDER BY status
  `)
	if err != nil {
		return nil, fmt.Errorf("request stats: %w", err)
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan request stats: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
