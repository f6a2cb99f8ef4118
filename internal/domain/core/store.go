package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("user with this email already exists")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userColumns = `
    id, name, email, role,
    COALESCE(department, ''), COALESCE(position, ''),
    is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Role,
		&user.Department, &user.Position,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context, filter UserFilter) ([]User, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		pattern := arg("%" + filter.Search + "%")
		where += " AND (name ILIKE " + pattern + " OR email ILIKE " + pattern + ")"
	}
	if filter.Role != "" {
		where += " AND role = " + arg(filter.Role)
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `
    SELECT` + userColumns + `
    FROM users
    ` + where + `
    ORDER BY created_at DESC
    LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *user)
	}
	return out, total, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, userID string) (*User, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+userColumns+`
    FROM users
    WHERE id = $1
  `, userID)
	return scanUser(row)
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM users WHERE lower(email) = lower($1)
  `, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash, role, department, position string) (*User, error) {
	exists, err := s.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO users (name, email, password_hash, role, department, position)
    VALUES ($1, lower($2), $3, $4, $5, $6)
    RETURNING id
  `, name, email, passwordHash, role, department, position).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.GetUser(ctx, id)
}

func (s *Store) UpdateUser(ctx context.Context, userID string, update UserUpdate) (*User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Email != nil && *update.Email != user.Email {
		exists, err := s.EmailExists(ctx, *update.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailExists
		}
		user.Email = *update.Email
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Department != nil {
		user.Department = *update.Department
	}
	if update.Position != nil {
		user.Position = *update.Position
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}

	cmd, err := s.DB.Exec(ctx, `
    UPDATE users
    SET name = $2, email = lower($3), department = $4, position = $5,
        is_active = $6, updated_at = now()
    WHERE id = $1
  `, userID, user.Name, user.Email, user.Department, user.Position, user.IsActive)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, userID)
}
