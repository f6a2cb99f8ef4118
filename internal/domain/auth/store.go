package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type AuthUser struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Department   string
	Position     string
	IsActive     bool
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, name, email, password_hash, role,
           COALESCE(department, ''), COALESCE(position, ''), is_active
    FROM users
    WHERE lower(email) = lower($1)
  `, email)
	return scanAuthUser(row)
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (AuthUser, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, name, email, password_hash, role,
           COALESCE(department, ''), COALESCE(position, ''), is_active
    FROM users
    WHERE id = $1
  `, userID)
	return scanAuthUser(row)
}

func scanAuthUser(row pgx.Row) (AuthUser, error) {
	var user AuthUser
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.Department, &user.Position, &user.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, ErrUserNotFound
	}
	if err != nil {
		return AuthUser{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}
