package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"attendly/internal/domain/auth"
	"attendly/internal/platform/config"
)

// Seed ensures the bootstrap admin account exists. Without it a fresh
// deployment has no way to create employees.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}
	return ensureAdminUser(ctx, pool, cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, name, email, password string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE lower(email) = lower($1)", email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (name, email, password_hash, role, department, position)
    VALUES ($1, lower($2), $3, 'admin', 'Management', 'Administrator')
  `, name, email, hash)
	return err
}
