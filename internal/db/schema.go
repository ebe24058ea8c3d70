package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE SCHEMA IF NOT EXISTS unibase`,
	`CREATE TABLE IF NOT EXISTS unibase.saves (
		save_key TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		users NUMERIC NOT NULL DEFAULT 0,
		fund NUMERIC NOT NULL DEFAULT 0,
		prestige_level INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
