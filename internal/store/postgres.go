package store

import (
	"context"
	"errors"
	"fmt"

	"unibase/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore keeps the snapshot as JSONB and mirrors the headline
// numbers into NUMERIC columns for ad-hoc queries.
type PostgresStore struct {
	pool *pgxpool.Pool
	key  string
}

func NewPostgresStore(pool *pgxpool.Pool, key string) *PostgresStore {
	return &PostgresStore{pool: pool, key: key}
}

func (s *PostgresStore) Load(ctx context.Context) (game.Snapshot, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM unibase.saves WHERE save_key = $1`, s.key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return game.Snapshot{}, ErrNoSave
		}
		return game.Snapshot{}, fmt.Errorf("query save: %w", err)
	}
	return decode(payload)
}

func (s *PostgresStore) Save(ctx context.Context, snap game.Snapshot) error {
	raw, err := game.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	users := decimal.NewFromFloat(snap.Users).Round(4)
	fund := decimal.NewFromFloat(snap.Fund).Round(4)
	_, err = s.pool.Exec(ctx, `
		INSERT INTO unibase.saves (save_key, payload, users, fund, prestige_level, updated_at)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5, now())
		ON CONFLICT (save_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			users = EXCLUDED.users,
			fund = EXCLUDED.fund,
			prestige_level = EXCLUDED.prestige_level,
			updated_at = now()`,
		s.key, raw, users.String(), fund.String(), snap.PrestigeLevel)
	if err != nil {
		return fmt.Errorf("upsert save: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM unibase.saves WHERE save_key = $1`, s.key); err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	return nil
}
