// Package database persists cards, users and collections in Postgres. All
// read-modify-write operations on a collection run inside a transaction with
// a row lock, so concurrent mutations of the same user record serialize
// instead of racing last-write-wins.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool. Construct it once at startup and pass
// it to the services and handlers that need it.
type Store struct {
	Pool *pgxpool.Pool
}

// Connect creates the pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return &Store{Pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.Pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL,
	username TEXT NOT NULL,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS cards (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	rarity TEXT NOT NULL,
	image_url TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS cards_rarity_idx ON cards (rarity);

CREATE TABLE IF NOT EXISTS collections (
	user_id UUID PRIMARY KEY REFERENCES users (id),
	player_name TEXT NOT NULL DEFAULT '',
	cards JSONB NOT NULL DEFAULT '{}',
	nb_booster INTEGER NOT NULL DEFAULT 0 CHECK (nb_booster >= 0),
	last_collected_at TIMESTAMPTZ,
	last_played_at TIMESTAMPTZ,
	daily_games INTEGER NOT NULL DEFAULT 0,
	daily_boosters INTEGER NOT NULL DEFAULT 0,
	whitelisted BOOLEAN NOT NULL DEFAULT FALSE
);
`

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
