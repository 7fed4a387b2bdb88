package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tcg2i/tcg-service/internal/models"
)

// ErrNoBoosters is returned when an operation would drive a booster balance
// negative.
var ErrNoBoosters = errors.New("no boosters available")

const collectionColumns = `user_id, player_name, cards, nb_booster,
	last_collected_at, last_played_at, daily_games, daily_boosters, whitelisted`

// scanCollection converts a row into a typed Collection, filling defaults so
// callers never see a nil cards map.
func scanCollection(row pgx.Row) (*models.Collection, error) {
	var c models.Collection
	var cardsJSON []byte
	err := row.Scan(
		&c.UserID, &c.PlayerName, &cardsJSON, &c.NbBooster,
		&c.LastCollectedAt, &c.LastPlayedAt,
		&c.DailyGames, &c.DailyBoosters, &c.Whitelisted,
	)
	if err != nil {
		return nil, err
	}
	if len(cardsJSON) > 0 {
		if err := json.Unmarshal(cardsJSON, &c.Cards); err != nil {
			return nil, fmt.Errorf("failed to decode cards map for %s: %w", c.UserID, err)
		}
	}
	if c.Cards == nil {
		c.Cards = map[string]int{}
	}
	return &c, nil
}

// GetCollection reads a user's collection record. A missing row yields a
// zero-value record rather than an error, matching the original behavior of
// reading an absent document.
func (s *Store) GetCollection(ctx context.Context, userID uuid.UUID) (*models.Collection, error) {
	q := `SELECT ` + collectionColumns + ` FROM collections WHERE user_id = $1`
	c, err := scanCollection(s.Pool.QueryRow(ctx, q, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.Collection{UserID: userID, Cards: map[string]int{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	return c, nil
}

// ListCollections returns every collection record (leaderboard source).
func (s *Store) ListCollections(ctx context.Context) ([]models.Collection, error) {
	q := `SELECT ` + collectionColumns + ` FROM collections`
	rows, err := s.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	var cols []models.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		cols = append(cols, *c)
	}
	return cols, rows.Err()
}

// UpdateCollection applies mutate to a user's record inside a transaction
// with the row locked, then writes the result back. If the row is missing, a
// zero-value record is created first. mutate returning an error aborts
// without writing; its error is returned unwrapped so callers can match
// sentinels like entitlement.ErrNotEligible.
func (s *Store) UpdateCollection(ctx context.Context, userID uuid.UUID, mutate func(*models.Collection) error) (*models.Collection, error) {
	var out *models.Collection

	err := pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `SELECT ` + collectionColumns + ` FROM collections WHERE user_id = $1 FOR UPDATE`
		c, err := scanCollection(tx.QueryRow(ctx, q, userID))
		if errors.Is(err, pgx.ErrNoRows) {
			c = &models.Collection{UserID: userID, Cards: map[string]int{}}
			if _, err := tx.Exec(ctx, `INSERT INTO collections (user_id) VALUES ($1)`, userID); err != nil {
				return fmt.Errorf("failed to create collection row: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to read collection: %w", err)
		}

		if err := mutate(c); err != nil {
			return err
		}
		if c.NbBooster < 0 {
			return ErrNoBoosters
		}

		cardsJSON, err := json.Marshal(c.Cards)
		if err != nil {
			return fmt.Errorf("failed to encode cards map: %w", err)
		}

		uq := `UPDATE collections SET
			player_name = $2, cards = $3, nb_booster = $4,
			last_collected_at = $5, last_played_at = $6,
			daily_games = $7, daily_boosters = $8, whitelisted = $9
			WHERE user_id = $1`
		if _, err := tx.Exec(ctx, uq,
			c.UserID, c.PlayerName, cardsJSON, c.NbBooster,
			c.LastCollectedAt, c.LastPlayedAt,
			c.DailyGames, c.DailyBoosters, c.Whitelisted,
		); err != nil {
			return fmt.Errorf("failed to write collection: %w", err)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetBoosterCount overwrites a user's booster balance.
func (s *Store) SetBoosterCount(ctx context.Context, userID uuid.UUID, count int) (*models.Collection, error) {
	if count < 0 {
		return nil, ErrNoBoosters
	}
	return s.UpdateCollection(ctx, userID, func(c *models.Collection) error {
		c.NbBooster = count
		return nil
	})
}
