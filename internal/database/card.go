package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tcg2i/tcg-service/internal/models"
)

// ListCards returns all card reference data.
func (s *Store) ListCards(ctx context.Context) ([]models.Card, error) {
	q := `SELECT id, name, rarity, image_url FROM cards ORDER BY id`
	rows, err := s.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()
	return scanCards(rows)
}

// ListCardsByRarity returns all cards of one rarity tier.
func (s *Store) ListCardsByRarity(ctx context.Context, rarity models.Rarity) ([]models.Card, error) {
	q := `SELECT id, name, rarity, image_url FROM cards WHERE rarity = $1 ORDER BY id`
	rows, err := s.Pool.Query(ctx, q, string(rarity))
	if err != nil {
		return nil, fmt.Errorf("failed to query cards by rarity: %w", err)
	}
	defer rows.Close()
	return scanCards(rows)
}

func scanCards(rows pgx.Rows) ([]models.Card, error) {
	var cards []models.Card
	for rows.Next() {
		var c models.Card
		var rarity string
		if err := rows.Scan(&c.ID, &c.Name, &rarity, &c.ImageURL); err != nil {
			return nil, err
		}
		r, err := models.ParseRarity(rarity)
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", c.ID, err)
		}
		c.Rarity = r
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// SeedCards inserts reference cards, skipping IDs that already exist, and
// returns the number actually inserted. Seeding is idempotent.
func (s *Store) SeedCards(ctx context.Context, cards []models.Card) (int, error) {
	q := `INSERT INTO cards (id, name, rarity, image_url)
	      VALUES ($1, $2, $3, $4)
	      ON CONFLICT (id) DO NOTHING`

	inserted := 0
	err := pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, c := range cards {
			tag, err := tx.Exec(ctx, q, c.ID, c.Name, string(c.Rarity), c.ImageURL)
			if err != nil {
				return fmt.Errorf("failed to insert card %s: %w", c.ID, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// DeleteAllCards wipes the card reference data. Admin reset only.
func (s *Store) DeleteAllCards(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, `DELETE FROM cards`); err != nil {
		return fmt.Errorf("failed to delete cards: %w", err)
	}
	return nil
}
