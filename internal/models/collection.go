package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection is a user's game record: owned cards, booster balance, the
// free-booster and minigame timestamps, daily counters, and the whitelist
// flag. Exactly one record exists per user; the store fills defaults for any
// missing field so callers always see a fully-populated value.
type Collection struct {
	UserID     uuid.UUID `json:"userId"`
	PlayerName string    `json:"playerName"`

	// Cards maps card ID to owned quantity. Quantities never decrease by
	// normal play.
	Cards map[string]int `json:"cards"`

	NbBooster int `json:"nbBooster"`

	LastCollectedAt *time.Time `json:"lastCollectedAt,omitempty"`
	LastPlayedAt    *time.Time `json:"lastPlayedAt,omitempty"`

	DailyGames    int `json:"dailyGames"`
	DailyBoosters int `json:"dailyBoosters"`

	Whitelisted bool `json:"whitelisted"`
}

// AddCards increments the owned quantity for each card in the pack.
func (c *Collection) AddCards(pack []Card) {
	if c.Cards == nil {
		c.Cards = make(map[string]int, len(pack))
	}
	for _, card := range pack {
		c.Cards[card.ID]++
	}
}

// UniqueCards counts distinct card IDs with at least one copy owned.
func (c *Collection) UniqueCards() int {
	n := 0
	for _, qty := range c.Cards {
		if qty > 0 {
			n++
		}
	}
	return n
}

// TotalCards sums owned quantities across all cards.
func (c *Collection) TotalCards() int {
	n := 0
	for _, qty := range c.Cards {
		n += qty
	}
	return n
}
