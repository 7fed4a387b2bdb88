package memory

import (
	"time"

	"github.com/tcg2i/tcg-service/internal/models"
)

// DailyRewardCap is the number of winning games per calendar day that grant
// a booster. Further wins still count as played games but award nothing.
const DailyRewardCap = 2

// sameDay compares by calendar day in now's location, not by a rolling 24h
// window.
func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ApplyOutcome records the end of a memory game on the user's collection and
// reports whether a booster was granted. The daily counters reset when the
// stored last-played date falls on a different calendar day. Wins below the
// daily cap grant one booster; the played-games counter increments on every
// outcome. The caller persists the mutation atomically.
func ApplyOutcome(c *models.Collection, now time.Time, won bool) (granted bool) {
	if c.LastPlayedAt == nil || !sameDay(c.LastPlayedAt.In(now.Location()), now) {
		c.DailyGames = 0
		c.DailyBoosters = 0
	}

	if won && c.DailyGames < DailyRewardCap {
		c.NbBooster++
		c.DailyBoosters++
		granted = true
	}
	c.DailyGames++

	stamp := now
	c.LastPlayedAt = &stamp
	return granted
}
