// Package booster implements weighted pack generation. A single uniform draw
// selects one band of a probability table; each band fixes how many cards of
// each rarity tier make up the 6-card pack, drawn without replacement from
// that tier's pool.
package booster

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/tcg2i/tcg-service/internal/models"
)

// PackSize is the number of cards in every booster.
const PackSize = 6

// ErrPoolExhausted is returned when a tier pool holds fewer cards than the
// selected band requires. Generation aborts rather than returning a short
// pack.
var ErrPoolExhausted = errors.New("card pool exhausted")

// Band is one contiguous slice of the unit interval. Weight is expressed in
// per-mille so a table can be validated as an exact partition without
// floating-point drift.
type Band struct {
	Weight    int // per-mille share of [0,1)
	Common    int
	Shiny     int
	SuperRare int
	Secret    int
}

func (b Band) cardCount() int {
	return b.Common + b.Shiny + b.SuperRare + b.Secret
}

// BandTable is an ordered list of bands partitioning [0,1).
type BandTable []Band

// TotalWeight is the per-mille sum a valid table's weights must reach.
const TotalWeight = 1000

// DefaultBands is the canonical probability table.
var DefaultBands = BandTable{
	{Weight: 600, Common: 5, Shiny: 1},
	{Weight: 250, Common: 4, Shiny: 2},
	{Weight: 50, Shiny: 6},
	{Weight: 40, Common: 5, SuperRare: 1},
	{Weight: 30, Common: 4, Shiny: 1, SuperRare: 1},
	{Weight: 20, Common: 5, Secret: 1},
	{Weight: 10, Common: 4, SuperRare: 1, Secret: 1},
}

// Validate checks that the table is an exact partition of the unit interval
// and that every band composes a full pack.
func (t BandTable) Validate() error {
	if len(t) == 0 {
		return errors.New("band table is empty")
	}
	sum := 0
	for i, b := range t {
		if b.Weight <= 0 {
			return fmt.Errorf("band %d has non-positive weight %d", i, b.Weight)
		}
		if n := b.cardCount(); n != PackSize {
			return fmt.Errorf("band %d composes %d cards, want %d", i, n, PackSize)
		}
		sum += b.Weight
	}
	if sum != TotalWeight {
		return fmt.Errorf("band weights sum to %d, want %d", sum, TotalWeight)
	}
	return nil
}

// pick maps a uniform draw r in [0,1) onto a band.
func (t BandTable) pick(r float64) Band {
	scaled := r * TotalWeight
	acc := 0.0
	for _, b := range t {
		acc += float64(b.Weight)
		if scaled < acc {
			return b
		}
	}
	return t[len(t)-1]
}

// Generate draws one weighted pack from the given pools. It is pure over the
// supplied pools and random source; the caller owns persistence of the
// result. Returns ErrPoolExhausted if any required tier pool is too small.
func Generate(pools models.PoolSet, table BandTable, rng *rand.Rand) ([]models.Card, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid band table: %w", err)
	}

	band := table.pick(rng.Float64())

	pack := make([]models.Card, 0, PackSize)
	for _, want := range []struct {
		rarity models.Rarity
		n      int
	}{
		{models.RarityCommon, band.Common},
		{models.RarityShiny, band.Shiny},
		{models.RaritySuperRare, band.SuperRare},
		{models.RaritySecret, band.Secret},
	} {
		if want.n == 0 {
			continue
		}
		drawn, err := draw(pools.Tier(want.rarity), want.n, rng)
		if err != nil {
			return nil, fmt.Errorf("drawing %d %s cards: %w", want.n, want.rarity, err)
		}
		pack = append(pack, drawn...)
	}
	return pack, nil
}

// GenerateUniform is the legacy unweighted variant: PackSize distinct cards
// drawn uniformly from the whole card list, ignoring rarity.
func GenerateUniform(cards []models.Card, rng *rand.Rand) ([]models.Card, error) {
	return draw(cards, PackSize, rng)
}

// draw selects n distinct cards uniformly at random (shuffle-and-take).
func draw(pool []models.Card, n int, rng *rand.Rand) ([]models.Card, error) {
	if len(pool) < n {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrPoolExhausted, n, len(pool))
	}
	out := make([]models.Card, 0, n)
	for _, idx := range rng.Perm(len(pool))[:n] {
		out = append(out, pool[idx])
	}
	return out, nil
}
