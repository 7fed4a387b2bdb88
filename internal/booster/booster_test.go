package booster

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcg2i/tcg-service/internal/models"
)

// makePools builds a pool set large enough for any band.
func makePools(perTier int) models.PoolSet {
	tier := func(r models.Rarity) []models.Card {
		cards := make([]models.Card, perTier)
		for i := range cards {
			cards[i] = models.Card{
				ID:     fmt.Sprintf("%s_%03d", r, i),
				Name:   fmt.Sprintf("%s card %d", r, i),
				Rarity: r,
			}
		}
		return cards
	}
	return models.PoolSet{
		Common:    tier(models.RarityCommon),
		Shiny:     tier(models.RarityShiny),
		SuperRare: tier(models.RaritySuperRare),
		Secret:    tier(models.RaritySecret),
	}
}

func TestDefaultBandsPartitionUnitInterval(t *testing.T) {
	require.NoError(t, DefaultBands.Validate())

	sum := 0
	for _, b := range DefaultBands {
		sum += b.Weight
	}
	assert.Equal(t, TotalWeight, sum)
}

func TestBandTableValidateRejectsBadTables(t *testing.T) {
	cases := []struct {
		name  string
		table BandTable
	}{
		{"empty", BandTable{}},
		{"short weights", BandTable{{Weight: 999, Common: 6}}},
		{"over weights", BandTable{{Weight: 600, Common: 6}, {Weight: 401, Shiny: 6}}},
		{"short pack", BandTable{{Weight: 1000, Common: 5}}},
		{"zero weight band", BandTable{{Weight: 1000, Common: 6}, {Weight: 0, Shiny: 6}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.table.Validate())
		})
	}
}

func TestGenerateAlwaysReturnsFullPack(t *testing.T) {
	pools := makePools(10)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		pack, err := Generate(pools, DefaultBands, rng)
		require.NoError(t, err)
		require.Len(t, pack, PackSize)
	}
}

func TestGenerateDrawsWithoutReplacementPerTier(t *testing.T) {
	pools := makePools(10)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		pack, err := Generate(pools, DefaultBands, rng)
		require.NoError(t, err)

		seen := map[string]bool{}
		for _, c := range pack {
			assert.False(t, seen[c.ID], "card %s drawn twice from the same tier", c.ID)
			seen[c.ID] = true
		}
	}
}

func TestGeneratePoolExhausted(t *testing.T) {
	// One shiny card only: every band needs at least one shiny or falls
	// through to a tier that's empty, so force the 6-shiny band.
	pools := models.PoolSet{
		Common: makePools(10).Common,
		Shiny:  makePools(1).Shiny,
	}
	table := BandTable{{Weight: 1000, Shiny: 6}}
	rng := rand.New(rand.NewSource(1))

	_, err := Generate(pools, table, rng)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPoolExhausted))
}

func TestGenerateEmptySecretPool(t *testing.T) {
	pools := makePools(10)
	pools.Secret = nil
	table := BandTable{{Weight: 1000, Common: 5, Secret: 1}}
	rng := rand.New(rand.NewSource(1))

	_, err := Generate(pools, table, rng)
	assert.True(t, errors.Is(err, ErrPoolExhausted))
}

// TestGenerateConvergesToBandWeights draws 10k packs with a fixed seed and
// checks the observed band frequencies against the declared weights.
func TestGenerateConvergesToBandWeights(t *testing.T) {
	pools := makePools(10)
	rng := rand.New(rand.NewSource(99))

	const n = 10000
	counts := make([]int, len(DefaultBands))

	for i := 0; i < n; i++ {
		pack, err := Generate(pools, DefaultBands, rng)
		require.NoError(t, err)

		// Identify the band by its tier composition.
		var got Band
		for _, c := range pack {
			switch c.Rarity {
			case models.RarityCommon:
				got.Common++
			case models.RarityShiny:
				got.Shiny++
			case models.RaritySuperRare:
				got.SuperRare++
			case models.RaritySecret:
				got.Secret++
			}
		}
		matched := false
		for bi, b := range DefaultBands {
			if b.Common == got.Common && b.Shiny == got.Shiny &&
				b.SuperRare == got.SuperRare && b.Secret == got.Secret {
				counts[bi]++
				matched = true
				break
			}
		}
		require.True(t, matched, "pack composition matches no band: %+v", got)
	}

	for bi, b := range DefaultBands {
		want := float64(b.Weight) / TotalWeight
		got := float64(counts[bi]) / n
		assert.InDeltaf(t, want, got, 0.02,
			"band %d: want %.3f got %.3f", bi, want, got)
	}

	// Sanity: every band should fire at least once over 10k draws; the
	// rarest band has a 1% share.
	for bi, c := range counts {
		assert.Greaterf(t, c, 0, "band %d never selected", bi)
	}
}

func TestGenerateUniform(t *testing.T) {
	cards := makePools(3) // 12 cards total
	all := append(append(append(append([]models.Card{}, cards.Common...), cards.Shiny...), cards.SuperRare...), cards.Secret...)

	rng := rand.New(rand.NewSource(5))
	pack, err := GenerateUniform(all, rng)
	require.NoError(t, err)
	require.Len(t, pack, PackSize)

	seen := map[string]bool{}
	for _, c := range pack {
		assert.False(t, seen[c.ID])
		seen[c.ID] = true
	}
}

func TestGenerateUniformTooFewCards(t *testing.T) {
	all := makePools(1).Common // single card
	rng := rand.New(rand.NewSource(5))

	_, err := GenerateUniform(all, rng)
	assert.True(t, errors.Is(err, ErrPoolExhausted))
}
