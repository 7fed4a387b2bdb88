package models

import "fmt"

// Rarity classifies a card and determines its drop weight and display treatment.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityShiny     Rarity = "shiny"
	RaritySuperRare Rarity = "super_rare"
	RaritySecret    Rarity = "secret"
)

// Rarities lists all tiers in ascending order of scarcity.
var Rarities = []Rarity{RarityCommon, RarityShiny, RaritySuperRare, RaritySecret}

// ParseRarity validates a rarity string coming from a query param or a stored row.
func ParseRarity(s string) (Rarity, error) {
	switch Rarity(s) {
	case RarityCommon, RarityShiny, RaritySuperRare, RaritySecret:
		return Rarity(s), nil
	}
	return "", fmt.Errorf("unknown rarity %q", s)
}

// Card is immutable reference data, seeded once and read-only thereafter.
type Card struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Rarity   Rarity `json:"rarity"`
	ImageURL string `json:"imageURL"`
}

// PoolSet is the full card set partitioned by rarity tier. It is treated as a
// read-only snapshot for the duration of one booster generation or one
// memory-game deal.
type PoolSet struct {
	Common    []Card
	Shiny     []Card
	SuperRare []Card
	Secret    []Card
}

// BuildPools partitions a card list into per-rarity pools. Cards with an
// unrecognized rarity are dropped.
func BuildPools(cards []Card) PoolSet {
	var p PoolSet
	for _, c := range cards {
		switch c.Rarity {
		case RarityCommon:
			p.Common = append(p.Common, c)
		case RarityShiny:
			p.Shiny = append(p.Shiny, c)
		case RaritySuperRare:
			p.SuperRare = append(p.SuperRare, c)
		case RaritySecret:
			p.Secret = append(p.Secret, c)
		}
	}
	return p
}

// Tier returns the pool for a given rarity.
func (p PoolSet) Tier(r Rarity) []Card {
	switch r {
	case RarityCommon:
		return p.Common
	case RarityShiny:
		return p.Shiny
	case RaritySuperRare:
		return p.SuperRare
	case RaritySecret:
		return p.Secret
	}
	return nil
}
