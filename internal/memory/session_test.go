package memory

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcg2i/tcg-service/internal/models"
)

func eightCards() []models.Card {
	cards := make([]models.Card, PairCount)
	for i := range cards {
		cards[i] = models.Card{
			ID:     fmt.Sprintf("card_%03d", i),
			Name:   fmt.Sprintf("Card %d", i),
			Rarity: models.RarityCommon,
		}
	}
	return cards
}

// findPair returns the indices of the two slots holding cardID.
func findPair(t *testing.T, s *Session, cardID string) (int, int) {
	t.Helper()
	idx := []int{}
	for i, slot := range s.Slots {
		if slot.Card.ID == cardID {
			idx = append(idx, i)
		}
	}
	require.Len(t, idx, 2)
	return idx[0], idx[1]
}

// findMismatch returns indices of two slots holding different cards.
func findMismatch(t *testing.T, s *Session) (int, int) {
	t.Helper()
	for i := 1; i < len(s.Slots); i++ {
		if s.Slots[i].Card.ID != s.Slots[0].Card.ID {
			return 0, i
		}
	}
	t.Fatal("board holds a single card")
	return 0, 0
}

func TestDealBoardComposition(t *testing.T) {
	s, err := Deal(eightCards(), rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Len(t, s.Slots, SlotCount)
	assert.Equal(t, MoveBudget, s.MovesLeft)
	assert.Equal(t, PhaseInProgress, s.Phase())

	copies := map[string]int{}
	uids := map[string]bool{}
	for _, slot := range s.Slots {
		copies[slot.Card.ID]++
		assert.False(t, uids[slot.UID], "slot uid %s repeated", slot.UID)
		uids[slot.UID] = true
		assert.False(t, slot.Flipped)
		assert.False(t, slot.Matched)
	}
	require.Len(t, copies, PairCount)
	for id, n := range copies {
		assert.Equalf(t, 2, n, "card %s appears %d times", id, n)
	}
}

func TestDealRejectsBadInput(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	_, err := Deal(eightCards()[:5], rng)
	assert.Error(t, err)

	dup := eightCards()
	dup[1] = dup[0]
	_, err = Deal(dup, rng)
	assert.Error(t, err)
}

func TestFlipGuards(t *testing.T) {
	s, err := Deal(eightCards(), rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	require.True(t, s.Flip(0))
	assert.False(t, s.Flip(0), "already-flipped slot must be a no-op")
	assert.False(t, s.Flip(-1))
	assert.False(t, s.Flip(SlotCount))

	a, b := findMismatch(t, s)
	_ = a // slot 0 already flipped
	require.True(t, s.Flip(b))
	assert.Equal(t, PhaseChecking, s.Phase())

	// No third flip while checking.
	for i := range s.Slots {
		if i != 0 && i != b {
			assert.False(t, s.Flip(i))
			break
		}
	}
}

func TestResolvePairMatch(t *testing.T) {
	s, err := Deal(eightCards(), rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	i, j := findPair(t, s, "card_000")
	require.True(t, s.Flip(i))
	require.True(t, s.Flip(j))

	s.ResolvePair()

	assert.True(t, s.Slots[i].Matched)
	assert.True(t, s.Slots[j].Matched)
	assert.Equal(t, MoveBudget-1, s.MovesLeft, "a move is consumed on match too")
	assert.Equal(t, PhaseInProgress, s.Phase())

	// Matched slots stay locked.
	assert.False(t, s.Flip(i))
}

func TestResolvePairMismatch(t *testing.T) {
	s, err := Deal(eightCards(), rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	i, j := findMismatch(t, s)
	require.True(t, s.Flip(i))
	require.True(t, s.Flip(j))

	s.ResolvePair()

	assert.False(t, s.Slots[i].Flipped)
	assert.False(t, s.Slots[j].Flipped)
	assert.False(t, s.Slots[i].Matched)
	assert.Equal(t, MoveBudget-1, s.MovesLeft)
	assert.Equal(t, PhaseInProgress, s.Phase())
}

func TestResolvePairOutsideCheckingIsNoop(t *testing.T) {
	s, err := Deal(eightCards(), rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	s.ResolvePair()
	assert.Equal(t, MoveBudget, s.MovesLeft)

	require.True(t, s.Flip(0))
	s.ResolvePair() // only one slot up
	assert.Equal(t, MoveBudget, s.MovesLeft)
}

func TestWinCondition(t *testing.T) {
	s, err := Deal(eightCards(), rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	for i := 0; i < PairCount; i++ {
		a, b := findPair(t, s, fmt.Sprintf("card_%03d", i))
		require.True(t, s.Flip(a))
		require.True(t, s.Flip(b))
		s.ResolvePair()
	}

	assert.Equal(t, PhaseWon, s.Phase())
	assert.True(t, s.Concluded())
	assert.Equal(t, MoveBudget-PairCount, s.MovesLeft)
	assert.False(t, s.Flip(0), "no flips after conclusion")
}

func TestWinOnFinalMoveBeatsLoss(t *testing.T) {
	s, err := Deal(eightCards(), rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	// Clear 7 pairs, drop the budget to a single move, then clear the last
	// pair: the winning resolve also spends the final move.
	for i := 0; i < PairCount-1; i++ {
		a, b := findPair(t, s, fmt.Sprintf("card_%03d", i))
		require.True(t, s.Flip(a))
		require.True(t, s.Flip(b))
		s.ResolvePair()
	}
	require.Equal(t, PhaseInProgress, s.Phase())

	s.MovesLeft = 1

	a, b := findPair(t, s, fmt.Sprintf("card_%03d", PairCount-1))
	require.True(t, s.Flip(a))
	require.True(t, s.Flip(b))
	s.ResolvePair()

	assert.Equal(t, PhaseWon, s.Phase(), "win is evaluated before loss on the final move")
	assert.Equal(t, 0, s.MovesLeft)
}

func TestLossCondition(t *testing.T) {
	s, err := Deal(eightCards(), rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	i, j := findMismatch(t, s)
	for s.MovesLeft > 0 {
		require.True(t, s.Flip(i))
		require.True(t, s.Flip(j))
		s.ResolvePair()
	}

	assert.Equal(t, PhaseLost, s.Phase())
	assert.False(t, s.Flip(i), "no flips accepted after loss")

	s.ResolvePair() // also a no-op
	assert.Equal(t, PhaseLost, s.Phase())
}

func TestApplyOutcomeRewardPolicy(t *testing.T) {
	day := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	t.Run("first win of the day grants a booster", func(t *testing.T) {
		c := &models.Collection{Cards: map[string]int{}}
		granted := ApplyOutcome(c, day, true)
		assert.True(t, granted)
		assert.Equal(t, 1, c.NbBooster)
		assert.Equal(t, 1, c.DailyGames)
		assert.Equal(t, 1, c.DailyBoosters)
	})

	t.Run("win at the cap grants nothing but still counts", func(t *testing.T) {
		played := day.Add(-time.Hour)
		c := &models.Collection{DailyGames: DailyRewardCap, LastPlayedAt: &played}
		granted := ApplyOutcome(c, day, true)
		assert.False(t, granted)
		assert.Equal(t, 0, c.NbBooster)
		assert.Equal(t, DailyRewardCap+1, c.DailyGames)
	})

	t.Run("loss increments the counter without granting", func(t *testing.T) {
		c := &models.Collection{}
		granted := ApplyOutcome(c, day, false)
		assert.False(t, granted)
		assert.Equal(t, 0, c.NbBooster)
		assert.Equal(t, 1, c.DailyGames)
	})

	t.Run("counters reset on a new calendar day", func(t *testing.T) {
		yesterday := day.AddDate(0, 0, -1)
		c := &models.Collection{DailyGames: 2, DailyBoosters: 2, LastPlayedAt: &yesterday}
		granted := ApplyOutcome(c, day, true)
		assert.True(t, granted)
		assert.Equal(t, 1, c.DailyGames)
		assert.Equal(t, 1, c.DailyBoosters)
		assert.Equal(t, 1, c.NbBooster)
	})

	t.Run("calendar day, not rolling 24h", func(t *testing.T) {
		lateYesterday := time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC)
		earlyToday := time.Date(2025, 3, 10, 0, 30, 0, 0, time.UTC)
		c := &models.Collection{DailyGames: 2, LastPlayedAt: &lateYesterday}
		granted := ApplyOutcome(c, earlyToday, true)
		assert.True(t, granted, "one hour apart but a different day resets the cap")
	})
}
