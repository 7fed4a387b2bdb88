// Package memory implements the memory-match minigame: a 16-slot board of 8
// duplicated cards, a fixed move budget, and the daily booster reward
// policy.
package memory

import (
	"fmt"
	"math/rand"

	"github.com/tcg2i/tcg-service/internal/models"
)

const (
	// PairCount distinct cards are dealt, each duplicated once.
	PairCount = 8
	// SlotCount is the board size.
	SlotCount = 2 * PairCount
	// MoveBudget is the number of pair checks allowed per session.
	MoveBudget = 15
)

// Phase is the session's lifecycle state.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	// PhaseChecking means two slots are face-up awaiting ResolvePair; flips
	// are ignored until the pair is resolved.
	PhaseChecking Phase = "checking"
	PhaseWon      Phase = "won"
	PhaseLost     Phase = "lost"
)

// Slot is one face-down position on the board. UID disambiguates the two
// copies of the same card.
type Slot struct {
	Card    models.Card `json:"card"`
	UID     string      `json:"uniqueId"`
	Flipped bool        `json:"isFlipped"`
	Matched bool        `json:"isMatched"`
}

// Session is a single memory game. It is not safe for concurrent use; each
// session belongs to one player interaction flow.
type Session struct {
	Slots     []Slot
	MovesLeft int

	phase   Phase
	flipped []int // indices of face-up unmatched slots, at most two
}

// Deal creates a session from exactly PairCount distinct cards: each is
// duplicated once and the 16 slots are shuffled.
func Deal(cards []models.Card, rng *rand.Rand) (*Session, error) {
	if len(cards) != PairCount {
		return nil, fmt.Errorf("deal requires %d cards, got %d", PairCount, len(cards))
	}
	seen := make(map[string]bool, PairCount)
	for _, c := range cards {
		if seen[c.ID] {
			return nil, fmt.Errorf("deal requires distinct cards, %s repeated", c.ID)
		}
		seen[c.ID] = true
	}

	slots := make([]Slot, 0, SlotCount)
	for _, c := range append(append([]models.Card{}, cards...), cards...) {
		slots = append(slots, Slot{Card: c})
	}
	rng.Shuffle(len(slots), func(i, j int) {
		slots[i], slots[j] = slots[j], slots[i]
	})
	for i := range slots {
		slots[i].UID = fmt.Sprintf("%s-%d", slots[i].Card.ID, i)
	}

	return &Session{
		Slots:     slots,
		MovesLeft: MoveBudget,
		phase:     PhaseInProgress,
	}, nil
}

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase {
	return s.phase
}

// Concluded reports whether the game has ended.
func (s *Session) Concluded() bool {
	return s.phase == PhaseWon || s.phase == PhaseLost
}

// Flip turns the slot at index i face-up. It reports whether the flip was
// accepted: flips are ignored while a pair is being checked, on slots
// already face-up or matched, out-of-range indices, and after the game has
// concluded. The second flip of a pair moves the session to PhaseChecking.
func (s *Session) Flip(i int) bool {
	if s.phase != PhaseInProgress {
		return false
	}
	if i < 0 || i >= len(s.Slots) {
		return false
	}
	slot := &s.Slots[i]
	if slot.Flipped || slot.Matched {
		return false
	}

	slot.Flipped = true
	s.flipped = append(s.flipped, i)
	if len(s.flipped) == 2 {
		s.phase = PhaseChecking
	}
	return true
}

// ResolvePair settles the two face-up slots: same card ID marks both matched
// permanently, otherwise both turn face-down again. One move is consumed
// either way. The win condition is evaluated before the loss condition. The
// caller owns the visual delay before invoking this; it is a no-op outside
// PhaseChecking.
func (s *Session) ResolvePair() {
	if s.phase != PhaseChecking {
		return
	}

	a, b := &s.Slots[s.flipped[0]], &s.Slots[s.flipped[1]]
	if a.Card.ID == b.Card.ID {
		a.Matched, b.Matched = true, true
		a.Flipped, b.Flipped = false, false
	} else {
		a.Flipped, b.Flipped = false, false
	}
	s.flipped = s.flipped[:0]
	s.MovesLeft--

	if s.allMatched() {
		s.phase = PhaseWon
		return
	}
	if s.MovesLeft <= 0 {
		s.phase = PhaseLost
		return
	}
	s.phase = PhaseInProgress
}

func (s *Session) allMatched() bool {
	for _, slot := range s.Slots {
		if !slot.Matched {
			return false
		}
	}
	return true
}
