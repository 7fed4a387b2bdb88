package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tcg2i/tcg-service/internal/memory"
	"github.com/tcg2i/tcg-service/internal/models"
)

// memorySlot is the wire shape of one board position: card fields flattened
// plus the per-slot unique id, matching what the reveal UI consumes.
type memorySlot struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Rarity   models.Rarity `json:"rarity"`
	ImageURL string        `json:"imageURL"`
	UniqueID string        `json:"uniqueId"`
}

// MemoryCardsHandler deals a fresh 16-slot board: 8 random distinct cards,
// each duplicated once, shuffled, with a unique id per slot.
func (s *Server) MemoryCardsHandler(w http.ResponseWriter, r *http.Request) {
	cards, err := s.Cards.ListCards(r.Context())
	if err != nil {
		s.Log.WithError(err).Error("failed to list cards")
		writeError(w, http.StatusInternalServerError, "failed to load cards")
		return
	}
	if len(cards) < memory.PairCount {
		writeError(w, http.StatusBadRequest, "not enough cards for a memory game")
		return
	}

	rng := s.NewRand()
	picked := make([]models.Card, 0, memory.PairCount)
	for _, idx := range rng.Perm(len(cards))[:memory.PairCount] {
		picked = append(picked, cards[idx])
	}

	session, err := memory.Deal(picked, rng)
	if err != nil {
		s.Log.WithError(err).Error("failed to deal memory board")
		writeError(w, http.StatusInternalServerError, "failed to deal cards")
		return
	}

	slots := make([]memorySlot, 0, len(session.Slots))
	for _, slot := range session.Slots {
		slots = append(slots, memorySlot{
			ID:       slot.Card.ID,
			Name:     slot.Card.Name,
			Rarity:   slot.Card.Rarity,
			ImageURL: slot.Card.ImageURL,
			UniqueID: slot.UID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cards": slots})
}

// MemoryResultHandler records the end of a memory game and applies the daily
// reward policy: wins below the daily cap grant one booster, every outcome
// counts toward the daily games counter, and counters reset on a new
// calendar day.
func (s *Server) MemoryResultHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, _, err := s.requireWhitelisted(r)
	if err != nil {
		s.unauthorized(w, err)
		return
	}

	var req struct {
		Won bool `json:"won"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	var granted bool
	col, err := s.Store.UpdateCollection(r.Context(), userID, func(c *models.Collection) error {
		granted = memory.ApplyOutcome(c, time.Now(), req.Won)
		return nil
	})
	if err != nil {
		s.Log.WithError(err).Error("failed to record game outcome")
		writeError(w, http.StatusInternalServerError, "failed to record result")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"granted":    granted,
		"dailyGames": col.DailyGames,
		"nbBooster":  col.NbBooster,
	})
}
