package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/tcg2i/tcg-service/internal/database"
	"github.com/tcg2i/tcg-service/internal/models"
)

// ownedCard is one entry of the collection view: card reference data joined
// with the owned quantity (zero for cards not yet owned).
type ownedCard struct {
	models.Card
	Quantity int `json:"quantity"`
}

// CollectionHandler returns the caller's collection joined against the full
// card list, so the client can render owned and missing cards alike.
func (s *Server) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.requireUser(r)
	if err != nil {
		s.unauthorized(w, err)
		return
	}

	col, err := s.Store.GetCollection(r.Context(), userID)
	if err != nil {
		s.Log.WithError(err).Error("failed to read collection")
		writeError(w, http.StatusInternalServerError, "failed to load collection")
		return
	}
	cards, err := s.Cards.ListCards(r.Context())
	if err != nil {
		s.Log.WithError(err).Error("failed to list cards")
		writeError(w, http.StatusInternalServerError, "failed to load cards")
		return
	}

	owned := make([]ownedCard, 0, len(cards))
	for _, c := range cards {
		owned = append(owned, ownedCard{Card: c, Quantity: col.Cards[c.ID]})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cards":     owned,
		"nbBooster": col.NbBooster,
	})
}

// leaderboardEntry ranks a player by distinct cards owned.
type leaderboardEntry struct {
	PlayerName  string `json:"playerName"`
	UniqueCards int    `json:"uniqueCards"`
	TotalCards  int    `json:"totalCards"`
}

// LeaderboardHandler lists all players ordered by distinct cards owned,
// breaking ties by total cards.
func (s *Server) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	cols, err := s.Store.ListCollections(r.Context())
	if err != nil {
		s.Log.WithError(err).Error("failed to list collections")
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	entries := make([]leaderboardEntry, 0, len(cols))
	for i := range cols {
		c := &cols[i]
		name := c.PlayerName
		if name == "" {
			name = "Unknown Player"
		}
		entries = append(entries, leaderboardEntry{
			PlayerName:  name,
			UniqueCards: c.UniqueCards(),
			TotalCards:  c.TotalCards(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UniqueCards != entries[j].UniqueCards {
			return entries[i].UniqueCards > entries[j].UniqueCards
		}
		return entries[i].TotalCards > entries[j].TotalCards
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{"players": entries})
}

// SetBoostersHandler overwrites a user's booster balance. Admin only.
func (s *Server) SetBoostersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	callerID, err := s.requireUser(r)
	if err != nil {
		s.unauthorized(w, err)
		return
	}
	caller, err := s.Store.GetUserByID(r.Context(), callerID)
	if err != nil || !caller.IsAdmin {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}

	var req struct {
		UserID       string `json:"userId"`
		BoosterCount int    `json:"boosterCount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	col, err := s.Store.SetBoosterCount(r.Context(), targetID, req.BoosterCount)
	if err != nil {
		if errors.Is(err, database.ErrNoBoosters) {
			writeError(w, http.StatusBadRequest, "booster count must be non-negative")
			return
		}
		s.Log.WithError(err).Error("failed to set booster count")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"nbBooster": col.NbBooster,
	})
}
