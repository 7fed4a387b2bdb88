package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/tcg2i/tcg-service/internal/booster"
	"github.com/tcg2i/tcg-service/internal/cache"
	"github.com/tcg2i/tcg-service/internal/database"
	"github.com/tcg2i/tcg-service/internal/entitlement"
	"github.com/tcg2i/tcg-service/internal/models"
)

// OpenPackLegacyHandler serves the legacy unweighted pack: 6 distinct cards
// drawn uniformly from the whole card set. It does not touch any user state.
func (s *Server) OpenPackLegacyHandler(w http.ResponseWriter, r *http.Request) {
	cards, err := s.Cards.ListCards(r.Context())
	if err != nil {
		s.Log.WithError(err).Error("failed to list cards")
		writeError(w, http.StatusInternalServerError, "failed to load cards")
		return
	}
	if len(cards) == 0 {
		writeError(w, http.StatusBadRequest, "no cards available")
		return
	}

	pack, err := booster.GenerateUniform(cards, s.NewRand())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "card pool exhausted")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"pack": pack})
}

// RarityBoosterHandler returns the card list of one rarity tier, the query
// feeding client-side weighted generation.
func (s *Server) RarityBoosterHandler(w http.ResponseWriter, r *http.Request) {
	rarityParam := r.URL.Query().Get("rarity")
	if rarityParam == "" {
		writeError(w, http.StatusBadRequest, "rarity parameter is required")
		return
	}
	rarity, err := models.ParseRarity(rarityParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cards, err := s.Cards.ListCardsByRarity(r.Context(), rarity)
	if err != nil {
		s.Log.WithError(err).Error("failed to list cards by rarity")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cards": cards})
}

// OpenWeightedPackHandler opens a booster for the authenticated user: one
// weighted 6-card pack is generated, one booster is debited and the cards
// are added to the collection in a single store update. Nothing is mutated
// when generation fails or the balance is zero.
func (s *Server) OpenWeightedPackHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, _, err := s.requireWhitelisted(r)
	if err != nil {
		s.unauthorized(w, err)
		return
	}

	cards, err := s.Cards.ListCards(r.Context())
	if err != nil {
		s.Log.WithError(err).Error("failed to list cards")
		writeError(w, http.StatusInternalServerError, "failed to load cards")
		return
	}

	pack, err := booster.Generate(models.BuildPools(cards), s.Bands, s.NewRand())
	if err != nil {
		if errors.Is(err, booster.ErrPoolExhausted) {
			writeError(w, http.StatusServiceUnavailable, "card pool exhausted")
			return
		}
		s.Log.WithError(err).Error("booster generation failed")
		writeError(w, http.StatusInternalServerError, "booster generation failed")
		return
	}

	col, err := s.Store.UpdateCollection(r.Context(), userID, func(c *models.Collection) error {
		if c.NbBooster <= 0 {
			return database.ErrNoBoosters
		}
		c.NbBooster--
		c.AddCards(pack)
		return nil
	})
	if err != nil {
		if errors.Is(err, database.ErrNoBoosters) {
			writeError(w, http.StatusConflict, "no boosters available")
			return
		}
		s.Log.WithError(err).Error("failed to apply pack to collection")
		writeError(w, http.StatusInternalServerError, "failed to open pack")
		return
	}

	if s.Audit != nil {
		record := cache.PackOpenRecord{
			UserID:    userID,
			Weighted:  true,
			Timestamp: time.Now().Unix(),
		}
		for _, c := range pack {
			record.CardIDs = append(record.CardIDs, c.ID)
		}
		if err := s.Audit.PublishPackOpen(r.Context(), record); err != nil {
			s.Log.WithError(err).Warn("failed to publish pack-open record")
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pack":      pack,
		"nbBooster": col.NbBooster,
	})
}

// BoosterAvailabilityHandler reports the free-booster entitlement state.
func (s *Server) BoosterAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.requireUser(r)
	if err != nil {
		s.unauthorized(w, err)
		return
	}

	av, err := s.Entitlements.Availability(r.Context(), userID)
	if err != nil {
		s.Log.WithError(err).Error("failed to check availability")
		writeError(w, http.StatusInternalServerError, "failed to check availability")
		return
	}
	writeJSON(w, http.StatusOK, av)
}

// CollectBoosterHandler grants the free scheduled booster if a slot has
// elapsed since the last collection.
func (s *Server) CollectBoosterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, _, err := s.requireWhitelisted(r)
	if err != nil {
		s.unauthorized(w, err)
		return
	}

	col, err := s.Entitlements.Collect(r.Context(), userID)
	if err != nil {
		if errors.Is(err, entitlement.ErrNotEligible) {
			writeError(w, http.StatusConflict, "free booster not available yet")
			return
		}
		s.Log.WithError(err).Error("failed to collect free booster")
		writeError(w, http.StatusInternalServerError, "failed to collect booster")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"nbBooster": col.NbBooster})
}

// unauthorized distinguishes missing auth from a missing whitelist flag.
func (s *Server) unauthorized(w http.ResponseWriter, err error) {
	if errors.Is(err, errNotWhitelisted) {
		writeError(w, http.StatusForbidden, "access restricted")
		return
	}
	writeError(w, http.StatusUnauthorized, "not logged in")
}
