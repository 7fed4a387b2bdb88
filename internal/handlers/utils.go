package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tcg2i/tcg-service/internal/auth"
	"github.com/tcg2i/tcg-service/internal/models"
)

// extractCookieToken extracts a named cookie value from "Cookie" header, or
// returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requireUser authenticates the request via the session cookie and returns
// the caller's user ID.
func (s *Server) requireUser(r *http.Request) (uuid.UUID, error) {
	token := extractCookieToken(r.Header.Get("Cookie"), auth.SessionCookieName)
	if token == "" {
		return uuid.Nil, fmt.Errorf("missing session cookie")
	}
	sub, err := s.Auth.VerifyToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in token: %w", err)
	}
	return userID, nil
}

// requireWhitelisted authenticates the caller and checks the collection's
// whitelist flag, which gates every game-mutating action.
func (s *Server) requireWhitelisted(r *http.Request) (uuid.UUID, *models.Collection, error) {
	userID, err := s.requireUser(r)
	if err != nil {
		return uuid.Nil, nil, err
	}
	col, err := s.Store.GetCollection(r.Context(), userID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if !col.Whitelisted {
		return uuid.Nil, nil, errNotWhitelisted
	}
	return userID, col, nil
}

var errNotWhitelisted = fmt.Errorf("user is not whitelisted")
