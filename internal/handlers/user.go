package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tcg2i/tcg-service/internal/models"
)

// CreateUserHandler registers a new account and its empty collection.
func (s *Server) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "email, password and username are required")
		return
	}

	user := models.User{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	}

	if err := s.Store.CreateUser(r.Context(), &user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		s.Log.WithError(err).Error("failed to create user")
		writeError(w, http.StatusInternalServerError, "error creating user")
		return
	}

	user.Password = ""
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler verifies credentials and issues the session cookie alongside
// the raw token.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := s.Store.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		s.Log.WithError(err).Info("failed to authenticate user")
		writeError(w, http.StatusForbidden, "authentication failed")
		return
	}

	token, err := s.Auth.CreateToken(user.ID.String())
	if err != nil {
		s.Log.WithError(err).Error("failed to create session token")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	http.SetCookie(w, s.Auth.SessionCookie(token))
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// SessionHandler exchanges a bearer token for the session cookie. This is
// how a client that authenticated elsewhere (e.g. a login response consumed
// by script) installs the HTTP-only cookie.
func (s *Server) SessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if _, err := s.Auth.VerifyToken(req.Token); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cookie := s.Auth.SessionCookie(req.Token)
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, map[string]string{"sessionCookie": cookie.Value})
}

// ClientConfigHandler serves the explicitly public configuration subset.
// Secrets never pass through here.
func (s *Server) ClientConfigHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Client)
}
