package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"sessiond/internal/security"
	"sessiond/internal/session/domain"
	"sessiond/internal/session/service"
)

// SessionService is the session service surface the HTTP layer needs.
type SessionService interface {
	OpenSession(ctx context.Context, userID string) (*service.OpenResult, error)
	VerifySession(ctx context.Context, sessionToken string) (*domain.Session, error)
	RevokeSession(ctx context.Context, sessionToken string) error
}

type openSessionResponse struct {
	SessionID    string    `json:"session_id"`
	AccessToken  string    `json:"access_token"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	LastUseAt time.Time `json:"last_use_at"`
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, errors.New("user_id is required"))
		return
	}

	res, err := s.sessions.OpenSession(r.Context(), req.UserID)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, openSessionResponse{
		SessionID:    res.SessionID,
		AccessToken:  res.AccessToken,
		SessionToken: res.SessionToken,
		ExpiresAt:    res.ExpiresAt,
	})
}

func (s *Server) handleVerifySession(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionTokenFromRequest(w, r)
	if !ok {
		return
	}
	sess, err := s.sessions.VerifySession(r.Context(), token)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		CreatedAt: sess.CreatedAt,
		LastUseAt: sess.LastUseAt,
	})
}

func (s *Server) handleRevokeSession(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionTokenFromRequest(w, r)
	if !ok {
		return
	}
	if err := s.sessions.RevokeSession(r.Context(), token); err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func sessionTokenFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		SessionToken string `json:"session_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return "", false
	}
	if req.SessionToken == "" {
		respondError(w, http.StatusBadRequest, errors.New("session_token is required"))
		return "", false
	}
	return req.SessionToken, true
}

// respondSessionError maps service sentinels to HTTP status codes. Invalid
// secrets and missing sessions both read as unauthorized so callers cannot
// probe which session IDs exist.
func respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, security.ErrMalformedToken):
		respondError(w, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrInvalidSecret):
		respondError(w, http.StatusUnauthorized, errors.New("invalid session token"))
	case errors.Is(err, service.ErrPersistence):
		respondError(w, http.StatusServiceUnavailable, errors.New("session store unavailable"))
	default:
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
