// Package server exposes the session service over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server wires the session service into HTTP handlers.
type Server struct {
	sessions SessionService
}

// New returns a Server for the given session service.
func New(sessions SessionService) (*Server, error) {
	if sessions == nil {
		return nil, errors.New("session service is required")
	}
	return &Server{sessions: sessions}, nil
}

// Routes constructs the router containing all endpoints, wrapped with
// request tracing.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(withClientIP)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleOpenSession)
		r.Post("/verify", s.handleVerifySession)
		r.Post("/revoke", s.handleRevokeSession)
	})

	return otelhttp.NewHandler(r, "sessiond")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}
