package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sessiond/internal/security"
	"sessiond/internal/session/domain"
	"sessiond/internal/session/service"
)

type stubSessionService struct {
	openResult *service.OpenResult
	openErr    error
	session    *domain.Session
	verifyErr  error
	revokeErr  error
}

func (s *stubSessionService) OpenSession(_ context.Context, userID string) (*service.OpenResult, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.openResult, nil
}

func (s *stubSessionService) VerifySession(_ context.Context, _ string) (*domain.Session, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return s.session, nil
}

func (s *stubSessionService) RevokeSession(_ context.Context, _ string) error {
	return s.revokeErr
}

func newTestServer(t *testing.T, svc SessionService) http.Handler {
	t.Helper()
	srv, err := New(svc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv.Routes()
}

func TestHandleOpenSession(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h := newTestServer(t, &stubSessionService{openResult: &service.OpenResult{
		SessionID:    "s1",
		AccessToken:  "access",
		SessionToken: "s1.c2VjcmV0",
		ExpiresAt:    now,
	}})

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/", strings.NewReader(`{"user_id":"u-1"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp openSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.SessionID != "s1" || resp.AccessToken != "access" || resp.SessionToken != "s1.c2VjcmV0" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandleOpenSession_BadRequest(t *testing.T) {
	h := newTestServer(t, &stubSessionService{})
	for _, body := range []string{``, `{}`, `{"user_id":"  "}`, `{"unknown":"field"}`} {
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestHandleOpenSession_StoreDown(t *testing.T) {
	h := newTestServer(t, &stubSessionService{openErr: service.ErrPersistence})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/", strings.NewReader(`{"user_id":"u-1"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleVerifySession(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h := newTestServer(t, &stubSessionService{session: &domain.Session{
		ID:        "s1",
		UserID:    "u-1",
		CreatedAt: now,
		LastUseAt: now.Add(time.Minute),
	}})

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/verify", strings.NewReader(`{"session_token":"s1.c2VjcmV0"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.SessionID != "s1" || resp.UserID != "u-1" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandleVerifySession_ErrorMapping(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want int
	}{
		{"malformed token", security.ErrMalformedToken, http.StatusBadRequest},
		{"unknown session", service.ErrSessionNotFound, http.StatusUnauthorized},
		{"wrong secret", service.ErrInvalidSecret, http.StatusUnauthorized},
		{"store down", service.ErrPersistence, http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(t, &stubSessionService{verifyErr: tc.err})
			req := httptest.NewRequest(http.MethodPost, "/v1/sessions/verify", strings.NewReader(`{"session_token":"x.c2VjcmV0"}`))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestHandleVerifySession_NotFoundAndWrongSecretLookAlike(t *testing.T) {
	// The two unauthorized responses must be indistinguishable so callers
	// cannot probe which session IDs exist.
	bodies := make(map[string]string)
	for name, err := range map[string]error{
		"not found":    service.ErrSessionNotFound,
		"wrong secret": service.ErrInvalidSecret,
	} {
		h := newTestServer(t, &stubSessionService{verifyErr: err})
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/verify", strings.NewReader(`{"session_token":"x.c2VjcmV0"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		bodies[name] = rec.Body.String()
	}
	if bodies["not found"] != bodies["wrong secret"] {
		t.Errorf("responses differ: %q vs %q", bodies["not found"], bodies["wrong secret"])
	}
}

func TestHandleRevokeSession(t *testing.T) {
	h := newTestServer(t, &stubSessionService{})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/revoke", strings.NewReader(`{"session_token":"s1.c2VjcmV0"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestServer(t, &stubSessionService{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	done := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := ClientIP(r.Context()); ip != "192.0.2.7" {
			t.Errorf("ClientIP = %q", ip)
		}
		done = true
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:4711"
	withClientIP(inner).ServeHTTP(httptest.NewRecorder(), req)
	if !done {
		t.Fatal("inner handler never ran")
	}

	if ip := ClientIP(context.Background()); ip != "unknown" {
		t.Errorf("ClientIP outside request = %q", ip)
	}
}
