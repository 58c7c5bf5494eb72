package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"sessiond/internal/audit"
	"sessiond/internal/clock"
	"sessiond/internal/ident"
	"sessiond/internal/security"
	"sessiond/internal/session/domain"
	"sessiond/internal/telemetry"
)

// Sentinel errors for the session service; the handler maps them to HTTP
// status codes.
var (
	ErrPersistence     = errors.New("session store unavailable")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSecret   = errors.New("session secret does not match")
)

// OpenResult holds the two bearer artifacts minted by OpenSession.
type OpenResult struct {
	SessionID    string
	AccessToken  string
	SessionToken string
	ExpiresAt    time.Time
}

// SessionRepo is the minimal session repository needed by the issuer.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
}

// PermissionLookup resolves a user's current permission set.
type PermissionLookup interface {
	PermissionsFor(ctx context.Context, userID string) ([]string, error)
}

// SessionIssuer opens, verifies, and revokes authenticated sessions. Each
// call is an independent unit of work; a user may hold any number of live
// sessions at once.
type SessionIssuer struct {
	repo        SessionRepo
	permissions PermissionLookup
	hasher      security.SecretHasher
	secrets     security.SecretSource
	tokens      *security.TokenProvider
	clock       clock.Clock
	idents      ident.Generator
	secretBits  int
	audit       audit.AuditLogger
	emitter     telemetry.EventEmitter
}

// NewSessionIssuer returns a SessionIssuer with the given dependencies.
// auditLogger and emitter may be nil; then audit and event emission are
// disabled.
func NewSessionIssuer(
	repo SessionRepo,
	permissions PermissionLookup,
	hasher security.SecretHasher,
	secrets security.SecretSource,
	tokens *security.TokenProvider,
	clk clock.Clock,
	idents ident.Generator,
	secretBits int,
	auditLogger audit.AuditLogger,
	emitter telemetry.EventEmitter,
) *SessionIssuer {
	if clk == nil {
		clk = clock.System()
	}
	if idents == nil {
		idents = ident.UUID()
	}
	return &SessionIssuer{
		repo:        repo,
		permissions: permissions,
		hasher:      hasher,
		secrets:     secrets,
		tokens:      tokens,
		clock:       clk,
		idents:      idents,
		secretBits:  secretBits,
		audit:       auditLogger,
		emitter:     emitter,
	}
}

// OpenSession creates a session for the already-authenticated user and mints
// both bearer artifacts: a short-lived signed access token carrying the
// user's permissions, and a long-lived opaque session token binding the
// session ID to its raw secret.
//
// The raw secret exists only in memory and inside the returned session
// token; the store sees only its hash. If the save fails, no tokens are
// returned and nothing persists. A permission lookup failure does not fail
// the call: the access token issues with an empty permission set.
func (s *SessionIssuer) OpenSession(ctx context.Context, userID string) (*OpenResult, error) {
	rawSecret, err := s.secrets.Generate(s.secretBits)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	sess := &domain.Session{
		ID:        s.idents.Next(),
		UserID:    userID,
		CreatedAt: now,
		LastUseAt: now,
	}
	sess.SecretHash, err = s.hasher.Hash(rawSecret)
	if err != nil {
		return nil, err
	}

	// Commit is the point of no return; a cancelled caller must not leave a
	// session it never received tokens for.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, errors.Join(ErrPersistence, err)
	}

	permissions, err := s.permissions.PermissionsFor(ctx, userID)
	if err != nil {
		log.Printf("session: permission lookup failed for user %s, issuing with empty set: %v", userID, err)
		permissions = []string{}
	}

	accessToken, _, expiresAt, err := s.tokens.IssueAccess(sess.ID, userID, permissions)
	if err != nil {
		// Tokens never reached the caller, so the session must not survive.
		if delErr := s.repo.Delete(ctx, sess.ID); delErr != nil {
			log.Printf("session: failed to clean up session %s after token error: %v", sess.ID, delErr)
		}
		return nil, err
	}

	if s.audit != nil {
		s.audit.LogEvent(ctx, userID, "session.open", "session:"+sess.ID, "")
	}
	telemetry.EmitAsync(s.emitter, &telemetry.SessionEvent{
		Type:       telemetry.EventSessionOpened,
		SessionID:  sess.ID,
		UserID:     userID,
		OccurredAt: now,
	})

	return &OpenResult{
		SessionID:    sess.ID,
		AccessToken:  accessToken,
		SessionToken: security.EncodeSessionToken(sess.ID, rawSecret),
		ExpiresAt:    expiresAt,
	}, nil
}

// VerifySession checks possession of a session token against the stored
// secret hash and returns the session. On success it advances LastUseAt and,
// when the stored hash is weaker than current policy, re-hashes the secret
// at the current cost. Both updates are best-effort: a failed save does not
// invalidate the verification.
func (s *SessionIssuer) VerifySession(ctx context.Context, sessionToken string) (*domain.Session, error) {
	id, rawSecret, err := security.DecodeSessionToken(sessionToken)
	if err != nil {
		return nil, err
	}
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Join(ErrPersistence, err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if !s.hasher.Verify(rawSecret, sess.SecretHash) {
		return nil, ErrInvalidSecret
	}

	sess.Touch(s.clock.Now())
	if s.hasher.NeedsRehash(sess.SecretHash) {
		if rehash, err := s.hasher.Hash(rawSecret); err == nil {
			sess.SecretHash = rehash
		} else {
			log.Printf("session: rehash failed for session %s: %v", sess.ID, err)
		}
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		log.Printf("session: failed to record use of session %s: %v", sess.ID, err)
	}

	telemetry.EmitAsync(s.emitter, &telemetry.SessionEvent{
		Type:       telemetry.EventSessionVerified,
		SessionID:  sess.ID,
		UserID:     sess.UserID,
		OccurredAt: sess.LastUseAt,
	})
	return sess, nil
}

// RevokeSession verifies possession of the session token and deletes the
// backing session. Revoking an already-revoked session returns
// ErrSessionNotFound.
func (s *SessionIssuer) RevokeSession(ctx context.Context, sessionToken string) error {
	sess, err := s.VerifySession(ctx, sessionToken)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sess.ID); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, sess.UserID, "session.revoke", "session:"+sess.ID, "")
	}
	telemetry.EmitAsync(s.emitter, &telemetry.SessionEvent{
		Type:       telemetry.EventSessionRevoked,
		SessionID:  sess.ID,
		UserID:     sess.UserID,
		OccurredAt: s.clock.Now(),
	})
	return nil
}

// ParseAccess decodes and validates an access token, returning its claims.
func (s *SessionIssuer) ParseAccess(tokenString string) (*security.AccessClaims, error) {
	claims, err := s.tokens.ParseAccess(tokenString)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}
