package repository

import (
	"context"

	"sessiond/internal/session/domain"
)

// Repository persists sessions.
type Repository interface {
	// GetByID returns the session for id, or nil if not found.
	// It returns an error only for storage failures, not for missing rows.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// Save persists the session, inserting or replacing by ID.
	Save(ctx context.Context, s *domain.Session) error
	// Delete removes the session for id. Deleting a missing session is not
	// an error.
	Delete(ctx context.Context, id string) error
}
