package repository

import (
	"context"

	"sessiond/internal/audit/domain"
)

// Repository persists audit log entries.
type Repository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}
