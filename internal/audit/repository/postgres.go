package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"sessiond/internal/audit/domain"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns an audit repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts one audit log entry.
func (r *PostgresRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
		INSERT INTO audit_logs (id, user_id, action, resource, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Action,
		entry.Resource,
		entry.IP,
		entry.Metadata,
		entry.CreatedAt,
	)
	return err
}
