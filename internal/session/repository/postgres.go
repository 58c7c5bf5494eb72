package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sessiond/internal/session/domain"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a session repository that uses the given pool
// for persistence.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	const query = `
		SELECT id, user_id, secret_hash, created_at, last_use_at
		FROM sessions
		WHERE id = $1
	`
	var s domain.Session
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.UserID,
		&s.SecretHash,
		&s.CreatedAt,
		&s.LastUseAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Save persists the session, inserting or replacing by ID.
func (r *PostgresRepository) Save(ctx context.Context, s *domain.Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, secret_hash, created_at, last_use_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			secret_hash = EXCLUDED.secret_hash,
			last_use_at = EXCLUDED.last_use_at
	`
	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.SecretHash,
		s.CreatedAt,
		s.LastUseAt,
	)
	return err
}

// Delete removes the session for id. Deleting a missing session is not an
// error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
