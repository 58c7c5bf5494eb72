package repository

import "context"

// Repository reads role grants.
type Repository interface {
	// ListRolesByUser returns the roles granted to the user. A user with no
	// grants gets an empty slice, not an error.
	ListRolesByUser(ctx context.Context, userID string) ([]string, error)
}
