package service

import (
	"context"
	"fmt"

	"sessiond/internal/permission/repository"
)

// Evaluator turns a set of roles into the permissions they grant.
type Evaluator interface {
	PermissionsForRoles(ctx context.Context, roles []string) ([]string, error)
}

// Service resolves the permission set for a user from their role grants.
type Service struct {
	roles     repository.Repository
	evaluator Evaluator
}

// NewService returns a permission service backed by the given role repository
// and policy evaluator.
func NewService(roles repository.Repository, evaluator Evaluator) *Service {
	return &Service{roles: roles, evaluator: evaluator}
}

// PermissionsFor returns the permissions granted to the user, sorted and
// deduplicated. A user with no grants gets an empty slice.
func (s *Service) PermissionsFor(ctx context.Context, userID string) ([]string, error) {
	roles, err := s.roles.ListRolesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list roles for user %s: %w", userID, err)
	}
	perms, err := s.evaluator.PermissionsForRoles(ctx, roles)
	if err != nil {
		return nil, fmt.Errorf("evaluate permissions for user %s: %w", userID, err)
	}
	return perms, nil
}
