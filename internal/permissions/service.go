package permissions

import (
	"context"

	"github.com/userhub/userhub/internal/rbac"
	"github.com/userhub/userhub/internal/shared"
)

// RepositoryPort defines data access methods for permissions.
type RepositoryPort interface {
	Save(ctx context.Context, p Permission) (Permission, error)
	FindAll(ctx context.Context) ([]Permission, error)
	DeleteByID(ctx context.Context, name string) (bool, error)
}

// Service handles permission business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create persists a new permission.
func (s *Service) Create(ctx context.Context, req PermissionRequest) (PermissionResponse, error) {
	saved, err := s.repo.Save(ctx, ToPermission(req))
	if err != nil {
		return PermissionResponse{}, err
	}
	return ToPermissionResponse(saved), nil
}

// GetAll returns every permission.
func (s *Service) GetAll(ctx context.Context) ([]PermissionResponse, error) {
	perms, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, ToPermissionResponse(p))
	}
	return out, nil
}

// Delete removes a permission. Callers need the DELETE_DATA authority.
func (s *Service) Delete(ctx context.Context, caller rbac.Principal, name string) error {
	if err := rbac.RequireAuthority(caller, shared.PermDeleteData); err != nil {
		return err
	}
	_, err := s.repo.DeleteByID(ctx, name)
	return err
}
