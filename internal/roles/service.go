package roles

import (
	"context"

	"github.com/userhub/userhub/internal/permissions"
	"github.com/userhub/userhub/internal/rbac"
	"github.com/userhub/userhub/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	Save(ctx context.Context, role Role) (Role, error)
	FindAll(ctx context.Context) ([]Role, error)
	DeleteByID(ctx context.Context, name string) (bool, error)
}

// PermissionLookup resolves permission names.
type PermissionLookup interface {
	FindAllByName(ctx context.Context, names []string) ([]permissions.Permission, error)
}

// Service handles role business logic.
type Service struct {
	repo  RepositoryPort
	perms PermissionLookup
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, perms PermissionLookup) *Service {
	return &Service{repo: repo, perms: perms}
}

// Create persists a role with the existing permissions named in req.
func (s *Service) Create(ctx context.Context, req RoleRequest) (RoleResponse, error) {
	role := ToRole(req)
	perms, err := s.perms.FindAllByName(ctx, req.Permissions)
	if err != nil {
		return RoleResponse{}, err
	}
	role.Permissions = perms
	saved, err := s.repo.Save(ctx, role)
	if err != nil {
		return RoleResponse{}, err
	}
	return ToRoleResponse(saved), nil
}

// GetAll returns every role.
func (s *Service) GetAll(ctx context.Context) ([]RoleResponse, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoleResponse, 0, len(all))
	for _, r := range all {
		out = append(out, ToRoleResponse(r))
	}
	return out, nil
}

// Delete removes a role. Callers need the DELETE_DATA authority.
func (s *Service) Delete(ctx context.Context, caller rbac.Principal, name string) error {
	if err := rbac.RequireAuthority(caller, shared.PermDeleteData); err != nil {
		return err
	}
	_, err := s.repo.DeleteByID(ctx, name)
	return err
}
