package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/userhub/userhub/internal/rbac"
	"github.com/userhub/userhub/internal/roles"
	"github.com/userhub/userhub/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	FindAll(ctx context.Context) ([]User, error)
	Save(ctx context.Context, u User) (User, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// RoleLookup resolves role names to stored roles.
type RoleLookup interface {
	FindAllByName(ctx context.Context, names []string) ([]roles.Role, error)
}

// Service handles user business logic.
type Service struct {
	repo   RepositoryPort
	roles  RoleLookup
	hasher shared.PasswordHasher
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, roles RoleLookup, hasher shared.PasswordHasher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, roles: roles, hasher: hasher, logger: logger}
}

// CreateUser registers a new user holding the USER role.
func (s *Service) CreateUser(ctx context.Context, req UserCreationRequest) (UserResponse, error) {
	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return UserResponse{}, err
	}
	if exists {
		return UserResponse{}, shared.ErrUserExisted
	}
	u := ToUser(req)
	if u.PasswordHash, err = s.hasher.Hash(req.Password); err != nil {
		return UserResponse{}, fmt.Errorf("users: hash password: %w", err)
	}
	u.Roles = []string{shared.RoleUser}
	saved, err := s.repo.Save(ctx, u)
	if err != nil {
		// Lost a race with a concurrent create of the same username.
		if errors.Is(err, shared.ErrDuplicate) {
			return UserResponse{}, shared.ErrUserExisted
		}
		return UserResponse{}, err
	}
	s.logger.Info("user created", slog.String("user_id", saved.ID), slog.String("username", saved.Username))
	return ToUserResponse(saved), nil
}

// GetMyInfo returns the caller's own profile.
func (s *Service) GetMyInfo(ctx context.Context, caller rbac.Principal) (UserResponse, error) {
	if !caller.Authenticated() {
		return UserResponse{}, shared.ErrUnauthenticated
	}
	u, err := s.find(ctx, s.repo.FindByUsername, caller.Username)
	if err != nil {
		return UserResponse{}, err
	}
	return ToUserResponse(u), nil
}

// UpdateUser applies req to the user with id. Only the owner may update a user.
func (s *Service) UpdateUser(ctx context.Context, caller rbac.Principal, id string, req UserUpdateRequest) (UserResponse, error) {
	u, err := s.find(ctx, s.repo.FindByID, id)
	if err != nil {
		return UserResponse{}, err
	}
	if err := rbac.RequireOwner(caller, u.Username); err != nil {
		return UserResponse{}, err
	}
	UpdateUser(&u, req)
	if req.Password != "" {
		if u.PasswordHash, err = s.hasher.Hash(req.Password); err != nil {
			return UserResponse{}, fmt.Errorf("users: hash password: %w", err)
		}
	}
	if req.Roles != nil {
		found, err := s.roles.FindAllByName(ctx, req.Roles)
		if err != nil {
			return UserResponse{}, err
		}
		u.Roles = make([]string, 0, len(found))
		for _, r := range found {
			u.Roles = append(u.Roles, r.Name)
		}
	}
	saved, err := s.repo.Save(ctx, u)
	if err != nil {
		return UserResponse{}, err
	}
	return ToUserResponse(saved), nil
}

// DeleteUser removes the user with id. Callers need the DELETE_DATA authority.
func (s *Service) DeleteUser(ctx context.Context, caller rbac.Principal, id string) error {
	if err := rbac.RequireAuthority(caller, shared.PermDeleteData); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return shared.ErrUserNotExisted
	}
	s.logger.Info("user deleted", slog.String("user_id", id), slog.String("by", caller.Username))
	return nil
}

// GetUsers lists every user. Callers need the ADMIN role.
func (s *Service) GetUsers(ctx context.Context, caller rbac.Principal) ([]UserResponse, error) {
	if err := rbac.RequireRole(caller, shared.RoleAdmin); err != nil {
		return nil, err
	}
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(all))
	for _, u := range all {
		out = append(out, ToUserResponse(u))
	}
	return out, nil
}

// GetUser returns the user with id when it belongs to the caller.
func (s *Service) GetUser(ctx context.Context, caller rbac.Principal, id string) (UserResponse, error) {
	u, err := s.find(ctx, s.repo.FindByID, id)
	if err != nil {
		return UserResponse{}, err
	}
	resp := ToUserResponse(u)
	if err := rbac.RequireOwner(caller, resp.Username); err != nil {
		return UserResponse{}, err
	}
	return resp, nil
}

// EnsureAdmin creates the bootstrap administrator unless username is taken.
// It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("users: hash password: %w", err)
	}
	saved, err := s.repo.Save(ctx, User{Username: username, PasswordHash: hash, Roles: []string{shared.RoleAdmin}})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	s.logger.Warn("admin user created with default password, change it", slog.String("username", saved.Username))
	return true, nil
}

func (s *Service) find(ctx context.Context, lookup func(context.Context, string) (User, error), key string) (User, error) {
	u, err := lookup(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, shared.ErrUserNotExisted
		}
		return User{}, err
	}
	return u, nil
}
