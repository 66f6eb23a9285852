package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/userhub/userhub/internal/rbac"
	"github.com/userhub/userhub/internal/roles"
	"github.com/userhub/userhub/internal/shared"
	"github.com/userhub/userhub/internal/users"
)

// UserLookup loads users for authentication.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (users.User, error)
}

// RoleLookup resolves the roles granted to a user.
type RoleLookup interface {
	FindAllByName(ctx context.Context, names []string) ([]roles.Role, error)
}

// Observer is notified about the outcome of token operations.
type Observer interface {
	ObserveAuth(event string, ok bool)
}

type noopObserver struct{}

func (noopObserver) ObserveAuth(string, bool) {}

// Service wraps authentication business rules.
type Service struct {
	users    UserLookup
	roles    RoleLookup
	hasher   shared.PasswordHasher
	tokens   *TokenIssuer
	revoked  RevocationStore
	logger   *slog.Logger
	observer Observer
}

// NewService constructs a new Service.
func NewService(users UserLookup, roles RoleLookup, hasher shared.PasswordHasher, tokens *TokenIssuer, revoked RevocationStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, roles: roles, hasher: hasher, tokens: tokens, revoked: revoked, logger: logger, observer: noopObserver{}}
}

// WithObserver attaches o to the service.
func (s *Service) WithObserver(o Observer) *Service {
	if o != nil {
		s.observer = o
	}
	return s
}

// Authenticate validates username/password credentials and issues a token.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, req AuthenticationRequest) (resp AuthenticationResponse, err error) {
	defer func() { s.observer.ObserveAuth("token", err == nil) }()
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return AuthenticationResponse{}, shared.ErrUnauthenticated
		}
		return AuthenticationResponse{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			return AuthenticationResponse{}, shared.ErrUnauthenticated
		}
		return AuthenticationResponse{}, err
	}
	token, err := s.issueFor(ctx, user)
	if err != nil {
		return AuthenticationResponse{}, err
	}
	return AuthenticationResponse{Token: token, Authenticated: true}, nil
}

// Introspect reports whether token is currently accepted. A bad token is not an error.
func (s *Service) Introspect(ctx context.Context, req TokenRequest) (IntrospectResponse, error) {
	claims, err := s.verify(ctx, req.Token, false)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthenticated) {
			return IntrospectResponse{Valid: false}, nil
		}
		return IntrospectResponse{}, err
	}
	expires := claims.ExpiresAt.Time
	return IntrospectResponse{Valid: true, ExpiresAt: &expires}, nil
}

// Logout invalidates token. Logging out an invalid token is a no-op.
func (s *Service) Logout(ctx context.Context, req TokenRequest) error {
	claims, err := s.verify(ctx, req.Token, true)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthenticated) {
			return nil
		}
		return err
	}
	if err := s.revoke(ctx, claims); err != nil {
		return err
	}
	s.observer.ObserveAuth("logout", true)
	s.logger.Info("token invalidated", slog.String("user", claims.Subject), slog.String("jti", claims.ID))
	return nil
}

// Refresh exchanges a token still inside its refresh window for a new one.
// The old token is invalidated.
func (s *Service) Refresh(ctx context.Context, req TokenRequest) (resp AuthenticationResponse, err error) {
	defer func() { s.observer.ObserveAuth("refresh", err == nil) }()
	claims, err := s.verify(ctx, req.Token, true)
	if err != nil {
		return AuthenticationResponse{}, err
	}
	if err := s.revoke(ctx, claims); err != nil {
		return AuthenticationResponse{}, err
	}
	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return AuthenticationResponse{}, shared.ErrUnauthenticated
		}
		return AuthenticationResponse{}, err
	}
	token, err := s.issueFor(ctx, user)
	if err != nil {
		return AuthenticationResponse{}, err
	}
	return AuthenticationResponse{Token: token, Authenticated: true}, nil
}

// Verify turns a bearer token into the calling Principal.
func (s *Service) Verify(ctx context.Context, token string) (rbac.Principal, error) {
	claims, err := s.verify(ctx, token, false)
	if err != nil {
		return rbac.Principal{}, err
	}
	return rbac.NewPrincipal(claims.Subject, claims.ID, claims.Scope), nil
}

func (s *Service) verify(ctx context.Context, token string, refresh bool) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, shared.ErrUnauthenticated
	}
	claims, err := s.tokens.Parse(token, refresh)
	if err != nil {
		return Claims{}, shared.ErrUnauthenticated
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Claims{}, err
	}
	if revoked {
		return Claims{}, shared.ErrUnauthenticated
	}
	return claims, nil
}

func (s *Service) revoke(ctx context.Context, claims Claims) error {
	return s.revoked.Revoke(ctx, InvalidatedToken{ID: claims.ID, ExpiresAt: s.tokens.UselessAfter(claims)})
}

func (s *Service) issueFor(ctx context.Context, user users.User) (string, error) {
	scope, err := s.scopeFor(ctx, user)
	if err != nil {
		return "", err
	}
	token, _, err := s.tokens.Issue(user.Username, scope)
	return token, err
}

// scopeFor lists ROLE_<name> for every role followed by the permissions of that role.
func (s *Service) scopeFor(ctx context.Context, user users.User) (string, error) {
	if len(user.Roles) == 0 {
		return "", nil
	}
	granted, err := s.roles.FindAllByName(ctx, user.Roles)
	if err != nil {
		return "", err
	}
	seen := make(map[string]struct{})
	var parts []string
	add := func(authority string) {
		if _, ok := seen[authority]; ok {
			return
		}
		seen[authority] = struct{}{}
		parts = append(parts, authority)
	}
	for _, role := range granted {
		add(shared.RolePrefix + role.Name)
		for _, p := range role.Permissions {
			add(p.Name)
		}
	}
	return strings.Join(parts, " "), nil
}
