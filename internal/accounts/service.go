package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/userhub/userhub/internal/shared"
)

// RepositoryPort defines data access methods for accounts.
type RepositoryPort interface {
	FindAll(ctx context.Context) ([]Account, error)
	FindByID(ctx context.Context, id int64) (Account, error)
	Save(ctx context.Context, a Account) (Account, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// Service handles account business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// GetAllAccounts lists every account.
func (s *Service) GetAllAccounts(ctx context.Context) ([]Account, error) {
	return s.repo.FindAll(ctx)
}

// GetAccountByID fetches one account or shared.ErrNotFound.
func (s *Service) GetAccountByID(ctx context.Context, id int64) (Account, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Account{}, notFound(err, id)
	}
	return a, nil
}

// CreateAccount stores a new account. Any client supplied id is ignored.
func (s *Service) CreateAccount(ctx context.Context, a Account) (Account, error) {
	a.ID = 0
	normalize(&a)
	return s.repo.Save(ctx, a)
}

// UpdateAccount replaces the account with id.
func (s *Service) UpdateAccount(ctx context.Context, id int64, a Account) (Account, error) {
	a.ID = id
	normalize(&a)
	saved, err := s.repo.Save(ctx, a)
	if err != nil {
		return Account{}, notFound(err, id)
	}
	return saved, nil
}

// DeleteAccount removes the account with id.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound(shared.ErrNotFound, id)
	}
	return nil
}

func normalize(a *Account) {
	a.Owner = strings.TrimSpace(a.Owner)
	a.Email = strings.TrimSpace(a.Email)
}

func notFound(err error, id int64) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("account %d: %w", id, shared.ErrNotFound)
	}
	return err
}
