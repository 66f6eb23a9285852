package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/userhub/userhub/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, owner, email, balance, currency, created_at, updated_at`

// FindAll returns every account ordered by id.
func (r *Repository) FindAll(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("accounts: find all: %w", err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Account])
	if err != nil {
		return nil, fmt.Errorf("accounts: scan: %w", err)
	}
	return list, nil
}

// FindByID fetches an account.
func (r *Repository) FindByID(ctx context.Context, id int64) (Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	if err != nil {
		return Account{}, fmt.Errorf("accounts: find: %w", err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, fmt.Errorf("accounts: scan: %w", err)
	}
	return a, nil
}

// Save inserts an account with a zero id and updates it otherwise.
func (r *Repository) Save(ctx context.Context, a Account) (Account, error) {
	var row pgx.Row
	if a.ID == 0 {
		row = r.pool.QueryRow(ctx, `INSERT INTO accounts (owner, email, balance, currency)
VALUES ($1, $2, $3, $4)
RETURNING `+accountColumns, a.Owner, a.Email, a.Balance, a.Currency)
	} else {
		row = r.pool.QueryRow(ctx, `UPDATE accounts SET owner = $2, email = $3, balance = $4, currency = $5, updated_at = NOW()
WHERE id = $1
RETURNING `+accountColumns, a.ID, a.Owner, a.Email, a.Balance, a.Currency)
	}
	var saved Account
	if err := row.Scan(&saved.ID, &saved.Owner, &saved.Email, &saved.Balance, &saved.Currency, &saved.CreatedAt, &saved.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, fmt.Errorf("accounts: save: %w", err)
	}
	return saved, nil
}

// DeleteByID removes an account and reports whether it existed.
func (r *Repository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("accounts: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
