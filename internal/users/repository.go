package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/userhub/userhub/internal/platform/db"
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

const selectUsers = `SELECT u.id, u.username, u.password_hash, u.first_name, u.last_name, u.dob,
	COALESCE(array_agg(ur.role_name ORDER BY ur.role_name) FILTER (WHERE ur.role_name IS NOT NULL), '{}') AS roles,
	u.created_at, u.updated_at
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id`

const groupUsers = ` GROUP BY u.id`

// ExistsByUsername reports whether a user with username exists.
func (r *Repository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("users: exists: %w", err)
	}
	return exists, nil
}

// FindByID fetches a user by id.
func (r *Repository) FindByID(ctx context.Context, id string) (User, error) {
	return r.findOne(ctx, selectUsers+` WHERE u.id = $1`+groupUsers, id)
}

// FindByUsername fetches a user by username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (User, error) {
	return r.findOne(ctx, selectUsers+` WHERE u.username = $1`+groupUsers, username)
}

// FindAll returns all users ordered by username.
func (r *Repository) FindAll(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, selectUsers+groupUsers+` ORDER BY u.username`)
	if err != nil {
		return nil, fmt.Errorf("users: find all: %w", err)
	}
	list, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("users: scan: %w", err)
	}
	return list, nil
}

// Save inserts a user without id, or updates the user with the same id. The
// role set is replaced in the same transaction.
func (r *Repository) Save(ctx context.Context, u User) (User, error) {
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = uuid.NewString()
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const upsert = `INSERT INTO users (id, username, password_hash, first_name, last_name, dob, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	username = EXCLUDED.username,
	password_hash = EXCLUDED.password_hash,
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	dob = EXCLUDED.dob,
	updated_at = EXCLUDED.updated_at
RETURNING created_at`
		if err := tx.QueryRow(ctx, upsert, u.ID, u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Dob, u.CreatedAt, u.UpdatedAt).Scan(&u.CreatedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, u.ID); err != nil {
			return err
		}
		for _, role := range u.Roles {
			if _, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role_name) VALUES ($1, $2)`, u.ID, role); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, fmt.Errorf("users: save %s: %w", u.Username, shared.ErrDuplicate)
		}
		return User{}, fmt.Errorf("users: save: %w", err)
	}
	return u, nil
}

// DeleteByID removes a user. Deleting a missing user is a no-op reported as false.
func (r *Repository) DeleteByID(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("users: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) findOne(ctx context.Context, query string, arg string) (User, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return User{}, fmt.Errorf("users: query: %w", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, fmt.Errorf("users: scan: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.CollectableRow) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Dob, &u.Roles, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
