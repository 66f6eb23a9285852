package permissions

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save inserts the permission or updates its description.
func (r *Repository) Save(ctx context.Context, p Permission) (Permission, error) {
	const q = `INSERT INTO permissions (name, description) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
RETURNING name, description`
	var saved Permission
	if err := r.pool.QueryRow(ctx, q, p.Name, p.Description).Scan(&saved.Name, &saved.Description); err != nil {
		return Permission{}, fmt.Errorf("permissions: save: %w", err)
	}
	return saved, nil
}

// FindAll returns all permissions ordered by name.
func (r *Repository) FindAll(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, description FROM permissions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("permissions: find all: %w", err)
	}
	return collect(rows)
}

// FindAllByName returns the permissions whose names are listed. Unknown names are skipped.
func (r *Repository) FindAllByName(ctx context.Context, names []string) ([]Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT name, description FROM permissions WHERE name = ANY($1) ORDER BY name`, names)
	if err != nil {
		return nil, fmt.Errorf("permissions: find by name: %w", err)
	}
	return collect(rows)
}

// DeleteByID removes a permission. Deleting a missing permission is a no-op.
func (r *Repository) DeleteByID(ctx context.Context, name string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("permissions: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func collect(rows pgx.Rows) ([]Permission, error) {
	perms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Permission, error) {
		var p Permission
		err := row.Scan(&p.Name, &p.Description)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("permissions: scan: %w", err)
	}
	return perms, nil
}
