package roles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/userhub/userhub/internal/permissions"
	"github.com/userhub/userhub/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectRoles = `SELECT r.name, r.description, p.name, p.description
FROM roles r
LEFT JOIN role_permissions rp ON rp.role_name = r.name
LEFT JOIN permissions p ON p.name = rp.permission_name`

// Save upserts the role and replaces its permission set.
func (r *Repository) Save(ctx context.Context, role Role) (Role, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO roles (name, description) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description`, role.Name, role.Description); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_name = $1`, role.Name); err != nil {
			return err
		}
		for _, p := range role.Permissions {
			if _, err := tx.Exec(ctx, `INSERT INTO role_permissions (role_name, permission_name) VALUES ($1, $2)`, role.Name, p.Name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Role{}, fmt.Errorf("roles: save: %w", err)
	}
	return role, nil
}

// FindAll returns all roles with their permissions, ordered by name.
func (r *Repository) FindAll(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, selectRoles+` ORDER BY r.name, p.name`)
	if err != nil {
		return nil, fmt.Errorf("roles: find all: %w", err)
	}
	return collect(rows)
}

// FindAllByName returns the roles whose names are listed. Unknown names are skipped.
func (r *Repository) FindAllByName(ctx context.Context, names []string) ([]Role, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, selectRoles+` WHERE r.name = ANY($1) ORDER BY r.name, p.name`, names)
	if err != nil {
		return nil, fmt.Errorf("roles: find by name: %w", err)
	}
	return collect(rows)
}

// DeleteByID removes a role and its join rows. Users keep their other roles.
func (r *Repository) DeleteByID(ctx context.Context, name string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("roles: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// collect folds the role/permission join into roles. Rows must be ordered by role name.
func collect(rows pgx.Rows) ([]Role, error) {
	defer rows.Close()
	var out []Role
	for rows.Next() {
		var (
			name, description string
			permName, permDesc *string
		)
		if err := rows.Scan(&name, &description, &permName, &permDesc); err != nil {
			return nil, fmt.Errorf("roles: scan: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].Name != name {
			out = append(out, Role{Name: name, Description: description})
		}
		if permName != nil {
			current := &out[len(out)-1]
			p := permissions.Permission{Name: *permName}
			if permDesc != nil {
				p.Description = *permDesc
			}
			current.Permissions = append(current.Permissions, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: rows: %w", err)
	}
	return out, nil
}
