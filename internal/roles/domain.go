package roles

import "github.com/userhub/userhub/internal/permissions"

// Role groups permissions and is assigned to users by name.
type Role struct {
	Name        string
	Description string
	Permissions []permissions.Permission
}

// PermissionNames lists the names of the role's permissions.
func (r Role) PermissionNames() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Name)
	}
	return names
}

// RoleRequest is the body of POST /roles.
type RoleRequest struct {
	Name        string   `json:"name" validate:"required,authority,max=64"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions"`
}

// RoleResponse is the public view of a Role.
type RoleResponse struct {
	Name        string                           `json:"name"`
	Description string                           `json:"description"`
	Permissions []permissions.PermissionResponse `json:"permissions"`
}
