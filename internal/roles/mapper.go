package roles

import (
	"strings"

	"github.com/userhub/userhub/internal/permissions"
)

// ToRole maps a creation request to the entity. Permissions are resolved by
// the service, never copied from the request.
func ToRole(req RoleRequest) Role {
	return Role{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
}

// ToRoleResponse maps the entity to its public view.
func ToRoleResponse(r Role) RoleResponse {
	perms := make([]permissions.PermissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, permissions.ToPermissionResponse(p))
	}
	return RoleResponse{Name: r.Name, Description: r.Description, Permissions: perms}
}
