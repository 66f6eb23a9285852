package permissions

import "strings"

// ToPermission maps a creation request to the entity.
func ToPermission(req PermissionRequest) Permission {
	return Permission{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
}

// ToPermissionResponse maps the entity to its public view.
func ToPermissionResponse(p Permission) PermissionResponse {
	return PermissionResponse{Name: p.Name, Description: p.Description}
}
