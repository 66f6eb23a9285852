package permissions

// Permission is an atomic capability granted to roles.
type Permission struct {
	Name        string
	Description string
}

// PermissionRequest is the body of POST /permissions.
type PermissionRequest struct {
	Name        string `json:"name" validate:"required,authority,max=64"`
	Description string `json:"description" validate:"max=255"`
}

// PermissionResponse is the public view of a Permission.
type PermissionResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
