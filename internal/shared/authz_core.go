package shared

// Built-in roles.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// RolePrefix marks role authorities inside a token scope.
const RolePrefix = "ROLE_"

// Built-in permissions.
const (
	PermDeleteData = "DELETE_DATA"
)
