package rbac

import "github.com/userhub/userhub/internal/shared"

// RequireRole is a pre-authorization guard for role checks.
func RequireRole(caller Principal, role string) error {
	if !caller.Authenticated() {
		return shared.ErrUnauthenticated
	}
	if !caller.HasRole(role) {
		return shared.ErrUnauthorized
	}
	return nil
}

// RequireAuthority is a pre-authorization guard for permission checks.
func RequireAuthority(caller Principal, authority string) error {
	if !caller.Authenticated() {
		return shared.ErrUnauthenticated
	}
	if !caller.HasAuthority(authority) {
		return shared.ErrUnauthorized
	}
	return nil
}

// RequireOwner checks that the record owned by owner belongs to caller. Used
// both before a write and after a read, on the produced result.
func RequireOwner(caller Principal, owner string) error {
	if !caller.Authenticated() {
		return shared.ErrUnauthenticated
	}
	if owner != caller.Username {
		return shared.ErrUnauthorized
	}
	return nil
}
