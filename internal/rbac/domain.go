package rbac

import (
	"strings"

	"github.com/userhub/userhub/internal/shared"
)

// Principal describes the authenticated caller of a service operation.
type Principal struct {
	Username    string
	TokenID     string
	Authorities []string
}

// NewPrincipal builds a Principal from a space separated token scope.
func NewPrincipal(username, tokenID, scope string) Principal {
	return Principal{Username: username, TokenID: tokenID, Authorities: strings.Fields(scope)}
}

// Authenticated reports whether p identifies a caller.
func (p Principal) Authenticated() bool {
	return p.Username != ""
}

// HasAuthority reports whether p was granted the authority verbatim.
func (p Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if strings.EqualFold(a, authority) {
			return true
		}
	}
	return false
}

// HasRole reports whether p holds role, stored as ROLE_<role> in the scope.
func (p Principal) HasRole(role string) bool {
	return p.HasAuthority(shared.RolePrefix + role)
}
