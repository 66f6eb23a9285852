package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/userhub/userhub/internal/platform/httpx"
	"github.com/userhub/userhub/internal/shared"
)

// Middleware wires route-level authorization helpers for HTTP handlers. It
// expects an authentication middleware to have stored the Principal first.
type Middleware struct {
	Logger *slog.Logger
}

// RequireAny ensures the current caller has at least one of the required authorities.
func (m Middleware) RequireAny(authorities ...string) func(http.Handler) http.Handler {
	normalized := normalizeAuthorities(authorities)
	return m.require(normalized, hasAnyAuthority)
}

// RequireAll ensures the current caller has all required authorities.
func (m Middleware) RequireAll(authorities ...string) func(http.Handler) http.Handler {
	normalized := normalizeAuthorities(authorities)
	return m.require(normalized, hasAllAuthorities)
}

func (m Middleware) require(required []string, match func(Principal, []string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			caller := PrincipalFromContext(r.Context())
			if !caller.Authenticated() {
				httpx.RespondError(w, m.Logger, shared.ErrUnauthenticated)
				return
			}
			if match(caller, required) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac denied", slog.String("user", caller.Username), slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, m.Logger, shared.ErrUnauthorized)
		})
	}
}

func normalizeAuthorities(authorities []string) []string {
	unique := make(map[string]struct{}, len(authorities))
	for _, a := range authorities {
		a = strings.TrimSpace(strings.ToUpper(a))
		if a == "" {
			continue
		}
		unique[a] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for a := range unique {
		normalized = append(normalized, a)
	}
	return normalized
}

func hasAnyAuthority(caller Principal, required []string) bool {
	for _, r := range required {
		if caller.HasAuthority(r) {
			return true
		}
	}
	return false
}

func hasAllAuthorities(caller Principal, required []string) bool {
	for _, r := range required {
		if !caller.HasAuthority(r) {
			return false
		}
	}
	return true
}
