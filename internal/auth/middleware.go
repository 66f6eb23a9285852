package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/userhub/userhub/internal/platform/httpx"
	"github.com/userhub/userhub/internal/rbac"
)

// Authenticator guards routes with bearer token authentication.
type Authenticator struct {
	Service *Service
	Logger  *slog.Logger
}

// Middleware stores the verified Principal on the request context. Requests
// without a valid bearer token get a 401 envelope.
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.Service.Verify(r.Context(), bearerToken(r))
		if err != nil {
			httpx.RespondError(w, a.Logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), principal)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
