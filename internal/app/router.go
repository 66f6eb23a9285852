package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/userhub/userhub/internal/accounts"
	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/observability"
	"github.com/userhub/userhub/internal/permissions"
	"github.com/userhub/userhub/internal/rbac"
	"github.com/userhub/userhub/internal/roles"
	"github.com/userhub/userhub/internal/shared"
	"github.com/userhub/userhub/internal/users"
	"github.com/userhub/userhub/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *permissions.Handler
	AccountsHandler    *accounts.Handler
	JobHandler         *jobs.Handler
	Authn              func(http.Handler) http.Handler
	RBACMiddleware     rbac.Middleware
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with userhub defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.PermissionsHandler != nil {
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
	}
	if params.AccountsHandler != nil {
		r.Route("/api/account", params.AccountsHandler.MountRoutes)
	}
	if params.JobHandler != nil && params.Authn != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Use(params.Authn)
			r.Use(params.RBACMiddleware.RequireAny(shared.RolePrefix + shared.RoleAdmin))
			params.JobHandler.MountRoutes(r)
		})
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
