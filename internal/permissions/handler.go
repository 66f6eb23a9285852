package permissions

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/userhub/userhub/internal/platform/httpx"
	"github.com/userhub/userhub/internal/rbac"
	"github.com/userhub/userhub/internal/shared"
)

// Handler exposes permission endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *shared.Validator
	authn     func(http.Handler) http.Handler
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, validator *shared.Validator, authn func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, validator: validator, authn: authn}
}

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authn)
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Delete("/{permission}", h.delete)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req PermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.validator.Check(req, nil); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, resp)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.GetAll(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, perms)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	caller := rbac.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), caller, chi.URLParam(r, "permission")); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, nil)
}
