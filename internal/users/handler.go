package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/userhub/userhub/internal/platform/httpx"
	"github.com/userhub/userhub/internal/rbac"
	"github.com/userhub/userhub/internal/shared"
)

// Handler manages user management endpoints.
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

// MountRoutes registers user routes. Registration is public.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.createUser)
	r.Group(func(r chi.Router) {
		r.Use(h.authn)
		r.Get("/", h.listUsers)
		r.Get("/myInfo", h.myInfo)
		r.Get("/{userID}", h.getUser)
		r.Put("/{userID}", h.updateUser)
		r.Delete("/{userID}", h.deleteUser)
	})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req UserCreationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.validator.Check(req, creationRules); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	resp, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, resp)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.GetUsers(r.Context(), rbac.PrincipalFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, all)
}

func (h *Handler) myInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetMyInfo(r.Context(), rbac.PrincipalFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, resp)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetUser(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, resp)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req UserUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.validator.Check(req, updateRules); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	caller := rbac.PrincipalFromContext(r.Context())
	resp, err := h.service.UpdateUser(r.Context(), caller, chi.URLParam(r, "userID"), req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, resp)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	caller := rbac.PrincipalFromContext(r.Context())
	if err := h.service.DeleteUser(r.Context(), caller, chi.URLParam(r, "userID")); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Message(w, "User has been deleted")
}
