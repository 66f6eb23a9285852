package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/userhub/userhub/internal/platform/httpx"
	"github.com/userhub/userhub/internal/shared"
)

// Handler exposes the token endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *shared.Validator
}

// NewHandler constructs the auth handler.
func NewHandler(logger *slog.Logger, service *Service, validator *shared.Validator) *Handler {
	return &Handler{logger: logger, service: service, validator: validator}
}

// MountRoutes registers auth routes. All of them are public.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/token", h.token)
	r.Post("/introspect", h.introspect)
	r.Post("/logout", h.logout)
	r.Post("/refresh", h.refresh)
}

func (h *Handler) token(w http.ResponseWriter, r *http.Request) {
	var req AuthenticationRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.service.Authenticate(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, resp)
}

func (h *Handler) introspect(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	resp, err := h.service.Introspect(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, resp)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.Logout(r.Context(), req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.service.Refresh(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, resp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := httpx.DecodeJSON(r, req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return false
	}
	if err := h.validator.Check(req, nil); err != nil {
		httpx.RespondError(w, h.logger, err)
		return false
	}
	return true
}
