package accounts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/userhub/userhub/internal/platform/httpx"
	"github.com/userhub/userhub/internal/shared"
)

// Handler serves /api/account. Responses carry the bare resource and errors
// are RFC7807 problems.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *shared.Validator
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, validator *shared.Validator) *Handler {
	return &Handler{logger: logger, service: service, validator: validator}
}

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{accountID}", h.get)
	r.Put("/{accountID}", h.update)
	r.Delete("/{accountID}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.GetAllAccounts(r.Context())
	if err != nil {
		httpx.RespondProblem(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}
	a, err := h.service.GetAccountByID(r.Context(), id)
	if err != nil {
		httpx.RespondProblem(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	a, ok := h.decode(w, r)
	if !ok {
		return
	}
	saved, err := h.service.CreateAccount(r.Context(), a)
	if err != nil {
		httpx.RespondProblem(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}
	a, ok := h.decode(w, r)
	if !ok {
		return
	}
	saved, err := h.service.UpdateAccount(r.Context(), id, a)
	if err != nil {
		httpx.RespondProblem(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(r.Context(), id); err != nil {
		httpx.RespondProblem(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) accountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "account id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Account, bool) {
	var a Account
	if err := httpx.DecodeJSON(r, &a); err != nil {
		httpx.RespondProblem(w, h.logger, err)
		return Account{}, false
	}
	if err := h.validator.Check(a, nil); err != nil {
		httpx.RespondProblem(w, h.logger, err)
		return Account{}, false
	}
	return a, true
}
