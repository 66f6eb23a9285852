package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/userhub/userhub/internal/shared"
)

// RespondError maps domain errors to an error envelope. Errors without an
// ErrorCode are logged and reported as uncategorized.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code, message := shared.CodeOf(err)
	if code == shared.ErrUncategorized && logger != nil {
		logger.Error("unhandled error", slog.Any("error", err))
	}
	JSON(w, code.Status, Envelope{Code: code.Code, Message: message})
}

// RespondProblem maps domain errors to RFC7807 responses.
func RespondProblem(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
		return
	}
	code, message := shared.CodeOf(err)
	if code == shared.ErrUncategorized {
		if logger != nil {
			logger.Error("unhandled error", slog.Any("error", err))
		}
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	Problem(w, code.Status, http.StatusText(code.Status), message)
}
