package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"cryptopulse/internal/dataset"
)

// ErrorHandler converts domain errors into APIError responses and logs them
// with request context.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError maps err to an APIError and writes it as the response.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	apiErr := h.toAPIError(err)
	apiErr.TraceID = reqID

	if renderErr := render.Render(w, r, apiErr); renderErr != nil {
		http.Error(w, apiErr.Message, apiErr.StatusCode)
	}
}

// toAPIError maps domain errors to their HTTP representation. Unknown coins
// are client mistakes (404); insufficient history means the data cannot
// support the requested computation (422); a load failure is a server-side
// dataset problem (500).
func (h *ErrorHandler) toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var loadErr *dataset.LoadError
	switch {
	case errors.Is(err, dataset.ErrUnknownCoin):
		return NewWithDetails(http.StatusNotFound, "UNKNOWN_COIN",
			"Coin not present in dataset", err.Error())
	case errors.Is(err, dataset.ErrInsufficientHistory):
		return NewWithDetails(http.StatusUnprocessableEntity, "INSUFFICIENT_HISTORY",
			"Not enough observations for this computation", err.Error())
	case errors.As(err, &loadErr):
		return NewWithDetails(http.StatusInternalServerError, "DATA_LOAD_ERROR",
			fmt.Sprintf("Dataset could not be loaded from %s", loadErr.Source), loadErr.Reason)
	default:
		return ErrInternalServer
	}
}
