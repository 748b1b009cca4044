package http

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HandleError maps domain errors onto HTTP responses. Unmapped errors become
// opaque 500s; the details stay in the log.
func HandleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		WriteJSON(w, appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make(map[string]interface{}, len(validationErrs.Errors))
		for field, messages := range validationErrs.Errors {
			details[field] = messages
		}
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Validation failed",
			Code:    "VALIDATION_ERROR",
			Details: details,
		})
		return
	}

	status, code := classify(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "unhandled error",
			"error", err, "method", r.Method, "path", r.URL.Path)
		WriteJSON(w, status, ErrorResponse{
			Error: "An unexpected error occurred",
			Code:  code,
		})
		return
	}

	WriteJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrServiceNotFound):
		return http.StatusNotFound, "SERVICE_NOT_FOUND"
	case errors.Is(err, apperrors.ErrTicketNotFound):
		return http.StatusNotFound, "TICKET_NOT_FOUND"
	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"

	// An empty queue is not a fault, but there is still no ticket to
	// return.
	case errors.Is(err, apperrors.ErrEmptyQueue):
		return http.StatusNotFound, "EMPTY_QUEUE"

	case errors.Is(err, apperrors.ErrInvalidStatusTransition):
		return http.StatusConflict, "INVALID_STATUS_TRANSITION"
	case errors.Is(err, apperrors.ErrServiceInactive):
		return http.StatusConflict, "SERVICE_INACTIVE"
	case errors.Is(err, apperrors.ErrServiceHasTickets):
		return http.StatusConflict, "SERVICE_HAS_ACTIVE_TICKETS"
	case errors.Is(err, apperrors.ErrUserExists),
		errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "CONFLICT"

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"

	case errors.Is(err, apperrors.ErrInvalidPriority),
		errors.Is(err, apperrors.ErrInvalidStatus),
		errors.Is(err, apperrors.ErrNotesTooLong),
		errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, "BAD_REQUEST"

	case errors.Is(err, apperrors.ErrAllocationConflict):
		return http.StatusServiceUnavailable, "ALLOCATION_CONFLICT"

	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
