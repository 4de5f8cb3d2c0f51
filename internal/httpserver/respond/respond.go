package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

// ErrorBody is the JSON shape of every API error.
type ErrorBody struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

const msgInternal = "Something went wrong. Please try again later."

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Status maps a domain error to its HTTP status and user-facing body.
func Status(err error) (int, ErrorBody) {
	var (
		validation *domain.ErrValidation
		authn      *domain.ErrAuthentication
		authz      *domain.ErrAuthorization
		notFound   *domain.ErrNotFound
		transient  *domain.ErrTransientBackend
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, ErrorBody{Message: validation.Reason, Details: validation.Details}
	case errors.As(err, &authn):
		return http.StatusUnauthorized, ErrorBody{Message: authn.Error()}
	case errors.As(err, &authz):
		return http.StatusForbidden, ErrorBody{Message: authz.Error()}
	case errors.As(err, &notFound):
		return http.StatusNotFound, ErrorBody{Message: notFound.Error()}
	case errors.As(err, &transient):
		return http.StatusServiceUnavailable, ErrorBody{Message: transient.Message}
	default:
		return http.StatusInternalServerError, ErrorBody{Message: msgInternal}
	}
}

// Error writes err as JSON. Unclassified errors are logged, never echoed.
func Error(w http.ResponseWriter, log logger.Logger, err error) {
	status, body := Status(err)
	if status == http.StatusInternalServerError {
		log.Error("unhandled error", logger.Error(err))
	}
	JSON(w, status, body)
}
