package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shortr/shortr/internal/models"
	"github.com/shortr/shortr/internal/services"
)

// Envelope is the JSON wrapper for every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeSuccess wraps data in the success envelope.
func writeSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	writeJSON(w, status, Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// writeError wraps a failure in the error envelope.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, Envelope{
		Success: false,
		Message: message,
		Error:   code,
	})
}

// mapServiceError translates a domain error into an HTTP status and error
// code. Anything outside the known set is a storage or internal failure.
func mapServiceError(err error) (int, string, string) {
	switch {
	case errors.Is(err, models.ErrEmptyURL),
		errors.Is(err, models.ErrInvalidURL):
		return http.StatusBadRequest, err.Error(), "INVALID_URL"
	case errors.Is(err, services.ErrDangerousURL),
		errors.Is(err, services.ErrPrivateIPURL),
		errors.Is(err, services.ErrBlockedHostURL),
		errors.Is(err, services.ErrURLTooLong):
		return http.StatusBadRequest, err.Error(), "INVALID_URL"
	case errors.Is(err, models.ErrEmptySlug),
		errors.Is(err, models.ErrInvalidSlug),
		errors.Is(err, models.ErrReservedSlug):
		return http.StatusBadRequest, err.Error(), "INVALID_CUSTOM_URL"
	case errors.Is(err, models.ErrEmptyName),
		errors.Is(err, models.ErrInvalidEmail),
		errors.Is(err, models.ErrPasswordTooShort):
		return http.StatusBadRequest, err.Error(), "INVALID_INPUT"
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS"
	case errors.Is(err, models.ErrEmailTaken):
		return http.StatusConflict, err.Error(), "EMAIL_TAKEN"
	case errors.Is(err, models.ErrSlugTaken):
		return http.StatusConflict, err.Error(), "CUSTOM_URL_TAKEN"
	case errors.Is(err, models.ErrRetriesExhausted):
		return http.StatusConflict, err.Error(), "RETRIES_EXHAUSTED"
	case errors.Is(err, models.ErrLinkNotFound),
		errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound, err.Error(), "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR"
	}
}

// writeServiceError maps and writes a domain error.
func writeServiceError(w http.ResponseWriter, err error) {
	status, message, code := mapServiceError(err)
	writeError(w, status, message, code)
}
