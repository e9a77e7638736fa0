package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shortr/shortr/internal/models"
	"github.com/shortr/shortr/internal/services"
)

// RedirectHandler handles short link redirect requests.
type RedirectHandler struct {
	service services.RedirectService
}

// NewRedirectHandler creates a new RedirectHandler.
func NewRedirectHandler(svc services.RedirectService) *RedirectHandler {
	return &RedirectHandler{service: svc}
}

// Redirect handles GET /{code} requests, counting the visit and redirecting
// to the original URL.
//
// The response is always a 302 with caching disabled: a cacheable or
// permanent redirect would let browsers skip the server on repeat visits
// and silently stop click counting.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request, shortCode string) {
	if strings.TrimSpace(shortCode) == "" {
		writeError(w, http.StatusBadRequest, "short code is required", "INVALID_REQUEST")
		return
	}

	result, err := h.service.Redirect(r.Context(), shortCode)
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	http.Redirect(w, r, result.OriginalURL, http.StatusFound)
}

// handleError maps service errors to HTTP responses for redirect endpoints.
func (h *RedirectHandler) handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrLinkNotFound) {
		writeError(w, http.StatusNotFound, "short link not found", "NOT_FOUND")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
