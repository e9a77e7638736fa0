package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shortr/shortr/internal/middleware"
	"github.com/shortr/shortr/internal/services"
)

// CreateLinkRequest represents the request body for creating a short link.
type CreateLinkRequest struct {
	URL       string `json:"url"`
	CustomURL string `json:"customUrl,omitempty"`
}

// CreateLinkResponse represents a successfully created short link.
type CreateLinkResponse struct {
	ShortURL    string `json:"shortUrl"`
	OriginalURL string `json:"originalUrl"`
	UserID      *int64 `json:"userId"`
	CreatedBy   string `json:"createdBy"`
	CreatedAt   string `json:"created_at"`
}

// LinkListEntry is one link in the user's listing.
type LinkListEntry struct {
	ShortURL    string `json:"shortUrl"`
	OriginalURL string `json:"originalUrl"`
	Clicks      int64  `json:"clicks"`
	CreatedAt   string `json:"created_at"`
}

// LinkListResponse is the payload for the user's link listing.
type LinkListResponse struct {
	URLs  []LinkListEntry `json:"urls"`
	Count int             `json:"count"`
}

// LinkHandler handles authenticated short link endpoints.
type LinkHandler struct {
	service services.LinkService
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc services.LinkService) *LinkHandler {
	return &LinkHandler{service: svc}
}

// Create handles POST /api/shortUrl/create requests.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "NO_TOKEN_PROVIDED")
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_REQUEST")
		return
	}

	resp, err := h.service.Create(r.Context(), services.CreateLinkRequest{
		OriginalURL: req.URL,
		UserID:      &identity.UserID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toCreateResponse(resp, identity.Name), "short link created")
}

// CreateCustom handles POST /api/shortUrl/custom requests.
func (h *LinkHandler) CreateCustom(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "NO_TOKEN_PROVIDED")
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_REQUEST")
		return
	}

	resp, err := h.service.CreateCustom(r.Context(), services.CreateLinkRequest{
		OriginalURL: req.URL,
		CustomSlug:  req.CustomURL,
		UserID:      &identity.UserID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toCreateResponse(resp, identity.Name), "custom short link created")
}

// ListUser handles GET /api/shortUrl/user requests.
func (h *LinkHandler) ListUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "NO_TOKEN_PROVIDED")
		return
	}

	infos, err := h.service.ListUserLinks(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entries := make([]LinkListEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, LinkListEntry{
			ShortURL:    info.ShortURL,
			OriginalURL: info.OriginalURL,
			Clicks:      info.Clicks,
			CreatedAt:   info.CreatedAt.Format(time.RFC3339),
		})
	}

	writeSuccess(w, http.StatusOK, LinkListResponse{
		URLs:  entries,
		Count: len(entries),
	}, "")
}

func toCreateResponse(resp *services.CreateLinkResponse, createdBy string) CreateLinkResponse {
	return CreateLinkResponse{
		ShortURL:    resp.ShortURL,
		OriginalURL: resp.OriginalURL,
		UserID:      resp.UserID,
		CreatedBy:   createdBy,
		CreatedAt:   resp.CreatedAt.Format(time.RFC3339),
	}
}
