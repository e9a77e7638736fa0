package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortr/shortr/internal/middleware"
	"github.com/shortr/shortr/internal/models"
	"github.com/shortr/shortr/internal/services"
)

// stubLinkService returns canned results for LinkService calls.
type stubLinkService struct {
	createResult *services.CreateLinkResponse
	createErr    error
	customResult *services.CreateLinkResponse
	customErr    error
	listResult   []services.LinkInfo
	listErr      error

	lastCreate services.CreateLinkRequest
}

func (s *stubLinkService) Create(ctx context.Context, req services.CreateLinkRequest) (*services.CreateLinkResponse, error) {
	s.lastCreate = req
	return s.createResult, s.createErr
}

func (s *stubLinkService) CreateCustom(ctx context.Context, req services.CreateLinkRequest) (*services.CreateLinkResponse, error) {
	s.lastCreate = req
	return s.customResult, s.customErr
}

func (s *stubLinkService) ListUserLinks(ctx context.Context, userID int64) ([]services.LinkInfo, error) {
	return s.listResult, s.listErr
}

// withIdentity attaches an authenticated identity, as the auth gate would.
func withIdentity(req *http.Request, userID int64, name string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.IdentityKey, &middleware.Identity{
		UserID: userID,
		Email:  "alice@example.com",
		Name:   name,
	})
	return req.WithContext(ctx)
}

func TestLinkHandler_Create(t *testing.T) {
	userID := int64(1)
	svc := &stubLinkService{
		createResult: &services.CreateLinkResponse{
			ShortURL:    "http://localhost:8080/abc1234",
			ShortCode:   "abc1234",
			OriginalURL: "https://example.com",
			UserID:      &userID,
			CreatedAt:   time.Now(),
		},
	}
	handler := NewLinkHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/shortUrl/create",
		strings.NewReader(`{"url":"https://example.com"}`))
	req = withIdentity(req, 1, "Alice")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, "http://localhost:8080/abc1234", data["shortUrl"])
	assert.Equal(t, "https://example.com", data["originalUrl"])
	assert.Equal(t, "Alice", data["createdBy"])

	require.NotNil(t, svc.lastCreate.UserID)
	assert.Equal(t, int64(1), *svc.lastCreate.UserID)
}

func TestLinkHandler_Create_NoIdentity(t *testing.T) {
	handler := NewLinkHandler(&stubLinkService{})

	req := httptest.NewRequest(http.MethodPost, "/api/shortUrl/create",
		strings.NewReader(`{"url":"https://example.com"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "NO_TOKEN_PROVIDED", env.Error)
}

func TestLinkHandler_Create_InvalidURL(t *testing.T) {
	handler := NewLinkHandler(&stubLinkService{createErr: models.ErrInvalidURL})

	req := httptest.NewRequest(http.MethodPost, "/api/shortUrl/create",
		strings.NewReader(`{"url":"nope"}`))
	req = withIdentity(req, 1, "Alice")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "INVALID_URL", env.Error)
}

func TestLinkHandler_Create_RetriesExhausted(t *testing.T) {
	handler := NewLinkHandler(&stubLinkService{createErr: models.ErrRetriesExhausted})

	req := httptest.NewRequest(http.MethodPost, "/api/shortUrl/create",
		strings.NewReader(`{"url":"https://example.com"}`))
	req = withIdentity(req, 1, "Alice")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "RETRIES_EXHAUSTED", env.Error)
}

func TestLinkHandler_CreateCustom(t *testing.T) {
	svc := &stubLinkService{
		customResult: &services.CreateLinkResponse{
			ShortURL:    "http://localhost:8080/my-brand",
			ShortCode:   "my-brand",
			OriginalURL: "https://example.com",
			CreatedAt:   time.Now(),
		},
	}
	handler := NewLinkHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/shortUrl/custom",
		strings.NewReader(`{"url":"https://example.com","customUrl":"my-brand"}`))
	req = withIdentity(req, 1, "Alice")
	rec := httptest.NewRecorder()

	handler.CreateCustom(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "my-brand", svc.lastCreate.CustomSlug)
}

func TestLinkHandler_CreateCustom_Taken(t *testing.T) {
	handler := NewLinkHandler(&stubLinkService{customErr: models.ErrSlugTaken})

	req := httptest.NewRequest(http.MethodPost, "/api/shortUrl/custom",
		strings.NewReader(`{"url":"https://example.com","customUrl":"taken"}`))
	req = withIdentity(req, 1, "Alice")
	rec := httptest.NewRecorder()

	handler.CreateCustom(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "CUSTOM_URL_TAKEN", env.Error)
}

func TestLinkHandler_CreateCustom_Reserved(t *testing.T) {
	handler := NewLinkHandler(&stubLinkService{customErr: models.ErrReservedSlug})

	req := httptest.NewRequest(http.MethodPost, "/api/shortUrl/custom",
		strings.NewReader(`{"url":"https://example.com","customUrl":"admin"}`))
	req = withIdentity(req, 1, "Alice")
	rec := httptest.NewRecorder()

	handler.CreateCustom(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "INVALID_CUSTOM_URL", env.Error)
}

func TestLinkHandler_ListUser(t *testing.T) {
	svc := &stubLinkService{
		listResult: []services.LinkInfo{
			{ShortURL: "http://localhost:8080/abc1234", OriginalURL: "https://example.com/a", Clicks: 3, CreatedAt: time.Now()},
			{ShortURL: "http://localhost:8080/def5678", OriginalURL: "https://example.com/b", Clicks: 0, CreatedAt: time.Now()},
		},
	}
	handler := NewLinkHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/shortUrl/user", nil)
	req = withIdentity(req, 1, "Alice")
	rec := httptest.NewRecorder()

	handler.ListUser(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
	assert.Len(t, data["urls"], 2)
}

func TestLinkHandler_ListUser_Empty(t *testing.T) {
	handler := NewLinkHandler(&stubLinkService{listResult: []services.LinkInfo{}})

	req := httptest.NewRequest(http.MethodGet, "/api/shortUrl/user", nil)
	req = withIdentity(req, 1, "Alice")
	rec := httptest.NewRecorder()

	handler.ListUser(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, float64(0), data["count"])
	assert.NotNil(t, data["urls"])
}
