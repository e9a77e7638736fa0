package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortr/shortr/internal/config"
	"github.com/shortr/shortr/internal/handlers"
	"github.com/shortr/shortr/internal/middleware"
	"github.com/shortr/shortr/internal/models"
	"github.com/shortr/shortr/internal/services"
	"github.com/shortr/shortr/internal/token"
	"github.com/shortr/shortr/pkg/logger"
)

// Stub services so routing can be exercised without storage.

type stubAuthService struct{}

func (s *stubAuthService) Register(ctx context.Context, req services.RegisterRequest) (*services.AuthResult, error) {
	return &services.AuthResult{
		User:  &models.User{ID: 1, Name: "Alice", Email: "alice@example.com"},
		Token: "stub-token",
	}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req services.LoginRequest) (*services.AuthResult, error) {
	return &services.AuthResult{
		User:      &models.User{ID: 1, Name: "Alice", Email: "alice@example.com"},
		Token:     "stub-token",
		LoginTime: time.Now().UTC(),
	}, nil
}

type stubLinkService struct{}

func (s *stubLinkService) Create(ctx context.Context, req services.CreateLinkRequest) (*services.CreateLinkResponse, error) {
	return &services.CreateLinkResponse{
		ShortURL:    "http://localhost:8080/abc1234",
		ShortCode:   "abc1234",
		OriginalURL: req.OriginalURL,
		CreatedAt:   time.Now(),
	}, nil
}

func (s *stubLinkService) CreateCustom(ctx context.Context, req services.CreateLinkRequest) (*services.CreateLinkResponse, error) {
	return s.Create(ctx, req)
}

func (s *stubLinkService) ListUserLinks(ctx context.Context, userID int64) ([]services.LinkInfo, error) {
	return []services.LinkInfo{}, nil
}

type stubRedirectService struct{}

func (s *stubRedirectService) Redirect(ctx context.Context, shortCode string) (*services.RedirectResult, error) {
	if shortCode == "missing" {
		return nil, models.ErrLinkNotFound
	}
	return &services.RedirectResult{OriginalURL: "https://example.com/target", Clicks: 1}, nil
}

type stubUserLoader struct {
	user *models.User
}

func (s *stubUserLoader) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, models.ErrUserNotFound
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
	}
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	tokenMgr := token.NewManager(&config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		Issuer:    "shortr",
		Audience:  "shortr-client",
	})
	user := &models.User{ID: 1, Name: "Alice", Email: "alice@example.com"}
	signed, err := tokenMgr.Issue(user)
	require.NoError(t, err)

	app, err := handlers.NewAppHandler(fstest.MapFS{
		"static/index.html": &fstest.MapFile{Data: []byte("<html>shortr</html>")},
	}, "static")
	require.NoError(t, err)

	h := Handlers{
		Health:   handlers.NewHealthHandler(),
		Auth:     handlers.NewAuthHandler(&stubAuthService{}, time.Hour),
		Link:     handlers.NewLinkHandler(&stubLinkService{}),
		Redirect: handlers.NewRedirectHandler(&stubRedirectService{}),
		App:      app,
	}

	authGate := middleware.Auth(tokenMgr, &stubUserLoader{user: user})
	srv := New(testConfig(), logger.New(io.Discard, "error"), h, authGate)

	return srv, signed
}

func do(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(srv, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_MetricsRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	// Drive one request through the chain so the counter has a sample.
	do(srv, httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestServer_ServesClientAtRoot(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shortr")
}

func TestServer_AuthRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"Alice","email":"alice@example.com","password":"secret123"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(srv, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"secret123"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_LinkRoutesRequireAuth(t *testing.T) {
	srv, signed := newTestServer(t)

	for _, route := range []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/shortUrl/create", `{"url":"https://example.com"}`},
		{http.MethodPost, "/api/shortUrl/custom", `{"url":"https://example.com","customUrl":"my-brand"}`},
		{http.MethodGet, "/api/shortUrl/user", ""},
	} {
		t.Run(route.path, func(t *testing.T) {
			var body io.Reader
			if route.body != "" {
				body = strings.NewReader(route.body)
			}

			// No token
			rec := do(srv, httptest.NewRequest(route.method, route.path, body))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			// Valid token
			if route.body != "" {
				body = strings.NewReader(route.body)
			}
			req := httptest.NewRequest(route.method, route.path, body)
			req.Header.Set("Authorization", "Bearer "+signed)
			rec = do(srv, req)
			assert.Contains(t, []int{http.StatusOK, http.StatusCreated}, rec.Code)
		})
	}
}

func TestServer_RedirectRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/abc1234", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/target", rec.Header().Get("Location"))

	rec = do(srv, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv, _ := newTestServer(t)

	go func() { _ = srv.Start() }()

	deadline := time.Now().Add(2 * time.Second)
	for !srv.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, srv.IsRunning())
	assert.NotEmpty(t, srv.Addr())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.False(t, srv.IsRunning())
}
