// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/shortr/shortr/internal/config"
	"github.com/shortr/shortr/internal/handlers"
	"github.com/shortr/shortr/internal/metrics"
	"github.com/shortr/shortr/internal/middleware"
	"github.com/shortr/shortr/internal/ratelimit"
	"github.com/shortr/shortr/pkg/logger"
)

// Handlers bundles the HTTP handlers the server routes to.
type Handlers struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Link     *handlers.LinkHandler
	Redirect *handlers.RedirectHandler
	App      *handlers.AppHandler
}

// Server represents the HTTP server.
type Server struct {
	cfg         *config.Config
	log         *logger.Logger
	httpServer  *http.Server
	handlers    Handlers
	authGate    middleware.Middleware
	rateLimiter ratelimit.Limiter
	listener    net.Listener
	running     bool
	mu          sync.RWMutex
}

// New creates a new Server instance. authGate wraps every /api/shortUrl
// route with token verification.
func New(cfg *config.Config, log *logger.Logger, h Handlers, authGate middleware.Middleware) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		handlers: h,
		authGate: authGate,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := s.buildMiddlewareChain(mux)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// buildMiddlewareChain creates the middleware chain for the server.
func (s *Server) buildMiddlewareChain(handler http.Handler) http.Handler {
	chain := middleware.New(
		middleware.Metrics(),
		middleware.RequestID(),
		middleware.ClientIP(s.cfg.Rate.TrustProxy, nil),
	)

	if s.cfg.Rate.Enabled {
		s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.Config{
			Requests: s.cfg.Rate.Requests,
			Window:   s.cfg.Rate.Window,
		})

		chain = chain.Append(middleware.RateLimit(s.rateLimiter, middleware.RateLimitConfig{
			TrustProxy:   s.cfg.Rate.TrustProxy,
			APIKeyHeader: s.cfg.Rate.APIKeyHeader,
		}))

		s.log.Info("rate limiting enabled",
			"requests", s.cfg.Rate.Requests,
			"window", s.cfg.Rate.Window.String(),
		)
	}

	return chain.Then(handler)
}

// registerRoutes sets up the HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check routes
	mux.HandleFunc("GET /health", s.handlers.Health.Health)
	mux.HandleFunc("GET /ready", s.handlers.Health.Ready)

	// Metrics endpoint for Prometheus
	mux.Handle("GET /metrics", metrics.Handler())

	// Browser client at the exact root only; /{code} owns everything else
	if s.handlers.App != nil {
		mux.HandleFunc("GET /{$}", s.handlers.App.Index)
	}

	// Auth routes (public)
	mux.HandleFunc("POST /api/auth/register", s.handlers.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", s.handlers.Auth.Login)

	// Short link routes (authenticated)
	mux.Handle("POST /api/shortUrl/create", s.authed(s.handlers.Link.Create))
	mux.Handle("POST /api/shortUrl/custom", s.authed(s.handlers.Link.CreateCustom))
	mux.Handle("GET /api/shortUrl/user", s.authed(s.handlers.Link.ListUser))

	// Redirect route - GET /{code} for short link visits
	mux.HandleFunc("GET /{code}", s.handleRedirect)
}

// authed wraps a handler with the authentication gate.
func (s *Server) authed(fn http.HandlerFunc) http.Handler {
	if s.authGate == nil {
		return fn
	}
	return s.authGate(fn)
}

// handleRedirect routes to the redirect handler for short link visits.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	shortCode := r.PathValue("code")
	s.handlers.Redirect.Redirect(w, r, shortCode)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := s.cfg.Server.Address()

	// Create listener first to get the actual address (important when port is 0)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	actualAddr := listener.Addr().String()
	s.log.Info("server starting", "address", actualAddr)

	err = s.httpServer.Serve(listener)
	if err != nil && err != http.ErrServerClosed {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("server shutting down")

	s.handlers.Health.SetReady(false)

	err := s.httpServer.Shutdown(ctx)

	if s.rateLimiter != nil {
		if closeErr := s.rateLimiter.Close(); closeErr != nil {
			s.log.Error("failed to close rate limiter", "error", closeErr.Error())
		}
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if err != nil {
		s.log.Error("shutdown error", "error", err.Error())
		return err
	}

	s.log.Info("server stopped")
	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's address.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
