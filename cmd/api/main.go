// Package main is the entry point for the shortr API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shortr/shortr/internal/cache"
	"github.com/shortr/shortr/internal/config"
	"github.com/shortr/shortr/internal/database"
	"github.com/shortr/shortr/internal/handlers"
	"github.com/shortr/shortr/internal/idgen"
	"github.com/shortr/shortr/internal/middleware"
	"github.com/shortr/shortr/internal/repository"
	"github.com/shortr/shortr/internal/server"
	"github.com/shortr/shortr/internal/services"
	"github.com/shortr/shortr/internal/token"
	"github.com/shortr/shortr/pkg/logger"
	"github.com/shortr/shortr/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; the environment itself may carry everything
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stdout, cfg.App.LogLevel).With("app", "shortr")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := database.NewPool(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	migrator, err := database.NewMigrator(pool, database.MigrationsFS, database.MigrationsDir)
	if err != nil {
		return err
	}
	applied, err := migrator.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if applied > 0 {
		log.Info("migrations applied", "count", applied)
	}

	// Repositories
	userRepo := repository.NewPostgresUserRepository(pool)

	var linkRepo repository.LinkRepository = repository.NewPostgresLinkRepository(pool)

	var redisCache *cache.RedisCache
	if cfg.RedisEnabled() {
		redisCache, err = cache.NewRedisCache(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = redisCache.Close() }()

		linkCache := cache.NewLinkCache(redisCache, "link:", cfg.URL.CacheTTL)
		linkRepo = repository.NewCachedLinkRepository(linkRepo, linkCache)
		log.Info("link cache enabled", "ttl", cfg.URL.CacheTTL.String())
	}

	// Services
	generator, err := idgen.NewRandomGenerator(cfg.URL.ShortCodeLen)
	if err != nil {
		return fmt.Errorf("invalid short code length: %w", err)
	}
	log.Info("code generator ready", "length", generator.Length())

	tokens := token.NewManager(&cfg.Auth)
	authService := services.NewAuthService(userRepo, tokens, cfg.Auth.BcryptCost)
	linkService := services.NewLinkService(linkRepo, generator, cfg.URL.BaseURL)
	redirectService := services.NewRedirectService(linkRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	healthHandler.AddCheck("database", func() bool {
		return pool.HealthCheck(context.Background()) == nil
	})
	if redisCache != nil {
		healthHandler.AddCheck("redis", func() bool {
			return redisCache.Ping(context.Background()) == nil
		})
	}

	appHandler, err := handlers.NewAppHandler(web.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("failed to load client assets: %w", err)
	}

	h := server.Handlers{
		Health:   healthHandler,
		Auth:     handlers.NewAuthHandler(authService, cfg.Auth.TokenTTL),
		Link:     handlers.NewLinkHandler(linkService),
		Redirect: handlers.NewRedirectHandler(redirectService),
		App:      appHandler,
	}

	authGate := middleware.Auth(tokens, userRepo)

	srv := server.New(cfg, log, h, authGate)

	// Start server; stop on signal
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("signal received", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
