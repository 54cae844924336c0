package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/backrose/backrose/internal/auth/http"
	"github.com/backrose/backrose/internal/auth/metrics"
	"github.com/backrose/backrose/internal/auth/service"
	"github.com/backrose/backrose/internal/auth/session"
	"github.com/backrose/backrose/internal/auth/store"
	"github.com/backrose/backrose/internal/auth/store/drivers/postgres"
	redisdriver "github.com/backrose/backrose/internal/auth/store/drivers/redis"
	"github.com/backrose/backrose/internal/auth/store/drivers/sqlite"
	"github.com/backrose/backrose/pkg/jwtx"
	"github.com/backrose/backrose/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// externalRevocations is a revocation backend outside the user database.
type externalRevocations interface {
	store.Revocations
	httpapi.Pinger
	io.Closer
}

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db          store.Store
	revocations store.Revocations
	external    externalRevocations // nil for the sqlite backend
	codec       *jwtx.Codec

	// Services
	tokenService        *service.TokenService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "backrose-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.initRevocations(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	codec, err := InitCodec(app.cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initServices(); err != nil {
		app.closeStores()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"revocation_backend", app.cfg.RevocationBackend,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeStores() error {
	var firstErr error
	if app.external != nil {
		if err := app.external.Close(); err != nil {
			app.logger.Error("error closing revocation backend", "error", err)
			firstErr = err
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initRevocations selects the revocation backend. Every backend is wrapped
// with metrics.
func (app *Application) initRevocations(ctx context.Context) error {
	switch app.cfg.RevocationBackend {
	case RevocationRedis:
		client, err := redisdriver.NewClient(ctx, app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.external = redisdriver.NewRevocations(client)

	case RevocationPostgres:
		pg, err := postgres.Open(ctx, app.cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := pg.ApplyMigrations(); err != nil {
			_ = pg.Close()
			return fmt.Errorf("failed to apply postgres migrations: %w", err)
		}
		app.external = pg

	default:
		app.revocations = metrics.InstrumentRevocations(app.db.Revocations())
		return nil
	}

	app.revocations = metrics.InstrumentRevocations(app.external)
	app.logger.Info("external revocation backend ready", "backend", app.cfg.RevocationBackend)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	hasher, err := InitHasher(app.cfg)
	if err != nil {
		return err
	}

	app.userService = &service.UserService{
		Store:  app.db,
		Hasher: hasher,
		Media:  &service.MediaStore{Root: app.cfg.MediaRoot, URLPrefix: app.cfg.MediaURL},
	}

	app.tokenService = &service.TokenService{
		Codec:                  app.codec,
		Revocations:            app.revocations,
		Users:                  app.userService,
		AccessTTL:              app.cfg.AccessTokenLifetime,
		RefreshTTL:             app.cfg.RefreshTokenLifetime,
		RotateRefresh:          app.cfg.RotateRefreshTokens,
		BlacklistAfterRotation: app.cfg.BlacklistAfterRotation,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.revocations,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.OnPurge = metrics.ObservePurged
	return nil
}

// CookieConfig derives the cookie settings from cfg.
func (c Config) CookieConfig() session.CookieConfig {
	return session.CookieConfig{
		AccessName:   c.AccessCookie,
		RefreshName:  c.RefreshCookie,
		Path:         c.CookiePath,
		Domain:       c.CookieDomain,
		Secure:       c.CookieSecure,
		HTTPOnly:     c.CookieHTTPOnly,
		SameSite:     c.CookieSameSite,
		CSRFName:     c.CSRFCookieName,
		CSRFSecure:   c.CSRFCookieSecure,
		CSRFSameSite: c.CSRFCookieSameSite,
		CSRFMaxAge:   session.DefaultCSRFMaxAge,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	cookies := &session.CookieBinder{Config: app.cfg.CookieConfig()}

	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	// Wire services to router
	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.Cookies = cookies
	router.Media = app.userService.Media
	router.Authenticator = &session.Authenticator{
		Codec:   app.codec,
		Users:   app.userService,
		Cookies: cookies,
		CSRF: &session.CSRFGuard{
			CookieName:     app.cfg.CSRFCookieName,
			HeaderName:     app.cfg.CSRFHeaderName,
			TrustedOrigins: app.cfg.CSRFTrustedOrigins,
		},
	}
	if app.external != nil {
		router.RevocationPinger = app.external
	}
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
