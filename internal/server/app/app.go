package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/grapelabs/grape/internal/server/http"
	"github.com/grapelabs/grape/internal/server/service"
	"github.com/grapelabs/grape/internal/server/store"
	"github.com/grapelabs/grape/internal/server/store/drivers/sqlite"
	"github.com/grapelabs/grape/pkg/cryptox"
	"github.com/grapelabs/grape/pkg/httpx"
	"github.com/grapelabs/grape/pkg/jwtx"
	"github.com/grapelabs/grape/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the server with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *jwtx.HS256

	tokenService *service.TokenService
	authService  *service.AuthService
	userService  *service.UserService

	defaultLimiter *httpx.RateLimiter
	authLimiter    *httpx.RateLimiter

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "grape-server",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	codec, err := jwtx.NewHS256([]byte(cfg.JWTSecret), cfg.Issuer, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.defaultLimiter.Start()
	app.authLimiter.Start()

	app.logger.Info("server starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.defaultLimiter.Stop()
	app.authLimiter.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("server stopped")
	return nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
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

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Signer:   app.codec,
		Verifier: app.codec,
		Issuer:   app.cfg.Issuer,
		TTL:      app.cfg.TokenTTL,
	}

	app.authService = &service.AuthService{
		Store:  app.db,
		Tokens: app.tokenService,
	}

	app.userService = &service.UserService{Store: app.db}

	app.defaultLimiter = httpx.NewRateLimiter(httpx.DefaultLimit, nil)
	app.authLimiter = httpx.NewRateLimiter(httpx.AuthLimit, nil)
}

func (app *Application) initHTTP() {
	cors := httpx.DefaultCORSConfig()
	if len(app.cfg.CORSOrigins) > 0 {
		cors.Origins = app.cfg.CORSOrigins
	}

	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.cfg.Env,
		app.db,
		app.defaultLimiter,
		app.authLimiter,
		cors,
		app.logger,
	)

	router.AuthService = app.authService
	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
