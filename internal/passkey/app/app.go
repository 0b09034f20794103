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

	httpapi "github.com/aussiebroadwan/passkey/internal/passkey/http"
	"github.com/aussiebroadwan/passkey/internal/passkey/metrics"
	"github.com/aussiebroadwan/passkey/internal/passkey/policy"
	"github.com/aussiebroadwan/passkey/internal/passkey/service"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/aussiebroadwan/passkey/internal/passkey/store/drivers/postgres"
	"github.com/aussiebroadwan/passkey/internal/passkey/store/drivers/sqlite"
	"github.com/aussiebroadwan/passkey/pkg/httpx"
	"github.com/aussiebroadwan/passkey/pkg/jwtx"
	"github.com/aussiebroadwan/passkey/pkg/slogx"
)

const serviceName = "passkey"

// BuildVersion is overridden at build time via -ldflags "-X ...app.BuildVersion=".
var BuildVersion = "v0.1.0"

// Application encapsulates the passkey service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db          store.Store
	signer      *jwtx.HS256Signer
	verifier    *jwtx.HS256Verifier
	metrics     *metrics.Metrics
	stopTracing func(context.Context) error
	services    Services

	server *http.Server
	router *httpapi.Router
}

// Services are the business services, shared by the HTTP server and the CLI.
type Services struct {
	Challenges   *service.ChallengeService
	Invites      *service.InviteService
	Sessions     *service.SessionService
	Registration *service.RegistrationService
	Login        *service.LoginService
	Users        *service.UserService
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: serviceName,
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// OpenStore connects to the configured database and applies migrations.
func OpenStore(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(cfg.DatabaseFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	logger.Info("database migrations applied successfully", slog.String("driver", cfg.DatabaseDriver))
	return db, nil
}

// NewServices wires the business services. signer may be nil for CLI
// commands that never mint sessions.
func NewServices(ctx context.Context, cfg Config, db store.Store, signer jwtx.Signer) (Services, error) {
	pol, err := policy.NewInvitePolicy(ctx)
	if err != nil {
		return Services{}, err
	}

	challenges := &service.ChallengeService{Store: db, TTL: service.ClampChallengeTTL(cfg.ChallengeTTL)}
	invites := &service.InviteService{
		Store:      db,
		Policy:     pol,
		DefaultTTL: cfg.InviteDefaultTTL,
		MaxTTL:     cfg.InviteMaxTTL,
	}
	sessions := &service.SessionService{Signer: signer, TTL: jwtx.DefaultSessionTTL}

	return Services{
		Challenges: challenges,
		Invites:    invites,
		Sessions:   sessions,
		Registration: &service.RegistrationService{
			Store:      db,
			Challenges: challenges,
			Invites:    invites,
			Sessions:   sessions,
		},
		Login: &service.LoginService{
			Store:      db,
			Challenges: challenges,
			Sessions:   sessions,
		},
		Users: &service.UserService{Store: db},
	}, nil
}

// New creates a new Application instance with all dependencies initialized.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg:     cfg,
		logger:  NewLogger(cfg),
		metrics: metrics.New(),
	}
	slog.SetDefault(app.logger)

	secret, err := sessionSecret(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	if app.signer, err = jwtx.NewSignerHS256(secret); err != nil {
		return nil, err
	}
	if app.verifier, err = jwtx.NewVerifierHS256(secret); err != nil {
		return nil, err
	}

	if app.stopTracing, err = initTracing(ctx, cfg.OTLPEndpoint, serviceName, BuildVersion); err != nil {
		return nil, err
	}

	if app.db, err = OpenStore(ctx, cfg, app.logger); err != nil {
		return nil, err
	}

	if app.services, err = NewServices(ctx, cfg, app.db, app.signer); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()
	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("passkey service starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down passkey service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.stopTracing(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("passkey service stopped")
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.verifier, BuildVersion, app.db, app.logger)

	router.RP = httpapi.RPConfig{
		Name:       app.cfg.RPName,
		ID:         app.cfg.RPID,
		Origin:     app.cfg.RPOrigin,
		TrustProxy: app.cfg.TrustProxy,
		PublicURL:  app.cfg.PublicURL,
	}
	cors := httpx.DefaultCORS
	cors.AllowOrigin = app.cfg.CORSAllowOrigin
	router.CORS = cors
	router.Metrics = app.metrics

	router.RegistrationService = app.services.Registration
	router.LoginService = app.services.Login
	router.InviteService = app.services.Invites
	router.UserService = app.services.Users
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 3 * time.Second,
	}
}
