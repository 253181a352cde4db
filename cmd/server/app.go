package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskpulse/internal/config"
	"github.com/phrazzld/taskpulse/internal/events"
	"github.com/phrazzld/taskpulse/internal/platform/postgres"
	"github.com/phrazzld/taskpulse/internal/realtime"
	"github.com/phrazzld/taskpulse/internal/service"
	"github.com/phrazzld/taskpulse/internal/service/auth"
	"github.com/phrazzld/taskpulse/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskStore store.TaskStore
	userStore store.UserStore

	jwtService  auth.JWTService
	taskService service.TaskService

	// Realtime delivery: the registry is shared by the gateway (joins and
	// leaves) and the broadcaster (fan-out).
	registry    *realtime.Registry
	broadcaster *realtime.Broadcaster
	watcher     *events.Watcher
	gateway     *realtime.Gateway
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.userStore = postgres.NewPostgresUserStore(db, logger)

	app.registry = realtime.NewRegistry(logger)
	app.broadcaster = realtime.NewBroadcaster(app.registry, logger)
	app.watcher = events.NewWatcher(app.broadcaster, logger)

	app.taskService, err = service.NewTaskService(app.taskStore, store.NewTxRunner(db), app.watcher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	var identities realtime.IdentityChecker
	if cfg.Realtime.VerifyUserExists {
		identities = app.userStore
	}
	app.gateway = realtime.NewGateway(
		app.jwtService,
		identities,
		app.registry,
		realtime.NewCommandHandler(app.taskService, logger),
		cfg.Realtime,
		logger,
	)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP and websocket traffic until ctx is cancelled, then shuts
// everything down.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
