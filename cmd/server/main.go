// Package main implements the taskpulse server: the task CRUD API and the
// websocket endpoint that pushes task events to connected users.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phrazzld/taskpulse/internal/config"
	"github.com/phrazzld/taskpulse/internal/platform/logger"
	"github.com/phrazzld/taskpulse/internal/platform/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to a config.yaml (defaults to ./config.yaml if present)")
	migrateCmd := flag.String("migrate", "",
		"run a migration command and exit ("+strings.Join(postgres.MigrationCommands, "|")+")")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *migrateCmd); err != nil {
		log.Fatalf("taskpulse: %v", err)
	}
}

// run loads configuration, connects to the database and either applies a
// migration command or serves until ctx is cancelled.
func run(ctx context.Context, configPath, migrateCmd string) error {
	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"verify_user_exists", cfg.Realtime.VerifyUserExists)

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	appLogger.Info("database connection established")

	if migrateCmd != "" {
		defer db.Close()
		return postgres.Migrate(ctx, db, migrateCmd, appLogger)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// loadAppConfig loads the application configuration from environment
// variables and an optional config file.
func loadAppConfig(configPath string) (*config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
