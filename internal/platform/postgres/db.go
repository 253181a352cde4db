package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// pgx registers itself with database/sql as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/taskpulse/internal/config"
)

// Open connects to PostgreSQL through the pgx stdlib driver, applies the pool
// settings from cfg and verifies connectivity with a ping.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
