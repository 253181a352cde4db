//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/taskpulse/internal/config"
	"github.com/phrazzld/taskpulse/internal/platform/postgres"
	"github.com/phrazzld/taskpulse/internal/redact"
	"github.com/stretchr/testify/require"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// OpenTestDatabase connects to the test database, applies the embedded
// migrations once per process, and closes the pool when t finishes.
func OpenTestDatabase(t *testing.T) *sql.DB {
	t.Helper()
	SkipIfNoDatabase(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{
		URL:          GetTestDatabaseURL(),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %s", redact.Error(err))
	}
	t.Cleanup(func() { _ = db.Close() })

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(ctx, db, "up", nil)
	})
	require.NoError(t, migrateErr, "failed to apply migrations")

	return db
}
