//go:build integration

package testdb

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse/internal/store"
	"github.com/stretchr/testify/require"
)

// CreateTestUser inserts a user with a unique username and returns its id.
func CreateTestUser(t *testing.T, db store.DBTX) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO users (username) VALUES ($1) RETURNING id`,
		"test-"+uuid.NewString(),
	).Scan(&id)
	require.NoError(t, err, "failed to create test user")
	return id
}

// CreateTestProject inserts a project owned by ownerID and returns its id.
// A zero ownerID creates an ownerless project.
func CreateTestProject(t *testing.T, db store.DBTX, ownerID int64) int64 {
	t.Helper()

	var owner interface{}
	if ownerID > 0 {
		owner = ownerID
	}

	var id int64
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO projects (name, created_by_id) VALUES ($1, $2) RETURNING id`,
		"project-"+uuid.NewString()[:8], owner,
	).Scan(&id)
	require.NoError(t, err, "failed to create test project")
	return id
}
