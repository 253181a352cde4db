//go:build integration

package testdb

import (
	"os"
	"testing"
)

// DatabaseURLEnv names the variable holding the test database DSN.
const DatabaseURLEnv = "TASKPULSE_TEST_DATABASE_URL"

// GetTestDatabaseURL returns the test database DSN, or "" when unset.
func GetTestDatabaseURL() string {
	return os.Getenv(DatabaseURLEnv)
}

// SkipIfNoDatabase skips t when no test database is configured.
func SkipIfNoDatabase(t *testing.T) {
	t.Helper()
	if GetTestDatabaseURL() == "" {
		t.Skipf("%s not set", DatabaseURLEnv)
	}
}
