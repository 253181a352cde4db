//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Tests are skipped unless TASKPULSE_TEST_DATABASE_URL
// is set; each test works inside a transaction that is rolled back.
package testdb
