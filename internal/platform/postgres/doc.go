// Package postgres implements the store interfaces on PostgreSQL through the
// pgx stdlib driver, and ships the schema as embedded goose migrations.
//
// Stores accept a store.DBTX so the same code runs against a *sql.DB or a
// *sql.Tx obtained from store.RunInTransaction.
package postgres
