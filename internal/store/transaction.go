package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskpulse/internal/platform/logger"
)

// TxFn is the body of a transaction. Returning nil commits; returning an
// error rolls back and hands that error to the caller.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// TxRunner runs fn inside a transaction. Services take a TxRunner rather than
// a *sql.DB so they can be exercised without a database.
type TxRunner func(ctx context.Context, fn TxFn) error

// NewTxRunner returns a TxRunner that opens transactions on db.
func NewTxRunner(db *sql.DB) TxRunner {
	return func(ctx context.Context, fn TxFn) error {
		return RunInTransaction(ctx, db, fn)
	}
}

// RunInTransaction runs fn in a transaction on db. A task mutation and the
// snapshot read that follows it share one transaction, so a notification is
// only ever built from committed state.
//
// A panic inside fn rolls the transaction back and is re-raised.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback after panic failed",
				slog.String("rollback_error", rbErr.Error()),
				slog.Any("panic", p))
		} else {
			log.Error("transaction rolled back after panic", slog.Any("panic", p))
		}
		// ALLOW-PANIC: re-raised after rollback
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		return rollback(log, tx, err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debug("transaction committed")
	return nil
}

// rollback aborts tx after cause. cause is returned as is unless the
// rollback itself fails, in which case both are reported and cause stays
// in the chain.
func rollback(log *slog.Logger, tx *sql.Tx, cause error) error {
	if rbErr := tx.Rollback(); rbErr != nil {
		log.Error("failed to roll back transaction",
			slog.String("rollback_error", rbErr.Error()),
			slog.String("cause", cause.Error()))
		return fmt.Errorf("error rolling back transaction: %v (cause: %w)", rbErr, cause)
	}

	log.Debug("transaction rolled back", slog.String("cause", cause.Error()))
	return cause
}
