package store

import (
	"context"
	"database/sql"
)

// UserStore exposes the little the notification layer needs to know about
// users. Accounts themselves are managed by the identity issuer.
type UserStore interface {
	// Exists reports whether a user with the given ID is present.
	Exists(ctx context.Context, id int64) (bool, error)

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
