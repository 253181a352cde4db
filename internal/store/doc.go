// Package store defines the persistence contracts the task service and the
// realtime gateway depend on, together with the shared error vocabulary and
// the transaction helper. Concrete implementations live in
// internal/platform/postgres.
package store
