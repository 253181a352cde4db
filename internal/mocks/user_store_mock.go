package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskpulse/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockUserStore is a mock of store.UserStore interface for use with testify/mock
type TestifyMockUserStore struct {
	mock.Mock
}

var _ store.UserStore = (*TestifyMockUserStore)(nil)

// Exists is a mock implementation of store.UserStore.Exists
func (m *TestifyMockUserStore) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// WithTx returns the mock itself so expectations carry into transactions.
func (m *TestifyMockUserStore) WithTx(_ *sql.Tx) store.UserStore {
	return m
}
