// Package mocks provides shared test doubles for interfaces that several
// packages depend on: the JWT service, the user store and the task service.
//
// MockJWTService uses function fields with static fallbacks; the store and
// service mocks are built on testify/mock:
//
//	users := &mocks.TestifyMockUserStore{}
//	users.On("Exists", mock.Anything, int64(7)).Return(true, nil)
package mocks
