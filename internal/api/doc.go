// Package api exposes the task CRUD endpoints under /api/tasks. Handlers
// translate HTTP requests into service calls and map errors onto status codes
// with sanitized messages; the realtime notifications that follow a mutation
// are produced by the service layer, not here.
package api
