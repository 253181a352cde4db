// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels, and carries scoped loggers (per request, per
// websocket connection) through context.Context.
package logger
