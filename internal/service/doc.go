// Package service holds the task service, the single place where task
// mutations are applied. Each mutation runs in a transaction and, only after
// it commits, is reported to a TaskNotifier so connected clients hear about it.
package service
