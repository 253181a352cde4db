package realtime

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownIdentity rejects a validly signed token whose user no longer exists.
	ErrUnknownIdentity = errors.New("token identity does not exist")

	// ErrConnectionClosed is returned when sending to or joining with a closed connection.
	ErrConnectionClosed = errors.New("connection is closed")

	// ErrOutboxFull is returned when a connection's outbound queue is at capacity.
	ErrOutboxFull = errors.New("outbox is full")

	// ErrOutboxClosed is returned when enqueuing on a closed outbox.
	ErrOutboxClosed = errors.New("outbox is closed")

	// ErrGatewayClosed refuses new connections once Shutdown has started.
	ErrGatewayClosed = errors.New("gateway is shutting down")
)

// HandshakeError rejects a connection attempt before it is upgraded.
// Err is one of auth.ErrMissingToken, auth.ErrInvalidToken,
// auth.ErrExpiredToken or ErrUnknownIdentity.
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("handshake rejected: %v", e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}
