package realtime

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Socket is the part of *websocket.Conn a Connection uses.
type Socket interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	SetReadLimit(limit int64)
	Close() error
}

// Connection is one authenticated websocket client.
type Connection struct {
	id     string
	userID int64
	socket Socket
	outbox *Outbox
	logger *slog.Logger

	mu     sync.Mutex
	groups map[string]struct{}
	closed bool

	closeOnce sync.Once
	done      chan struct{}
}

func newConnection(socket Socket, userID int64, queueSize int, logger *slog.Logger) *Connection {
	id := uuid.New().String()
	if logger == nil {
		logger = slog.Default()
	}
	return &Connection{
		id:     id,
		userID: userID,
		socket: socket,
		outbox: NewOutbox(queueSize),
		logger: logger.With(slog.String("connection_id", id), slog.Int64("user_id", userID)),
		groups: make(map[string]struct{}),
		done:   make(chan struct{}),
	}
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() string {
	return c.id
}

// UserID returns the authenticated identity that owns the connection.
func (c *Connection) UserID() int64 {
	return c.userID
}

// Groups returns the sorted names of the groups the connection belongs to.
func (c *Connection) Groups() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := lo.Keys(c.groups)
	slices.Sort(names)
	return names
}

// Alive reports whether the connection has not been closed.
func (c *Connection) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Done is closed when the connection closes.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Send queues a frame for the writer without blocking.
func (c *Connection) Send(frame []byte) error {
	if !c.Alive() {
		return ErrConnectionClosed
	}
	return c.outbox.Enqueue(frame)
}

// Close marks the connection dead, stops its outbox and closes the socket.
// It is safe to call more than once and from any goroutine.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		c.outbox.Close()
		close(c.done)
		err = c.socket.Close()
	})
	return err
}

// addGroup records membership; it fails once the connection is closed.
// Callers hold the registry lock.
func (c *Connection) addGroup(group string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.groups[group] = struct{}{}
	return true
}

func (c *Connection) removeGroup(group string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.groups, group)
}
