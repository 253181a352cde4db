package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskpulse/internal/config"
	"github.com/phrazzld/taskpulse/internal/domain"
	"github.com/phrazzld/taskpulse/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testSecret = "realtime-test-secret-that-is-long-enough"

var errSocketClosed = errors.New("socket closed")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRealtimeConfig() config.RealtimeConfig {
	return config.RealtimeConfig{
		SendQueueSize:    8,
		WriteWaitSeconds: 1,
		PongWaitSeconds:  10,
		MaxMessageBytes:  4096,
	}
}

// fakeSocket is an in-memory Socket. Frames pushed with deliver are returned
// by ReadMessage; written frames are recorded.
type fakeSocket struct {
	inbound   chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	written  [][]byte
	writeErr error
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		inbound: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

func (s *fakeSocket) deliver(frame string) {
	s.inbound <- []byte(frame)
}

func (s *fakeSocket) ReadMessage() (int, []byte, error) {
	select {
	case frame := <-s.inbound:
		return websocket.TextMessage, frame, nil
	case <-s.closed:
		return 0, nil, errSocketClosed
	}
}

func (s *fakeSocket) WriteMessage(_ int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.written = append(s.written, data)
	return nil
}

func (s *fakeSocket) WriteControl(int, []byte, time.Time) error { return nil }
func (s *fakeSocket) SetReadDeadline(time.Time) error           { return nil }
func (s *fakeSocket) SetWriteDeadline(time.Time) error          { return nil }
func (s *fakeSocket) SetPongHandler(func(string) error)         {}
func (s *fakeSocket) SetReadLimit(int64)                        {}

func (s *fakeSocket) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSocket) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *fakeSocket) frames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.written...)
}

func newTestConnection(userID int64) (*Connection, *fakeSocket) {
	socket := newFakeSocket()
	return newConnection(socket, userID, 8, discardLogger()), socket
}

// drain returns the frames currently queued on c's outbox, decoded.
func drain(t *testing.T, c *Connection) []map[string]any {
	t.Helper()
	var out []map[string]any
	for {
		select {
		case frame, ok := <-c.outbox.Frames():
			if !ok {
				return out
			}
			var decoded map[string]any
			require.NoError(t, json.Unmarshal(frame, &decoded))
			out = append(out, decoded)
		default:
			return out
		}
	}
}

func newTestVerifier(t *testing.T) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 5})
	require.NoError(t, err)
	return svc
}

func tokenFor(t *testing.T, svc auth.JWTService, userID int64) string {
	t.Helper()
	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	return token
}

// stubUpdater records status updates and answers with a canned result.
type stubUpdater struct {
	mu    sync.Mutex
	calls []domain.TaskStatus
	ids   []int64
	err   error
}

func (s *stubUpdater) UpdateStatus(_ context.Context, taskID int64, status domain.TaskStatus) (domain.TaskSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, taskID)
	s.calls = append(s.calls, status)
	if s.err != nil {
		return domain.TaskSnapshot{}, s.err
	}
	return domain.TaskSnapshot{ID: taskID, Status: status}, nil
}

func (s *stubUpdater) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type staticIdentities map[int64]bool

func (s staticIdentities) Exists(_ context.Context, id int64) (bool, error) {
	return s[id], nil
}
