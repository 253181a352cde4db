package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskpulse/internal/config"
	"github.com/phrazzld/taskpulse/internal/events"
	"github.com/phrazzld/taskpulse/internal/platform/logger"
	"github.com/phrazzld/taskpulse/internal/redact"
	"github.com/phrazzld/taskpulse/internal/service/auth"
	"github.com/samber/lo"
)

// TokenParam is the handshake query parameter carrying the access token.
const TokenParam = "token"

// UpgradeFunc completes the protocol switch once the handshake is accepted.
type UpgradeFunc func() (Socket, error)

// IdentityChecker confirms that a token's user still exists.
type IdentityChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Gateway accepts websocket connections and runs them until they close.
type Gateway struct {
	verifier   auth.TokenVerifier
	identities IdentityChecker
	registry   *Registry
	handler    FrameHandler
	cfg        config.RealtimeConfig
	upgrader   websocket.Upgrader
	logger     *slog.Logger

	mu      sync.Mutex
	conns   map[*Connection]struct{}
	closing bool
	running sync.WaitGroup
}

// NewGateway wires a Gateway. identities may be nil to skip the existence check.
func NewGateway(
	verifier auth.TokenVerifier,
	identities IdentityChecker,
	registry *Registry,
	handler FrameHandler,
	cfg config.RealtimeConfig,
	logger *slog.Logger,
) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		verifier:   verifier,
		identities: identities,
		registry:   registry,
		handler:    handler,
		cfg:        cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		logger: logger.With("component", "gateway"),
		conns:  make(map[*Connection]struct{}),
	}
}

// originChecker allows every origin when allowed is empty.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || lo.Contains(allowed, origin)
	}
}

// Accept authenticates a handshake and, only if it succeeds, upgrades the
// connection and joins it to the user's private group. Authentication
// failures are returned as *HandshakeError without calling upgrade.
func (g *Gateway) Accept(ctx context.Context, params url.Values, upgrade UpgradeFunc) (*Connection, error) {
	token := params.Get(TokenParam)
	if token == "" {
		return nil, &HandshakeError{Err: auth.ErrMissingToken}
	}

	claims, err := g.verifier.ValidateToken(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return nil, &HandshakeError{Err: auth.ErrExpiredToken}
		case errors.Is(err, auth.ErrMissingToken):
			return nil, &HandshakeError{Err: auth.ErrMissingToken}
		default:
			return nil, &HandshakeError{Err: fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)}
		}
	}

	if g.identities != nil {
		exists, err := g.identities.Exists(ctx, claims.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up token identity: %w", err)
		}
		if !exists {
			return nil, &HandshakeError{Err: ErrUnknownIdentity}
		}
	}

	g.mu.Lock()
	closing := g.closing
	g.mu.Unlock()
	if closing {
		return nil, ErrGatewayClosed
	}

	socket, err := upgrade()
	if err != nil {
		return nil, fmt.Errorf("websocket upgrade failed: %w", err)
	}

	c := newConnection(socket, claims.UserID, g.cfg.SendQueueSize, g.logger)
	if !g.track(c) {
		_ = c.Close()
		return nil, ErrGatewayClosed
	}

	if err := g.registry.Join(events.UserGroup(claims.UserID), c); err != nil {
		g.untrack(c)
		_ = c.Close()
		return nil, err
	}

	c.logger.Info("websocket connection accepted")
	return c, nil
}

// Run owns c until it closes: the calling goroutine reads frames while a
// second goroutine writes queued frames and pings. Whatever ends the
// connection, Run removes it from every group, closes it and waits for the
// writer before returning. Cancelling ctx closes the connection.
func (g *Gateway) Run(ctx context.Context, c *Connection) {
	writerDone := make(chan struct{})
	defer func() {
		_ = c.Close()
		g.registry.LeaveAll(c)
		<-writerDone
		g.untrack(c)
		c.logger.Info("websocket connection closed")
	}()

	go func() {
		defer close(writerDone)
		g.writeLoop(c)
	}()

	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	g.readLoop(logger.WithLogger(ctx, c.logger), c)
}

func (g *Gateway) readLoop(ctx context.Context, c *Connection) {
	pongWait := g.cfg.PongWait()

	c.socket.SetReadLimit(g.cfg.MaxMessageBytes)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && c.Alive() {
				c.logger.Warn("websocket read failed", "error", err)
			} else {
				c.logger.Debug("websocket read loop finished", "error", err)
			}
			return
		}
		g.handler.Handle(ctx, c, frame)
	}
}

func (g *Gateway) writeLoop(c *Connection) {
	writeWait := g.cfg.WriteWait()
	ticker := time.NewTicker(g.cfg.PingPeriod())
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-c.outbox.Frames():
			if !ok {
				_ = c.socket.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if err := c.socket.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Debug("websocket ping failed", "error", err)
				_ = c.Close()
				return
			}
		}
	}
}

// ServeHTTP handles the websocket handshake. Rejected handshakes get
// 403 Forbidden with an empty body.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, g.logger)

	upgraded := false
	c, err := g.Accept(ctx, r.URL.Query(), func() (Socket, error) {
		upgraded = true
		return g.upgrader.Upgrade(w, r, nil)
	})
	if err != nil {
		var handshakeErr *HandshakeError
		switch {
		case errors.As(err, &handshakeErr):
			log.Info("websocket handshake rejected",
				"reason", handshakeErr.Err.Error(),
				"url", redact.URL(r.URL))
			w.WriteHeader(http.StatusForbidden)
		case upgraded:
			// The upgrader has already answered the request.
			log.Warn("websocket upgrade failed", "error", redact.Error(err))
		case errors.Is(err, ErrGatewayClosed):
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			log.Error("websocket handshake failed", "error", redact.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	g.Run(ctx, c)
}

// Shutdown closes every live connection and waits for their Run loops to
// finish or for ctx to expire. New handshakes are refused from now on.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.closing = true
	conns := lo.Keys(g.conns)
	g.mu.Unlock()

	g.logger.Info("closing websocket connections", "count", len(conns))
	for _, c := range conns {
		_ = c.Close()
	}

	done := make(chan struct{})
	go func() {
		g.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gateway) track(c *Connection) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closing {
		return false
	}
	g.conns[c] = struct{}{}
	g.running.Add(1)
	return true
}

func (g *Gateway) untrack(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.conns[c]; ok {
		delete(g.conns, c)
		g.running.Done()
	}
}
