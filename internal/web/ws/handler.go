package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/game"
)

// Config holds websocket endpoint settings
type Config struct {
	// WriteTimeout bounds each outbound message
	WriteTimeout time.Duration
	// ReadLimit is the largest inbound message accepted, in bytes
	ReadLimit int64
	// OriginPatterns lists extra hosts allowed to open sockets cross-origin
	OriginPatterns []string
}

// DefaultConfig returns default websocket settings
func DefaultConfig() Config {
	return Config{
		WriteTimeout: DefaultWriteTimeout,
		ReadLimit:    32 * 1024,
	}
}

// Handler upgrades requests to game sockets and feeds their commands to the coordinator
type Handler struct {
	coordinator *game.Coordinator
	registry    *Registry
	logger      *slog.Logger
	cfg         Config

	mu     sync.Mutex
	conns  map[*Conn]struct{}
	closed bool
}

// NewHandler creates a new websocket Handler
func NewHandler(coordinator *game.Coordinator, registry *Registry, logger *slog.Logger, cfg Config) *Handler {
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = DefaultConfig().ReadLimit
	}
	return &Handler{
		coordinator: coordinator,
		registry:    registry,
		logger:      logger.With(slog.String("component", "ws")),
		cfg:         cfg,
		conns:       make(map[*Conn]struct{}),
	}
}

// ServeHTTP runs one socket until the client goes away.
// Commands from a socket are handled one at a time, in arrival order.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  h.cfg.OriginPatterns,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	c.SetReadLimit(h.cfg.ReadLimit)

	conn := NewConn(c, h.cfg.WriteTimeout)
	if !h.track(conn) {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer func() {
		h.untrack(conn)
		h.registry.Drop(conn)
		_ = conn.Close(websocket.StatusNormalClosure, "")
		h.logger.Info("ws connection closed",
			slog.String("conn_id", conn.ID()),
			slog.Duration("connection_duration", time.Since(conn.connectedAt)))
	}()

	ctx := r.Context()
	for {
		cmd, err := h.read(ctx, c)
		if err != nil {
			var decodeErr *decodeError
			if errors.As(err, &decodeErr) {
				h.coordinator.Reject(ctx, conn, fmt.Errorf("%w: %v", model.ErrBadRequest, decodeErr.err))
				continue
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				h.logger.Debug("ws read ended", slog.String("conn_id", conn.ID()), slog.String("error", err.Error()))
			}
			return
		}

		if err := h.coordinator.Handle(ctx, conn, cmd); err != nil {
			h.logger.Debug("command rejected",
				slog.String("conn_id", conn.ID()),
				slog.String("command", string(cmd.Type)),
				slog.String("error", err.Error()))
		}
	}
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string {
	return "decode command: " + e.err.Error()
}

// read returns the next command. The payload is decoded here rather than with
// wsjson.Read, which closes the socket when decoding fails.
func (h *Handler) read(ctx context.Context, c *websocket.Conn) (model.Command, error) {
	var cmd model.Command
	typ, data, err := c.Read(ctx)
	if err != nil {
		return cmd, err
	}
	if typ != websocket.MessageText {
		return cmd, &decodeError{err: errors.New("expected a text message")}
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return cmd, &decodeError{err: err}
	}
	return cmd, nil
}

func (h *Handler) track(conn *Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[conn] = struct{}{}
	return true
}

func (h *Handler) untrack(conn *Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Shutdown closes every open socket with StatusGoingAway and refuses new ones.
// http.Server.Shutdown does not wait for hijacked connections, so call this alongside it.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	conns := make([]*Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	var wg sync.WaitGroup
	for _, conn := range conns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OpenConnections returns the number of live sockets
func (h *Handler) OpenConnections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
