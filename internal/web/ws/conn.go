package ws

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/game"
)

// DefaultWriteTimeout bounds a write when the caller's context has no deadline
const DefaultWriteTimeout = 10 * time.Second

// Conn is a server-side game socket
type Conn struct {
	id          string
	ws          *websocket.Conn
	connectedAt time.Time

	writeMu      sync.Mutex
	writeTimeout time.Duration
}

// Ensure Conn implements the coordinator's contract
var _ game.Conn = (*Conn)(nil)

// NewConn wraps an accepted websocket
func NewConn(c *websocket.Conn, writeTimeout time.Duration) *Conn {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Conn{
		id:           uuid.NewString(),
		ws:           c,
		connectedAt:  time.Now(),
		writeTimeout: writeTimeout,
	}
}

// ID returns the connection's unique id
func (c *Conn) ID() string {
	return c.id
}

// Send writes msg as one JSON text message. Writes are serialized per connection.
func (c *Conn) Send(ctx context.Context, msg model.ServerMessage) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsjson.Write(ctx, c.ws, msg)
}

// Close performs the closing handshake
func (c *Conn) Close(code websocket.StatusCode, reason string) error {
	return c.ws.Close(code, reason)
}
