package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/chessgame-go/internal/model"
)

// ErrConnClosed is returned by a FakeConn after Fail
var ErrConnClosed = errors.New("connection closed")

// FakeConn records every message sent to it
type FakeConn struct {
	id string

	mu       sync.Mutex
	messages []model.ServerMessage
	failing  bool
	block    chan struct{}
}

// NewFakeConn creates a FakeConn with a fresh id
func NewFakeConn() *FakeConn {
	return &FakeConn{id: uuid.NewString()}
}

// ID returns the connection id
func (c *FakeConn) ID() string {
	return c.id
}

// Send records msg, or fails once Fail has been called.
// After Block, Send waits until ctx is done and then fails.
func (c *FakeConn) Send(ctx context.Context, msg model.ServerMessage) error {
	c.mu.Lock()
	block := c.block
	c.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return ErrConnClosed
	}
	c.messages = append(c.messages, msg)
	return nil
}

// Fail makes every later Send return ErrConnClosed
func (c *FakeConn) Fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failing = true
}

// Block makes later sends hang until ctx expires
func (c *FakeConn) Block() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.block = make(chan struct{})
}

// Messages returns a copy of everything received so far
func (c *FakeConn) Messages() []model.ServerMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ServerMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Last returns the most recent message, or a zero message if none arrived
func (c *FakeConn) Last() model.ServerMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return model.ServerMessage{}
	}
	return c.messages[len(c.messages)-1]
}

// Reset forgets received messages
func (c *FakeConn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// OfType returns received messages of type t
func (c *FakeConn) OfType(t model.ServerMessageType) []model.ServerMessage {
	var out []model.ServerMessage
	for _, m := range c.Messages() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}
