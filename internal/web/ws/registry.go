package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/game"
)

// DefaultSendTimeout bounds a single send during a broadcast
const DefaultSendTimeout = 5 * time.Second

// Registry maps game id -> username -> live connection.
// At most one connection is kept per (game, username); a newer Add replaces the older one.
type Registry struct {
	mu     sync.RWMutex
	games  map[model.GameID]map[string]game.Conn
	logger *slog.Logger

	sendTimeout time.Duration
}

// Ensure Registry implements the coordinator's contract
var _ game.Registry = (*Registry)(nil)

// NewRegistry creates an empty Registry
func NewRegistry(logger *slog.Logger, sendTimeout time.Duration) *Registry {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &Registry{
		games:       make(map[model.GameID]map[string]game.Conn),
		logger:      logger.With(slog.String("component", "ws")),
		sendTimeout: sendTimeout,
	}
}

// Add registers conn for username on a game
func (r *Registry) Add(gameID model.GameID, username string, conn game.Conn) {
	r.mu.Lock()
	conns, ok := r.games[gameID]
	if !ok {
		conns = make(map[string]game.Conn)
		r.games[gameID] = conns
	}
	prev, replaced := conns[username]
	conns[username] = conn
	total := len(conns)
	r.mu.Unlock()

	attrs := []any{
		slog.Int("game_id", int(gameID)),
		slog.String("username", username),
		slog.String("conn_id", conn.ID()),
		slog.Int("total_conns", total),
	}
	if replaced && prev.ID() != conn.ID() {
		attrs = append(attrs, slog.String("replaced_conn_id", prev.ID()))
	}
	r.logger.Info("ws connection registered", attrs...)
}

// Remove unregisters whatever connection username has on a game
func (r *Registry) Remove(gameID model.GameID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.games[gameID]
	if !ok {
		return
	}
	if _, ok := conns[username]; !ok {
		return
	}
	delete(conns, username)
	if len(conns) == 0 {
		delete(r.games, gameID)
	}
	r.logger.Info("ws connection unregistered",
		slog.Int("game_id", int(gameID)),
		slog.String("username", username))
}

// Drop unregisters conn from every game it is still registered under
func (r *Registry) Drop(conn game.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for gameID, conns := range r.games {
		for username, c := range conns {
			if c.ID() != conn.ID() {
				continue
			}
			delete(conns, username)
			r.logger.Info("ws connection dropped",
				slog.Int("game_id", int(gameID)),
				slog.String("username", username),
				slog.String("conn_id", conn.ID()))
		}
		if len(conns) == 0 {
			delete(r.games, gameID)
		}
	}
}

// Lookup returns the connection username has on a game
func (r *Registry) Lookup(gameID model.GameID, username string) (game.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.games[gameID][username]
	return conn, ok
}

// Count returns the number of connections on a game
func (r *Registry) Count(gameID model.GameID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games[gameID])
}

// Broadcast sends msg to every connection on a game except excludeUsername ("" excludes nobody).
// Sends run concurrently, each under its own timeout, and Broadcast returns once all finish.
// Recipients whose send fails are pruned.
func (r *Registry) Broadcast(ctx context.Context, gameID model.GameID, excludeUsername string, msg model.ServerMessage) {
	type recipient struct {
		username string
		conn     game.Conn
	}

	r.mu.RLock()
	recipients := make([]recipient, 0, len(r.games[gameID]))
	for username, conn := range r.games[gameID] {
		if excludeUsername != "" && username == excludeUsername {
			continue
		}
		recipients = append(recipients, recipient{username: username, conn: conn})
	}
	r.mu.RUnlock()

	if len(recipients) == 0 {
		return
	}

	// The sender going away must not cut delivery to everyone else
	ctx = context.WithoutCancel(ctx)

	failed := make([]bool, len(recipients))
	var wg sync.WaitGroup
	for i, rc := range recipients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, r.sendTimeout)
			defer cancel()
			if err := rc.conn.Send(sendCtx, msg); err != nil {
				failed[i] = true
				r.logger.Warn("ws send failed, pruning connection",
					slog.Int("game_id", int(gameID)),
					slog.String("username", rc.username),
					slog.String("conn_id", rc.conn.ID()),
					slog.String("error", err.Error()))
			}
		}()
	}
	wg.Wait()

	for i, rc := range recipients {
		if failed[i] {
			r.prune(gameID, rc.username, rc.conn)
		}
	}
}

// prune removes conn only if it is still the one registered for the pair,
// so a reconnect that raced the failed send survives
func (r *Registry) prune(gameID model.GameID, username string, conn game.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.games[gameID]
	if !ok {
		return
	}
	current, ok := conns[username]
	if !ok || current.ID() != conn.ID() {
		return
	}
	delete(conns, username)
	if len(conns) == 0 {
		delete(r.games, gameID)
	}
}
