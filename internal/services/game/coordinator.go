package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/chessgame-go/internal/chess"
	"github.com/mcoot/chessgame-go/internal/dependencies/clock"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/msgcat"
	"github.com/mcoot/chessgame-go/internal/storage"
)

// Conn is one live client socket
type Conn interface {
	ID() string
	Send(ctx context.Context, msg model.ServerMessage) error
}

// Registry tracks live connections per game. Broadcast never fails: recipients
// whose send fails are pruned.
type Registry interface {
	Add(gameID model.GameID, username string, conn Conn)
	Remove(gameID model.GameID, username string)
	Broadcast(ctx context.Context, gameID model.GameID, excludeUsername string, msg model.ServerMessage)
	Lookup(gameID model.GameID, username string) (Conn, bool)
}

// TokenResolver maps an auth token to a username
type TokenResolver interface {
	Username(ctx context.Context, token string) (string, error)
}

// Coordinator executes socket commands against persisted games.
// Every command that reads or writes a game runs under that game's lock, so
// broadcasts for one game go out in the order the commands were applied.
type Coordinator struct {
	storage  storage.Storage
	auth     TokenResolver
	registry Registry
	locks    *Locks
	catalog  *msgcat.Catalog
	clock    clock.Clock
	logger   *slog.Logger
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(
	storage storage.Storage,
	auth TokenResolver,
	registry Registry,
	locks *Locks,
	catalog *msgcat.Catalog,
	clock clock.Clock,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		storage:  storage,
		auth:     auth,
		registry: registry,
		locks:    locks,
		catalog:  catalog,
		clock:    clock,
		logger:   logger,
	}
}

// Handle runs one command from conn. A rejected command is answered with an
// ERROR message to conn alone; the same error is returned for logging.
func (c *Coordinator) Handle(ctx context.Context, conn Conn, cmd model.Command) error {
	var err error
	switch cmd.Type {
	case model.CommandConnect:
		err = c.connect(ctx, conn, cmd)
	case model.CommandMakeMove:
		err = c.makeMove(ctx, cmd)
	case model.CommandLeave:
		err = c.leave(ctx, cmd)
	case model.CommandResign:
		err = c.resign(ctx, cmd)
	default:
		err = fmt.Errorf("%w: unknown command type %q", model.ErrBadRequest, cmd.Type)
	}

	if err != nil {
		c.Reject(ctx, conn, err)
	}
	return err
}

// Reject sends err to conn as an ERROR message
func (c *Coordinator) Reject(ctx context.Context, conn Conn, err error) {
	if sendErr := conn.Send(ctx, model.ErrorMessage(c.ErrorText(err))); sendErr != nil {
		c.logger.Debug("failed to deliver error",
			slog.String("conn_id", conn.ID()),
			slog.String("error", sendErr.Error()),
		)
	}
}

// ErrorText renders err as the text clients see, e.g. "Error: it is not your turn"
func (c *Coordinator) ErrorText(err error) string {
	switch {
	case errors.Is(err, model.ErrNotYourTurn):
		return c.catalog.Error(msgcat.KeyErrorNotYourTurn)
	case errors.Is(err, model.ErrGameOver):
		return c.catalog.Error(msgcat.KeyErrorGameOver)
	case errors.Is(err, chess.ErrInvalidMove):
		return c.catalog.Error(msgcat.KeyErrorInvalidMove)
	case errors.Is(err, model.ErrGameNotFound):
		return c.catalog.Error(msgcat.KeyErrorGameNotFound)
	case errors.Is(err, model.ErrUnauthorized):
		return c.catalog.Error(msgcat.KeyErrorUnauthorized)
	case errors.Is(err, model.ErrBadRequest):
		return c.catalog.Error(msgcat.KeyErrorBadCommand)
	default:
		c.logger.Error("command failed", slog.String("error", err.Error()))
		return c.catalog.Error(msgcat.KeyErrorInternal)
	}
}

func badRequest(reason error) error {
	return fmt.Errorf("%w: %w", model.ErrBadRequest, reason)
}

func unauthorized(reason error) error {
	return fmt.Errorf("%w: %w", model.ErrUnauthorized, reason)
}

// resolve maps the command's token to a username
func (c *Coordinator) resolve(ctx context.Context, cmd model.Command) (string, error) {
	username, err := c.auth.Username(ctx, cmd.AuthToken)
	if err != nil {
		return "", unauthorized(err)
	}
	return username, nil
}

// connect registers conn, sends it the current game and tells everyone else who arrived
func (c *Coordinator) connect(ctx context.Context, conn Conn, cmd model.Command) error {
	username, err := c.resolve(ctx, cmd)
	if err != nil {
		return err
	}

	unlock := c.locks.Lock(cmd.GameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, cmd.GameID)
	if err != nil {
		return err
	}

	c.registry.Add(game.ID, username, conn)
	if err := conn.Send(ctx, model.LoadGame(game.State)); err != nil {
		c.logger.Debug("failed to send game to new connection",
			slog.Int("game_id", int(game.ID)),
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
	}

	var text string
	if color, ok := game.ColorOf(username); ok {
		text = c.catalog.Text(msgcat.KeyConnectPlayer, msgcat.Vars{User: username, Color: color.String()})
	} else {
		text = c.catalog.Text(msgcat.KeyConnectObserver, msgcat.Vars{User: username})
	}
	c.registry.Broadcast(ctx, game.ID, username, model.Notification(text))

	c.logger.Info("client connected",
		slog.Int("game_id", int(game.ID)),
		slog.String("username", username),
		slog.String("conn_id", conn.ID()),
	)
	return nil
}

// makeMove validates and applies a move, then announces the result
func (c *Coordinator) makeMove(ctx context.Context, cmd model.Command) error {
	username, err := c.resolve(ctx, cmd)
	if err != nil {
		return err
	}

	unlock := c.locks.Lock(cmd.GameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, cmd.GameID)
	if err != nil {
		return err
	}

	mover, ok := game.ColorOf(username)
	if !ok {
		return unauthorized(model.ErrNotAPlayer)
	}
	if game.State.GameOver {
		return badRequest(model.ErrGameOver)
	}
	if mover != game.State.Turn {
		return badRequest(model.ErrNotYourTurn)
	}
	if cmd.Move == nil {
		return badRequest(errors.New("move is required"))
	}
	move := *cmd.Move

	next, err := game.State.Apply(move)
	if err != nil {
		return badRequest(err)
	}

	game.State = next
	game.UpdatedAt = c.clock.Now()
	if err := c.storage.UpdateGame(ctx, game); err != nil {
		return err
	}

	c.registry.Broadcast(ctx, game.ID, "", model.LoadGame(game.State))

	vars := msgcat.Vars{User: username, From: move.From.String(), To: move.To.String()}
	if move.Promotion != chess.NoKind {
		vars.Promotion = move.Promotion.String()
	}
	c.registry.Broadcast(ctx, game.ID, username, model.Notification(c.catalog.Text(msgcat.KeyMove, vars)))

	c.logger.Info("move applied",
		slog.Int("game_id", int(game.ID)),
		slog.String("username", username),
		slog.String("move", move.String()),
	)

	return c.announceOutcome(ctx, game)
}

// announceOutcome reports stalemate, checkmate or check for the side to move.
// A finished game is announced first and then persisted as over.
func (c *Coordinator) announceOutcome(ctx context.Context, game *model.Game) error {
	side := game.State.Turn
	vars := msgcat.Vars{
		User:     c.displayName(game, side),
		Opponent: c.displayName(game, side.Opponent()),
	}

	var key string
	switch {
	case game.State.IsInStalemate(side):
		key = msgcat.KeyStalemate
	case game.State.IsInCheckmate(side):
		key = msgcat.KeyCheckmate
	case game.State.IsInCheck(side):
		c.registry.Broadcast(ctx, game.ID, "", model.Notification(c.catalog.Text(msgcat.KeyCheck, vars)))
		return nil
	default:
		return nil
	}

	c.registry.Broadcast(ctx, game.ID, "", model.Notification(c.catalog.Text(key, vars)))

	game.State.GameOver = true
	game.UpdatedAt = c.clock.Now()
	if err := c.storage.UpdateGame(ctx, game); err != nil {
		return err
	}

	c.logger.Info("game finished",
		slog.Int("game_id", int(game.ID)),
		slog.String("result", key),
	)
	return nil
}

// leave drops the sender's connection and vacates any seat it held
func (c *Coordinator) leave(ctx context.Context, cmd model.Command) error {
	username, err := c.resolve(ctx, cmd)
	if err != nil {
		return err
	}

	unlock := c.locks.Lock(cmd.GameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, cmd.GameID)
	if err != nil {
		return err
	}

	c.registry.Remove(game.ID, username)

	vacated := false
	for _, color := range []chess.Color{chess.White, chess.Black} {
		if game.Player(color) == username {
			game.SetPlayer(color, "")
			vacated = true
		}
	}
	if vacated {
		game.UpdatedAt = c.clock.Now()
		if err := c.storage.UpdateGame(ctx, game); err != nil {
			return err
		}
	}

	text := c.catalog.Text(msgcat.KeyLeave, msgcat.Vars{User: username})
	c.registry.Broadcast(ctx, game.ID, "", model.Notification(text))

	c.logger.Info("client left",
		slog.Int("game_id", int(game.ID)),
		slog.String("username", username),
		slog.Bool("vacated_seat", vacated),
	)
	return nil
}

// resign ends the game in the opponent's favour
func (c *Coordinator) resign(ctx context.Context, cmd model.Command) error {
	username, err := c.resolve(ctx, cmd)
	if err != nil {
		return err
	}

	unlock := c.locks.Lock(cmd.GameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, cmd.GameID)
	if err != nil {
		return err
	}

	color, ok := game.ColorOf(username)
	if !ok {
		return unauthorized(model.ErrNotAPlayer)
	}
	if game.State.GameOver {
		return badRequest(model.ErrGameOver)
	}

	game.State.GameOver = true
	game.UpdatedAt = c.clock.Now()
	if err := c.storage.UpdateGame(ctx, game); err != nil {
		return err
	}

	text := c.catalog.Text(msgcat.KeyResign, msgcat.Vars{
		User:     username,
		Opponent: c.displayName(game, color.Opponent()),
	})
	c.registry.Broadcast(ctx, game.ID, "", model.Notification(text))

	c.logger.Info("player resigned",
		slog.Int("game_id", int(game.ID)),
		slog.String("username", username),
	)
	return nil
}

// displayName is the username seated at color, or the color name for an empty seat
func (c *Coordinator) displayName(game *model.Game, color chess.Color) string {
	if name := game.Player(color); name != "" {
		return name
	}
	return color.String()
}
