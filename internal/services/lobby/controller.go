package lobby

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/chessgame-go/internal/chess"
	"github.com/mcoot/chessgame-go/internal/dependencies/clock"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/game"
	"github.com/mcoot/chessgame-go/internal/storage"
)

// Controller serves the game lobby: creating, listing and joining games
type Controller struct {
	storage storage.Storage
	locks   *game.Locks
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new lobby Controller. locks must be the same table the
// game coordinator uses so seat changes never interleave with moves.
func NewController(
	storage storage.Storage,
	locks *game.Locks,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		locks:   locks,
		clock:   clock,
		logger:  logger,
	}
}

// CreateGame creates a game in the starting position with both seats open
func (c *Controller) CreateGame(ctx context.Context, name string) (*model.Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: game name is required", model.ErrBadRequest)
	}

	g := model.NewGame(0, name, c.clock.Now())
	if _, err := c.storage.CreateGame(ctx, g); err != nil {
		c.logger.Error("failed to create game",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.Int("game_id", int(g.ID)),
		slog.String("name", name),
	)
	return g, nil
}

// ListGames returns every game ordered by id
func (c *Controller) ListGames(ctx context.Context) ([]*model.Game, error) {
	return c.storage.ListGames(ctx)
}

// GetGame retrieves a game by id
func (c *Controller) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, id)
}

// JoinGame seats username at color ("WHITE" or "BLACK", any case).
// Taking a seat you already hold is a no-op.
func (c *Controller) JoinGame(ctx context.Context, username string, id model.GameID, color string) (*model.Game, error) {
	side, err := chess.ParseColor(color)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrBadRequest, err)
	}

	unlock := c.locks.Lock(id)
	defer unlock()

	g, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	switch g.Player(side) {
	case username:
		return g, nil
	case "":
	default:
		return nil, model.ErrColorTaken
	}

	g.SetPlayer(side, username)
	g.UpdatedAt = c.clock.Now()
	if err := c.storage.UpdateGame(ctx, g); err != nil {
		return nil, err
	}

	c.logger.Info("player joined game",
		slog.Int("game_id", int(g.ID)),
		slog.String("username", username),
		slog.String("color", side.String()),
	)
	return g, nil
}

// Clear deletes all users, tokens and games
func (c *Controller) Clear(ctx context.Context) error {
	if err := c.storage.Clear(ctx); err != nil {
		return err
	}
	c.logger.Warn("database cleared")
	return nil
}
