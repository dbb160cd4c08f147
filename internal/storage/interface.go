package storage

import (
	"context"

	"github.com/mcoot/chessgame-go/internal/model"
)

// Storage defines the interface for data persistence.
// Implementations return copies: mutating a returned value never changes stored state
// until it is written back.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error // ErrUsernameTaken if the username exists
	GetUser(ctx context.Context, username string) (*model.User, error)

	// Auth operations
	SaveAuth(ctx context.Context, auth *model.AuthData) error
	GetAuth(ctx context.Context, token string) (*model.AuthData, error)
	DeleteAuth(ctx context.Context, token string) error

	// Game operations
	CreateGame(ctx context.Context, game *model.Game) (model.GameID, error) // assigns game.ID
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	UpdateGame(ctx context.Context, game *model.Game) error // ErrGameNotFound if absent
	ListGames(ctx context.Context) ([]*model.Game, error)   // ordered by id

	// Clear removes every user, auth token and game
	Clear(ctx context.Context) error
}
