package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users      map[string]model.User
	auths      map[string]model.AuthData
	games      map[model.GameID]*model.Game
	lastGameID model.GameID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users: make(map[string]model.User),
		auths: make(map[string]model.AuthData),
		games: make(map[model.GameID]*model.Game),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return model.ErrUsernameTaken
	}
	s.users[user.Username] = *user
	return nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &user, nil
}

// Auth operations

func (s *Storage) SaveAuth(ctx context.Context, auth *model.AuthData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auths[auth.Token] = *auth
	return nil
}

func (s *Storage) GetAuth(ctx context.Context, token string) (*model.AuthData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	auth, ok := s.auths[token]
	if !ok {
		return nil, model.ErrAuthNotFound
	}
	return &auth, nil
}

func (s *Storage) DeleteAuth(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.auths, token)
	return nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) (model.GameID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGameID++
	game.ID = s.lastGameID
	s.games[game.ID] = game.Clone()
	return game.ID, nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; !ok {
		return model.ErrGameNotFound
	}
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0, len(s.games))
	for _, game := range s.games {
		games = append(games, game.Clone())
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

// Clear removes all data. Game ids keep counting up so stale ids never resolve.
func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]model.User)
	s.auths = make(map[string]model.AuthData)
	s.games = make(map[model.GameID]*model.Game)
	return nil
}
