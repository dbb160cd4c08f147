package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	keys   keyspace
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().DialTimeout
	}
	opts.DialTimeout = timeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		keys:   newKeyspace(cfg.KeyPrefix),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// SETNX makes the username claim atomic across server instances
	created, err := s.client.SetNX(ctx, s.keys.user(user.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrUsernameTaken
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	data, err := s.client.Get(ctx, s.keys.user(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Auth operations

func (s *Storage) SaveAuth(ctx context.Context, auth *model.AuthData) error {
	data, err := json.Marshal(auth)
	if err != nil {
		return err
	}

	// Let Redis drop the token once it can no longer be used
	var ttl time.Duration
	if !auth.ExpiresAt.IsZero() {
		ttl = auth.ExpiresAt.Sub(auth.CreatedAt)
	}
	if ttl < 0 {
		ttl = 0
	}

	return s.client.Set(ctx, s.keys.auth(auth.Token), data, ttl).Err()
}

func (s *Storage) GetAuth(ctx context.Context, token string) (*model.AuthData, error) {
	data, err := s.client.Get(ctx, s.keys.auth(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAuthNotFound
		}
		return nil, err
	}

	var auth model.AuthData
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

func (s *Storage) DeleteAuth(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.keys.auth(token)).Err()
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) (model.GameID, error) {
	seq, err := s.client.Incr(ctx, s.keys.gameSeq()).Result()
	if err != nil {
		return 0, err
	}
	game.ID = model.GameID(seq)

	data, err := json.Marshal(game)
	if err != nil {
		return 0, err
	}

	key := s.keys.game(game.ID)

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.ZAdd(ctx, s.keys.gamesIndex(), redis.Z{Score: float64(game.ID), Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return game.ID, nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, s.keys.game(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	// SET XX only overwrites an existing game
	updated, err := s.client.SetXX(ctx, s.keys.game(game.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !updated {
		return model.ErrGameNotFound
	}
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	keys, err := s.client.ZRange(ctx, s.keys.gamesIndex(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return []*model.Game{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Removed between ZRANGE and MGET
		}
		var game model.Game
		if err := json.Unmarshal([]byte(str), &game); err != nil {
			return nil, err
		}
		games = append(games, &game)
	}
	return games, nil
}

// Clear deletes every key under the prefix except the game id counter
func (s *Storage) Clear(ctx context.Context) error {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.keys.all(), 100).Iterator()
	for iter.Next(ctx) {
		if key := iter.Val(); key != s.keys.gameSeq() {
			keys = append(keys, key)
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
