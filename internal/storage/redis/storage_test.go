package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage"
	"github.com/mcoot/chessgame-go/internal/storage/storagetest"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func() storage.Storage {
			mini := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
			return NewWithClient(client, DefaultConfig())
		},
	})
}

// RedisSpecificSuite covers behaviour only visible through the Redis keyspace
type RedisSpecificSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestRedisSpecificSuite(t *testing.T) {
	suite.Run(t, new(RedisSpecificSuite))
}

func (s *RedisSpecificSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *RedisSpecificSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *RedisSpecificSuite) TestAuthTTLFollowsExpiry() {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	auth := &model.AuthData{Token: "tok", Username: "alice", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	s.Require().NoError(s.storage.SaveAuth(s.ctx, auth))
	s.Equal(time.Hour, s.mini.TTL(s.storage.keys.auth("tok")))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetAuth(s.ctx, "tok")
	s.ErrorIs(err, model.ErrAuthNotFound)
}

func (s *RedisSpecificSuite) TestAuthWithoutExpiryHasNoTTL() {
	s.Require().NoError(s.storage.SaveAuth(s.ctx, &model.AuthData{Token: "tok", Username: "alice"}))
	s.Equal(time.Duration(0), s.mini.TTL(s.storage.keys.auth("tok")))
}

func (s *RedisSpecificSuite) TestCreateGameIndexesKey() {
	id, err := s.storage.CreateGame(s.ctx, model.NewGame(0, "indexed", time.Now()))
	s.Require().NoError(err)

	members, err := s.mini.ZMembers(s.storage.keys.gamesIndex())
	s.Require().NoError(err)
	s.Equal([]string{s.storage.keys.game(id)}, members)
}

func (s *RedisSpecificSuite) TestClearKeepsGameSequence() {
	id1, err := s.storage.CreateGame(s.ctx, model.NewGame(0, "before", time.Now()))
	s.Require().NoError(err)

	s.Require().NoError(s.storage.Clear(s.ctx))
	s.True(s.mini.Exists(s.storage.keys.gameSeq()))
	s.False(s.mini.Exists(s.storage.keys.gamesIndex()))

	id2, err := s.storage.CreateGame(s.ctx, model.NewGame(0, "after", time.Now()))
	s.Require().NoError(err)
	s.Greater(id2, id1)
}

func (s *RedisSpecificSuite) TestClearLeavesForeignKeys() {
	s.Require().NoError(s.mini.Set("other:key", "value"))
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{Username: "alice"}))

	s.Require().NoError(s.storage.Clear(s.ctx))

	s.True(s.mini.Exists("other:key"))
	s.False(s.mini.Exists(s.storage.keys.user("alice")))
}

func (s *RedisSpecificSuite) TestKeyPrefix() {
	cfg := DefaultConfig()
	cfg.KeyPrefix = "staging"
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	staging := NewWithClient(client, cfg)

	s.Require().NoError(staging.CreateUser(s.ctx, &model.User{Username: "alice"}))
	s.True(s.mini.Exists("staging:user:alice"))

	// The default deployment does not see it
	_, err := s.storage.GetUser(s.ctx, "alice")
	s.ErrorIs(err, model.ErrUserNotFound)

	s.Require().NoError(staging.Clear(s.ctx))
	s.False(s.mini.Exists("staging:user:alice"))
}
