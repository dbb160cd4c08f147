// Package storagetest holds a behavioural suite every storage.Storage
// implementation runs from its own package tests.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chessgame-go/internal/chess"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage"
)

// Suite exercises a storage implementation. Set NewStorage before running;
// it is called once per test and must return an empty store.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	storage storage.Storage
	ctx     context.Context
}

var fixedTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.storage = s.NewStorage()
}

// User tests

func (s *Suite) TestCreateAndGetUser() {
	user := &model.User{Username: "alice", PasswordHash: "hash", Email: "a@example.com", CreatedAt: fixedTime}

	s.Require().NoError(s.storage.CreateUser(s.ctx, user))

	got, err := s.storage.GetUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)
	s.Equal("hash", got.PasswordHash)
	s.Equal("a@example.com", got.Email)
	s.True(fixedTime.Equal(got.CreatedAt))
}

func (s *Suite) TestCreateUserDuplicate() {
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{Username: "alice", PasswordHash: "one"}))

	err := s.storage.CreateUser(s.ctx, &model.User{Username: "alice", PasswordHash: "two"})
	s.ErrorIs(err, model.ErrUsernameTaken)

	got, err := s.storage.GetUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("one", got.PasswordHash)
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Auth tests

func (s *Suite) TestSaveGetDeleteAuth() {
	auth := &model.AuthData{
		Token:     "token-1",
		Username:  "alice",
		CreatedAt: fixedTime,
		ExpiresAt: fixedTime.Add(time.Hour),
	}
	s.Require().NoError(s.storage.SaveAuth(s.ctx, auth))

	got, err := s.storage.GetAuth(s.ctx, "token-1")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)
	s.True(auth.ExpiresAt.Equal(got.ExpiresAt))

	s.Require().NoError(s.storage.DeleteAuth(s.ctx, "token-1"))
	_, err = s.storage.GetAuth(s.ctx, "token-1")
	s.ErrorIs(err, model.ErrAuthNotFound)
}

func (s *Suite) TestDeleteMissingAuthIsNoop() {
	s.NoError(s.storage.DeleteAuth(s.ctx, "missing"))
}

func (s *Suite) TestGetAuthNotFound() {
	_, err := s.storage.GetAuth(s.ctx, "missing")
	s.ErrorIs(err, model.ErrAuthNotFound)
}

// Game tests

func (s *Suite) TestCreateGameAssignsIncreasingIDs() {
	first := model.NewGame(0, "first", fixedTime)
	second := model.NewGame(0, "second", fixedTime)

	id1, err := s.storage.CreateGame(s.ctx, first)
	s.Require().NoError(err)
	id2, err := s.storage.CreateGame(s.ctx, second)
	s.Require().NoError(err)

	s.Equal(id1, first.ID)
	s.Equal(id2, second.ID)
	s.Greater(id2, id1)
}

func (s *Suite) TestGetGameRoundTripsState() {
	game := model.NewGame(0, "round trip", fixedTime)
	next, err := game.State.Apply(chess.Move{From: chess.Sq(2, 5), To: chess.Sq(4, 5)})
	s.Require().NoError(err)
	game.State = next
	game.WhiteUsername = "alice"

	id, err := s.storage.CreateGame(s.ctx, game)
	s.Require().NoError(err)

	got, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("round trip", got.Name)
	s.Equal("alice", got.WhiteUsername)
	s.Equal("", got.BlackUsername)
	s.Equal(game.State, got.State)
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, 9999)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestReturnedGameIsACopy() {
	id, err := s.storage.CreateGame(s.ctx, model.NewGame(0, "copy", fixedTime))
	s.Require().NoError(err)

	got, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	got.WhiteUsername = "mallory"
	got.State.Board.Clear(chess.Sq(1, 5))

	again, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("", again.WhiteUsername)
	s.Equal(chess.Piece{Color: chess.White, Kind: chess.King}, again.State.Board.At(chess.Sq(1, 5)))
}

func (s *Suite) TestUpdateGame() {
	game := model.NewGame(0, "update", fixedTime)
	id, err := s.storage.CreateGame(s.ctx, game)
	s.Require().NoError(err)

	game.BlackUsername = "bob"
	game.State.GameOver = true
	s.Require().NoError(s.storage.UpdateGame(s.ctx, game))

	got, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("bob", got.BlackUsername)
	s.True(got.State.GameOver)
}

func (s *Suite) TestUpdateMissingGame() {
	game := model.NewGame(4242, "ghost", fixedTime)
	s.ErrorIs(s.storage.UpdateGame(s.ctx, game), model.ErrGameNotFound)
}

func (s *Suite) TestListGamesOrderedByID() {
	games, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Empty(games)

	for _, name := range []string{"a", "b", "c"} {
		_, err := s.storage.CreateGame(s.ctx, model.NewGame(0, name, fixedTime))
		s.Require().NoError(err)
	}

	games, err = s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 3)
	s.Equal("a", games[0].Name)
	s.Equal("b", games[1].Name)
	s.Equal("c", games[2].Name)
}

// Clear tests

func (s *Suite) TestClear() {
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{Username: "alice"}))
	s.Require().NoError(s.storage.SaveAuth(s.ctx, &model.AuthData{Token: "t", Username: "alice"}))
	id, err := s.storage.CreateGame(s.ctx, model.NewGame(0, "g", fixedTime))
	s.Require().NoError(err)

	s.Require().NoError(s.storage.Clear(s.ctx))

	_, err = s.storage.GetUser(s.ctx, "alice")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.storage.GetAuth(s.ctx, "t")
	s.ErrorIs(err, model.ErrAuthNotFound)
	_, err = s.storage.GetGame(s.ctx, id)
	s.ErrorIs(err, model.ErrGameNotFound)
	games, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Empty(games)

	// the username is free again
	s.NoError(s.storage.CreateUser(s.ctx, &model.User{Username: "alice"}))
}
