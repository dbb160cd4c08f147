package factory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chessgame-go/internal/chess"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage"
	"github.com/mcoot/chessgame-go/internal/storage/memory"
	redisstorage "github.com/mcoot/chessgame-go/internal/storage/redis"
	"github.com/mcoot/chessgame-go/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	newStorage func(t *testing.T) storage.Storage

	app *TestApp
	ctx context.Context
}

func TestIntegrationSuiteMemory(t *testing.T) {
	suite.Run(t, &IntegrationSuite{
		newStorage: func(*testing.T) storage.Storage { return memory.New() },
	})
}

func TestIntegrationSuiteRedis(t *testing.T) {
	suite.Run(t, &IntegrationSuite{
		newStorage: func(t *testing.T) storage.Storage {
			mr := miniredis.RunT(t)
			client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
			return redisstorage.NewWithClient(client, redisstorage.DefaultConfig())
		},
	})
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestAppWithStorage(s.newStorage(s.T()))
	s.ctx = context.Background()
}

func (s *IntegrationSuite) register(username string) string {
	session, err := s.app.AuthService.Register(s.ctx, username, "pw-"+username, username+"@example.com")
	s.Require().NoError(err)
	return session.Token
}

func (s *IntegrationSuite) send(conn *testutil.FakeConn, token string, id model.GameID, typ model.CommandType, move string) error {
	cmd := model.Command{Type: typ, AuthToken: token, GameID: id}
	if move != "" {
		m, err := chess.ParseMove(move)
		s.Require().NoError(err)
		cmd.Move = &m
	}
	return s.app.Coordinator.Handle(s.ctx, conn, cmd)
}

// Test: Lobby setup through to checkmate over the socket protocol
func (s *IntegrationSuite) TestFoolsMate() {
	aliceToken := s.register("alice")
	bobToken := s.register("bob")
	carolToken := s.register("carol")

	game, err := s.app.LobbyController.CreateGame(s.ctx, "quick one")
	s.Require().NoError(err)
	_, err = s.app.LobbyController.JoinGame(s.ctx, "alice", game.ID, "white")
	s.Require().NoError(err)
	_, err = s.app.LobbyController.JoinGame(s.ctx, "bob", game.ID, "BLACK")
	s.Require().NoError(err)

	alice := testutil.NewFakeConn()
	bob := testutil.NewFakeConn()
	carol := testutil.NewFakeConn()
	s.Require().NoError(s.send(alice, aliceToken, game.ID, model.CommandConnect, ""))
	s.Require().NoError(s.send(bob, bobToken, game.ID, model.CommandConnect, ""))
	s.Require().NoError(s.send(carol, carolToken, game.ID, model.CommandConnect, ""))

	s.Require().NoError(s.send(alice, aliceToken, game.ID, model.CommandMakeMove, "f2f3"))
	s.Require().NoError(s.send(bob, bobToken, game.ID, model.CommandMakeMove, "e7e5"))
	s.Require().NoError(s.send(alice, aliceToken, game.ID, model.CommandMakeMove, "g2g4"))
	s.Require().NoError(s.send(bob, bobToken, game.ID, model.CommandMakeMove, "d8h4"))

	last := carol.Last()
	s.Equal(model.MessageNotification, last.Type)
	s.Equal("alice is in checkmate. bob wins!", last.Message)

	stored, err := s.app.LobbyController.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.True(stored.State.GameOver)
	s.Equal(chess.White, stored.State.Turn)

	err = s.send(alice, aliceToken, game.ID, model.CommandMakeMove, "a2a3")
	s.ErrorIs(err, model.ErrGameOver)
	s.Equal("Error: game is over", alice.Last().Message)
}

// Test: A vacated seat can be taken by someone else
func (s *IntegrationSuite) TestLeaveFreesSeat() {
	aliceToken := s.register("alice")
	s.register("dave")

	game, err := s.app.LobbyController.CreateGame(s.ctx, "seats")
	s.Require().NoError(err)
	_, err = s.app.LobbyController.JoinGame(s.ctx, "alice", game.ID, "WHITE")
	s.Require().NoError(err)

	_, err = s.app.LobbyController.JoinGame(s.ctx, "dave", game.ID, "WHITE")
	s.ErrorIs(err, model.ErrColorTaken)

	alice := testutil.NewFakeConn()
	s.Require().NoError(s.send(alice, aliceToken, game.ID, model.CommandConnect, ""))
	s.Require().NoError(s.send(alice, aliceToken, game.ID, model.CommandLeave, ""))
	s.Equal(0, s.app.Registry.Count(game.ID))

	joined, err := s.app.LobbyController.JoinGame(s.ctx, "dave", game.ID, "WHITE")
	s.Require().NoError(err)
	s.Equal("dave", joined.WhiteUsername)
}

// Test: Expired tokens stop working on the socket
func (s *IntegrationSuite) TestExpiredTokenRejected() {
	token := s.register("alice")
	game, err := s.app.LobbyController.CreateGame(s.ctx, "late")
	s.Require().NoError(err)

	s.app.MockClock.Advance(25 * time.Hour)

	conn := testutil.NewFakeConn()
	err = s.send(conn, token, game.ID, model.CommandConnect, "")
	s.ErrorIs(err, model.ErrUnauthorized)
	s.Equal("Error: unauthorized", conn.Last().Message)
	s.Equal(0, s.app.Registry.Count(game.ID))
}

// Test: Clear wipes accounts and games
func (s *IntegrationSuite) TestClear() {
	token := s.register("alice")
	_, err := s.app.LobbyController.CreateGame(s.ctx, "doomed")
	s.Require().NoError(err)

	s.Require().NoError(s.app.LobbyController.Clear(s.ctx))

	games, err := s.app.LobbyController.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Empty(games)

	_, err = s.app.AuthService.Username(s.ctx, token)
	s.Error(err)
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	_, err := New(Config{StorageType: "sqlite"})
	if err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}

func TestNewRequiresBackendConfig(t *testing.T) {
	for _, typ := range []string{StorageTypeRedis, StorageTypePostgres} {
		if _, err := New(Config{StorageType: typ}); err == nil {
			t.Fatalf("expected error for %s without config", typ)
		}
	}
}

func TestNewMemoryDefaults(t *testing.T) {
	app, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if _, ok := app.Storage.(*memory.Storage); !ok {
		t.Fatalf("expected memory storage, got %T", app.Storage)
	}
}
