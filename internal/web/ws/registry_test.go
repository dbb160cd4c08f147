package ws

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.registry = NewRegistry(testutil.NopLogger(), 100*time.Millisecond)
	s.ctx = context.Background()
}

func (s *RegistrySuite) TestAddAndLookup() {
	conn := testutil.NewFakeConn()
	s.registry.Add(1, "alice", conn)

	got, ok := s.registry.Lookup(1, "alice")
	s.Require().True(ok)
	s.Equal(conn.ID(), got.ID())
	s.Equal(1, s.registry.Count(1))

	_, ok = s.registry.Lookup(1, "bob")
	s.False(ok)
	_, ok = s.registry.Lookup(2, "alice")
	s.False(ok)
}

func (s *RegistrySuite) TestAddReplacesExistingPair() {
	first := testutil.NewFakeConn()
	second := testutil.NewFakeConn()

	s.registry.Add(1, "alice", first)
	s.registry.Add(1, "alice", second)

	got, ok := s.registry.Lookup(1, "alice")
	s.Require().True(ok)
	s.Equal(second.ID(), got.ID())
	s.Equal(1, s.registry.Count(1))
}

func (s *RegistrySuite) TestRemove() {
	s.registry.Add(1, "alice", testutil.NewFakeConn())
	s.registry.Add(1, "bob", testutil.NewFakeConn())

	s.registry.Remove(1, "alice")
	s.Equal(1, s.registry.Count(1))

	s.registry.Remove(1, "bob")
	s.Equal(0, s.registry.Count(1))

	// removing unknown entries is a no-op
	s.registry.Remove(1, "carol")
	s.registry.Remove(99, "alice")
}

func (s *RegistrySuite) TestDropRemovesConnFromAllGames() {
	conn := testutil.NewFakeConn()
	other := testutil.NewFakeConn()
	s.registry.Add(1, "alice", conn)
	s.registry.Add(2, "alice", conn)
	s.registry.Add(2, "bob", other)

	s.registry.Drop(conn)

	s.Equal(0, s.registry.Count(1))
	s.Equal(1, s.registry.Count(2))
	_, ok := s.registry.Lookup(2, "bob")
	s.True(ok)
}

func (s *RegistrySuite) TestDropIgnoresReplacedConn() {
	old := testutil.NewFakeConn()
	current := testutil.NewFakeConn()
	s.registry.Add(1, "alice", old)
	s.registry.Add(1, "alice", current)

	s.registry.Drop(old)

	got, ok := s.registry.Lookup(1, "alice")
	s.Require().True(ok)
	s.Equal(current.ID(), got.ID())
}

func (s *RegistrySuite) TestBroadcastExcludesUsername() {
	alice := testutil.NewFakeConn()
	bob := testutil.NewFakeConn()
	carol := testutil.NewFakeConn()
	s.registry.Add(1, "alice", alice)
	s.registry.Add(1, "bob", bob)
	s.registry.Add(1, "carol", carol)

	s.registry.Broadcast(s.ctx, 1, "alice", model.Notification("hi"))

	s.Empty(alice.Messages())
	s.Equal([]model.ServerMessage{model.Notification("hi")}, bob.Messages())
	s.Equal([]model.ServerMessage{model.Notification("hi")}, carol.Messages())
}

func (s *RegistrySuite) TestBroadcastEmptyExcludeReachesEveryone() {
	alice := testutil.NewFakeConn()
	bob := testutil.NewFakeConn()
	s.registry.Add(1, "alice", alice)
	s.registry.Add(1, "bob", bob)

	s.registry.Broadcast(s.ctx, 1, "", model.Notification("all"))

	s.Len(alice.Messages(), 1)
	s.Len(bob.Messages(), 1)
}

func (s *RegistrySuite) TestBroadcastIsScopedToGame() {
	here := testutil.NewFakeConn()
	elsewhere := testutil.NewFakeConn()
	s.registry.Add(1, "alice", here)
	s.registry.Add(2, "bob", elsewhere)

	s.registry.Broadcast(s.ctx, 1, "", model.Notification("game one"))

	s.Len(here.Messages(), 1)
	s.Empty(elsewhere.Messages())
}

func (s *RegistrySuite) TestBroadcastPrunesFailedConn() {
	alice := testutil.NewFakeConn()
	bob := testutil.NewFakeConn()
	bob.Fail()
	s.registry.Add(1, "alice", alice)
	s.registry.Add(1, "bob", bob)

	s.registry.Broadcast(s.ctx, 1, "", model.Notification("x"))

	s.Len(alice.Messages(), 1)
	_, ok := s.registry.Lookup(1, "bob")
	s.False(ok)
	s.Equal(1, s.registry.Count(1))
}

func (s *RegistrySuite) TestSlowConnDoesNotStallOthers() {
	slow := testutil.NewFakeConn()
	slow.Block()
	fast := testutil.NewFakeConn()
	s.registry.Add(1, "slow", slow)
	s.registry.Add(1, "fast", fast)

	start := time.Now()
	s.registry.Broadcast(s.ctx, 1, "", model.Notification("x"))

	s.Less(time.Since(start), 2*time.Second)
	s.Len(fast.Messages(), 1)
	_, ok := s.registry.Lookup(1, "slow")
	s.False(ok, "timed out recipient is pruned")
}

func (s *RegistrySuite) TestBroadcastSurvivesCancelledCallerContext() {
	conn := testutil.NewFakeConn()
	s.registry.Add(1, "alice", conn)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.registry.Broadcast(ctx, 1, "", model.Notification("still delivered"))

	s.Len(conn.Messages(), 1)
}

func (s *RegistrySuite) TestBroadcastToUnknownGame() {
	s.NotPanics(func() {
		s.registry.Broadcast(s.ctx, 42, "", model.Notification("nobody"))
	})
}

func (s *RegistrySuite) TestConcurrentUse() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gameID := model.GameID(i % 3)
			conn := testutil.NewFakeConn()
			s.registry.Add(gameID, conn.ID(), conn)
			s.registry.Broadcast(s.ctx, gameID, "", model.Notification("x"))
			s.registry.Lookup(gameID, conn.ID())
			s.registry.Drop(conn)
		}()
	}
	wg.Wait()

	for id := model.GameID(0); id < 3; id++ {
		s.Equal(0, s.registry.Count(id))
	}
}
