package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chessgame-go/internal/dependencies/mocks"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage/memory"
	"github.com/mcoot/chessgame-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger(), DefaultConfig())
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	session, err := s.service.Register(s.ctx, "alice", "password123", "alice@example.com")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("alice", session.Username)
	s.Equal(s.clock.Now().Add(24*time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestRegisterHashesPassword() {
	_, err := s.service.Register(s.ctx, "alice", "password123", "alice@example.com")
	s.Require().NoError(err)

	user, err := s.storage.GetUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.NotEmpty(user.PasswordHash)
	s.NotEqual("password123", user.PasswordHash)
	s.Equal("alice@example.com", user.Email)
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	_, err := s.service.Register(s.ctx, "alice", "password123", "")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "other", "")
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *ServiceSuite) TestRegisterRequiresFields() {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "pw"},
		{name: "blank username", username: "   ", password: "pw"},
		{name: "empty password", username: "alice", password: ""},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Register(s.ctx, tt.username, tt.password, "")
			s.ErrorIs(err, model.ErrBadRequest)
		})
	}
}

func (s *ServiceSuite) TestRegisteredTokensAreUnique() {
	a, err := s.service.Register(s.ctx, "alice", "pw", "")
	s.Require().NoError(err)
	b, err := s.service.Register(s.ctx, "bob", "pw", "")
	s.Require().NoError(err)

	s.NotEqual(a.Token, b.Token)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	registered, _ := s.service.Register(s.ctx, "alice", "password123", "")

	session, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.Equal("alice", session.Username)
	s.NotEqual(registered.Token, session.Token)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	_, _ = s.service.Register(s.ctx, "alice", "password123", "")

	_, err := s.service.Login(s.ctx, "alice", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginMissingFields() {
	_, err := s.service.Login(s.ctx, "alice", "")
	s.ErrorIs(err, model.ErrBadRequest)
}

func (s *ServiceSuite) TestOlderTokensStayValidAfterLogin() {
	registered, _ := s.service.Register(s.ctx, "alice", "pw", "")
	_, err := s.service.Login(s.ctx, "alice", "pw")
	s.Require().NoError(err)

	_, err = s.service.ValidateSession(s.ctx, registered.Token)
	s.NoError(err)
}

// Session tests

func (s *ServiceSuite) TestValidateSession() {
	registered, _ := s.service.Register(s.ctx, "alice", "pw", "")

	session, err := s.service.ValidateSession(s.ctx, registered.Token)
	s.Require().NoError(err)
	s.Equal("alice", session.Username)

	username, err := s.service.Username(s.ctx, registered.Token)
	s.Require().NoError(err)
	s.Equal("alice", username)
}

func (s *ServiceSuite) TestValidateSessionUnknownToken() {
	_, err := s.service.ValidateSession(s.ctx, "not-a-token")
	s.ErrorIs(err, ErrInvalidSession)

	_, err = s.service.ValidateSession(s.ctx, "")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionExpired() {
	registered, _ := s.service.Register(s.ctx, "alice", "pw", "")

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.ValidateSession(s.ctx, registered.Token)
	s.ErrorIs(err, ErrInvalidSession)

	// expired tokens are removed from storage
	_, err = s.storage.GetAuth(s.ctx, registered.Token)
	s.ErrorIs(err, model.ErrAuthNotFound)
}

func (s *ServiceSuite) TestCustomSessionDuration() {
	svc := New(s.storage, s.clock, testutil.NopLogger(), Config{SessionDuration: time.Minute})
	registered, err := svc.Register(s.ctx, "alice", "pw", "")
	s.Require().NoError(err)

	s.clock.Advance(30 * time.Second)
	_, err = svc.ValidateSession(s.ctx, registered.Token)
	s.NoError(err)

	s.clock.Advance(time.Minute)
	_, err = svc.ValidateSession(s.ctx, registered.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

// Logout tests

func (s *ServiceSuite) TestLogout() {
	registered, _ := s.service.Register(s.ctx, "alice", "pw", "")

	s.Require().NoError(s.service.Logout(s.ctx, registered.Token))

	_, err := s.service.ValidateSession(s.ctx, registered.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestLogoutTwice() {
	registered, _ := s.service.Register(s.ctx, "alice", "pw", "")
	s.Require().NoError(s.service.Logout(s.ctx, registered.Token))

	s.ErrorIs(s.service.Logout(s.ctx, registered.Token), ErrInvalidSession)
}
