package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/chessgame-go/internal/dependencies/clock"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// Session is an issued auth token
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles registration, login and token resolution.
// Tokens live in storage so every server instance sharing it accepts them.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		logger:          logger,
		sessionDuration: cfg.SessionDuration,
	}
}

// Register creates an account and logs it in
func (s *Service) Register(ctx context.Context, username, password, email string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", model.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        strings.TrimSpace(email),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("username", username))
	return s.createSession(ctx, username)
}

// Login checks the password and issues a fresh token
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", model.ErrBadRequest)
	}

	user, err := s.storage.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(ctx, user.Username)
}

// Logout revokes a token. Unknown tokens are ErrInvalidSession.
func (s *Service) Logout(ctx context.Context, token string) error {
	if _, err := s.ValidateSession(ctx, token); err != nil {
		return err
	}
	return s.storage.DeleteAuth(ctx, token)
}

// ValidateSession resolves a token to its session. Expired tokens are deleted.
func (s *Service) ValidateSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	auth, err := s.storage.GetAuth(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrAuthNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if auth.Expired(s.clock.Now()) {
		if err := s.storage.DeleteAuth(ctx, token); err != nil {
			s.logger.Warn("failed to delete expired token", slog.String("error", err.Error()))
		}
		return nil, ErrInvalidSession
	}

	return &Session{
		Token:     auth.Token,
		Username:  auth.Username,
		CreatedAt: auth.CreatedAt,
		ExpiresAt: auth.ExpiresAt,
	}, nil
}

// Username returns the username a token belongs to
func (s *Service) Username(ctx context.Context, token string) (string, error) {
	session, err := s.ValidateSession(ctx, token)
	if err != nil {
		return "", err
	}
	return session.Username, nil
}

// createSession issues a new token for username
func (s *Service) createSession(ctx context.Context, username string) (*Session, error) {
	now := s.clock.Now()
	auth := &model.AuthData{
		Token:     uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	if err := s.storage.SaveAuth(ctx, auth); err != nil {
		return nil, err
	}

	return &Session{
		Token:     auth.Token,
		Username:  auth.Username,
		CreatedAt: auth.CreatedAt,
		ExpiresAt: auth.ExpiresAt,
	}, nil
}
