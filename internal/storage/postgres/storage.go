package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/mcoot/chessgame-go/internal/chess"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage"
)

//go:embed schema.sql
var schema string

// uniqueViolation is the SQLSTATE postgres reports for a duplicate key
const uniqueViolation = "23505"

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens the database, verifies the connection and creates missing tables
func New(cfg Config) (*Storage, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("postgres URL is required")
	}
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, email, created_at) VALUES ($1, $2, $3, $4)`,
		user.Username, user.PasswordHash, user.Email, user.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return model.ErrUsernameTaken
	}
	return err
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash, email, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&user.Username, &user.PasswordHash, &user.Email, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Auth operations

func (s *Storage) SaveAuth(ctx context.Context, auth *model.AuthData) error {
	var expires sql.NullTime
	if !auth.ExpiresAt.IsZero() {
		expires = sql.NullTime{Time: auth.ExpiresAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auths (token, username, created_at, expires_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (token) DO UPDATE SET
		   username=EXCLUDED.username,
		   created_at=EXCLUDED.created_at,
		   expires_at=EXCLUDED.expires_at`,
		auth.Token, auth.Username, auth.CreatedAt, expires,
	)
	return err
}

func (s *Storage) GetAuth(ctx context.Context, token string) (*model.AuthData, error) {
	var (
		auth    model.AuthData
		expires sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT token, username, created_at, expires_at FROM auths WHERE token = $1`,
		token,
	).Scan(&auth.Token, &auth.Username, &auth.CreatedAt, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrAuthNotFound
	}
	if err != nil {
		return nil, err
	}
	if expires.Valid {
		auth.ExpiresAt = expires.Time
	}
	return &auth, nil
}

func (s *Storage) DeleteAuth(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auths WHERE token = $1`, token)
	return err
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) (model.GameID, error) {
	state, err := json.Marshal(game.State)
	if err != nil {
		return 0, err
	}

	var id model.GameID
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO games (name, white_username, black_username, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		game.Name, game.WhiteUsername, game.BlackUsername, string(state), game.CreatedAt, game.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	game.ID = id
	return id, nil
}

const selectGame = `SELECT id, name, white_username, black_username, state, created_at, updated_at FROM games`

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	game, err := scanGame(s.db.QueryRowContext(ctx, selectGame+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGameNotFound
	}
	return game, err
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	state, err := json.Marshal(game.State)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET name=$2, white_username=$3, black_username=$4, state=$5, updated_at=$6 WHERE id=$1`,
		game.ID, game.Name, game.WhiteUsername, game.BlackUsername, string(state), game.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrGameNotFound
	}
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	rows, err := s.db.QueryContext(ctx, selectGame+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []*model.Game{}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// Clear empties every table. The games id sequence is not reset.
func (s *Storage) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `TRUNCATE users, auths, games`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*model.Game, error) {
	var (
		game  model.Game
		state []byte
	)
	if err := row.Scan(&game.ID, &game.Name, &game.WhiteUsername, &game.BlackUsername, &state, &game.CreatedAt, &game.UpdatedAt); err != nil {
		return nil, err
	}
	var st chess.State
	if err := json.Unmarshal(state, &st); err != nil {
		return nil, fmt.Errorf("decode state of game %d: %w", game.ID, err)
	}
	game.State = st
	return &game, nil
}
