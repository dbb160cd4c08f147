package model

import (
	"time"

	"github.com/mcoot/chessgame-go/internal/chess"
)

// GameID uniquely identifies a game
type GameID int

// Game is a persisted chess session: the rules state plus who holds each color.
// An empty username means the color slot is open.
type Game struct {
	ID            GameID
	Name          string
	WhiteUsername string
	BlackUsername string
	State         chess.State
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewGame returns a game in the standard starting position with both slots open
func NewGame(id GameID, name string, now time.Time) *Game {
	return &Game{
		ID:        id,
		Name:      name,
		State:     chess.NewState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Player returns the username holding color c, or "" if the slot is open
func (g *Game) Player(c chess.Color) string {
	if c == chess.Black {
		return g.BlackUsername
	}
	return g.WhiteUsername
}

// SetPlayer assigns (or clears, with "") the slot for color c
func (g *Game) SetPlayer(c chess.Color, username string) {
	if c == chess.Black {
		g.BlackUsername = username
	} else {
		g.WhiteUsername = username
	}
}

// ColorOf returns the color username plays. ok is false for observers.
// When one user holds both slots, the side to move is returned.
func (g *Game) ColorOf(username string) (c chess.Color, ok bool) {
	if username == "" {
		return chess.White, false
	}
	white := g.WhiteUsername == username
	black := g.BlackUsername == username
	switch {
	case white && black:
		return g.State.Turn, true
	case white:
		return chess.White, true
	case black:
		return chess.Black, true
	default:
		return chess.White, false
	}
}

// Clone returns a copy that shares nothing with g
func (g *Game) Clone() *Game {
	c := *g
	return &c
}
