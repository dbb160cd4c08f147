package request

import (
	"errors"
	"strings"
)

// Validator is implemented by request bodies that check their own fields
type Validator interface {
	Validate() error
}

// RegisterRequest is the request body for creating a user
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Validate requires every field
func (r RegisterRequest) Validate() error {
	switch {
	case blank(r.Username):
		return errors.New("username is required")
	case r.Password == "":
		return errors.New("password is required")
	case blank(r.Email):
		return errors.New("email is required")
	}
	return nil
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if blank(r.Username) || r.Password == "" {
		return errors.New("username and password are required")
	}
	return nil
}

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	GameName string `json:"game_name"`
}

func (r CreateGameRequest) Validate() error {
	if blank(r.GameName) {
		return errors.New("game_name is required")
	}
	return nil
}

// JoinGameRequest is the request body for taking a seat. The color is checked
// by the lobby, which owns the list of valid seats.
type JoinGameRequest struct {
	PlayerColor string `json:"player_color"`
}

func (r JoinGameRequest) Validate() error {
	if blank(r.PlayerColor) {
		return errors.New("player_color is required")
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
