package model

import "errors"

// Common errors used across the application
var (
	// Request errors
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")

	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrAuthNotFound  = errors.New("auth token not found")

	// Game errors
	ErrGameNotFound = errors.New("game not found")
	ErrColorTaken   = errors.New("color already taken")
	ErrNotAPlayer   = errors.New("user is not a player in this game")
	ErrNotYourTurn  = errors.New("it is not your turn")
	ErrGameOver     = errors.New("game is over")
)
