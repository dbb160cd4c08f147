package chess

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMove is returned by State.Apply for any rejected move
var ErrInvalidMove = errors.New("invalid move")

// State is the rules engine: a board, the side to move and the game-over flag.
// It is a value type; queries never modify it and Apply returns a new State.
type State struct {
	Board    Board `json:"board"`
	Turn     Color `json:"turn"`
	GameOver bool  `json:"game_over"`
}

// NewState returns the standard starting position with White to move
func NewState() State {
	return State{Board: NewBoard(), Turn: White}
}

// LegalMoves returns the pseudo-legal moves of the piece on origin that do not
// leave that piece's own king in check. It does not consult Turn or GameOver.
func (s State) LegalMoves(origin Square) []Move {
	p := s.Board.At(origin)
	if p.IsZero() {
		return nil
	}
	var legal []Move
	for _, m := range PieceMoves(&s.Board, origin) {
		scratch := s.Board
		scratch.move(m)
		if !inCheck(&scratch, p.Color) {
			legal = append(legal, m)
		}
	}
	return legal
}

// AllLegalMoves returns the legal moves of every piece of color c
func (s State) AllLegalMoves(c Color) []Move {
	var moves []Move
	for _, sq := range s.Board.Occupied(c) {
		moves = append(moves, s.LegalMoves(sq)...)
	}
	return moves
}

// Apply validates m against the current position and returns the resulting state.
// Every rejection wraps ErrInvalidMove.
func (s State) Apply(m Move) (State, error) {
	if s.GameOver {
		return s, fmt.Errorf("%w: game is over", ErrInvalidMove)
	}
	p := s.Board.At(m.From)
	if p.IsZero() || p.Color != s.Turn {
		return s, fmt.Errorf("%w: no %s piece on %s", ErrInvalidMove, strings.ToLower(s.Turn.String()), m.From)
	}
	if !containsMove(s.LegalMoves(m.From), m) {
		return s, fmt.Errorf("%w: %s is not a legal move", ErrInvalidMove, m)
	}

	next := s
	next.Board.move(m)
	next.Turn = s.Turn.Opponent()
	return next, nil
}

// IsInCheck reports whether any pseudo-legal move of the opponent lands on
// c's king. A side without a king is never in check.
func (s State) IsInCheck(c Color) bool {
	return inCheck(&s.Board, c)
}

// IsInCheckmate reports whether c is in check and has no legal move
func (s State) IsInCheckmate(c Color) bool {
	return s.IsInCheck(c) && !s.hasLegalMove(c)
}

// IsInStalemate reports whether c is not in check and has no legal move
func (s State) IsInStalemate(c Color) bool {
	return !s.IsInCheck(c) && !s.hasLegalMove(c)
}

func (s State) hasLegalMove(c Color) bool {
	for _, sq := range s.Board.Occupied(c) {
		if len(s.LegalMoves(sq)) > 0 {
			return true
		}
	}
	return false
}

func inCheck(b *Board, c Color) bool {
	king, ok := b.KingSquare(c)
	if !ok {
		return false
	}
	for _, sq := range b.Occupied(c.Opponent()) {
		for _, m := range PieceMoves(b, sq) {
			if m.To == king {
				return true
			}
		}
	}
	return false
}
