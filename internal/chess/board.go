package chess

import (
	"encoding/json"
	"fmt"
)

// Board is an 8x8 grid of optional pieces. It is a plain value: assigning a
// Board copies every square, so a copy can be mutated without affecting the original.
type Board struct {
	squares [Size][Size]Piece
}

var backRank = [Size]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns a board in the standard starting arrangement
func NewBoard() Board {
	var b Board
	for col := 1; col <= Size; col++ {
		b.Set(Sq(1, col), Piece{Color: White, Kind: backRank[col-1]})
		b.Set(Sq(2, col), Piece{Color: White, Kind: Pawn})
		b.Set(Sq(7, col), Piece{Color: Black, Kind: Pawn})
		b.Set(Sq(8, col), Piece{Color: Black, Kind: backRank[col-1]})
	}
	return b
}

// At returns the piece on sq, or the zero Piece if the square is empty or off the board
func (b *Board) At(sq Square) Piece {
	if !sq.Valid() {
		return Piece{}
	}
	return b.squares[sq.Row-1][sq.Col-1]
}

// IsEmpty returns true if no piece occupies sq
func (b *Board) IsEmpty(sq Square) bool {
	return b.At(sq).IsZero()
}

// Set places p on sq, replacing whatever was there
func (b *Board) Set(sq Square, p Piece) {
	if sq.Valid() {
		b.squares[sq.Row-1][sq.Col-1] = p
	}
}

// Clear empties sq
func (b *Board) Clear(sq Square) {
	b.Set(sq, Piece{})
}

// Occupied returns the squares holding pieces of color c, in row-major order
func (b *Board) Occupied(c Color) []Square {
	var squares []Square
	for row := 1; row <= Size; row++ {
		for col := 1; col <= Size; col++ {
			p := b.squares[row-1][col-1]
			if !p.IsZero() && p.Color == c {
				squares = append(squares, Sq(row, col))
			}
		}
	}
	return squares
}

// KingSquare finds the king of color c
func (b *Board) KingSquare(c Color) (Square, bool) {
	king := Piece{Color: c, Kind: King}
	for row := 1; row <= Size; row++ {
		for col := 1; col <= Size; col++ {
			if b.squares[row-1][col-1] == king {
				return Sq(row, col), true
			}
		}
	}
	return Square{}, false
}

// PieceCount returns the number of occupied squares
func (b *Board) PieceCount() int {
	n := 0
	for row := range b.squares {
		for col := range b.squares[row] {
			if !b.squares[row][col].IsZero() {
				n++
			}
		}
	}
	return n
}

// move relocates a piece with no legality checks, honouring promotion
func (b *Board) move(m Move) {
	p := b.At(m.From)
	if m.Promotion != NoKind {
		p = Piece{Color: p.Color, Kind: m.Promotion}
	}
	b.Clear(m.From)
	b.Set(m.To, p)
}

// MarshalJSON encodes the occupied squares keyed by algebraic name
func (b Board) MarshalJSON() ([]byte, error) {
	out := make(map[string]Piece, 32)
	for row := 1; row <= Size; row++ {
		for col := 1; col <= Size; col++ {
			sq := Sq(row, col)
			if p := b.At(sq); !p.IsZero() {
				out[sq.String()] = p
			}
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the format written by MarshalJSON
func (b *Board) UnmarshalJSON(data []byte) error {
	var in map[string]Piece
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var decoded Board
	for name, p := range in {
		sq, err := ParseSquare(name)
		if err != nil {
			return err
		}
		if p.IsZero() {
			return fmt.Errorf("square %s: missing piece kind", name)
		}
		decoded.Set(sq, p)
	}
	*b = decoded
	return nil
}
