package chess

import (
	"fmt"
	"strings"
)

// Size is the number of rows and columns on the board
const Size = 8

// Square is a board coordinate. Row 1 is White's back rank, column 1 is the a-file.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Sq is shorthand for constructing a Square
func Sq(row, col int) Square {
	return Square{Row: row, Col: col}
}

// Valid reports whether the square lies on the board
func (s Square) Valid() bool {
	return s.Row >= 1 && s.Row <= Size && s.Col >= 1 && s.Col <= Size
}

// Offset returns the square shifted by the given row and column deltas
func (s Square) Offset(dRow, dCol int) Square {
	return Square{Row: s.Row + dRow, Col: s.Col + dCol}
}

// String returns algebraic notation, e.g. "e2"
func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+s.Col-1, s.Row)
}

// ParseSquare parses algebraic notation such as "e2"
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	sq := Square{Row: int(s[1]-'1') + 1, Col: int(s[0]-'a') + 1}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	return sq, nil
}
