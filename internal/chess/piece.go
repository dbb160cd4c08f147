package chess

import (
	"fmt"
	"strings"
	"unicode"
)

// Color identifies a side
type Color int

const (
	White Color = iota
	Black
)

// Opponent returns the other color
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == Black {
		return "BLACK"
	}
	return "WHITE"
}

// MarshalText implements encoding.TextMarshaler
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor parses "WHITE" or "BLACK", case-insensitively
func ParseColor(s string) (Color, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WHITE":
		return White, nil
	case "BLACK":
		return Black, nil
	default:
		return White, fmt.Errorf("unknown color %q", s)
	}
}

// Kind is the type of a piece. The zero value means no piece.
type Kind int

const (
	NoKind Kind = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

var kindNames = [...]string{
	NoKind: "",
	King:   "KING",
	Queen:  "QUEEN",
	Rook:   "ROOK",
	Bishop: "BISHOP",
	Knight: "KNIGHT",
	Pawn:   "PAWN",
}

// symbols are the white (upper case) letters used in algebraic notation
var kindSymbols = [...]rune{
	NoKind: '.',
	King:   'K',
	Queen:  'Q',
	Rook:   'R',
	Bishop: 'B',
	Knight: 'N',
	Pawn:   'P',
}

// PromotionKinds are the kinds a pawn may promote to, in emission order
var PromotionKinds = [...]Kind{Queen, Rook, Bishop, Knight}

func (k Kind) String() string {
	if k < NoKind || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind accepts full names ("queen") or single letters ("q").
// An empty string parses as NoKind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return NoKind, nil
	}
	for k := King; k <= Pawn; k++ {
		if s == kindNames[k] || (len(s) == 1 && rune(s[0]) == kindSymbols[k]) {
			return k, nil
		}
	}
	return NoKind, fmt.Errorf("unknown piece kind %q", s)
}

// Piece is an immutable value; two pieces are equal iff color and kind match
type Piece struct {
	Color Color `json:"color"`
	Kind  Kind  `json:"kind"`
}

// IsZero reports whether p represents an empty square
func (p Piece) IsZero() bool {
	return p.Kind == NoKind
}

// Symbol returns the notation letter, upper case for white and lower case for black
func (p Piece) Symbol() rune {
	r := kindSymbols[p.Kind]
	if p.Color == Black {
		return unicode.ToLower(r)
	}
	return r
}

// PieceFromSymbol is the inverse of Symbol. '.' and ' ' give the zero piece.
func PieceFromSymbol(r rune) (Piece, bool) {
	if r == '.' || r == ' ' {
		return Piece{}, true
	}
	color := White
	if unicode.IsLower(r) {
		color = Black
	}
	upper := unicode.ToUpper(r)
	for k := King; k <= Pawn; k++ {
		if kindSymbols[k] == upper {
			return Piece{Color: color, Kind: k}, true
		}
	}
	return Piece{}, false
}

func (p Piece) String() string {
	if p.IsZero() {
		return "empty"
	}
	return strings.ToLower(p.Color.String() + " " + p.Kind.String())
}
