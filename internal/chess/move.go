package chess

import (
	"fmt"
	"strings"
)

// Move is a comparable value. Promotion is part of its identity: a promotion
// to a queen and a promotion to a knight on the same squares are different moves.
type Move struct {
	From      Square `json:"from"`
	To        Square `json:"to"`
	Promotion Kind   `json:"promotion,omitempty"`
}

// String returns coordinate notation, e.g. "e2e4" or "e7e8q"
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoKind {
		s += strings.ToLower(string(kindSymbols[m.Promotion]))
	}
	return s
}

// ParseMove parses coordinate notation ("e2e4", "e7e8q")
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("invalid move %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, err
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		kind, err := ParseKind(s[4:])
		if err != nil {
			return Move{}, err
		}
		m.Promotion = kind
	}
	return m, nil
}

func containsMove(moves []Move, m Move) bool {
	for _, candidate := range moves {
		if candidate == m {
			return true
		}
	}
	return false
}
