package chess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// boardFromRows builds a board from eight strings, rank 8 first, using piece
// symbols and '.' for empty squares.
func boardFromRows(t *testing.T, rows ...string) Board {
	t.Helper()
	require.Len(t, rows, Size, "need one string per rank")

	var b Board
	for i, row := range rows {
		require.Len(t, row, Size, "rank %d", Size-i)
		for j, r := range row {
			p, ok := PieceFromSymbol(r)
			require.True(t, ok, "bad symbol %q", r)
			b.Set(Sq(Size-i, j+1), p)
		}
	}
	return b
}

func mustSquare(t *testing.T, s string) Square {
	t.Helper()
	sq, err := ParseSquare(s)
	require.NoError(t, err)
	return sq
}

func mustMove(t *testing.T, s string) Move {
	t.Helper()
	m, err := ParseMove(s)
	require.NoError(t, err)
	return m
}

func moveStrings(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}
