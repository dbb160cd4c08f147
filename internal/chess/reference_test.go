package chess

import (
	"math/rand/v2"
	"testing"

	nchess "github.com/corentings/chess/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests replay the same moves through corentings/chess and compare legal
// move sets. The reference knows castling and en passant, which this engine
// does not model, so those moves are filtered out of its answers.

func referenceMoves(ref *nchess.Game, st State) []string {
	var out []string
	for _, m := range ref.ValidMoves() {
		uci := m.String()
		parsed, err := ParseMove(uci)
		if err != nil {
			continue
		}
		p := st.Board.At(parsed.From)
		dCol := parsed.To.Col - parsed.From.Col
		if p.Kind == King && (dCol == 2 || dCol == -2) {
			continue
		}
		if p.Kind == Pawn && dCol != 0 && st.Board.IsEmpty(parsed.To) {
			continue
		}
		out = append(out, uci)
	}
	return out
}

func replay(t *testing.T, line []string) (*nchess.Game, State) {
	t.Helper()
	ref := nchess.NewGame()
	st := NewState()
	for _, uci := range line {
		require.NoError(t, ref.PushNotationMove(uci, nchess.UCINotation{}, nil), uci)
		next, err := st.Apply(mustMove(t, uci))
		require.NoError(t, err, uci)
		st = next
	}
	return ref, st
}

func TestLegalMovesMatchReferenceOnFixedLines(t *testing.T) {
	tests := []struct {
		name string
		line []string
	}{
		{name: "starting position", line: nil},
		{name: "early queen sortie", line: []string{"e2e3", "e7e6", "d1h5", "g8f6"}},
		{name: "pawn exchanges", line: []string{"d2d4", "e7e5", "d4e5", "f7f6", "e5f6"}},
		{name: "black in check", line: []string{"e2e4", "f7f6", "d1h5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, st := replay(t, tt.line)
			assert.ElementsMatch(t, referenceMoves(ref, st), moveStrings(st.AllLegalMoves(st.Turn)))
		})
	}
}

func TestFoolsMateMatchesReference(t *testing.T) {
	ref, st := replay(t, []string{"f2f3", "e7e5", "g2g4", "d8h4"})

	assert.Equal(t, nchess.BlackWon, ref.Outcome())
	assert.True(t, st.IsInCheckmate(White))
	assert.Empty(t, st.AllLegalMoves(White))
}

func TestRandomGamesMatchReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(2024, 1))

	for game := 0; game < 3; game++ {
		ref := nchess.NewGame()
		st := NewState()
		for ply := 0; ply < 40; ply++ {
			if ref.Outcome() != nchess.NoOutcome {
				break
			}
			ours := st.AllLegalMoves(st.Turn)
			require.ElementsMatch(t, referenceMoves(ref, st), moveStrings(ours), "game %d ply %d", game, ply)
			if len(ours) == 0 {
				break
			}

			m := ours[rng.IntN(len(ours))]
			require.NoError(t, ref.PushNotationMove(m.String(), nchess.UCINotation{}, nil))
			next, err := st.Apply(m)
			require.NoError(t, err)
			st = next
		}
	}
}
