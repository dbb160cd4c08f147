package cli

import (
	"strings"

	"github.com/mcoot/chessgame-go/internal/chess"
)

// RenderBoard draws state as a text grid seen from perspective's side.
// With a non-nil origin, that square is shown as (x) and every destination of
// its legal moves as [x].
func RenderBoard(state chess.State, perspective chess.Color, origin *chess.Square) string {
	targets := make(map[chess.Square]bool)
	if origin != nil {
		for _, m := range state.LegalMoves(*origin) {
			targets[m.To] = true
		}
	}

	rows := make([]int, 0, chess.Size)
	cols := make([]int, 0, chess.Size)
	for i := 1; i <= chess.Size; i++ {
		if perspective == chess.Black {
			rows = append(rows, i)
			cols = append(cols, chess.Size+1-i)
		} else {
			rows = append(rows, chess.Size+1-i)
			cols = append(cols, i)
		}
	}

	var files strings.Builder
	files.WriteString("   ")
	for _, col := range cols {
		files.WriteString(" " + string(rune('a'+col-1)) + " ")
	}
	files.WriteString("\n")

	var b strings.Builder
	b.WriteString(files.String())
	for _, row := range rows {
		rank := string(rune('0' + row))
		b.WriteString(" " + rank + " ")
		for _, col := range cols {
			sq := chess.Sq(row, col)
			sym := string(state.Board.At(sq).Symbol())
			switch {
			case origin != nil && sq == *origin:
				b.WriteString("(" + sym + ")")
			case targets[sq]:
				b.WriteString("[" + sym + "]")
			default:
				b.WriteString(" " + sym + " ")
			}
		}
		b.WriteString(" " + rank + "\n")
	}
	b.WriteString(files.String())
	return b.String()
}
