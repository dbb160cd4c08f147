package chess

// generator produces the pseudo-legal moves of piece p standing on from
type generator func(b *Board, from Square, p Piece) []Move

type direction struct {
	dRow, dCol int
}

var (
	orthogonal = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal   = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	allAround  = append(append([]direction{}, orthogonal...), diagonal...)
	knightJump = []direction{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
)

// generators is indexed by Kind
var generators = [...]generator{
	NoKind: func(*Board, Square, Piece) []Move { return nil },
	King:   stepper(allAround),
	Queen:  slider(allAround),
	Rook:   slider(orthogonal),
	Bishop: slider(diagonal),
	Knight: stepper(knightJump),
	Pawn:   pawnMoves,
}

// PieceMoves returns the pseudo-legal moves of the piece on origin: movement
// geometry and capture rules only, ignoring whose turn it is and king safety.
// An empty origin yields no moves.
func PieceMoves(b *Board, origin Square) []Move {
	p := b.At(origin)
	if p.IsZero() {
		return nil
	}
	return generators[p.Kind](b, origin, p)
}

func slider(dirs []direction) generator {
	return func(b *Board, from Square, p Piece) []Move {
		var moves []Move
		for _, d := range dirs {
			for to := from.Offset(d.dRow, d.dCol); to.Valid(); to = to.Offset(d.dRow, d.dCol) {
				target := b.At(to)
				if target.IsZero() {
					moves = append(moves, Move{From: from, To: to})
					continue
				}
				if target.Color != p.Color {
					moves = append(moves, Move{From: from, To: to})
				}
				break
			}
		}
		return moves
	}
}

func stepper(offsets []direction) generator {
	return func(b *Board, from Square, p Piece) []Move {
		var moves []Move
		for _, d := range offsets {
			to := from.Offset(d.dRow, d.dCol)
			if !to.Valid() {
				continue
			}
			if target := b.At(to); target.IsZero() || target.Color != p.Color {
				moves = append(moves, Move{From: from, To: to})
			}
		}
		return moves
	}
}

func pawnMoves(b *Board, from Square, p Piece) []Move {
	forward, startRow, lastRow := 1, 2, Size
	if p.Color == Black {
		forward, startRow, lastRow = -1, Size-1, 1
	}

	var moves []Move
	emit := func(to Square) {
		if to.Row == lastRow {
			for _, kind := range PromotionKinds {
				moves = append(moves, Move{From: from, To: to, Promotion: kind})
			}
			return
		}
		moves = append(moves, Move{From: from, To: to})
	}

	one := from.Offset(forward, 0)
	if one.Valid() && b.IsEmpty(one) {
		emit(one)
		two := one.Offset(forward, 0)
		if from.Row == startRow && b.IsEmpty(two) {
			emit(two)
		}
	}

	for _, dCol := range []int{-1, 1} {
		to := from.Offset(forward, dCol)
		if !to.Valid() {
			continue
		}
		if target := b.At(to); !target.IsZero() && target.Color != p.Color {
			emit(to)
		}
	}
	return moves
}
