package engine

import (
	"github.com/samber/lo"

	"checkers/internal/board"
	"checkers/internal/core"
)

// PieceHasMoves reports whether any square on the board is a legal
// destination for the piece at (x, y).
func (e *Engine) PieceHasMoves(x, y int) bool {
	if !e.board.InBounds(x, y) || !e.board.At(x, y).IsPiece() {
		return false
	}
	for ty := 0; ty < e.board.Height(); ty++ {
		for tx := 0; tx < e.board.Width(); tx++ {
			if e.IsMoveLegal(board.Move{FromX: x, FromY: y, ToX: tx, ToY: ty}) {
				return true
			}
		}
	}
	return false
}

// PieceMoves lists every legal move of the piece at (x, y), scanning
// destinations row by row.
func (e *Engine) PieceMoves(x, y int) []board.Move {
	var moves []board.Move
	if !e.board.InBounds(x, y) || !e.board.At(x, y).IsPiece() {
		return moves
	}
	for ty := 0; ty < e.board.Height(); ty++ {
		for tx := 0; tx < e.board.Width(); tx++ {
			m := board.Move{FromX: x, FromY: y, ToX: tx, ToY: ty}
			if e.IsMoveLegal(m) {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

// MovableCheckers returns every square holding a piece of side that has at
// least one legal move, in row-major order.
func (e *Engine) MovableCheckers(side core.Color) []board.Position {
	var out []board.Position
	for y := 0; y < e.board.Height(); y++ {
		for x := 0; x < e.board.Width(); x++ {
			if e.board.At(x, y).Is(side) && e.PieceHasMoves(x, y) {
				out = append(out, board.Position{X: x, Y: y})
			}
		}
	}
	return out
}

// AllPossibleMoves enumerates the legal moves of side. The order is stable:
// pieces row-major, then destinations row-major. Search tie-breaking
// depends on it. With forced capture enabled only jumps are returned when
// one exists.
func (e *Engine) AllPossibleMoves(side core.Color) []board.Move {
	moves := lo.FlatMap(e.MovableCheckers(side), func(p board.Position, _ int) []board.Move {
		return e.PieceMoves(p.X, p.Y)
	})
	if e.opts.MandatoryTake {
		jumps := lo.Filter(moves, func(m board.Move, _ int) bool { return m.IsJump() })
		if len(jumps) > 0 {
			return jumps
		}
	}
	return moves
}

func (e *Engine) sideHasMoves(side core.Color) bool {
	for y := 0; y < e.board.Height(); y++ {
		for x := 0; x < e.board.Width(); x++ {
			if e.board.At(x, y).Is(side) && e.PieceHasMoves(x, y) {
				return true
			}
		}
	}
	return false
}
