package engine

import (
	"fmt"

	"checkers/internal/board"
	"checkers/internal/core"
)

var diagonals = [4][2]int{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}

// forward is the row direction a man of the given color advances in.
func forward(c core.Color) int {
	if c == core.ColorWhite {
		return 1
	}
	return -1
}

// IsMoveLegal checks a single step or jump against the current board. Turn
// order is not considered here.
func (e *Engine) IsMoveLegal(m board.Move) bool {
	b := e.board
	if !b.InBounds(m.FromX, m.FromY) || !b.InBounds(m.ToX, m.ToY) {
		return false
	}

	piece := b.At(m.FromX, m.FromY)
	color, ok := piece.Color()
	if !ok {
		return false
	}
	if b.At(m.ToX, m.ToY).IsPiece() {
		return false
	}

	dx, dy := m.ToX-m.FromX, m.ToY-m.FromY

	// Men only move toward the opponent; kings go either way.
	if piece.IsMan() && dy*forward(color) <= 0 {
		return false
	}

	switch {
	case abs(dx) == 1 && abs(dy) == 1:
		return true
	case abs(dx) == 2 && abs(dy) == 2:
		mid := m.Mid()
		return piece.Opposes(b.At(mid.X, mid.Y)) && b.At(m.ToX, m.ToY) == board.EmptyDark
	}
	return false
}

// CanTake reports whether the piece at (x, y) has a jump available.
func (e *Engine) CanTake(x, y int) bool {
	if !e.board.InBounds(x, y) || !e.board.At(x, y).IsPiece() {
		return false
	}
	for _, d := range diagonals {
		if e.IsMoveLegal(board.Move{FromX: x, FromY: y, ToX: x + 2*d[0], ToY: y + 2*d[1]}) {
			return true
		}
	}
	return false
}

// sideCanTake reports whether any piece of side has a jump.
func (e *Engine) sideCanTake(side core.Color) bool {
	for y := 0; y < e.board.Height(); y++ {
		for x := 0; x < e.board.Width(); x++ {
			if e.board.At(x, y).Is(side) && e.CanTake(x, y) {
				return true
			}
		}
	}
	return false
}

// ApplyMove plays m for the side to move. On error the board is unchanged.
func (e *Engine) ApplyMove(m board.Move) error {
	if !e.IsMoveLegal(m) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}

	piece := e.board.At(m.FromX, m.FromY)
	if !piece.Is(e.turn) {
		return fmt.Errorf("%w: %s is %s's move", ErrWrongTurn, m, e.turn.Name())
	}
	if e.opts.MandatoryTake && !m.IsJump() && e.sideCanTake(e.turn) {
		return fmt.Errorf("%w: %s", ErrCaptureRequired, m)
	}

	e.board.Clear(m.FromX, m.FromY)
	e.board.Set(m.ToX, m.ToY, piece)

	continues := false
	if m.IsJump() {
		mid := m.Mid()
		e.board.Clear(mid.X, mid.Y)
		e.takingDone = true
		continues = e.CanTake(m.ToX, m.ToY)
	} else {
		e.takingDone = false
	}

	if piece.IsMan() && m.ToY == e.backRank(piece) {
		e.board.Set(m.ToX, m.ToY, piece.Crowned())
		continues = false
	}

	if !continues {
		e.turn = core.OppositeColor(e.turn)
	}

	e.CheckGameOver()
	return nil
}

// backRank is the row on which a man of this piece's color is crowned.
func (e *Engine) backRank(piece board.Cell) int {
	if piece.Is(core.ColorWhite) {
		return e.board.Height() - 1
	}
	return 0
}

// CheckGameOver marks the game over when a side has no pieces or no movable
// piece; the other side wins. White is examined first.
func (e *Engine) CheckGameOver() {
	counts := e.board.Count()
	white := counts[board.WhiteMan] + counts[board.WhiteKing]
	black := counts[board.BlackMan] + counts[board.BlackKing]

	switch {
	case white == 0 || !e.sideHasMoves(core.ColorWhite):
		e.gameOver = true
		e.wonByBlack = true
	case black == 0 || !e.sideHasMoves(core.ColorBlack):
		e.gameOver = true
		e.wonByBlack = false
	default:
		e.gameOver = false
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
