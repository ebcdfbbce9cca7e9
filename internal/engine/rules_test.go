package engine

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkers/internal/board"
	"checkers/internal/core"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type pos = board.Position

// setup returns an engine on an otherwise empty board holding pieces.
func setup(t testing.TB, opts board.Options, blackToMove bool, pieces map[pos]board.Cell) *Engine {
	t.Helper()
	e, err := New(opts)
	require.NoError(t, err)

	b, err := board.NewEmpty(opts)
	require.NoError(t, err)
	for p, c := range pieces {
		b.Set(p.X, p.Y, c)
	}
	require.NoError(t, e.LoadSnapshot(Snapshot{Board: b.Snapshot(), NextMoveByBlack: blackToMove}))
	return e
}

func plain() board.Options {
	return board.Options{Width: 8, Height: 8}
}

func mv(fx, fy, tx, ty int) board.Move {
	return board.Move{FromX: fx, FromY: fy, ToX: tx, ToY: ty}
}

func TestOpeningMovesForBlack(t *testing.T) {
	for _, opts := range []board.Options{
		{Width: 8, Height: 8, BlackStarts: true},
		{Width: 4, Height: 8, BlackStarts: true},
		{Width: 10, Height: 10, BlackStarts: true},
		{Width: 12, Height: 16, BlackStarts: true},
	} {
		e, err := New(opts)
		require.NoError(t, err)
		require.Equal(t, core.ColorBlack, e.Turn())

		var want []board.Move
		b := e.Board()
		for x := 0; x < b.Width(); x++ {
			for y := 0; y < b.Height(); y++ {
				if b.At(x, y) != board.BlackMan {
					continue
				}
				for _, dx := range []int{-1, 1} {
					tx, ty := x+dx, y-1
					if b.InBounds(tx, ty) && !b.At(tx, ty).IsPiece() {
						want = append(want, mv(x, y, tx, ty))
					}
				}
			}
		}

		got := e.AllPossibleMoves(core.ColorBlack)
		assert.ElementsMatch(t, want, got, "%dx%d", opts.Width, opts.Height)
		for _, m := range got {
			assert.Equal(t, opts.Height-3, m.FromY, "only the front row can move")
		}
	}
}

func TestOpeningMoveOrder(t *testing.T) {
	e, err := New(board.DefaultOptions())
	require.NoError(t, err)

	want := []board.Move{
		mv(0, 5, 1, 4),
		mv(2, 5, 1, 4), mv(2, 5, 3, 4),
		mv(4, 5, 3, 4), mv(4, 5, 5, 4),
		mv(6, 5, 5, 4), mv(6, 5, 7, 4),
	}
	assert.Equal(t, want, e.AllPossibleMoves(core.ColorBlack))
}

func TestWhiteCapturesForward(t *testing.T) {
	e := setup(t, plain(), false, map[pos]board.Cell{
		{X: 3, Y: 4}: board.WhiteMan,
		{X: 4, Y: 5}: board.BlackMan,
	})

	jump := mv(3, 4, 5, 6)
	require.True(t, e.IsMoveLegal(jump))
	require.NoError(t, e.ApplyMove(jump))

	b := e.Board()
	assert.Equal(t, board.EmptyDark, b.At(4, 5))
	assert.Equal(t, board.WhiteMan, b.At(5, 6))
	assert.Equal(t, board.EmptyDark, b.At(3, 4))
	assert.True(t, e.TakingDone())

	// Black has nothing left.
	assert.True(t, e.IsGameOver())
	assert.False(t, e.WonByBlack())
	winner, ok := e.Winner()
	require.True(t, ok)
	assert.Equal(t, core.ColorWhite, winner)
}

func TestManDirection(t *testing.T) {
	e := setup(t, plain(), false, map[pos]board.Cell{
		{X: 3, Y: 4}: board.WhiteMan,
		{X: 4, Y: 3}: board.BlackMan,
		{X: 6, Y: 1}: board.BlackMan,
	})

	assert.True(t, e.IsMoveLegal(mv(3, 4, 2, 5)))
	assert.True(t, e.IsMoveLegal(mv(3, 4, 4, 5)))
	assert.False(t, e.IsMoveLegal(mv(3, 4, 2, 3)), "white man backwards")
	assert.False(t, e.IsMoveLegal(mv(3, 4, 5, 2)), "white man cannot jump backwards")
	assert.False(t, e.IsMoveLegal(mv(3, 4, 3, 5)), "not diagonal")
	assert.False(t, e.IsMoveLegal(mv(3, 4, 6, 7)), "three cells")

	assert.True(t, e.IsMoveLegal(mv(4, 3, 5, 2)))
	assert.False(t, e.IsMoveLegal(mv(4, 3, 5, 4)), "black man backwards")
	assert.False(t, e.IsMoveLegal(mv(4, 3, 2, 5)), "black man cannot capture backwards")
	assert.True(t, e.IsMoveLegal(mv(6, 1, 7, 0)))
}

func TestKingMovesEveryDirection(t *testing.T) {
	e := setup(t, plain(), false, map[pos]board.Cell{
		{X: 3, Y: 4}: board.WhiteKing,
		{X: 2, Y: 3}: board.BlackMan,
		{X: 4, Y: 5}: board.WhiteMan,
		{X: 7, Y: 6}: board.BlackMan,
	})

	assert.True(t, e.IsMoveLegal(mv(3, 4, 4, 3)))
	assert.True(t, e.IsMoveLegal(mv(3, 4, 2, 5)))
	assert.True(t, e.IsMoveLegal(mv(3, 4, 1, 2)), "backward jump over black")
	assert.False(t, e.IsMoveLegal(mv(3, 4, 5, 6)), "jump over own piece")
	assert.False(t, e.IsMoveLegal(mv(3, 4, 4, 5)), "occupied destination")
	assert.True(t, e.CanTake(3, 4))
	assert.False(t, e.CanTake(4, 5))
}

func TestJumpNeedsCapturableMidpoint(t *testing.T) {
	e := setup(t, plain(), false, map[pos]board.Cell{
		{X: 1, Y: 2}: board.WhiteMan,
		{X: 5, Y: 2}: board.WhiteKing,
		{X: 7, Y: 6}: board.BlackMan,
	})

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			for _, from := range []pos{{X: 1, Y: 2}, {X: 5, Y: 2}} {
				m := board.NewMove(from, pos{X: x, Y: y})
				if m.IsJump() {
					assert.False(t, e.IsMoveLegal(m), "jump %s with empty midpoint", m)
				}
			}
		}
	}
	assert.False(t, e.CanTake(1, 2))
	assert.False(t, e.CanTake(5, 2))
}

func TestOutOfRange(t *testing.T) {
	e, err := New(board.DefaultOptions())
	require.NoError(t, err)

	for _, m := range []board.Move{
		mv(-1, 0, 0, 1),
		mv(0, 5, -1, 4),
		mv(7, 2, 8, 3),
		mv(0, 8, 1, 7),
		mv(100, 100, 101, 101),
	} {
		assert.False(t, e.IsMoveLegal(m), m.String())
		before := e.CurrentSnapshot()
		assert.ErrorIs(t, e.ApplyMove(m), ErrIllegalMove)
		assert.Equal(t, before, e.CurrentSnapshot())
	}
	assert.False(t, e.PieceHasMoves(-1, 3))
	assert.False(t, e.CanTake(9, 9))
}

func TestRejectedMovesLeaveBoardUnchanged(t *testing.T) {
	e, err := New(board.DefaultOptions())
	require.NoError(t, err)
	before := e.CurrentSnapshot()

	assert.ErrorIs(t, e.ApplyMove(mv(1, 2, 2, 3)), ErrWrongTurn, "white man while black to move")
	assert.ErrorIs(t, e.ApplyMove(mv(0, 5, 0, 4)), ErrIllegalMove)
	assert.ErrorIs(t, e.ApplyMove(mv(1, 6, 0, 5)), ErrIllegalMove, "occupied destination")
	assert.ErrorIs(t, e.ApplyMove(mv(3, 4, 4, 3)), ErrIllegalMove, "no piece at origin")

	assert.Equal(t, before, e.CurrentSnapshot())
	assert.Equal(t, core.ColorBlack, e.Turn())
}

func TestTurnToggles(t *testing.T) {
	e, err := New(board.DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, e.ApplyMove(mv(0, 5, 1, 4)))
	assert.Equal(t, core.ColorWhite, e.Turn())
	assert.False(t, e.TakingDone())

	require.NoError(t, e.ApplyMove(mv(1, 2, 2, 3)))
	assert.Equal(t, core.ColorBlack, e.Turn())
	assert.False(t, e.IsGameOver())
}

func TestPromotion(t *testing.T) {
	e := setup(t, plain(), false, map[pos]board.Cell{
		{X: 1, Y: 6}: board.WhiteMan,
		{X: 2, Y: 1}: board.BlackMan,
		{X: 5, Y: 6}: board.BlackMan,
	})

	require.NoError(t, e.ApplyMove(mv(1, 6, 2, 7)))
	assert.Equal(t, board.WhiteKing, e.Board().At(2, 7))

	require.NoError(t, e.ApplyMove(mv(2, 1, 1, 0)))
	assert.Equal(t, board.BlackKing, e.Board().At(1, 0))

	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			if e.Board().At(x, y).IsPiece() {
				assert.True(t, board.IsDark(x, y))
			}
		}
	}
}

func TestPromotionByJumpEndsTurn(t *testing.T) {
	e := setup(t, plain(), false, map[pos]board.Cell{
		{X: 2, Y: 5}: board.WhiteMan,
		{X: 3, Y: 6}: board.BlackMan,
		{X: 5, Y: 6}: board.BlackMan,
	})

	require.NoError(t, e.ApplyMove(mv(2, 5, 4, 7)))
	assert.Equal(t, board.WhiteKing, e.Board().At(4, 7))
	// As a king it could jump (5,6) now, but crowning ends the move.
	assert.True(t, e.CanTake(4, 7))
	assert.Equal(t, core.ColorBlack, e.Turn())
}

func TestChainedCaptureKeepsTurn(t *testing.T) {
	e := setup(t, plain(), false, map[pos]board.Cell{
		{X: 1, Y: 2}: board.WhiteMan,
		{X: 2, Y: 3}: board.BlackMan,
		{X: 4, Y: 5}: board.BlackMan,
		{X: 7, Y: 6}: board.BlackMan,
	})

	require.NoError(t, e.ApplyMove(mv(1, 2, 3, 4)))
	assert.True(t, e.CanTake(3, 4))
	assert.Equal(t, core.ColorWhite, e.Turn(), "further jump available")
	assert.True(t, e.TakingDone())

	require.NoError(t, e.ApplyMove(mv(3, 4, 5, 6)))
	assert.False(t, e.CanTake(5, 6))
	assert.Equal(t, core.ColorBlack, e.Turn())
	assert.False(t, e.IsGameOver())

	assert.Equal(t, []pos{{X: 7, Y: 6}}, e.MovableCheckers(core.ColorBlack))
}

func TestCapturedPieceLeavesMovableCheckers(t *testing.T) {
	e := setup(t, plain(), false, map[pos]board.Cell{
		{X: 3, Y: 4}: board.WhiteMan,
		{X: 4, Y: 5}: board.BlackMan,
		{X: 1, Y: 6}: board.BlackMan,
	})
	require.Contains(t, e.MovableCheckers(core.ColorBlack), pos{X: 4, Y: 5})

	require.NoError(t, e.ApplyMove(mv(3, 4, 5, 6)))
	assert.NotContains(t, e.MovableCheckers(core.ColorBlack), pos{X: 4, Y: 5})
	assert.Equal(t, []pos{{X: 1, Y: 6}}, e.MovableCheckers(core.ColorBlack))
}

func TestGameOverWhenSideCannotMove(t *testing.T) {
	// A black man on row 0 has nowhere to go.
	e := setup(t, plain(), false, map[pos]board.Cell{
		{X: 5, Y: 2}: board.WhiteMan,
		{X: 1, Y: 0}: board.BlackMan,
	})
	assert.False(t, e.IsGameOver())

	require.NoError(t, e.ApplyMove(mv(5, 2, 6, 3)))
	assert.Empty(t, e.MovableCheckers(core.ColorBlack))
	assert.True(t, e.IsGameOver())
	assert.False(t, e.WonByBlack())
}

func TestGameOverIffSideStuck(t *testing.T) {
	e, err := New(board.DefaultOptions())
	require.NoError(t, err)

	// Play the first legal move repeatedly and compare with the definition.
	for i := 0; i < 200 && !e.IsGameOver(); i++ {
		moves := e.AllPossibleMoves(e.Turn())
		require.NotEmpty(t, moves)
		require.NoError(t, e.ApplyMove(moves[0]))

		whiteStuck := len(e.MovableCheckers(core.ColorWhite)) == 0
		blackStuck := len(e.MovableCheckers(core.ColorBlack)) == 0
		assert.Equal(t, whiteStuck || blackStuck, e.IsGameOver())
		if whiteStuck {
			assert.True(t, e.WonByBlack())
		}
	}
}

func TestMandatoryTake(t *testing.T) {
	pieces := map[pos]board.Cell{
		{X: 3, Y: 4}: board.WhiteMan,
		{X: 0, Y: 1}: board.WhiteMan,
		{X: 4, Y: 5}: board.BlackMan,
		{X: 7, Y: 6}: board.BlackMan,
	}

	free := setup(t, plain(), false, pieces)
	moves := free.AllPossibleMoves(core.ColorWhite)
	assert.Contains(t, moves, mv(0, 1, 1, 2))
	assert.Contains(t, moves, mv(3, 4, 5, 6))

	opts := plain()
	opts.MandatoryTake = true
	forced := setup(t, opts, false, pieces)
	assert.Equal(t, []board.Move{mv(3, 4, 5, 6)}, forced.AllPossibleMoves(core.ColorWhite))
	assert.ErrorIs(t, forced.ApplyMove(mv(0, 1, 1, 2)), ErrCaptureRequired)
	assert.NoError(t, forced.ApplyMove(mv(3, 4, 5, 6)))
}

func TestSnapshotLoad(t *testing.T) {
	e, err := New(board.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, e.ApplyMove(mv(0, 5, 1, 4)))

	snap := e.CurrentSnapshot()
	assert.False(t, snap.NextMoveByBlack)

	other, err := New(board.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, other.LoadSnapshot(snap))
	assert.Equal(t, snap, other.CurrentSnapshot())
	assert.Equal(t, core.ColorWhite, other.Turn())

	small, err := New(board.Options{Width: 4, Height: 8})
	require.NoError(t, err)
	assert.Error(t, small.LoadSnapshot(snap))
}

func TestCloneIsIndependent(t *testing.T) {
	e, err := New(board.DefaultOptions())
	require.NoError(t, err)
	before := e.CurrentSnapshot()

	c := e.Clone()
	require.NoError(t, c.ApplyMove(mv(0, 5, 1, 4)))
	assert.Equal(t, before, e.CurrentSnapshot())
	assert.Equal(t, core.ColorBlack, e.Turn())
}

func TestPieceHasMoves(t *testing.T) {
	e, err := New(board.DefaultOptions())
	require.NoError(t, err)

	assert.True(t, e.PieceHasMoves(0, 5))
	assert.False(t, e.PieceHasMoves(1, 6), "blocked by its own men")
	assert.True(t, e.PieceHasMoves(1, 2), "turn is not considered")
	assert.False(t, e.PieceHasMoves(0, 3), "empty square")
	assert.Equal(t, []board.Move{mv(2, 5, 1, 4), mv(2, 5, 3, 4)}, e.PieceMoves(2, 5))
}
