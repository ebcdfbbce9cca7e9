// Package engine implements draughts rules, move generation and a fixed-depth
// minimax search over simulated boards.
package engine

import (
	"errors"
	"fmt"

	"checkers/internal/board"
	"checkers/internal/core"
)

var (
	ErrIllegalMove     = errors.New("illegal move")
	ErrWrongTurn       = errors.New("not this side's turn")
	ErrCaptureRequired = errors.New("a capture is available and must be taken")
	ErrNoMoves         = errors.New("no legal moves")
)

// Snapshot is the board-plus-turn exchange format used by persistence and
// front ends. Board is indexed [column][row].
type Snapshot struct {
	Board           [][]board.Cell `json:"board"`
	NextMoveByBlack bool           `json:"nextMoveByBlack"`
}

// Engine holds one game's authoritative board and turn state. It is not safe
// for concurrent use; each game owns its own Engine.
type Engine struct {
	board      *board.Board
	opts       board.Options
	turn       core.Color
	takingDone bool
	gameOver   bool
	wonByBlack bool
}

// New builds an engine on the standard starting layout.
func New(opts board.Options) (*Engine, error) {
	b, err := board.New(opts)
	if err != nil {
		return nil, err
	}
	return &Engine{
		board: b,
		opts:  opts,
		turn:  opts.StartingColor(),
	}, nil
}

// LoadSnapshot replaces the board and side to move. Terminal state is left
// as it was; call CheckGameOver to recompute it.
func (e *Engine) LoadSnapshot(s Snapshot) error {
	b, err := board.FromSnapshot(s.Board)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if b.Width() != e.opts.Width || b.Height() != e.opts.Height {
		return fmt.Errorf("load snapshot: board is %dx%d, options say %dx%d",
			b.Width(), b.Height(), e.opts.Width, e.opts.Height)
	}
	e.board = b
	e.turn = core.ColorFromBlack(s.NextMoveByBlack)
	e.takingDone = false
	return nil
}

func (e *Engine) CurrentSnapshot() Snapshot {
	return Snapshot{
		Board:           e.board.Snapshot(),
		NextMoveByBlack: e.turn == core.ColorBlack,
	}
}

// Clone returns a deep copy that shares nothing mutable with e.
func (e *Engine) Clone() *Engine {
	c := *e
	c.board = e.board.Clone()
	return &c
}

// Board exposes the grid for rendering. Callers must not mutate it.
func (e *Engine) Board() *board.Board    { return e.board }
func (e *Engine) Options() board.Options { return e.opts }
func (e *Engine) Turn() core.Color       { return e.turn }
func (e *Engine) NextMoveByBlack() bool  { return e.turn == core.ColorBlack }
func (e *Engine) TakingDone() bool       { return e.takingDone }
func (e *Engine) IsGameOver() bool       { return e.gameOver }
func (e *Engine) WonByBlack() bool       { return e.wonByBlack }

// Winner returns the winning side once the game is over.
func (e *Engine) Winner() (core.Color, bool) {
	if !e.gameOver {
		return 0, false
	}
	return core.ColorFromBlack(e.wonByBlack), true
}
