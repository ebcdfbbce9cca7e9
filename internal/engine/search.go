package engine

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"checkers/internal/board"
	"checkers/internal/core"
)

// DefaultDepth is the number of plies searched for a computer move.
const DefaultDepth = 4

type SearchResult struct {
	Move  board.Move
	Score float64
	Depth int
	Nodes int
}

// Evaluate scores a board by material: men count one, kings half. Positive
// values favor white.
func Evaluate(b *board.Board) float64 {
	c := b.Count()
	men := c[board.WhiteMan] - c[board.BlackMan]
	kings := c[board.WhiteKing] - c[board.BlackKing]
	return float64(men) + 0.5*float64(kings)
}

type searcher struct {
	nodes int
}

// BestMove runs a full-width minimax to the given depth and returns the
// chosen root move. White maximises and black minimises. Among equally
// scored root moves the one enumerated last wins.
func (e *Engine) BestMove(side core.Color, depth int) (SearchResult, error) {
	if side != e.turn {
		return SearchResult{}, fmt.Errorf("%w: %s to move", ErrWrongTurn, e.turn.Name())
	}
	if depth < 1 {
		depth = 1
	}

	moves := e.AllPossibleMoves(side)
	if len(moves) == 0 {
		return SearchResult{}, fmt.Errorf("%w for %s", ErrNoMoves, side.Name())
	}

	maximizing := side == core.ColorWhite
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}

	s := &searcher{}
	var bestMove board.Move
	for _, m := range moves {
		child := e.Clone()
		if err := child.ApplyMove(m); err != nil {
			return SearchResult{}, fmt.Errorf("simulate %s: %w", m, err)
		}
		eval := s.minimax(child, depth-1)
		if (maximizing && eval >= best) || (!maximizing && eval <= best) {
			best, bestMove = eval, m
		}
	}

	return SearchResult{Move: bestMove, Score: best, Depth: depth, Nodes: s.nodes}, nil
}

// minimax returns the value of e with depth plies left. The mover is
// whichever side e says is to move, so a continuing capture keeps the same
// side in charge.
func (s *searcher) minimax(e *Engine, depth int) float64 {
	s.nodes++
	if depth == 0 || e.gameOver {
		return Evaluate(e.board)
	}

	moves := e.AllPossibleMoves(e.turn)
	if len(moves) == 0 {
		return Evaluate(e.board)
	}

	maximizing := e.turn == core.ColorWhite
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	for _, m := range moves {
		child := e.Clone()
		if err := child.ApplyMove(m); err != nil {
			continue
		}
		eval := s.minimax(child, depth-1)
		if maximizing {
			best = math.Max(best, eval)
		} else {
			best = math.Min(best, eval)
		}
	}
	return best
}

// ApplyAIMove searches for side and plays the result on this engine.
func (e *Engine) ApplyAIMove(side core.Color, depth int) (SearchResult, error) {
	result, err := e.BestMove(side, depth)
	if err != nil {
		return result, err
	}
	if err := e.ApplyMove(result.Move); err != nil {
		return result, err
	}

	log.Debug().
		Str("side", side.Name()).
		Str("move", result.Move.String()).
		Float64("score", result.Score).
		Int("depth", result.Depth).
		Int("nodes", result.Nodes).
		Msg("computer move")
	return result, nil
}
