// Package autoplay pits the search engine against itself over many games.
package autoplay

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/engine"
)

type Config struct {
	Games       int
	Workers     int
	RandomPlies int
	MaxPlies    int
	Depth       int
	Options     board.Options
}

// Result describes one finished or abandoned game.
type Result struct {
	Index    int
	State    core.State
	Plies    int
	Duration time.Duration
	Final    engine.Snapshot
}

func (r Result) Finished() bool { return r.State != core.StateOngoing }

type Summary struct {
	Games      int
	WhiteWins  int
	BlackWins  int
	Unfinished int
	Plies      int
	Elapsed    time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("%d games: white %d, black %d, unfinished %d (%d plies in %s)",
		s.Games, s.WhiteWins, s.BlackWins, s.Unfinished, s.Plies, s.Elapsed.Round(time.Millisecond))
}

func (c Config) validate() error {
	if c.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	if c.MaxPlies < 1 {
		return fmt.Errorf("max plies must be positive, got %d", c.MaxPlies)
	}
	if c.RandomPlies < 0 {
		return fmt.Errorf("random plies cannot be negative, got %d", c.RandomPlies)
	}
	if c.Depth < 1 {
		return fmt.Errorf("depth must be positive, got %d", c.Depth)
	}
	return c.Options.Validate()
}

// Run plays cfg.Games games, at most cfg.Workers at a time. Results are
// indexed by game number. A cancelled context stops every game between
// moves and is reported as the returned error.
func Run(ctx context.Context, cfg Config) ([]Result, Summary, error) {
	if err := cfg.validate(); err != nil {
		return nil, Summary{}, err
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	results := make([]Result, cfg.Games)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < cfg.Games; i++ {
		i := i
		g.Go(func() error {
			r, err := playGame(gctx, i, cfg)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			results[i] = r
			log.Debug().Int("game", i).Str("state", r.State.Code()).Int("plies", r.Plies).Msg("autoplay game done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	sum := Summarize(results)
	sum.Elapsed = time.Since(start)
	return results, sum, nil
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	s := Summary{Games: len(results)}
	for _, r := range results {
		s.Plies += r.Plies
		switch r.State {
		case core.StateWhiteWins:
			s.WhiteWins++
		case core.StateBlackWins:
			s.BlackWins++
		default:
			s.Unfinished++
		}
	}
	return s
}

func playGame(ctx context.Context, index int, cfg Config) (Result, error) {
	started := time.Now()
	e, err := engine.New(cfg.Options)
	if err != nil {
		return Result{}, err
	}

	plies := 0
	for plies < cfg.MaxPlies && !e.IsGameOver() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if plies < cfg.RandomPlies {
			err = playRandom(e)
		} else {
			_, err = e.ApplyAIMove(e.Turn(), cfg.Depth)
		}
		if err != nil {
			return Result{}, fmt.Errorf("ply %d: %w", plies, err)
		}
		plies++
	}

	return Result{
		Index:    index,
		State:    stateOf(e),
		Plies:    plies,
		Duration: time.Since(started),
		Final:    e.CurrentSnapshot(),
	}, nil
}

func playRandom(e *engine.Engine) error {
	moves := e.AllPossibleMoves(e.Turn())
	if len(moves) == 0 {
		return engine.ErrNoMoves
	}
	return e.ApplyMove(moves[frand.Intn(len(moves))])
}

func stateOf(e *engine.Engine) core.State {
	if winner, ok := e.Winner(); ok {
		return core.WinState(winner)
	}
	return core.StateOngoing
}
