package game

import (
	"sync"
	"time"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/engine"
)

// MoveResult tracks the outcome of a move
type MoveResult struct {
	Move      board.Move
	Player    core.Color
	GameState core.State
	Score     float64
	Depth     int
	Nodes     int
}

// Game is one live session: two players, the rules engine that owns the
// board, and the terminal state once reached. Callers hold Lock while
// mutating through Engine.
type Game struct {
	ID      string
	Name    string
	Options board.Options

	mu         sync.Mutex
	players    map[core.Color]*core.Player
	engine     *engine.Engine
	state      core.State
	lastResult *MoveResult
	plies      int
	createdAt  time.Time
	gameOverAt time.Time
}

func New(id string, opts board.Options, white, black *core.Player) (*Game, error) {
	e, err := engine.New(opts)
	if err != nil {
		return nil, err
	}
	return newGame(id, opts, e, white, black, time.Now().UTC()), nil
}

// Restore rebuilds a game around a saved position. The terminal state is
// recomputed from the board.
func Restore(id string, opts board.Options, snap engine.Snapshot, white, black *core.Player, createdAt time.Time) (*Game, error) {
	e, err := engine.New(opts)
	if err != nil {
		return nil, err
	}
	if err := e.LoadSnapshot(snap); err != nil {
		return nil, err
	}
	e.CheckGameOver()

	g := newGame(id, opts, e, white, black, createdAt)
	g.syncState()
	return g, nil
}

func newGame(id string, opts board.Options, e *engine.Engine, white, black *core.Player, createdAt time.Time) *Game {
	return &Game{
		ID:      id,
		Name:    opts.Name,
		Options: opts,
		players: map[core.Color]*core.Player{
			core.ColorWhite: white,
			core.ColorBlack: black,
		},
		engine:    e,
		state:     core.StateOngoing,
		createdAt: createdAt,
	}
}

func (g *Game) Lock()   { g.mu.Lock() }
func (g *Game) Unlock() { g.mu.Unlock() }

func (g *Game) Engine() *engine.Engine {
	return g.engine
}

func (g *Game) NextTurn() core.Color {
	return g.engine.Turn()
}

func (g *Game) NextPlayer() *core.Player {
	return g.players[g.NextTurn()]
}

func (g *Game) Player(c core.Color) *core.Player {
	return g.players[c]
}

func (g *Game) State() core.State {
	return g.state
}

func (g *Game) SetState(s core.State) {
	g.state = s
	if s != core.StateOngoing && g.gameOverAt.IsZero() {
		g.gameOverAt = time.Now().UTC()
	}
}

// syncState copies the engine's terminal flag into the session state.
func (g *Game) syncState() {
	if winner, over := g.engine.Winner(); over {
		g.SetState(core.WinState(winner))
	}
}

func (g *Game) SetLastResult(result *MoveResult) {
	g.lastResult = result
}

func (g *Game) LastResult() *MoveResult {
	return g.lastResult
}

func (g *Game) Snapshot() engine.Snapshot {
	return g.engine.CurrentSnapshot()
}

// Plies counts moves played in this session, including each jump of a
// capture chain.
func (g *Game) Plies() int { return g.plies }

func (g *Game) CreatedAt() time.Time  { return g.createdAt }
func (g *Game) GameOverAt() time.Time { return g.gameOverAt }

// Apply plays a validated move on the engine and records the outcome.
func (g *Game) Apply(m board.Move) (*MoveResult, error) {
	mover := g.engine.Turn()
	if err := g.engine.ApplyMove(m); err != nil {
		return nil, err
	}
	return g.record(m, mover, engine.SearchResult{Move: m}), nil
}

// ApplyComputer searches for the side to move and plays the result.
func (g *Game) ApplyComputer(depth int) (*MoveResult, error) {
	mover := g.engine.Turn()
	res, err := g.engine.ApplyAIMove(mover, depth)
	if err != nil {
		return nil, err
	}
	return g.record(res.Move, mover, res), nil
}

func (g *Game) record(m board.Move, mover core.Color, res engine.SearchResult) *MoveResult {
	g.syncState()
	result := &MoveResult{
		Move:      m,
		Player:    mover,
		GameState: g.state,
		Score:     res.Score,
		Depth:     res.Depth,
		Nodes:     res.Nodes,
	}
	g.lastResult = result
	g.plies++
	return result
}
