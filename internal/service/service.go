package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/engine"
	"checkers/internal/game"
	"checkers/internal/storage"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameOver        = errors.New("game is over")
	ErrNotHumanTurn    = errors.New("it is the computer's turn")
	ErrNotComputerTurn = errors.New("it is a human player's turn")
	ErrNoStorage       = errors.New("storage is disabled")
)

// Service owns the live games and mirrors them to an optional repository.
type Service struct {
	games        map[string]*game.Game
	mu           sync.RWMutex
	store        storage.Repository // nil if persistence disabled
	waiter       *WaitRegistry
	defaultDepth int
}

// New creates a service. store may be nil.
func New(store storage.Repository, defaultDepth int) (*Service, error) {
	if defaultDepth < 1 {
		return nil, fmt.Errorf("invalid default search depth %d", defaultDepth)
	}
	return &Service{
		games:        make(map[string]*game.Game),
		store:        store,
		waiter:       NewWaitRegistry(WaitTimeout),
		defaultDepth: defaultDepth,
	}, nil
}

// NewGameParams describes a game to start.
type NewGameParams struct {
	Options board.Options
	White   core.PlayerConfig
	Black   core.PlayerConfig
}

// NewGame starts a game on a fresh board and persists it.
func (s *Service) NewGame(params NewGameParams) (*game.Game, error) {
	if err := params.Options.Validate(); err != nil {
		return nil, err
	}
	for _, pc := range []core.PlayerConfig{params.White, params.Black} {
		if err := core.Validate.Struct(pc); err != nil {
			return nil, fmt.Errorf("invalid player: %s", core.DescribeValidation(err))
		}
	}

	white := core.NewPlayer(params.White, core.ColorWhite, s.defaultDepth)
	black := core.NewPlayer(params.Black, core.ColorBlack, s.defaultDepth)

	id := s.GenerateGameID()
	g, err := game.New(id, params.Options, white, black)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.games[id] = g
	s.mu.Unlock()

	if s.store != nil {
		record := storage.GameRecord{
			GameID:        id,
			Options:       params.Options,
			WhitePlayerID: white.ID,
			WhiteName:     white.Name,
			WhiteType:     int(white.Type),
			WhiteDepth:    white.Depth,
			BlackPlayerID: black.ID,
			BlackName:     black.Name,
			BlackType:     int(black.Type),
			BlackDepth:    black.Depth,
			StartTimeUTC:  g.CreatedAt(),
		}
		if err := s.store.RecordNewGame(record); err != nil {
			log.Warn().Err(err).Str("game", id).Msg("failed to record new game")
		}
		s.persistState(g)
	}

	log.Info().Str("game", id).Str("options", params.Options.String()).Msg("game created")
	return g, nil
}

// ResumeGame returns a live game, loading it from storage if needed.
func (s *Service) ResumeGame(gameID string) (*game.Game, error) {
	if g, err := s.GetGame(gameID); err == nil {
		return g, nil
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	rec, st, err := s.store.LoadGame(gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, err
	}

	white, black := rec.Players()
	g, err := game.Restore(rec.GameID, rec.Options, st.Snapshot, white, black, rec.StartTimeUTC)
	if err != nil {
		return nil, fmt.Errorf("restore game %s: %w", gameID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.games[gameID]; ok {
		return existing, nil
	}
	s.games[gameID] = g

	log.Info().Str("game", gameID).Str("turn", g.NextTurn().Name()).Msg("game resumed")
	return g, nil
}

// GetGame retrieves a live game by ID
func (s *Service) GetGame(gameID string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return g, nil
}

// DeleteGame removes a game from memory and storage.
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	_, live := s.games[gameID]
	delete(s.games, gameID)
	s.mu.Unlock()

	s.waiter.RemoveGame(gameID)

	if s.store != nil {
		err := s.store.DeleteGame(gameID)
		if errors.Is(err, storage.ErrNotFound) {
			if !live {
				return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
			}
			return nil
		}
		return err
	}
	if !live {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return nil
}

func (s *Service) ListSavedGames() ([]storage.GameRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListGames()
}

// MakeHumanMove parses and plays a move for a human side.
func (s *Service) MakeHumanMove(gameID, notation string) (*game.MoveResult, error) {
	m, err := board.ParseMove(notation)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrIllegalMove, err)
	}

	g, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	g.Lock()
	defer g.Unlock()

	if g.State() != core.StateOngoing {
		return nil, ErrGameOver
	}
	if g.NextPlayer().Type != core.PlayerHuman {
		return nil, ErrNotHumanTurn
	}

	result, err := g.Apply(m)
	if err != nil {
		return nil, err
	}
	s.afterMove(g, result)
	return result, nil
}

// MakeComputerMove runs the search for the computer side to move.
func (s *Service) MakeComputerMove(gameID string) (*game.MoveResult, error) {
	g, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	g.Lock()
	defer g.Unlock()

	if g.State() != core.StateOngoing {
		return nil, ErrGameOver
	}
	player := g.NextPlayer()
	if player.Type != core.PlayerComputer {
		return nil, ErrNotComputerTurn
	}

	depth := player.Depth
	if depth == 0 {
		depth = s.defaultDepth
	}
	result, err := g.ApplyComputer(depth)
	if err != nil {
		return nil, err
	}
	s.afterMove(g, result)
	return result, nil
}

// afterMove persists the position and wakes waiters. Caller holds g's lock.
func (s *Service) afterMove(g *game.Game, result *game.MoveResult) {
	log.Debug().
		Str("game", g.ID).
		Str("side", result.Player.Name()).
		Str("move", result.Move.String()).
		Str("state", result.GameState.Code()).
		Msg("move applied")

	if s.store != nil && s.isLive(g) {
		s.persistState(g)
		if winner, over := g.Engine().Winner(); over {
			if err := s.store.RecordGameOver(g.ID, winner, g.GameOverAt()); err != nil {
				log.Warn().Err(err).Str("game", g.ID).Msg("failed to record game over")
			}
		}
	}
	s.waiter.Notify(g.ID, g.Plies())
}

// isLive reports whether g is still the registered game for its ID.
func (s *Service) isLive(g *game.Game) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[g.ID] == g
}

func (s *Service) persistState(g *game.Game) {
	rec := storage.StateRecord{
		GameID:     g.ID,
		Snapshot:   g.Snapshot(),
		UpdatedUTC: time.Now().UTC(),
	}
	if err := s.store.RecordState(rec); err != nil {
		log.Warn().Err(err).Str("game", g.ID).Msg("failed to record position")
	}
}

// PieceMoves describes what the piece on one square can do.
type PieceMoves struct {
	Square   board.Position
	HasMoves bool
	Moves    []board.Move
}

// PieceMoves reports the legal moves of the piece on square, ignoring
// whose turn it is.
func (s *Service) PieceMoves(gameID, square string) (PieceMoves, error) {
	pos, err := board.ParsePosition(square)
	if err != nil {
		return PieceMoves{}, err
	}
	g, err := s.GetGame(gameID)
	if err != nil {
		return PieceMoves{}, err
	}

	g.Lock()
	defer g.Unlock()

	e := g.Engine()
	return PieceMoves{
		Square:   pos,
		HasMoves: e.PieceHasMoves(pos.X, pos.Y),
		Moves:    e.PieceMoves(pos.X, pos.Y),
	}, nil
}

// WaitForChange blocks until the game has advanced past plies, the wait
// times out or ctx ends.
func (s *Service) WaitForChange(ctx context.Context, gameID string, plies int) error {
	g, err := s.GetGame(gameID)
	if err != nil {
		return err
	}

	ch := s.waiter.Register(ctx, gameID, plies)

	g.Lock()
	current := g.Plies()
	g.Unlock()
	if current != plies {
		s.waiter.Notify(gameID, current)
	}

	<-ch
	return ctx.Err()
}

func (s *Service) SaveOptions(opts board.Options) error {
	if s.store == nil {
		return ErrNoStorage
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if opts.Name == "" {
		return fmt.Errorf("options preset needs a name")
	}
	return s.store.SaveOptions(opts)
}

func (s *Service) LoadOptions(name string) (board.Options, error) {
	if s.store == nil {
		return board.Options{}, ErrNoStorage
	}
	return s.store.LoadOptions(name)
}

func (s *Service) ListOptions() ([]board.Options, error) {
	if s.store == nil {
		return nil, ErrNoStorage
	}
	return s.store.ListOptions()
}

func (s *Service) DeleteOptions(name string) error {
	if s.store == nil {
		return ErrNoStorage
	}
	return s.store.DeleteOptions(name)
}

// StorageHealth returns "disabled", "ok" or "degraded".
func (s *Service) StorageHealth() string {
	switch {
	case s.store == nil:
		return "disabled"
	case s.store.IsHealthy():
		return "ok"
	default:
		return "degraded"
	}
}

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// Close releases waiters and the repository.
func (s *Service) Close() error {
	var errs []error
	if err := s.waiter.Shutdown(5 * time.Second); err != nil {
		errs = append(errs, err)
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	return errors.Join(errs...)
}
