package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"checkers/internal/board"
	"checkers/internal/core"
)

// Store handles SQLite database operations with async writes
type Store struct {
	db           *sql.DB
	path         string
	writeChan    chan func(*sql.Tx) error
	healthStatus atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	closeOnce    sync.Once
}

var _ Repository = (*Store)(nil)

// NewStore creates a new storage instance with async writer
func NewStore(dataSourceName string, devMode bool) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if devMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// A single connection keeps the foreign_keys pragma in effect for every
	// statement and serialises writers.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		db:        db,
		path:      dataSourceName,
		writeChan: make(chan func(*sql.Tx) error, 1000),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.healthStatus.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

// writerLoop processes async write operations
func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain remaining writes with timeout
			deadline := time.After(2 * time.Second)
			for {
				select {
				case fn := <-s.writeChan:
					if s.healthStatus.Load() {
						s.executeWrite(fn)
					}
				case <-deadline:
					return
				default:
					return
				}
			}

		case fn := <-s.writeChan:
			if !s.healthStatus.Load() {
				continue
			}
			s.executeWrite(fn)
		}
	}
}

// executeWrite runs a transactional write operation
func (s *Store) executeWrite(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		log.Error().Err(err).Msg("storage degraded: failed to begin transaction")
		s.healthStatus.Store(false)
		return
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		log.Error().Err(err).Msg("storage degraded: write operation failed")
		s.healthStatus.Store(false)
		return
	}

	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("storage degraded: failed to commit")
		s.healthStatus.Store(false)
	}
}

// enqueue hands a write to the writer goroutine. Writes are dropped while
// degraded or when the queue is full.
func (s *Store) enqueue(what string, fn func(*sql.Tx) error) error {
	if !s.healthStatus.Load() {
		return nil
	}

	select {
	case s.writeChan <- fn:
	default:
		log.Warn().Str("write", what).Msg("storage write queue full, dropping")
	}
	return nil
}

// flush waits until every write queued so far has been applied, so reads
// observe them.
func (s *Store) flush() {
	if !s.healthStatus.Load() {
		return
	}
	done := make(chan struct{})
	select {
	case s.writeChan <- func(*sql.Tx) error { close(done); return nil }:
	default:
		return
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		log.Warn().Msg("storage flush timed out")
	}
}

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) error {
	return s.enqueue("game", func(tx *sql.Tx) error {
		query := `INSERT INTO games (
			game_id, name, width, height, mandatory_take, black_starts,
			white_player_id, white_name, white_type, white_depth,
			black_player_id, black_name, black_type, black_depth,
			start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		o := record.Options
		_, err := tx.Exec(query,
			record.GameID, o.Name, o.Width, o.Height, o.MandatoryTake, o.BlackStarts,
			record.WhitePlayerID, record.WhiteName, record.WhiteType, record.WhiteDepth,
			record.BlackPlayerID, record.BlackName, record.BlackType, record.BlackDepth,
			record.StartTimeUTC,
		)
		return err
	})
}

// RecordState asynchronously replaces the saved position of a game
func (s *Store) RecordState(record StateRecord) error {
	grid, err := json.Marshal(record.Snapshot.Board)
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}

	return s.enqueue("state", func(tx *sql.Tx) error {
		// A position for a game deleted in the meantime is dropped.
		query := `INSERT INTO states (game_id, board, next_move_by_black, updated_utc)
			SELECT ?, ?, ?, ?
			WHERE EXISTS (SELECT 1 FROM games WHERE game_id = ?)
			ON CONFLICT(game_id) DO UPDATE SET
				board = excluded.board,
				next_move_by_black = excluded.next_move_by_black,
				updated_utc = excluded.updated_utc`

		_, err := tx.Exec(query, record.GameID, string(grid), record.Snapshot.NextMoveByBlack, record.UpdatedUTC, record.GameID)
		return err
	})
}

// RecordGameOver asynchronously stores the winner of a game
func (s *Store) RecordGameOver(gameID string, winner core.Color, at time.Time) error {
	return s.enqueue("game over", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE games SET winner = ?, end_time_utc = ? WHERE game_id = ?`,
			winner.String(), at, gameID)
		return err
	})
}

// DeleteGame removes a game and its position once pending writes are done
func (s *Store) DeleteGame(gameID string) error {
	s.flush()
	res, err := s.db.Exec(`DELETE FROM games WHERE game_id = ?`, gameID)
	if err != nil {
		return fmt.Errorf("delete game %q: %w", gameID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("game %q: %w", gameID, ErrNotFound)
	}
	return nil
}

const gameColumns = `
	game_id, name, width, height, mandatory_take, black_starts,
	white_player_id, white_name, white_type, white_depth,
	black_player_id, black_name, black_type, black_depth,
	start_time_utc, winner, end_time_utc`

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (GameRecord, error) {
	var (
		g   GameRecord
		end sql.NullTime
	)
	err := row.Scan(
		&g.GameID, &g.Options.Name, &g.Options.Width, &g.Options.Height,
		&g.Options.MandatoryTake, &g.Options.BlackStarts,
		&g.WhitePlayerID, &g.WhiteName, &g.WhiteType, &g.WhiteDepth,
		&g.BlackPlayerID, &g.BlackName, &g.BlackType, &g.BlackDepth,
		&g.StartTimeUTC, &g.Winner, &end,
	)
	if err != nil {
		return g, err
	}
	if end.Valid {
		t := end.Time
		g.EndTimeUTC = &t
	}
	return g, nil
}

// LoadGame reads a game and its latest position
func (s *Store) LoadGame(gameID string) (GameRecord, StateRecord, error) {
	s.flush()

	g, err := scanGame(s.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE game_id = ?`, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return g, StateRecord{}, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return g, StateRecord{}, fmt.Errorf("load game failed: %w", err)
	}

	st := StateRecord{GameID: gameID}
	var grid string
	err = s.db.QueryRow(`SELECT board, next_move_by_black, updated_utc FROM states WHERE game_id = ?`, gameID).
		Scan(&grid, &st.Snapshot.NextMoveByBlack, &st.UpdatedUTC)
	if errors.Is(err, sql.ErrNoRows) {
		return g, st, fmt.Errorf("position of game %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return g, st, fmt.Errorf("load state failed: %w", err)
	}
	if err := json.Unmarshal([]byte(grid), &st.Snapshot.Board); err != nil {
		return g, st, fmt.Errorf("decode board: %w", err)
	}

	return g, st, nil
}

// ListGames returns every saved game, newest first
func (s *Store) ListGames() ([]GameRecord, error) {
	return s.QueryGames("", "")
}

// QueryGames retrieves games with optional filtering. A player filter
// matches either side's ID or name.
func (s *Store) QueryGames(gameID, player string) ([]GameRecord, error) {
	s.flush()

	query := `SELECT ` + gameColumns + ` FROM games WHERE 1=1`
	var args []any

	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}

	if player != "" && player != "*" {
		query += " AND (white_player_id = ? OR black_player_id = ? OR white_name = ? OR black_name = ?)"
		args = append(args, player, player, player, player)
	}

	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return games, nil
}

// SaveOptions stores a named options preset, replacing any with that name
func (s *Store) SaveOptions(opts board.Options) error {
	_, err := s.db.Exec(`INSERT INTO options (name, width, height, mandatory_take, black_starts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			width = excluded.width,
			height = excluded.height,
			mandatory_take = excluded.mandatory_take,
			black_starts = excluded.black_starts`,
		opts.Name, opts.Width, opts.Height, opts.MandatoryTake, opts.BlackStarts)
	if err != nil {
		return fmt.Errorf("save options %q: %w", opts.Name, err)
	}
	return nil
}

func (s *Store) LoadOptions(name string) (board.Options, error) {
	o := board.Options{Name: name}
	err := s.db.QueryRow(`SELECT width, height, mandatory_take, black_starts FROM options WHERE name = ?`, name).
		Scan(&o.Width, &o.Height, &o.MandatoryTake, &o.BlackStarts)
	if errors.Is(err, sql.ErrNoRows) {
		return o, fmt.Errorf("options %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return o, fmt.Errorf("load options %q: %w", name, err)
	}
	return o, nil
}

func (s *Store) ListOptions() ([]board.Options, error) {
	rows, err := s.db.Query(`SELECT name, width, height, mandatory_take, black_starts FROM options ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []board.Options
	for rows.Next() {
		var o board.Options
		if err := rows.Scan(&o.Name, &o.Width, &o.Height, &o.MandatoryTake, &o.BlackStarts); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) DeleteOptions(name string) error {
	res, err := s.db.Exec(`DELETE FROM options WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete options %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("options %q: %w", name, ErrNotFound)
	}
	return nil
}

// IsHealthy returns the current health status
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

// Close gracefully closes the database connection
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			log.Warn().Msg("storage writer shutdown timeout, some writes may be lost")
		}

		err = s.db.Close()
	})
	return err
}

// InitDB creates the database schema
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB closes the store and removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}
