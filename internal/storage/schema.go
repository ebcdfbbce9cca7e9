package storage

import (
	"errors"
	"time"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/engine"
)

var ErrNotFound = errors.New("not found")

// GameRecord represents a row in the games table
type GameRecord struct {
	GameID        string        `db:"game_id" json:"gameId"`
	Options       board.Options `json:"options"`
	WhitePlayerID string        `db:"white_player_id" json:"whitePlayerId"`
	WhiteName     string        `db:"white_name" json:"whiteName"`
	WhiteType     int           `db:"white_type" json:"whiteType"`
	WhiteDepth    int           `db:"white_depth" json:"whiteDepth"`
	BlackPlayerID string        `db:"black_player_id" json:"blackPlayerId"`
	BlackName     string        `db:"black_name" json:"blackName"`
	BlackType     int           `db:"black_type" json:"blackType"`
	BlackDepth    int           `db:"black_depth" json:"blackDepth"`
	StartTimeUTC  time.Time     `db:"start_time_utc" json:"startTimeUtc"`
	Winner        string        `db:"winner" json:"winner,omitempty"` // "w", "b" or empty
	EndTimeUTC    *time.Time    `db:"end_time_utc" json:"endTimeUtc,omitempty"`
}

// Players rebuilds both sides from the record.
func (r GameRecord) Players() (white, black *core.Player) {
	white = &core.Player{
		ID:    r.WhitePlayerID,
		Name:  r.WhiteName,
		Color: core.ColorWhite,
		Type:  core.PlayerType(r.WhiteType),
		Depth: r.WhiteDepth,
	}
	black = &core.Player{
		ID:    r.BlackPlayerID,
		Name:  r.BlackName,
		Color: core.ColorBlack,
		Type:  core.PlayerType(r.BlackType),
		Depth: r.BlackDepth,
	}
	return white, black
}

// StateRecord is the latest position of a game. Only one is kept per game.
type StateRecord struct {
	GameID     string          `db:"game_id" json:"gameId"`
	Snapshot   engine.Snapshot `db:"board" json:"snapshot"`
	UpdatedUTC time.Time       `db:"updated_utc" json:"updatedUtc"`
}

// Repository is implemented by the sqlite Store and the JSON FileStore.
type Repository interface {
	InitDB() error
	RecordNewGame(record GameRecord) error
	RecordState(record StateRecord) error
	RecordGameOver(gameID string, winner core.Color, at time.Time) error
	LoadGame(gameID string) (GameRecord, StateRecord, error)
	ListGames() ([]GameRecord, error)
	DeleteGame(gameID string) error

	SaveOptions(opts board.Options) error
	LoadOptions(name string) (board.Options, error)
	ListOptions() ([]board.Options, error)
	DeleteOptions(name string) error

	IsHealthy() bool
	Close() error
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	mandatory_take INTEGER NOT NULL DEFAULT 0,
	black_starts INTEGER NOT NULL DEFAULT 1,
	white_player_id TEXT NOT NULL,
	white_name TEXT NOT NULL,
	white_type INTEGER NOT NULL,
	white_depth INTEGER NOT NULL DEFAULT 0,
	black_player_id TEXT NOT NULL,
	black_name TEXT NOT NULL,
	black_type INTEGER NOT NULL,
	black_depth INTEGER NOT NULL DEFAULT 0,
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	winner TEXT NOT NULL DEFAULT '' CHECK(winner IN ('', 'w', 'b')),
	end_time_utc DATETIME
);

CREATE TABLE IF NOT EXISTS states (
	game_id TEXT PRIMARY KEY,
	board TEXT NOT NULL,
	next_move_by_black INTEGER NOT NULL,
	updated_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS options (
	name TEXT PRIMARY KEY,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	mandatory_take INTEGER NOT NULL DEFAULT 0,
	black_starts INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_games_white_player ON games(white_player_id);
CREATE INDEX IF NOT EXISTS idx_games_black_player ON games(black_player_id);
`
