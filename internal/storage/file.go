package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"checkers/internal/board"
	"checkers/internal/core"
)

// FileStore keeps each game and each options preset in its own JSON file
// under a directory. Writes are synchronous.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var _ Repository = (*FileStore)(nil)

type savedGame struct {
	Game  GameRecord  `json:"game"`
	State StateRecord `json:"state"`
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) InitDB() error {
	for _, sub := range []string{"games", "options"} {
		if err := os.MkdirAll(filepath.Join(f.dir, sub), 0o755); err != nil {
			return fmt.Errorf("create %s directory: %w", sub, err)
		}
	}
	return nil
}

// fileName escapes a key so it cannot leave its directory.
func (f *FileStore) fileName(kind, key string) string {
	return filepath.Join(f.dir, kind, url.PathEscape(key)+".json")
}

func (f *FileStore) read(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// write replaces path atomically via a temporary file.
func (f *FileStore) write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (f *FileStore) update(gameID string, fn func(*savedGame)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.fileName("games", gameID)
	var sg savedGame
	if err := f.read(path, &sg); err != nil {
		return fmt.Errorf("game %s: %w", gameID, err)
	}
	fn(&sg)
	return f.write(path, sg)
}

func (f *FileStore) RecordNewGame(record GameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sg := savedGame{Game: record, State: StateRecord{GameID: record.GameID}}
	if err := f.write(f.fileName("games", record.GameID), sg); err != nil {
		return fmt.Errorf("record game %s: %w", record.GameID, err)
	}
	return nil
}

func (f *FileStore) RecordState(record StateRecord) error {
	return f.update(record.GameID, func(sg *savedGame) { sg.State = record })
}

func (f *FileStore) RecordGameOver(gameID string, winner core.Color, at time.Time) error {
	return f.update(gameID, func(sg *savedGame) {
		sg.Game.Winner = winner.String()
		sg.Game.EndTimeUTC = &at
	})
}

func (f *FileStore) LoadGame(gameID string) (GameRecord, StateRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var sg savedGame
	if err := f.read(f.fileName("games", gameID), &sg); err != nil {
		return GameRecord{}, StateRecord{}, fmt.Errorf("game %s: %w", gameID, err)
	}
	if len(sg.State.Snapshot.Board) == 0 {
		return sg.Game, sg.State, fmt.Errorf("position of game %s: %w", gameID, ErrNotFound)
	}
	return sg.Game, sg.State, nil
}

// ListGames returns every saved game, newest first. Unreadable files are
// skipped.
func (f *FileStore) ListGames() ([]GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(f.dir, "games", "*.json"))
	if err != nil {
		return nil, err
	}

	var games []GameRecord
	for _, p := range paths {
		var sg savedGame
		if err := f.read(p, &sg); err != nil {
			log.Warn().Err(err).Str("file", p).Msg("skipping unreadable game file")
			continue
		}
		games = append(games, sg.Game)
	}
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].StartTimeUTC.After(games[j].StartTimeUTC)
	})
	return games, nil
}

func (f *FileStore) DeleteGame(gameID string) error {
	return f.remove("games", gameID)
}

func (f *FileStore) remove(kind, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.fileName(kind, key))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s %q: %w", strings.TrimSuffix(kind, "s"), key, ErrNotFound)
	}
	return err
}

func (f *FileStore) SaveOptions(opts board.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(f.fileName("options", opts.Name), opts)
}

func (f *FileStore) LoadOptions(name string) (board.Options, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var o board.Options
	if err := f.read(f.fileName("options", name), &o); err != nil {
		return o, fmt.Errorf("options %q: %w", name, err)
	}
	return o, nil
}

func (f *FileStore) ListOptions() ([]board.Options, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(f.dir, "options", "*.json"))
	if err != nil {
		return nil, err
	}

	var out []board.Options
	for _, p := range paths {
		var o board.Options
		if err := f.read(p, &o); err != nil {
			log.Warn().Err(err).Str("file", p).Msg("skipping unreadable options file")
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *FileStore) DeleteOptions(name string) error {
	return f.remove("options", name)
}

// IsHealthy reports whether the game directory is reachable.
func (f *FileStore) IsHealthy() bool {
	_, err := os.Stat(filepath.Join(f.dir, "games"))
	return err == nil
}

func (f *FileStore) Close() error { return nil }
