package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/engine"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func repositories(t *testing.T) map[string]Repository {
	t.Helper()
	dir := t.TempDir()

	store, err := NewStore(filepath.Join(dir, "checkers.db"), false)
	require.NoError(t, err)
	require.NoError(t, store.InitDB())
	t.Cleanup(func() { store.Close() })

	files := NewFileStore(filepath.Join(dir, "files"))
	require.NoError(t, files.InitDB())

	return map[string]Repository{"sqlite": store, "file": files}
}

func sampleGame(id string, started time.Time) GameRecord {
	return GameRecord{
		GameID:        id,
		Options:       board.DefaultOptions(),
		WhitePlayerID: "p-white",
		WhiteName:     "Alice",
		WhiteType:     int(core.PlayerHuman),
		BlackPlayerID: "p-black",
		BlackName:     "Computer",
		BlackType:     int(core.PlayerComputer),
		BlackDepth:    4,
		StartTimeUTC:  started,
	}
}

func TestGameLifecycle(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			rec := sampleGame("game-1", started)
			require.NoError(t, repo.RecordNewGame(rec))

			e, err := engine.New(board.DefaultOptions())
			require.NoError(t, err)
			require.NoError(t, repo.RecordState(StateRecord{GameID: rec.GameID, Snapshot: e.CurrentSnapshot(), UpdatedUTC: started}))

			require.NoError(t, e.ApplyMove(board.Move{FromX: 0, FromY: 5, ToX: 1, ToY: 4}))
			require.NoError(t, repo.RecordState(StateRecord{GameID: rec.GameID, Snapshot: e.CurrentSnapshot(), UpdatedUTC: started.Add(time.Minute)}))

			got, st, err := repo.LoadGame(rec.GameID)
			require.NoError(t, err)
			assert.Equal(t, rec.Options, got.Options)
			assert.Equal(t, "Alice", got.WhiteName)
			assert.Equal(t, 4, got.BlackDepth)
			assert.True(t, started.Equal(got.StartTimeUTC))
			assert.Empty(t, got.Winner)
			assert.Equal(t, e.CurrentSnapshot(), st.Snapshot, "only the latest position is kept")

			white, black := got.Players()
			assert.Equal(t, core.PlayerHuman, white.Type)
			assert.Equal(t, core.ColorBlack, black.Color)

			require.NoError(t, repo.RecordGameOver(rec.GameID, core.ColorBlack, started.Add(time.Hour)))
			got, _, err = repo.LoadGame(rec.GameID)
			require.NoError(t, err)
			assert.Equal(t, "b", got.Winner)
			require.NotNil(t, got.EndTimeUTC)

			require.NoError(t, repo.DeleteGame(rec.GameID))
			_, _, err = repo.LoadGame(rec.GameID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, repo.DeleteGame(rec.GameID), ErrNotFound)
			assert.ErrorIs(t, repo.DeleteGame("missing"), ErrNotFound)
			assert.True(t, repo.IsHealthy())
		})
	}
}

func TestStateForDeletedGameIsDropped(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "checkers.db"), false)
	require.NoError(t, err)
	require.NoError(t, store.InitDB())
	defer store.Close()

	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e, err := engine.New(board.DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, store.RecordNewGame(sampleGame("gone", started)))
	require.NoError(t, store.DeleteGame("gone"))
	require.NoError(t, store.RecordState(StateRecord{GameID: "gone", Snapshot: e.CurrentSnapshot(), UpdatedUTC: started}))
	require.NoError(t, store.RecordGameOver("gone", core.ColorWhite, started))

	rec := sampleGame("kept", started)
	require.NoError(t, store.RecordNewGame(rec))
	require.NoError(t, store.RecordState(StateRecord{GameID: rec.GameID, Snapshot: e.CurrentSnapshot(), UpdatedUTC: started}))

	_, st, err := store.LoadGame(rec.GameID)
	require.NoError(t, err)
	assert.Equal(t, e.CurrentSnapshot(), st.Snapshot)
	_, _, err = store.LoadGame("gone")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, store.IsHealthy())
}

func TestListGamesNewestFirst(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			require.NoError(t, repo.RecordNewGame(sampleGame("old", base)))
			require.NoError(t, repo.RecordNewGame(sampleGame("new", base.Add(time.Hour))))

			games, err := repo.ListGames()
			require.NoError(t, err)
			require.Len(t, games, 2)
			assert.Equal(t, "new", games[0].GameID)
			assert.Equal(t, "old", games[1].GameID)
		})
	}
}

func TestLoadUnknownGame(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := repo.LoadGame("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			_, _, err = repo.LoadGame("../../etc/passwd")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestOptionsPresets(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			big := board.Options{Name: "big", Width: 12, Height: 12, MandatoryTake: true}
			small := board.Options{Name: "small", Width: 4, Height: 8, BlackStarts: true}
			require.NoError(t, repo.SaveOptions(small))
			require.NoError(t, repo.SaveOptions(big))

			got, err := repo.LoadOptions("big")
			require.NoError(t, err)
			assert.Equal(t, big, got)

			big.Height = 14
			require.NoError(t, repo.SaveOptions(big))
			got, err = repo.LoadOptions("big")
			require.NoError(t, err)
			assert.Equal(t, 14, got.Height)

			all, err := repo.ListOptions()
			require.NoError(t, err)
			assert.Equal(t, []board.Options{big, small}, all)

			require.NoError(t, repo.DeleteOptions("small"))
			assert.ErrorIs(t, repo.DeleteOptions("small"), ErrNotFound)
			_, err = repo.LoadOptions("small")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestQueryGamesFilters(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "q.db"), true)
	require.NoError(t, err)
	require.NoError(t, store.InitDB())
	defer store.Close()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a := sampleGame("a", base)
	b := sampleGame("b", base.Add(time.Minute))
	b.WhiteName = "Bob"
	b.WhitePlayerID = "p-bob"
	require.NoError(t, store.RecordNewGame(a))
	require.NoError(t, store.RecordNewGame(b))

	all, err := store.QueryGames("*", "*")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byID, err := store.QueryGames("a", "")
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "Alice", byID[0].WhiteName)

	byName, err := store.QueryGames("", "Bob")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "b", byName[0].GameID)

	byPlayerID, err := store.QueryGames("", "p-black")
	require.NoError(t, err)
	assert.Len(t, byPlayerID, 2)
}

func TestDeleteDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.db")
	store, err := NewStore(path, false)
	require.NoError(t, err)
	require.NoError(t, store.InitDB())
	require.FileExists(t, path)

	require.NoError(t, store.DeleteDB())
	assert.NoFileExists(t, path)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	repo, err := Open("none", "", "", false)
	require.NoError(t, err)
	assert.Nil(t, repo)

	repo, err = Open("sqlite", filepath.Join(dir, "open.db"), "", false)
	require.NoError(t, err)
	assert.IsType(t, &Store{}, repo)
	require.NoError(t, repo.Close())

	repo, err = Open("file", "", filepath.Join(dir, "saves"), false)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, repo)
	assert.DirExists(t, filepath.Join(dir, "saves", "games"))

	_, err = Open("redis", "", "", false)
	assert.Error(t, err)
}
