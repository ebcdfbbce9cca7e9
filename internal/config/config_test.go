package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkers/internal/board"
	"checkers/internal/engine"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, engine.DefaultDepth, cfg.Search.Depth)
	assert.Equal(t, board.DefaultOptions(), cfg.BoardOptions())
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 200, cfg.Autoplay.MaxPlies)
}

func TestFileAndEnvironment(t *testing.T) {
	path := writeFile(t, `
search:
  depth: 3
game:
  name: Wide
  width: 12
  mandatory_take: true
storage:
  backend: file
  dir: /tmp/checkers-saves
autoplay:
  workers: 2
`)
	t.Setenv("CHECKERS_SEARCH_DEPTH", "5")
	t.Setenv("CHECKERS_SERVER_DEV", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Search.Depth, "environment wins over the file")
	assert.True(t, cfg.Server.Dev)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, 2, cfg.Autoplay.Workers)

	opts := cfg.BoardOptions()
	assert.Equal(t, "Wide", opts.Name)
	assert.Equal(t, 12, opts.Width)
	assert.Equal(t, 8, opts.Height)
	assert.True(t, opts.MandatoryTake)
	assert.True(t, opts.BlackStarts)
}

func TestInvalidConfig(t *testing.T) {
	_, err := Load(writeFile(t, "game:\n  width: 9\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Width must be even")

	_, err = Load(writeFile(t, "storage:\n  backend: mongo\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "log:\n  level: loud\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log")
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, SetupLogging("warn", f))
	assert.False(t, IsTerminal(f))
	assert.Error(t, SetupLogging("chatty", f))
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
