package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkers.pid")

	cleanup, err := managePIDFile(path, true)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))

	_, err = managePIDFile(path, true)
	assert.Error(t, err, "second locked instance must be refused")

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCheckStalePIDCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkers.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0644))

	err := checkStalePID(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupted")
}
