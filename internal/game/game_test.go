package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/engine"
)

func players() (*core.Player, *core.Player) {
	white := core.NewPlayer(core.PlayerConfig{Type: core.PlayerHuman}, core.ColorWhite, engine.DefaultDepth)
	black := core.NewPlayer(core.PlayerConfig{Type: core.PlayerComputer}, core.ColorBlack, engine.DefaultDepth)
	return white, black
}

func TestNewGame(t *testing.T) {
	white, black := players()
	g, err := New("g1", board.DefaultOptions(), white, black)
	require.NoError(t, err)

	assert.Equal(t, "Standard game", g.Name)
	assert.Equal(t, core.StateOngoing, g.State())
	assert.Equal(t, core.ColorBlack, g.NextTurn())
	assert.Same(t, black, g.NextPlayer())
	assert.Equal(t, engine.DefaultDepth, g.NextPlayer().Depth)
	assert.Equal(t, "White", g.Player(core.ColorWhite).Name)
	assert.Nil(t, g.LastResult())
}

func TestApplyRecordsResult(t *testing.T) {
	white, black := players()
	g, err := New("g1", board.DefaultOptions(), white, black)
	require.NoError(t, err)

	m, err := board.ParseMove("AA6 AB5")
	require.NoError(t, err)
	res, err := g.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, core.ColorBlack, res.Player)
	assert.Equal(t, core.StateOngoing, res.GameState)
	assert.Same(t, res, g.LastResult())
	assert.Equal(t, core.ColorWhite, g.NextTurn())

	_, err = g.Apply(m)
	assert.ErrorIs(t, err, engine.ErrIllegalMove)

	res, err = g.ApplyComputer(2)
	require.NoError(t, err)
	assert.Equal(t, core.ColorWhite, res.Player)
	assert.Equal(t, 2, res.Depth)
	assert.Positive(t, res.Nodes)
}

func TestRestoreFinishedGame(t *testing.T) {
	opts := board.Options{Width: 8, Height: 8}
	b, err := board.NewEmpty(opts)
	require.NoError(t, err)
	b.Set(3, 4, board.WhiteMan)

	white, black := players()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	g, err := Restore("g2", opts, engine.Snapshot{Board: b.Snapshot()}, white, black, created)
	require.NoError(t, err)

	assert.Equal(t, core.StateWhiteWins, g.State())
	assert.Equal(t, created, g.CreatedAt())
	assert.False(t, g.GameOverAt().IsZero())
	assert.Equal(t, b.Snapshot(), g.Snapshot().Board)
}

func TestPliesCount(t *testing.T) {
	white, black := players()
	g, err := New("g3", board.DefaultOptions(), white, black)
	require.NoError(t, err)
	assert.Zero(t, g.Plies())

	_, err = g.ApplyComputer(1)
	require.NoError(t, err)
	_, err = g.ApplyComputer(1)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Plies())
}
