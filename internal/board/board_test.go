package board

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStandardLayout(t *testing.T) {
	b, err := New(DefaultOptions())
	require.NoError(t, err)

	counts := b.Count()
	assert.Equal(t, 12, counts[WhiteMan])
	assert.Equal(t, 12, counts[BlackMan])
	assert.Zero(t, counts[WhiteKing])
	assert.Zero(t, counts[BlackKing])

	assert.Equal(t, WhiteMan, b.At(1, 0))
	assert.Equal(t, WhiteMan, b.At(0, 1))
	assert.Equal(t, EmptyLight, b.At(0, 0))
	assert.Equal(t, EmptyDark, b.At(0, 3))
	assert.Equal(t, BlackMan, b.At(0, 7))
	assert.Equal(t, BlackMan, b.At(1, 6))
}

func TestPiecesOnlyOnDarkSquares(t *testing.T) {
	for _, opts := range []Options{
		{Width: 4, Height: 8},
		{Width: 8, Height: 8},
		{Width: 10, Height: 12},
		{Width: 26, Height: 26},
	} {
		b, err := New(opts)
		require.NoError(t, err)
		for x := 0; x < b.Width(); x++ {
			for y := 0; y < b.Height(); y++ {
				if b.At(x, y).IsPiece() {
					assert.True(t, IsDark(x, y), "piece on light square (%d,%d) for %dx%d", x, y, opts.Width, opts.Height)
				} else if IsDark(x, y) {
					assert.Equal(t, EmptyDark, b.At(x, y))
				} else {
					assert.Equal(t, EmptyLight, b.At(x, y))
				}
			}
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"standard", Options{Width: 8, Height: 8}, false},
		{"narrow", Options{Width: 4, Height: 8}, false},
		{"odd width", Options{Width: 7, Height: 8}, true},
		{"odd height", Options{Width: 8, Height: 9}, true},
		{"too narrow", Options{Width: 2, Height: 8}, true},
		{"too short", Options{Width: 8, Height: 6}, true},
		{"too wide", Options{Width: 28, Height: 8}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				_, err = New(tt.opts)
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	b, err := New(DefaultOptions())
	require.NoError(t, err)

	c := b.Clone()
	c.Clear(1, 0)
	assert.Equal(t, WhiteMan, b.At(1, 0))
	assert.Equal(t, EmptyDark, c.At(1, 0))
}

func TestSnapshotRoundTrip(t *testing.T) {
	b, err := New(DefaultOptions())
	require.NoError(t, err)

	grid := b.Snapshot()
	require.Len(t, grid, 8)
	require.Len(t, grid[0], 8)
	grid[1][0] = EmptyDark
	assert.Equal(t, WhiteMan, b.At(1, 0), "snapshot must not alias the board")

	data, err := json.Marshal(b.Snapshot())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"white-man"`)
	assert.Contains(t, string(data), `"empty-light"`)

	var decoded [][]Cell
	require.NoError(t, json.Unmarshal(data, &decoded))
	restored, err := FromSnapshot(decoded)
	require.NoError(t, err)
	assert.Equal(t, b.Snapshot(), restored.Snapshot())
}

func TestFromSnapshotRejectsBadGrids(t *testing.T) {
	_, err := FromSnapshot(nil)
	assert.Error(t, err)

	_, err = FromSnapshot([][]Cell{{EmptyLight, EmptyDark}, {EmptyDark}})
	assert.Error(t, err)

	_, err = FromSnapshot([][]Cell{{WhiteMan, EmptyDark}, {EmptyDark, EmptyLight}})
	assert.Error(t, err, "piece on light square (0,0)")

	var c Cell
	assert.Error(t, json.Unmarshal([]byte(`"queen"`), &c))
}

func TestSetRefusesLightSquares(t *testing.T) {
	b, err := NewEmpty(DefaultOptions())
	require.NoError(t, err)
	assert.Panics(t, func() { b.Set(0, 0, BlackKing) })
	assert.NotPanics(t, func() { b.Set(0, 1, BlackKing) })
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		in   string
		want Move
		ok   bool
	}{
		{"AB3 AC4", Move{FromX: 1, FromY: 2, ToX: 2, ToY: 3}, true},
		{"ab3-ac4", Move{FromX: 1, FromY: 2, ToX: 2, ToY: 3}, true},
		{"AB3AC4", Move{FromX: 1, FromY: 2, ToX: 2, ToY: 3}, true},
		{"AA10 AB9", Move{FromX: 0, FromY: 9, ToX: 1, ToY: 8}, true},
		{"BA1 AZ2", Move{FromX: 26, FromY: 0, ToX: 25, ToY: 1}, true},
		{"AB3", Move{}, false},
		{"A3 B4", Move{}, false},
		{"AB0 AC1", Move{}, false},
		{"", Move{}, false},
	}
	for _, tt := range tests {
		got, err := ParseMove(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	m := Move{FromX: 1, FromY: 2, ToX: 2, ToY: 3}
	assert.Equal(t, "AB3 AC4", m.String())
	parsed, err := ParseMove(m.String())
	require.NoError(t, err)
	assert.Equal(t, m, parsed)
}

func TestMoveGeometry(t *testing.T) {
	jump := Move{FromX: 3, FromY: 4, ToX: 5, ToY: 6}
	assert.True(t, jump.IsJump())
	assert.Equal(t, Position{X: 4, Y: 5}, jump.Mid())

	step := Move{FromX: 3, FromY: 4, ToX: 4, ToY: 5}
	assert.False(t, step.IsJump())
}
