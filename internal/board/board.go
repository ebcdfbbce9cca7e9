package board

import (
	"fmt"

	"github.com/samber/lo"
)

// Board is a width x height grid of cells addressed by (column, row). Row 0
// is white's back rank; row height-1 is black's.
type Board struct {
	width  int
	height int
	cells  []Cell // column-major: x*height + y
}

// New builds a board in the standard starting layout: three rows of men for
// each side on the dark squares nearest their back rank.
func New(opts Options) (*Board, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	b := empty(opts.Width, opts.Height)
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			switch {
			case !IsDark(x, y):
				b.Set(x, y, EmptyLight)
			case y < 3:
				b.Set(x, y, WhiteMan)
			case y >= b.height-3:
				b.Set(x, y, BlackMan)
			default:
				b.Set(x, y, EmptyDark)
			}
		}
	}
	return b, nil
}

// NewEmpty returns a board with every square empty.
func NewEmpty(opts Options) (*Board, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return empty(opts.Width, opts.Height), nil
}

func empty(width, height int) *Board {
	b := &Board{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			if IsDark(x, y) {
				b.cells[x*height+y] = EmptyDark
			}
		}
	}
	return b
}

// IsDark reports whether (x, y) is a playable square.
func IsDark(x, y int) bool {
	return (x+y)%2 != 0
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// At returns the cell at (x, y). Callers check InBounds first.
func (b *Board) At(x, y int) Cell {
	return b.cells[x*b.height+y]
}

// Set writes a cell. Pieces on light squares are refused so the dark-square
// invariant cannot be broken through this method.
func (b *Board) Set(x, y int, c Cell) {
	if c.IsPiece() && !IsDark(x, y) {
		panic(fmt.Sprintf("board: piece %s on light square (%d,%d)", c, x, y))
	}
	b.cells[x*b.height+y] = c
}

// Clear empties a square.
func (b *Board) Clear(x, y int) {
	if IsDark(x, y) {
		b.cells[x*b.height+y] = EmptyDark
	} else {
		b.cells[x*b.height+y] = EmptyLight
	}
}

func (b *Board) Clone() *Board {
	cells := make([]Cell, len(b.cells))
	copy(cells, b.cells)
	return &Board{width: b.width, height: b.height, cells: cells}
}

// Snapshot returns a deep copy indexed [column][row].
func (b *Board) Snapshot() [][]Cell {
	out := make([][]Cell, b.width)
	for x := range out {
		out[x] = make([]Cell, b.height)
		copy(out[x], b.cells[x*b.height:(x+1)*b.height])
	}
	return out
}

// FromSnapshot rebuilds a board from a [column][row] grid. The grid must be
// rectangular and may not place pieces on light squares.
func FromSnapshot(grid [][]Cell) (*Board, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, fmt.Errorf("empty board snapshot")
	}
	width, height := len(grid), len(grid[0])
	b := &Board{width: width, height: height, cells: make([]Cell, width*height)}
	for x, column := range grid {
		if len(column) != height {
			return nil, fmt.Errorf("board snapshot is not rectangular: column %d has %d rows, want %d", x, len(column), height)
		}
		for y, c := range column {
			if int(c) >= len(cellTags) {
				return nil, fmt.Errorf("invalid cell %d at (%d,%d)", uint8(c), x, y)
			}
			if c.IsPiece() && !IsDark(x, y) {
				return nil, fmt.Errorf("piece %s on light square (%d,%d)", c, x, y)
			}
			// Light/dark emptiness follows the square, whatever the snapshot says.
			if !c.IsPiece() {
				c = EmptyLight
				if IsDark(x, y) {
					c = EmptyDark
				}
			}
			b.cells[x*height+y] = c
		}
	}
	return b, nil
}

// Count returns the number of men and kings of each kind.
func (b *Board) Count() map[Cell]int {
	return lo.CountValues(lo.Filter(b.cells, func(c Cell, _ int) bool { return c.IsPiece() }))
}
