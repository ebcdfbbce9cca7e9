package board

import (
	"fmt"

	"checkers/internal/core"
)

// Cell is the content of one square. The zero value is EmptyLight.
type Cell uint8

const (
	EmptyLight Cell = iota
	EmptyDark
	WhiteMan
	WhiteKing
	BlackMan
	BlackKing
)

var cellTags = [...]string{
	EmptyLight: "empty-light",
	EmptyDark:  "empty-dark",
	WhiteMan:   "white-man",
	WhiteKing:  "white-king",
	BlackMan:   "black-man",
	BlackKing:  "black-king",
}

func (c Cell) String() string {
	if int(c) < len(cellTags) {
		return cellTags[c]
	}
	return fmt.Sprintf("cell(%d)", uint8(c))
}

// IsPiece reports whether the cell holds a man or a king of either color.
func (c Cell) IsPiece() bool {
	switch c {
	case WhiteMan, WhiteKing, BlackMan, BlackKing:
		return true
	}
	return false
}

func (c Cell) IsKing() bool {
	return c == WhiteKing || c == BlackKing
}

func (c Cell) IsMan() bool {
	return c == WhiteMan || c == BlackMan
}

// Color returns the owner of a piece. ok is false for empty cells.
func (c Cell) Color() (color core.Color, ok bool) {
	switch c {
	case WhiteMan, WhiteKing:
		return core.ColorWhite, true
	case BlackMan, BlackKing:
		return core.ColorBlack, true
	}
	return 0, false
}

// Is reports whether the cell holds a piece of the given color.
func (c Cell) Is(color core.Color) bool {
	owner, ok := c.Color()
	return ok && owner == color
}

// Opposes reports whether c and other are pieces of different colors.
func (c Cell) Opposes(other Cell) bool {
	a, ok := c.Color()
	if !ok {
		return false
	}
	b, ok := other.Color()
	return ok && a != b
}

// Crowned returns the king of the same color; kings and empty cells are
// returned unchanged.
func (c Cell) Crowned() Cell {
	switch c {
	case WhiteMan:
		return WhiteKing
	case BlackMan:
		return BlackKing
	}
	return c
}

func (c Cell) MarshalText() ([]byte, error) {
	if int(c) >= len(cellTags) {
		return nil, fmt.Errorf("invalid cell %d", uint8(c))
	}
	return []byte(cellTags[c]), nil
}

func (c *Cell) UnmarshalText(text []byte) error {
	cell, err := ParseCell(string(text))
	if err != nil {
		return err
	}
	*c = cell
	return nil
}

func ParseCell(tag string) (Cell, error) {
	for i, t := range cellTags {
		if t == tag {
			return Cell(i), nil
		}
	}
	return 0, fmt.Errorf("unknown cell tag %q", tag)
}
