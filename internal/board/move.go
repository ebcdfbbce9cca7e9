package board

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return ColumnLabel(p.X) + strconv.Itoa(p.Y+1)
}

// Move is a single step or jump. It carries no state and is used both as a
// search-tree edge and as the unit of human input.
type Move struct {
	FromX int `json:"fromX"`
	FromY int `json:"fromY"`
	ToX   int `json:"toX"`
	ToY   int `json:"toY"`
}

func NewMove(from, to Position) Move {
	return Move{FromX: from.X, FromY: from.Y, ToX: to.X, ToY: to.Y}
}

func (m Move) From() Position { return Position{X: m.FromX, Y: m.FromY} }
func (m Move) To() Position   { return Position{X: m.ToX, Y: m.ToY} }

// IsJump reports whether the move spans two diagonal cells.
func (m Move) IsJump() bool {
	return abs(m.ToX-m.FromX) == 2 && abs(m.ToY-m.FromY) == 2
}

// Mid returns the jumped-over square. Only meaningful when IsJump.
func (m Move) Mid() Position {
	return Position{X: (m.FromX + m.ToX) / 2, Y: (m.FromY + m.ToY) / 2}
}

func (m Move) String() string {
	return m.From().String() + " " + m.To().String()
}

// ColumnLabel returns the two-letter label of a column: AA, AB, ... AZ.
func ColumnLabel(x int) string {
	return string([]byte{byte('A' + x/26), byte('A' + x%26)})
}

// ParsePosition reads a square such as "AB3" (case-insensitive). Row numbers
// are 1-based in text and 0-based in the returned Position.
func ParsePosition(s string) (Position, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 3 {
		return Position{}, fmt.Errorf("invalid square %q: want two column letters and a row number", s)
	}
	if !unicode.IsLetter(rune(s[0])) || !unicode.IsLetter(rune(s[1])) ||
		s[0] < 'A' || s[0] > 'Z' || s[1] < 'A' || s[1] > 'Z' {
		return Position{}, fmt.Errorf("invalid square %q: bad column", s)
	}
	row, err := strconv.Atoi(s[2:])
	if err != nil || row < 1 {
		return Position{}, fmt.Errorf("invalid square %q: bad row", s)
	}
	return Position{X: int(s[0]-'A')*26 + int(s[1]-'A'), Y: row - 1}, nil
}

// ParseMove reads "AB3 AC4", "AB3-AC4" or "AB3AC4".
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == ','
	})
	if len(fields) == 1 {
		fields = splitCompact(fields[0])
	}
	if len(fields) != 2 {
		return Move{}, fmt.Errorf("invalid move %q: want two squares like \"AB3 AC4\"", s)
	}
	from, err := ParsePosition(fields[0])
	if err != nil {
		return Move{}, err
	}
	to, err := ParsePosition(fields[1])
	if err != nil {
		return Move{}, err
	}
	return NewMove(from, to), nil
}

// splitCompact splits "AB3AC4" at the start of the second square.
func splitCompact(s string) []string {
	for i := 3; i < len(s)-2; i++ {
		if unicode.IsLetter(rune(s[i])) && unicode.IsDigit(rune(s[i-1])) {
			return []string{s[:i], s[i:]}
		}
	}
	return []string{s}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
