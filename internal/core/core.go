package core

import "fmt"

type State int

const (
	StateOngoing State = iota
	StateWhiteWins
	StateBlackWins
)

func (s State) String() string {
	switch s {
	case StateWhiteWins:
		return "White wins"
	case StateBlackWins:
		return "Black wins"
	default:
		return "Ongoing"
	}
}

// Code is the stable identifier used in API responses and storage.
func (s State) Code() string {
	switch s {
	case StateWhiteWins:
		return "white_wins"
	case StateBlackWins:
		return "black_wins"
	default:
		return "ongoing"
	}
}

// WinState returns the terminal state in which c has won.
func WinState(c Color) State {
	if c == ColorBlack {
		return StateBlackWins
	}
	return StateWhiteWins
}

type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("invalid color %q", text)
	}
	*c = parsed
	return nil
}

// Name returns the capitalised color name for display.
func (c Color) Name() string {
	if c == ColorBlack {
		return "Black"
	}
	return "White"
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ColorFromBlack maps the persisted "next move by black" flag to a Color.
func ColorFromBlack(black bool) Color {
	if black {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts "w", "b", "white" or "black".
func ParseColor(s string) (Color, bool) {
	switch s {
	case "w", "white":
		return ColorWhite, true
	case "b", "black":
		return ColorBlack, true
	}
	return 0, false
}
