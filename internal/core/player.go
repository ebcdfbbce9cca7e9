package core

import (
	"github.com/google/uuid"
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota + 1
	PlayerComputer
)

func (t PlayerType) String() string {
	if t == PlayerComputer {
		return "computer"
	}
	return "human"
}

// ParsePlayerType accepts "h", "human", "c", "computer" and "ai".
func ParsePlayerType(s string) (PlayerType, bool) {
	switch s {
	case "h", "human":
		return PlayerHuman, true
	case "c", "computer", "ai":
		return PlayerComputer, true
	}
	return 0, false
}

// Player is one side of a game. White is player 1, black is player 2.
type Player struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Color Color      `json:"color"`
	Type  PlayerType `json:"type"`
	Depth int        `json:"depth,omitempty"` // Only for computer
}

// PlayerConfig for API requests and configuration
type PlayerConfig struct {
	Name  string     `json:"name,omitempty" validate:"omitempty,max=64,excludes=\""`
	Type  PlayerType `json:"type" validate:"required,oneof=1 2"`
	Depth int        `json:"depth,omitempty" validate:"omitempty,min=1,max=8"`
}

// NewPlayer creates a Player from PlayerConfig. defaultDepth applies to a
// computer player whose config leaves the depth unset.
func NewPlayer(config PlayerConfig, color Color, defaultDepth int) *Player {
	player := &Player{
		ID:    uuid.New().String(),
		Name:  config.Name,
		Color: color,
		Type:  config.Type,
	}
	if player.Name == "" {
		player.Name = color.Name()
	}

	if config.Type == PlayerComputer {
		player.Depth = config.Depth
		if player.Depth == 0 {
			player.Depth = defaultDepth
		}
	}

	return player
}
